package router

import (
	"github.com/gin-gonic/gin"
	"github.com/motorshop/backend/internal/infrastructure/auth"
	"github.com/motorshop/backend/internal/infrastructure/config"
	"github.com/motorshop/backend/internal/infrastructure/logger"
	"github.com/motorshop/backend/internal/infrastructure/telemetry"
	"github.com/motorshop/backend/internal/interfaces/http/handler"
	"github.com/motorshop/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers are the HTTP endpoints mounted by New
type Handlers struct {
	Health       *handler.HealthHandler
	Notification *handler.NotificationHandler
	Messaging    *handler.MessagingHandler
	Invoice      *handler.InvoiceHandler
}

// Config bundles what New needs to build the engine
type Config struct {
	HTTP          config.HTTPConfig
	ServiceName   string
	TriggerSecret string
	JWTService    *auth.JWTService
	MeterProvider *telemetry.MeterProvider
	Tracing       bool
	Logger        *zap.Logger
	Handlers      Handlers
}

// API is the assembled HTTP engine
type API struct {
	Engine      *gin.Engine
	sendLimiter *middleware.RateLimiter
}

// Close releases background resources held by middleware
func (a *API) Close() {
	if a.sendLimiter != nil {
		a.sendLimiter.Stop()
	}
}

// New builds the gin engine with the middleware stack and every route.
//
// Middleware order: request ID, recovery, tracing, metrics, request logging,
// security headers, CORS, body limit.
func New(cfg Config) *API {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	if cfg.Tracing {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: true}))
		engine.Use(middleware.TracingAttributeInjector())
		engine.Use(middleware.SpanErrorMarker())
	}
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: cfg.MeterProvider,
		Enabled:       cfg.MeterProvider != nil,
		Logger:        log,
	}))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}

	api := &API{Engine: engine}
	h := cfg.Handlers

	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.HTTP.SwaggerEnabled,
			AllowedIPs: cfg.HTTP.SwaggerAllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	jwt := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: cfg.JWTService,
		Logger:     log,
	})

	// cron entry points authenticate with the shared trigger secret
	cron := Module{Name: "cron"}
	if h.Notification != nil {
		cron.Routes = append(cron.Routes, get("/notifications/process",
			middleware.TriggerSecret(middleware.TriggerSecretConfig{
				Secret:         cfg.TriggerSecret,
				AllowImmediate: true,
				Logger:         log,
			}), h.Notification.Process))
	}
	if h.Invoice != nil {
		cron.Routes = append(cron.Routes, post("/invoices/mark-overdue",
			middleware.TriggerSecret(middleware.TriggerSecretConfig{
				Secret: cfg.TriggerSecret,
				Logger: log,
			}), h.Invoice.MarkOverdue))
	}
	modules := []Module{cron}

	if h.Notification != nil {
		modules = append(modules, Module{
			Name:       "notifications",
			Prefix:     "/notifications",
			Middleware: []gin.HandlerFunc{jwt},
			Routes: []Route{
				post("", h.Notification.Enqueue),
				get("/stats", h.Notification.Stats),
				get("/:id", h.Notification.Get),
				post("/:id/retry", h.Notification.Retry),
			},
		})
	}

	if h.Messaging != nil {
		var send []gin.HandlerFunc
		if cfg.HTTP.SendRateLimit > 0 {
			api.sendLimiter = middleware.NewRateLimiter(cfg.HTTP.SendRateLimit, cfg.HTTP.SendRateLimitWindow)
			send = append(send, middleware.RateLimit(api.sendLimiter))
		}
		modules = append(modules, Module{
			Name:       "messaging",
			Prefix:     "/messaging",
			Middleware: []gin.HandlerFunc{jwt},
			Routes:     []Route{post("/send", append(send, h.Messaging.Send)...)},
		})
	}

	if h.Invoice != nil {
		modules = append(modules, Module{
			Name:       "invoices",
			Prefix:     "/invoices",
			Middleware: []gin.HandlerFunc{jwt},
			Routes: []Route{
				post("", h.Invoice.Create),
				get("", h.Invoice.List),
				get("/:id", h.Invoice.Get),
				get("/:id/pdf", h.Invoice.PDFLink),
				post("/:id/issue", h.Invoice.Issue),
				post("/:id/payments", h.Invoice.RecordPayment),
				post("/:id/cancel", h.Invoice.Cancel),
			},
		})
	}

	for name, n := range mountAll(engine, modules) {
		log.Debug("Routes mounted", zap.String("module", name), zap.Int("routes", n))
	}
	return api
}
