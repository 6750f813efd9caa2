package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	invoiceapp "github.com/motorshop/backend/internal/application/invoice"
	notificationapp "github.com/motorshop/backend/internal/application/notification"
	"github.com/motorshop/backend/internal/domain/invoice"
	"github.com/motorshop/backend/internal/infrastructure/auth"
	"github.com/motorshop/backend/internal/infrastructure/cache"
	"github.com/motorshop/backend/internal/infrastructure/config"
	"github.com/motorshop/backend/internal/infrastructure/logger"
	"github.com/motorshop/backend/internal/infrastructure/messaging"
	"github.com/motorshop/backend/internal/infrastructure/migration"
	"github.com/motorshop/backend/internal/infrastructure/persistence"
	"github.com/motorshop/backend/internal/infrastructure/printing"
	"github.com/motorshop/backend/internal/infrastructure/scheduler"
	"github.com/motorshop/backend/internal/infrastructure/storage"
	"github.com/motorshop/backend/internal/infrastructure/telemetry"
	"github.com/motorshop/backend/internal/interfaces/http/handler"
	"github.com/motorshop/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/motorshop/backend/docs"
	"github.com/motorshop/backend/migrations"
)

//	@title			Motorshop Backend API
//	@version		1.0
//	@description	Workshop invoicing and customer notification service

//	@contact.name	API Support

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	shutdownTimeout  = 30 * time.Second
	cleanupInterval  = 6 * time.Hour
	queueDepthPeriod = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()

	tel := telemetry.Setup(rootCtx, cfg.Telemetry, serviceName, version, baseLog)
	log := telemetry.Bridge(baseLog, tel.Logs, serviceName, logger.ParseLevel(cfg.Log.Level))
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Motorshop Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:  logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel), cfg.Database.SlowThreshold),
		Tracing: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		if err := applyMigrations(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Repositories
	queueRepo := persistence.NewGormNotificationQueueRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	jobRepo := persistence.NewGormJobRepository(db.DB)
	settingsRepo := persistence.NewGormMessagingSettingsRepository(db.DB)
	numbers := persistence.NewGormInvoiceNumberGenerator(db.DB, cfg.Invoice.NumberPrefix)

	metrics, err := telemetry.NewDeliveryMetrics(tel.Metrics.Meter("motorshop/notifications"), log)
	if err != nil {
		log.Fatal("Failed to create delivery metrics", zap.Error(err))
	}
	defer metrics.Stop()

	lock, err := cache.NewDispatchLockFactory(cfg.Redis, cache.WithLogger(log)).Create()
	if err != nil {
		log.Fatal("Failed to create dispatch lock", zap.Error(err))
	}
	if closer, ok := lock.(io.Closer); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	documents := initDocuments(rootCtx, cfg, log)
	if documents != nil {
		defer func() {
			_ = documents.Close()
		}()
	}

	// Notifications
	gateway := messaging.NewGateway(cfg.Messaging.Timeout, log).WithMetrics(metrics)
	dispatcher := notificationapp.NewEventDispatcher(settingsRepo, gateway, log)
	if documents != nil {
		dispatcher.WithInvoiceAttachments(invoiceRepo, jobRepo, documents)
	}
	worker := notificationapp.NewWorker(queueRepo, dispatcher, notificationapp.WorkerConfig{
		BatchSize:  cfg.Worker.BatchSize,
		MaxRetries: cfg.Worker.MaxRetries,
		LeaseTTL:   cfg.Worker.LeaseTTL,
	}, log,
		notificationapp.WithDispatchLock(lock),
		notificationapp.WithWorkerMetrics(metrics),
	)
	queueService := notificationapp.NewQueueService(queueRepo, log)
	metrics.StartQueueCollection(rootCtx, queueService.QueueDepth, queueDepthPeriod)

	// Invoices
	policy, err := invoice.ParseOverpaymentPolicy(cfg.Invoice.OverpaymentPolicy)
	if err != nil {
		log.Fatal("Invalid overpayment policy", zap.Error(err))
	}
	lifecycle := invoiceapp.NewLifecycleService(invoiceRepo, jobRepo, numbers, policy, log)
	lifecycle.SetNotificationEnqueuer(queueService)
	lifecycle.SetMetrics(metrics)

	// HTTP
	invoiceHandler := handler.NewInvoiceHandler(lifecycle)
	if documents != nil {
		invoiceHandler.WithDocuments(documents, settingsRepo)
	}
	api := router.New(router.Config{
		HTTP:          cfg.HTTP,
		ServiceName:   serviceName,
		TriggerSecret: cfg.Worker.TriggerSecret,
		JWTService:    auth.NewJWTService(cfg.JWT),
		MeterProvider: tel.Metrics,
		Tracing:       tel.Traces.IsEnabled(),
		Logger:        log,
		Handlers: router.Handlers{
			Health:       handler.NewHealthHandler(serviceName, version, db),
			Notification: handler.NewNotificationHandler(worker, queueService),
			Messaging:    handler.NewMessagingHandler(gateway),
			Invoice:      invoiceHandler,
		},
	})
	defer api.Close()

	schedulers := buildSchedulers(cfg, worker, lifecycle, queueService, log)
	for _, s := range schedulers {
		if err := s.Start(rootCtx); err != nil {
			log.Fatal("Failed to start scheduler", zap.String("scheduler", s.Name()), zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        api.Engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	for _, s := range schedulers {
		if err := s.Stop(ctx); err != nil {
			log.Warn("Scheduler did not stop cleanly", zap.String("scheduler", s.Name()), zap.Error(err))
		}
	}
	stopRoot()

	if err := tel.Shutdown(ctx); err != nil {
		baseLog.Warn("Telemetry shutdown failed", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

// applyMigrations runs the migrations compiled into the binary
func applyMigrations(db *persistence.Database, log *zap.Logger) error {
	m, err := migration.New(db.SQL(), migration.FS(migrations.FS), log)
	if err != nil {
		return err
	}
	defer func() {
		_ = m.Close()
	}()
	return m.Up()
}

// initDocuments wires PDF rendering. It returns nil when printing is
// disabled or Chrome cannot be reached, in which case messages go out
// without attachments.
func initDocuments(ctx context.Context, cfg *config.Config, log *zap.Logger) *printing.InvoiceDocuments {
	if !cfg.Printing.Enabled {
		log.Info("Invoice printing disabled")
		return nil
	}

	var store storage.ObjectStorage
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create object storage", zap.Error(err))
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Warn("Invoice bucket unavailable", zap.String("bucket", s3.Bucket()), zap.Error(err))
		}
		store = s3
	} else {
		log.Info("Object storage not configured, keeping invoice PDFs in memory")
		store = storage.NewMemoryObjectStorage()
	}

	renderer, err := printing.NewChromedpRenderer(printing.ChromedpConfigFrom(&cfg.Printing, log))
	if err != nil {
		log.Warn("PDF renderer unavailable, invoice attachments disabled", zap.Error(err))
		return nil
	}
	documents, err := printing.NewInvoiceDocuments(renderer, store, log)
	if err != nil {
		_ = renderer.Close()
		log.Warn("Invoice documents unavailable", zap.Error(err))
		return nil
	}
	return documents
}

func buildSchedulers(
	cfg *config.Config,
	worker *notificationapp.Worker,
	lifecycle *invoiceapp.LifecycleService,
	queue *notificationapp.QueueService,
	log *zap.Logger,
) []*scheduler.Periodic {
	var out []*scheduler.Periodic
	if cfg.Worker.SchedulerEnabled {
		out = append(out, scheduler.NewNotificationScheduler(worker, cfg.Worker.Interval, log))
	}
	if cfg.Invoice.OverdueEnabled {
		out = append(out, scheduler.NewOverdueScheduler(lifecycle, cfg.Invoice.OverdueInterval, log, time.Now))
	}
	if cfg.Worker.Retention > 0 {
		out = append(out, scheduler.NewQueueCleanupScheduler(queue, cfg.Worker.Retention, cleanupInterval, log))
	}
	return out
}
