package messaging

import (
	"context"
	"net/http"
	"time"

	"github.com/motorshop/backend/internal/domain/messaging"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/motorshop/backend/internal/infrastructure/logger"
	"github.com/motorshop/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Gateway implements messaging.Gateway: it validates the provider config,
// normalizes the destination and delivers the text, then the attachment on a
// best-effort basis.
type Gateway struct {
	client  *http.Client
	logger  *zap.Logger
	metrics *telemetry.DeliveryMetrics
}

// NewGateway creates a gateway whose calls are bounded by timeout
func NewGateway(timeout time.Duration, log *zap.Logger) *Gateway {
	return NewGatewayWithClient(NewHTTPClient(timeout), log)
}

// NewGatewayWithClient creates a gateway on an existing client
func NewGatewayWithClient(client *http.Client, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{client: client, logger: log.Named("messaging")}
}

// WithMetrics records provider call durations on m
func (g *Gateway) WithMetrics(m *telemetry.DeliveryMetrics) *Gateway {
	g.metrics = m
	return g
}

// NewProvider builds the provider implementation for a type. Unknown types
// and incomplete configs return a provider configuration error.
func (g *Gateway) NewProvider(provider messaging.ProviderType, config messaging.ProviderConfig) (messaging.Provider, error) {
	if err := config.Validate(provider); err != nil {
		return nil, err
	}
	switch provider {
	case messaging.ProviderAutoSender:
		return NewAutoSenderProvider(config, g.client), nil
	case messaging.ProviderBusinessAPI:
		return NewBusinessAPIProvider(config, g.client), nil
	case messaging.ProviderCloudAPI:
		return NewCloudAPIProvider(config, g.client), nil
	case messaging.ProviderWebhook:
		return NewWebhookProvider(config, g.client), nil
	}
	return nil, shared.NewProviderConfigurationError("unsupported messaging provider: " + string(provider))
}

// Send delivers one message. Success is decided by the text message alone.
func (g *Gateway) Send(ctx context.Context, provider messaging.ProviderType, config messaging.ProviderConfig, req messaging.SendRequest) messaging.SendResult {
	ctx, span := telemetry.StartSpan(ctx, "messaging.send",
		telemetry.WithAttribute(telemetry.SpanAttrProvider, string(provider)))
	defer span.End()

	log := logger.L(ctx, g.logger).With(zap.String("provider", string(provider)))

	p, err := g.NewProvider(provider, config)
	if err != nil {
		telemetry.RecordError(span, err)
		return messaging.Failed(http.StatusBadRequest, "%s", err.Error())
	}
	if err := req.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return messaging.Failed(http.StatusBadRequest, "%s", err.Error())
	}

	to := messaging.NormalizePhone(req.To)
	start := time.Now()
	result := p.SendText(ctx, to, req.Message)
	g.metrics.RecordSend(ctx, string(provider), result.Success, time.Since(start))
	if !result.Success {
		log.Warn("Message delivery failed",
			zap.Int("status_code", result.StatusCode),
			zap.String("error", result.Error))
		telemetry.SetAttribute(span, telemetry.SpanAttrStatusCode, result.StatusCode)
		span.SetStatus(codes.Error, result.Error)
		return result
	}

	if req.Attachment != nil && len(req.Attachment.Data) > 0 {
		att := p.SendAttachment(ctx, to, *req.Attachment, "")
		if !att.Success {
			log.Warn("Attachment delivery failed",
				zap.String("filename", req.Attachment.Filename),
				zap.Int("status_code", att.StatusCode),
				zap.String("error", att.Error))
			telemetry.AddEvent(span, "attachment_failed", "error", att.Error)
		}
	}

	return result
}

var _ messaging.Gateway = (*Gateway)(nil)
