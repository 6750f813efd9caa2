package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/invoice"
	"github.com/motorshop/backend/internal/domain/messaging"
	"github.com/motorshop/backend/internal/domain/notification"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/motorshop/backend/internal/infrastructure/logger"
	"github.com/motorshop/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

const defaultShopName = "our workshop"

// InvoiceReader loads invoices for attachments
type InvoiceReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error)
}

// InvoiceDocuments produces the PDF attached to invoice_issued messages
type InvoiceDocuments interface {
	InvoicePDF(ctx context.Context, inv *invoice.Invoice, job *invoice.Job, shopName string) (*printing.Document, error)
}

// EventDispatcher formats a queue entry into a message and sends it through
// the tenant's configured provider.
type EventDispatcher struct {
	settings  messaging.SettingsRepository
	gateway   messaging.Gateway
	invoices  InvoiceReader
	jobs      invoice.JobRepository
	documents InvoiceDocuments
	logger    *zap.Logger
}

// NewEventDispatcher creates the dispatcher used by the worker
func NewEventDispatcher(settings messaging.SettingsRepository, gateway messaging.Gateway, log *zap.Logger) *EventDispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventDispatcher{
		settings: settings,
		gateway:  gateway,
		logger:   log.Named("notification_dispatcher"),
	}
}

// WithInvoiceAttachments enables the PDF attachment on invoice_issued
func (d *EventDispatcher) WithInvoiceAttachments(invoices InvoiceReader, jobs invoice.JobRepository, documents InvoiceDocuments) *EventDispatcher {
	d.invoices = invoices
	d.jobs = jobs
	d.documents = documents
	return d
}

type messageFunc func(notification.Payload, messageContext) (string, error)

// notifierFor returns the template of an event type. The switch has one case
// per known event type, unknown tags fall through to nil.
func notifierFor(t notification.EventType) messageFunc {
	switch t {
	case notification.EventVehicleInwardCreated:
		return vehicleInwardMessage
	case notification.EventStatusUpdated:
		return statusUpdatedMessage
	case notification.EventVehicleReady:
		return vehicleReadyMessage
	case notification.EventInvoiceIssued:
		return invoiceIssuedMessage
	case notification.EventPaymentReceived:
		return paymentReceivedMessage
	case notification.EventInvoiceOverdue:
		return invoiceOverdueMessage
	case notification.EventInvoiceReminder:
		return invoiceReminderMessage
	case notification.EventInvoiceCancelled:
		return invoiceCancelledMessage
	}
	return nil
}

// Dispatch implements Dispatcher. An unknown event type or unreadable
// messaging settings are reported as a failed delivery. Missing settings and
// malformed payloads are returned as errors.
func (d *EventDispatcher) Dispatch(ctx context.Context, entry *notification.QueueEntry) (messaging.SendResult, error) {
	render := notifierFor(entry.EventType)
	if render == nil {
		return messaging.Failed(0, "unknown event type %q", entry.EventType), nil
	}

	settings, err := d.loadSettings(ctx, entry.TenantID)
	var domainErr *shared.DomainError
	switch {
	case errors.As(err, &domainErr):
		return messaging.SendResult{}, err
	case err != nil:
		// storage hiccups spend the retry budget
		logger.L(ctx, d.logger).Warn("Messaging settings unavailable",
			zap.String("entry_id", entry.ID.String()), zap.Error(err))
		return messaging.Failed(0, "%v", err), nil
	}

	to := entry.Payload.String(notification.KeyCustomerPhone)
	if messaging.NormalizePhone(to) == "" {
		return messaging.SendResult{}, shared.NewValidationError("payload has no customer phone number")
	}

	mc := messageContext{shopName: entry.Payload.String(notification.KeyShopName)}
	if mc.shopName == "" {
		mc.shopName = settings.ShopName
	}
	if mc.shopName == "" {
		mc.shopName = defaultShopName
	}

	text, err := render(entry.Payload, mc)
	if err != nil {
		return messaging.SendResult{}, fmt.Errorf("failed to format %s message: %w", entry.EventType, err)
	}

	req := messaging.SendRequest{To: to, Message: text}
	if entry.EventType == notification.EventInvoiceIssued {
		req.Attachment = d.invoiceAttachment(ctx, entry, settings.ShopName)
	}

	return d.gateway.Send(ctx, settings.Provider, settings.Config, req), nil
}

func (d *EventDispatcher) loadSettings(ctx context.Context, tenantID uuid.UUID) (*messaging.Settings, error) {
	settings, err := d.settings.FindByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewProviderConfigurationError("messaging is not configured for this tenant")
		}
		return nil, fmt.Errorf("failed to load messaging settings: %w", err)
	}
	if !settings.Enabled {
		return nil, shared.NewProviderConfigurationError("messaging is disabled for this tenant")
	}
	if err := settings.Config.Validate(settings.Provider); err != nil {
		return nil, err
	}
	return settings, nil
}

// invoiceAttachment renders the invoice PDF. Any failure leaves the message
// without an attachment.
func (d *EventDispatcher) invoiceAttachment(ctx context.Context, entry *notification.QueueEntry, shopName string) *messaging.Attachment {
	if d.documents == nil || d.invoices == nil {
		return nil
	}
	log := logger.L(ctx, d.logger).With(zap.String("entry_id", entry.ID.String()))

	invoiceID, err := entry.Payload.UUID(notification.KeyInvoiceID)
	if err != nil {
		log.Warn("Invoice attachment skipped", zap.Error(err))
		return nil
	}
	inv, err := d.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		log.Warn("Invoice attachment skipped", zap.String("invoice_id", invoiceID.String()), zap.Error(err))
		return nil
	}
	if inv.TenantID != entry.TenantID {
		log.Warn("Invoice attachment skipped: invoice belongs to another tenant",
			zap.String("invoice_id", invoiceID.String()))
		return nil
	}

	var job *invoice.Job
	if d.jobs != nil {
		if job, err = d.jobs.FindByID(ctx, inv.JobID); err != nil {
			log.Debug("Rendering invoice without job details", zap.Error(err))
			job = nil
		}
	}

	doc, err := d.documents.InvoicePDF(ctx, inv, job, shopName)
	if err != nil {
		log.Warn("Failed to render invoice PDF", zap.String("invoice_id", invoiceID.String()), zap.Error(err))
		return nil
	}
	return &messaging.Attachment{Data: doc.Data, MimeType: doc.MimeType, Filename: doc.Filename}
}

var _ Dispatcher = (*EventDispatcher)(nil)
