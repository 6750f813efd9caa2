package invoice

import (
	"context"
	"time"

	"github.com/motorshop/backend/internal/domain/invoice"
	"github.com/motorshop/backend/internal/domain/notification"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/motorshop/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// publishEvents turns the pending domain events of inv into queue entries and
// clears them. job may be nil, in which case it is looked up once.
func (s *LifecycleService) publishEvents(ctx context.Context, inv *invoice.Invoice, job *invoice.Job) {
	events := inv.PullEvents()
	if s.notifier == nil || len(events) == 0 {
		return
	}
	log := logger.L(ctx, s.logger).With(zap.String("invoice_id", inv.ID.String()))

	if job == nil {
		var err error
		if job, err = s.jobs.FindByID(ctx, inv.JobID); err != nil {
			log.Warn("Notification payload has no job details", zap.Error(err))
			job = nil
		}
	}

	for _, event := range events {
		eventType, payload := notificationFor(event, inv, job)
		if eventType == "" {
			continue
		}
		if _, err := s.notifier.Enqueue(ctx, inv.TenantID, eventType, payload); err != nil {
			log.Error("Failed to enqueue invoice notification",
				zap.String("event_type", eventType.String()),
				zap.Error(err))
		}
	}
}

// notificationFor maps a domain event to its notification. Events without a
// customer-facing message return an empty type.
func notificationFor(event shared.Event, inv *invoice.Invoice, job *invoice.Job) (notification.EventType, notification.Payload) {
	payload := basePayload(inv, job)
	switch e := event.(type) {
	case *invoice.InvoiceIssuedEvent:
		payload[notification.KeyTotalAmount] = e.TotalAmount.StringFixed(2)
		payload[notification.KeyDueDate] = e.DueDate.Format(time.DateOnly)
		return notification.EventInvoiceIssued, payload
	case *invoice.PaymentReceivedEvent:
		payload[notification.KeyAmount] = e.Amount.StringFixed(2)
		payload[notification.KeyPaymentMode] = string(e.PaymentMode)
		payload[notification.KeyBalanceAmount] = e.BalanceAmount.StringFixed(2)
		return notification.EventPaymentReceived, payload
	case *invoice.InvoiceOverdueEvent:
		payload[notification.KeyBalanceAmount] = e.BalanceAmount.StringFixed(2)
		payload[notification.KeyDueDate] = e.DueDate.Format(time.DateOnly)
		return notification.EventInvoiceOverdue, payload
	case *invoice.InvoiceCancelledEvent:
		if e.Reason != "" {
			payload[notification.KeyReason] = e.Reason
		}
		return notification.EventInvoiceCancelled, payload
	}
	return "", nil
}

func basePayload(inv *invoice.Invoice, job *invoice.Job) notification.Payload {
	p := notification.Payload{
		notification.KeyInvoiceID:     inv.ID.String(),
		notification.KeyInvoiceNumber: inv.InvoiceNumber,
		notification.KeyJobID:         inv.JobID.String(),
		notification.KeyTotalAmount:   inv.TotalAmount.StringFixed(2),
		notification.KeyPaidAmount:    inv.PaidAmount.StringFixed(2),
		notification.KeyBalanceAmount: inv.BalanceAmount.StringFixed(2),
	}
	if job != nil {
		p[notification.KeyCustomerName] = job.CustomerName
		p[notification.KeyCustomerPhone] = job.CustomerPhone
		p[notification.KeyVehicleNumber] = job.VehicleNumber
		if job.VehicleModel != "" {
			p[notification.KeyVehicleModel] = job.VehicleModel
		}
	}
	return p
}
