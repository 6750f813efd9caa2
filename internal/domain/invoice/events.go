package invoice

import (
	"time"

	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeInvoiceIssued    = "invoice_issued"
	EventTypePaymentReceived  = "payment_received"
	EventTypeInvoiceOverdue   = "invoice_overdue"
	EventTypeInvoiceCancelled = "invoice_cancelled"
)

func header(eventType string, inv *Invoice) shared.EventHeader {
	return shared.NewEventHeader(eventType, inv.ID, inv.TenantID, inv.UpdatedAt)
}

// InvoiceIssuedEvent is raised when a draft is issued
type InvoiceIssuedEvent struct {
	shared.EventHeader
	JobID         string          `json:"job_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	DueDate       time.Time       `json:"due_date"`
}

func NewInvoiceIssuedEvent(inv *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		EventHeader:   header(EventTypeInvoiceIssued, inv),
		JobID:         inv.JobID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		TotalAmount:   inv.TotalAmount,
		DueDate:       inv.DueDate,
	}
}

// PaymentReceivedEvent is raised for every recorded payment
type PaymentReceivedEvent struct {
	shared.EventHeader
	JobID         string          `json:"job_id"`
	InvoiceNumber string          `json:"invoice_number"`
	PaymentID     string          `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMode   PaymentMode     `json:"payment_mode"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	Status        Status          `json:"status"`
}

func NewPaymentReceivedEvent(inv *Invoice, p Payment) *PaymentReceivedEvent {
	return &PaymentReceivedEvent{
		EventHeader:   header(EventTypePaymentReceived, inv),
		JobID:         inv.JobID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		PaymentID:     p.ID.String(),
		Amount:        p.Amount,
		PaymentMode:   p.PaymentMode,
		BalanceAmount: inv.BalanceAmount,
		Status:        inv.Status,
	}
}

// InvoiceOverdueEvent is raised when an invoice passes its due date unpaid
type InvoiceOverdueEvent struct {
	shared.EventHeader
	JobID         string          `json:"job_id"`
	InvoiceNumber string          `json:"invoice_number"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	DueDate       time.Time       `json:"due_date"`
}

func NewInvoiceOverdueEvent(inv *Invoice) *InvoiceOverdueEvent {
	return &InvoiceOverdueEvent{
		EventHeader:   header(EventTypeInvoiceOverdue, inv),
		JobID:         inv.JobID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		BalanceAmount: inv.BalanceAmount,
		DueDate:       inv.DueDate,
	}
}

// InvoiceCancelledEvent is raised on cancellation
type InvoiceCancelledEvent struct {
	shared.EventHeader
	JobID         string `json:"job_id"`
	InvoiceNumber string `json:"invoice_number"`
	Reason        string `json:"reason"`
}

func NewInvoiceCancelledEvent(inv *Invoice) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		EventHeader:   header(EventTypeInvoiceCancelled, inv),
		JobID:         inv.JobID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		Reason:        inv.CancelledReason,
	}
}
