package invoice

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultPaymentTermDays is used to derive due_date when none is given
const DefaultPaymentTermDays = 15

// Invoice is the billing aggregate of a completed job. It owns its line items
// and payments. BalanceAmount always equals TotalAmount - PaidAmount.
type Invoice struct {
	shared.TenantAggregate
	JobID           uuid.UUID
	InvoiceNumber   string
	InvoiceDate     time.Time
	DueDate         time.Time
	Status          Status
	Subtotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	DiscountReason  string
	TaxAmount       decimal.Decimal
	TaxInclusive    bool
	TotalAmount     decimal.Decimal
	PaidAmount      decimal.Decimal
	BalanceAmount   decimal.Decimal
	Notes           string
	IssuedAt        *time.Time
	CancelledAt     *time.Time
	CancelledReason string
	LineItems       []LineItem
	Payments        []Payment
}

// NewInvoiceParams holds the fields needed to draft an invoice
type NewInvoiceParams struct {
	TenantID       uuid.UUID
	JobID          uuid.UUID
	InvoiceDate    time.Time
	DueDate        time.Time
	DiscountAmount decimal.Decimal
	DiscountReason string
	TaxAmount      decimal.Decimal
	// TaxInclusive marks line prices as already containing TaxAmount
	TaxInclusive   bool
	Notes          string
	LineItems      []LineItemInput
}

// NewInvoice creates a draft invoice and computes its totals:
// subtotal = sum(line_total), total = subtotal - discount + tax. With
// TaxInclusive the tax is part of the line prices and is not added again.
func NewInvoice(p NewInvoiceParams) (*Invoice, error) {
	if p.TenantID == uuid.Nil {
		return nil, shared.NewValidationError("Tenant is required")
	}
	if p.JobID == uuid.Nil {
		return nil, shared.NewValidationError("Job reference is required")
	}
	if len(p.LineItems) == 0 {
		return nil, shared.NewValidationError("At least one line item is required")
	}
	if p.DiscountAmount.IsNegative() {
		return nil, shared.NewValidationError("Discount cannot be negative")
	}
	if p.TaxAmount.IsNegative() {
		return nil, shared.NewValidationError("Tax cannot be negative")
	}

	inv := &Invoice{
		TenantAggregate: shared.NewTenantAggregate(p.TenantID, time.Now()),
		JobID:           p.JobID,
		Status:          StatusDraft,
		DiscountAmount:  p.DiscountAmount,
		DiscountReason:  p.DiscountReason,
		TaxAmount:       p.TaxAmount,
		TaxInclusive:    p.TaxInclusive,
		PaidAmount:      decimal.Zero,
		Notes:           p.Notes,
	}

	inv.InvoiceDate = p.InvoiceDate
	if inv.InvoiceDate.IsZero() {
		inv.InvoiceDate = inv.CreatedAt
	}
	inv.DueDate = p.DueDate
	if inv.DueDate.IsZero() {
		inv.DueDate = inv.InvoiceDate.AddDate(0, 0, DefaultPaymentTermDays)
	}
	if inv.DueDate.Before(truncateDay(inv.InvoiceDate)) {
		return nil, shared.NewValidationError("Due date cannot be before the invoice date")
	}

	inv.LineItems = make([]LineItem, 0, len(p.LineItems))
	for i, in := range p.LineItems {
		item, err := NewLineItem(inv.ID, in, i)
		if err != nil {
			return nil, err
		}
		inv.LineItems = append(inv.LineItems, item)
	}

	inv.recalculateTotals()
	if inv.TotalAmount.IsNegative() {
		return nil, shared.NewValidationError("Discount cannot exceed subtotal plus tax")
	}
	return inv, nil
}

func (inv *Invoice) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range inv.LineItems {
		subtotal = subtotal.Add(item.LineTotal)
	}
	inv.Subtotal = subtotal
	inv.TotalAmount = subtotal.Sub(inv.DiscountAmount)
	if !inv.TaxInclusive {
		inv.TotalAmount = inv.TotalAmount.Add(inv.TaxAmount)
	}
	inv.recalculateBalance()
}

func (inv *Invoice) recalculateBalance() {
	paid := decimal.Zero
	for _, p := range inv.Payments {
		paid = paid.Add(p.Amount)
	}
	inv.PaidAmount = paid
	inv.BalanceAmount = inv.TotalAmount.Sub(paid)
}

// Issue moves a draft to issued. number is used only when the invoice has no
// number yet.
func (inv *Invoice) Issue(number string, now time.Time) error {
	if inv.Status != StatusDraft {
		return shared.NewInvalidStateError("Only draft invoices can be issued")
	}
	if inv.InvoiceNumber == "" {
		if number == "" {
			return shared.NewValidationError("Invoice number is required to issue")
		}
		inv.InvoiceNumber = number
	}
	inv.Status = StatusIssued
	inv.IssuedAt = &now
	inv.UpdatedAt = now
	inv.Record(NewInvoiceIssuedEvent(inv))
	return nil
}

// RecordPayment applies a payment and recomputes paid, balance and status.
// A paid-off invoice becomes paid; otherwise it becomes partial, except that
// an overdue invoice stays overdue until settled.
func (inv *Invoice) RecordPayment(in PaymentInput, policy OverpaymentPolicy, now time.Time) (*Payment, error) {
	if inv.Status == StatusCancelled {
		return nil, shared.NewInvalidStateError("Cannot record payment on a cancelled invoice")
	}
	if inv.Status == StatusDraft {
		return nil, shared.NewInvalidStateError("Issue the invoice before recording payments")
	}
	payment, err := newPayment(inv.ID, in, now)
	if err != nil {
		return nil, err
	}
	if policy != OverpaymentAllow && payment.Amount.GreaterThan(inv.BalanceAmount) {
		return nil, shared.NewValidationError(fmt.Sprintf(
			"Payment amount %s exceeds outstanding balance %s",
			payment.Amount.StringFixed(2), inv.BalanceAmount.StringFixed(2)))
	}

	inv.Payments = append(inv.Payments, payment)
	inv.recalculateBalance()

	switch {
	case !inv.BalanceAmount.IsPositive():
		inv.Status = StatusPaid
	case inv.Status == StatusOverdue:
		// settled only by a full payment
	default:
		inv.Status = StatusPartial
	}
	inv.UpdatedAt = now
	inv.Record(NewPaymentReceivedEvent(inv, payment))
	return &payment, nil
}

// Cancel terminates an unpaid invoice. Paid invoices cannot be cancelled.
func (inv *Invoice) Cancel(reason string, now time.Time) error {
	switch inv.Status {
	case StatusPaid:
		return shared.NewInvalidStateError("Paid invoices cannot be cancelled")
	case StatusCancelled:
		return shared.NewInvalidStateError("Invoice is already cancelled")
	}
	inv.Status = StatusCancelled
	inv.CancelledAt = &now
	inv.CancelledReason = reason
	inv.UpdatedAt = now
	inv.Record(NewInvoiceCancelledEvent(inv))
	return nil
}

// MarkOverdue flags an outstanding invoice whose due date has passed. It
// reports whether the status changed, so repeated calls are no-ops.
func (inv *Invoice) MarkOverdue(now time.Time) bool {
	if !inv.IsPastDue(now) {
		return false
	}
	inv.Status = StatusOverdue
	inv.UpdatedAt = now
	inv.Record(NewInvoiceOverdueEvent(inv))
	return true
}

// IsPastDue reports whether the invoice is issued or partial and its due
// date lies before the day of now
func (inv *Invoice) IsPastDue(now time.Time) bool {
	return inv.Status.CanBecomeOverdue() && inv.DueDate.Before(truncateDay(now))
}

// IsBalanced checks balance == total - paid
func (inv *Invoice) IsBalanced() bool {
	return inv.BalanceAmount.Equal(inv.TotalAmount.Sub(inv.PaidAmount))
}

// DaysOverdue returns the number of whole days past due_date
func (inv *Invoice) DaysOverdue(now time.Time) int {
	if !now.After(inv.DueDate) {
		return 0
	}
	return int(truncateDay(now).Sub(truncateDay(inv.DueDate)).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
