package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMode is how a payment was made
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "cash"
	PaymentModeUPI          PaymentMode = "upi"
	PaymentModeCard         PaymentMode = "card"
	PaymentModeBankTransfer PaymentMode = "bank_transfer"
	PaymentModeCheque       PaymentMode = "cheque"
)

// IsValid checks if the payment mode is known
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeCash, PaymentModeUPI, PaymentModeCard, PaymentModeBankTransfer, PaymentModeCheque:
		return true
	}
	return false
}

// Payment is an amount applied to an invoice
type Payment struct {
	ID              uuid.UUID
	InvoiceID       uuid.UUID
	Amount          decimal.Decimal
	PaymentMode     PaymentMode
	PaymentDate     time.Time
	ReferenceNumber string
	PaidBy          string
	Notes           string
	CreatedAt       time.Time
}

// PaymentInput carries the caller-supplied fields of a payment
type PaymentInput struct {
	Amount          decimal.Decimal
	PaymentMode     PaymentMode
	PaymentDate     time.Time
	ReferenceNumber string
	PaidBy          string
	Notes           string
}

func newPayment(invoiceID uuid.UUID, in PaymentInput, now time.Time) (Payment, error) {
	if !in.Amount.IsPositive() {
		return Payment{}, shared.NewValidationError("Payment amount must be positive")
	}
	mode := in.PaymentMode
	if mode == "" {
		mode = PaymentModeCash
	}
	if !mode.IsValid() {
		return Payment{}, shared.NewValidationError("Unknown payment mode: " + string(mode))
	}
	date := in.PaymentDate
	if date.IsZero() {
		date = now
	}
	return Payment{
		ID:              uuid.New(),
		InvoiceID:       invoiceID,
		Amount:          in.Amount,
		PaymentMode:     mode,
		PaymentDate:     date,
		ReferenceNumber: in.ReferenceNumber,
		PaidBy:          in.PaidBy,
		Notes:           in.Notes,
		CreatedAt:       now,
	}, nil
}
