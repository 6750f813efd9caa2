package notification

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payload carries the event-specific references and the denormalized
// snapshot fields the message templates need.
type Payload map[string]any

// Common payload keys
const (
	KeyCustomerName  = "customer_name"
	KeyCustomerPhone = "customer_phone"
	KeyVehicleNumber = "vehicle_number"
	KeyVehicleModel  = "vehicle_model"
	KeyJobID         = "job_id"
	KeyJobStatus     = "job_status"
	KeyInvoiceID     = "invoice_id"
	KeyInvoiceNumber = "invoice_number"
	KeyTotalAmount   = "total_amount"
	KeyBalanceAmount = "balance_amount"
	KeyPaidAmount    = "paid_amount"
	KeyAmount        = "amount"
	KeyPaymentMode   = "payment_mode"
	KeyDueDate       = "due_date"
	KeyReason        = "reason"
	KeyShopName      = "shop_name"
)

// String returns the value at key formatted as a string, or "" if absent
func (p Payload) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Decimal parses the value at key as a decimal amount
func (p Payload) Decimal(key string) (decimal.Decimal, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return decimal.Zero, fmt.Errorf("payload field %q is missing", key)
	}
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case string:
		d, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Zero, fmt.Errorf("payload field %q: %w", key, err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("payload field %q has unsupported type %T", key, v)
	}
}

// UUID parses the value at key as a UUID
func (p Payload) UUID(key string) (uuid.UUID, error) {
	s := p.String(key)
	if s == "" {
		return uuid.Nil, fmt.Errorf("payload field %q is missing", key)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("payload field %q: %w", key, err)
	}
	return id, nil
}

// Require returns an error naming the first missing key
func (p Payload) Require(keys ...string) error {
	for _, k := range keys {
		if p.String(k) == "" {
			return fmt.Errorf("payload field %q is missing", k)
		}
	}
	return nil
}
