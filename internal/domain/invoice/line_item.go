package invoice

import (
	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineItem is one billed product or service on an invoice
type LineItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	ProductName string
	Brand       string
	Department  string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	SortOrder   int
}

// LineItemInput carries the caller-supplied fields of a line item
type LineItemInput struct {
	ProductName string
	Brand       string
	Department  string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// NewLineItem validates the input and computes line_total = quantity x unit_price
func NewLineItem(invoiceID uuid.UUID, in LineItemInput, sortOrder int) (LineItem, error) {
	if in.ProductName == "" {
		return LineItem{}, shared.NewValidationError("Line item product name is required")
	}
	if !in.Quantity.IsPositive() {
		return LineItem{}, shared.NewValidationError("Line item quantity must be positive")
	}
	if in.UnitPrice.IsNegative() {
		return LineItem{}, shared.NewValidationError("Line item unit price cannot be negative")
	}
	return LineItem{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		ProductName: in.ProductName,
		Brand:       in.Brand,
		Department:  in.Department,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		LineTotal:   in.Quantity.Mul(in.UnitPrice).Round(2),
		SortOrder:   sortOrder,
	}, nil
}
