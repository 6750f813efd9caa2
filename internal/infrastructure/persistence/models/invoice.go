package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/invoice"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model of an invoice header
type InvoiceModel struct {
	TenantAggregateModel
	JobID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceNumber   *string         `gorm:"type:varchar(50);index"`
	InvoiceDate     time.Time       `gorm:"not null"`
	DueDate         time.Time       `gorm:"not null;index"`
	Status          string          `gorm:"type:varchar(20);not null;default:draft;index"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountReason  string          `gorm:"type:varchar(255)"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxInclusive    bool            `gorm:"not null;default:false"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BalanceAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Notes           string          `gorm:"type:text"`
	IssuedAt        *time.Time
	CancelledAt     *time.Time
	CancelledReason string                 `gorm:"type:text"`
	LineItems       []InvoiceLineItemModel `gorm:"foreignKey:InvoiceID;references:ID"`
	Payments        []InvoicePaymentModel  `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the model, including loaded associations, to a domain Invoice
func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	inv := &invoice.Invoice{
		TenantAggregate: m.TenantAggregateModel.aggregate(),
		JobID:           m.JobID,
		InvoiceDate:     m.InvoiceDate,
		DueDate:         m.DueDate,
		Status:          invoice.Status(m.Status),
		Subtotal:        m.Subtotal,
		DiscountAmount:  m.DiscountAmount,
		DiscountReason:  m.DiscountReason,
		TaxAmount:       m.TaxAmount,
		TaxInclusive:    m.TaxInclusive,
		TotalAmount:     m.TotalAmount,
		PaidAmount:      m.PaidAmount,
		BalanceAmount:   m.BalanceAmount,
		Notes:           m.Notes,
		IssuedAt:        m.IssuedAt,
		CancelledAt:     m.CancelledAt,
		CancelledReason: m.CancelledReason,
	}
	if m.InvoiceNumber != nil {
		inv.InvoiceNumber = *m.InvoiceNumber
	}
	inv.LineItems = make([]invoice.LineItem, 0, len(m.LineItems))
	for i := range m.LineItems {
		inv.LineItems = append(inv.LineItems, m.LineItems[i].ToDomain())
	}
	inv.Payments = make([]invoice.Payment, 0, len(m.Payments))
	for i := range m.Payments {
		inv.Payments = append(inv.Payments, m.Payments[i].ToDomain())
	}
	return inv
}

// InvoiceModelFromDomain creates a header model. Associations are not copied;
// line items and payments are written through their own models.
func InvoiceModelFromDomain(inv *invoice.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		TenantAggregateModel: aggregateColumns(inv.TenantAggregate),
		JobID:                inv.JobID,
		InvoiceDate:          inv.InvoiceDate,
		DueDate:              inv.DueDate,
		Status:               string(inv.Status),
		Subtotal:             inv.Subtotal,
		DiscountAmount:       inv.DiscountAmount,
		DiscountReason:       inv.DiscountReason,
		TaxAmount:            inv.TaxAmount,
		TaxInclusive:         inv.TaxInclusive,
		TotalAmount:          inv.TotalAmount,
		PaidAmount:           inv.PaidAmount,
		BalanceAmount:        inv.BalanceAmount,
		Notes:                inv.Notes,
		IssuedAt:             inv.IssuedAt,
		CancelledAt:          inv.CancelledAt,
		CancelledReason:      inv.CancelledReason,
	}
	if inv.InvoiceNumber != "" {
		number := inv.InvoiceNumber
		m.InvoiceNumber = &number
	}
	return m
}

// InvoiceLineItemModel is the persistence model of a line item
type InvoiceLineItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(255);not null"`
	Brand       string          `gorm:"type:varchar(100)"`
	Department  string          `gorm:"type:varchar(100)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SortOrder   int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceLineItemModel) TableName() string {
	return "invoice_line_items"
}

// ToDomain converts the model to a domain LineItem
func (m *InvoiceLineItemModel) ToDomain() invoice.LineItem {
	return invoice.LineItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		ProductName: m.ProductName,
		Brand:       m.Brand,
		Department:  m.Department,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		LineTotal:   m.LineTotal,
		SortOrder:   m.SortOrder,
	}
}

// InvoiceLineItemModelFromDomain creates a model from a domain LineItem
func InvoiceLineItemModelFromDomain(item invoice.LineItem) InvoiceLineItemModel {
	return InvoiceLineItemModel{
		ID:          item.ID,
		InvoiceID:   item.InvoiceID,
		ProductName: item.ProductName,
		Brand:       item.Brand,
		Department:  item.Department,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		LineTotal:   item.LineTotal,
		SortOrder:   item.SortOrder,
	}
}

// InvoicePaymentModel is the persistence model of a payment
type InvoicePaymentModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentMode     string          `gorm:"type:varchar(20);not null"`
	PaymentDate     time.Time       `gorm:"not null"`
	ReferenceNumber string          `gorm:"type:varchar(100)"`
	PaidBy          string          `gorm:"type:varchar(255)"`
	Notes           string          `gorm:"type:text"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoicePaymentModel) TableName() string {
	return "invoice_payments"
}

// ToDomain converts the model to a domain Payment
func (m *InvoicePaymentModel) ToDomain() invoice.Payment {
	return invoice.Payment{
		ID:              m.ID,
		InvoiceID:       m.InvoiceID,
		Amount:          m.Amount,
		PaymentMode:     invoice.PaymentMode(m.PaymentMode),
		PaymentDate:     m.PaymentDate,
		ReferenceNumber: m.ReferenceNumber,
		PaidBy:          m.PaidBy,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
	}
}

// InvoicePaymentModelFromDomain creates a model from a domain Payment
func InvoicePaymentModelFromDomain(p *invoice.Payment) *InvoicePaymentModel {
	return &InvoicePaymentModel{
		ID:              p.ID,
		InvoiceID:       p.InvoiceID,
		Amount:          p.Amount,
		PaymentMode:     string(p.PaymentMode),
		PaymentDate:     p.PaymentDate,
		ReferenceNumber: p.ReferenceNumber,
		PaidBy:          p.PaidBy,
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
	}
}
