package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/invoice"
	"github.com/shopspring/decimal"
)

// ==================== Request DTOs ====================

// CreateInvoiceRequest drafts an invoice for a job
type CreateInvoiceRequest struct {
	JobID            uuid.UUID         `json:"job_id" binding:"required"`
	InvoiceDate      *time.Time        `json:"invoice_date"`
	DueDate          *time.Time        `json:"due_date"`
	DiscountAmount   decimal.Decimal   `json:"discount_amount"`
	DiscountReason   string            `json:"discount_reason" binding:"max=255"`
	TaxAmount        decimal.Decimal   `json:"tax_amount"`
	TaxInclusive     bool              `json:"tax_inclusive"`
	Notes            string            `json:"notes" binding:"max=2000"`
	LineItems        []LineItemRequest `json:"line_items" binding:"required,min=1,dive"`
	IssueImmediately bool              `json:"issue_immediately"`
}

// LineItemRequest is one billed product or service
type LineItemRequest struct {
	ProductName string          `json:"product_name" binding:"required,min=1,max=200"`
	Brand       string          `json:"brand" binding:"max=100"`
	Department  string          `json:"department" binding:"max=100"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// RecordPaymentRequest records a payment against an issued invoice
type RecordPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	PaymentMode     string          `json:"payment_mode" binding:"required,oneof=cash upi card bank_transfer cheque"`
	PaymentDate     *time.Time      `json:"payment_date"`
	ReferenceNumber string          `json:"reference_number" binding:"max=100"`
	PaidBy          string          `json:"paid_by" binding:"max=200"`
	Notes           string          `json:"notes" binding:"max=1000"`
}

// CancelInvoiceRequest cancels an unpaid invoice
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// InvoiceListFilter narrows List
type InvoiceListFilter struct {
	Status   string     `form:"status" binding:"omitempty,oneof=draft issued partial paid overdue cancelled"`
	JobID    *uuid.UUID `form:"job_id"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by" binding:"omitempty,oneof=created_at invoice_date due_date total_amount invoice_number"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ==================== Response DTOs ====================

// InvoiceResponse is the full view of an invoice
type InvoiceResponse struct {
	ID              uuid.UUID          `json:"id"`
	TenantID        uuid.UUID          `json:"tenant_id"`
	JobID           uuid.UUID          `json:"job_id"`
	InvoiceNumber   string             `json:"invoice_number,omitempty"`
	InvoiceDate     time.Time          `json:"invoice_date"`
	DueDate         time.Time          `json:"due_date"`
	Status          string             `json:"status"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	DiscountAmount  decimal.Decimal    `json:"discount_amount"`
	DiscountReason  string             `json:"discount_reason,omitempty"`
	TaxAmount       decimal.Decimal    `json:"tax_amount"`
	TaxInclusive    bool               `json:"tax_inclusive"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	PaidAmount      decimal.Decimal    `json:"paid_amount"`
	BalanceAmount   decimal.Decimal    `json:"balance_amount"`
	Notes           string             `json:"notes,omitempty"`
	IssuedAt        *time.Time         `json:"issued_at,omitempty"`
	CancelledAt     *time.Time         `json:"cancelled_at,omitempty"`
	CancelledReason string             `json:"cancelled_reason,omitempty"`
	LineItems       []LineItemResponse `json:"line_items"`
	Payments        []PaymentResponse  `json:"payments"`
	Version         int                `json:"version"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// InvoiceListItemResponse is the list view of an invoice
type InvoiceListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	JobID         uuid.UUID       `json:"job_id"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       time.Time       `json:"due_date"`
	Status        string          `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LineItemResponse is one line of an invoice
type LineItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductName string          `json:"product_name"`
	Brand       string          `json:"brand,omitempty"`
	Department  string          `json:"department,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// PaymentResponse is one recorded payment
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMode     string          `json:"payment_mode"`
	PaymentDate     time.Time       `json:"payment_date"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	PaidBy          string          `json:"paid_by,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PaymentResultResponse is the outcome of RecordPayment
type PaymentResultResponse struct {
	Payment PaymentResponse `json:"payment"`
	Invoice InvoiceResponse `json:"invoice"`
}

// MarkOverdueResponse reports a MarkOverdue run
type MarkOverdueResponse struct {
	Marked int `json:"marked"`
}

// ToInvoiceResponse converts a domain invoice to a response
func ToInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:              inv.ID,
		TenantID:        inv.TenantID,
		JobID:           inv.JobID,
		InvoiceNumber:   inv.InvoiceNumber,
		InvoiceDate:     inv.InvoiceDate,
		DueDate:         inv.DueDate,
		Status:          inv.Status.String(),
		Subtotal:        inv.Subtotal,
		DiscountAmount:  inv.DiscountAmount,
		DiscountReason:  inv.DiscountReason,
		TaxAmount:       inv.TaxAmount,
		TaxInclusive:    inv.TaxInclusive,
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
		BalanceAmount:   inv.BalanceAmount,
		Notes:           inv.Notes,
		IssuedAt:        inv.IssuedAt,
		CancelledAt:     inv.CancelledAt,
		CancelledReason: inv.CancelledReason,
		LineItems:       make([]LineItemResponse, 0, len(inv.LineItems)),
		Payments:        make([]PaymentResponse, 0, len(inv.Payments)),
		Version:         inv.Version,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
	for _, item := range inv.LineItems {
		resp.LineItems = append(resp.LineItems, LineItemResponse{
			ID:          item.ID,
			ProductName: item.ProductName,
			Brand:       item.Brand,
			Department:  item.Department,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	for i := range inv.Payments {
		resp.Payments = append(resp.Payments, ToPaymentResponse(&inv.Payments[i]))
	}
	return resp
}

// ToPaymentResponse converts a domain payment to a response
func ToPaymentResponse(p *invoice.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		Amount:          p.Amount,
		PaymentMode:     string(p.PaymentMode),
		PaymentDate:     p.PaymentDate,
		ReferenceNumber: p.ReferenceNumber,
		PaidBy:          p.PaidBy,
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
	}
}

// ToInvoiceListItemResponses converts invoices to list responses
func ToInvoiceListItemResponses(invoices []invoice.Invoice) []InvoiceListItemResponse {
	out := make([]InvoiceListItemResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, InvoiceListItemResponse{
			ID:            inv.ID,
			JobID:         inv.JobID,
			InvoiceNumber: inv.InvoiceNumber,
			InvoiceDate:   inv.InvoiceDate,
			DueDate:       inv.DueDate,
			Status:        inv.Status.String(),
			TotalAmount:   inv.TotalAmount,
			BalanceAmount: inv.BalanceAmount,
			CreatedAt:     inv.CreatedAt,
		})
	}
	return out
}
