package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/invoice"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/motorshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements invoice.Repository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Create inserts the invoice header only
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// CreateLineItems inserts line items in one statement
func (r *GormInvoiceRepository) CreateLineItems(ctx context.Context, items []invoice.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]models.InvoiceLineItemModel, len(items))
	for i, item := range items {
		rows[i] = models.InvoiceLineItemModelFromDomain(item)
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to create invoice line items: %w", err)
	}
	return nil
}

// Delete removes a header and anything already written under it
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceLineItemModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete invoice line items: %w", err)
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoicePaymentModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete invoice payments: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.InvoiceModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}
		return nil
	})
}

// FindByID loads an invoice with its line items and payments
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date ASC, created_at ASC")
		}).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find invoice: %w", err)
	}
	return model.ToDomain(), nil
}

// FindForTenant lists a tenant's invoice headers, newest first by default
func (r *GormInvoiceRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter invoice.ListFilter) ([]invoice.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("tenant_id = ?", tenantID)
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.JobID != nil {
		query = query.Where("job_id = ?", *filter.JobID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = shared.DefaultFilter().PageSize
	}

	var rows []models.InvoiceModel
	err := query.
		Order(invoiceSortColumns.order(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}

	invoices := make([]invoice.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, total, nil
}

// Save writes header changes guarded by the version column
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	return saveInvoiceHeader(r.db.WithContext(ctx), inv)
}

// SavePayment inserts the payment and saves the header atomically
func (r *GormInvoiceRepository) SavePayment(ctx context.Context, inv *invoice.Invoice, payment *invoice.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.InvoicePaymentModelFromDomain(payment)).Error; err != nil {
			return fmt.Errorf("failed to create invoice payment: %w", err)
		}
		return saveInvoiceHeader(tx, inv)
	})
}

// FindPastDue returns issued and partial invoices due before the cutoff
func (r *GormInvoiceRepository) FindPastDue(ctx context.Context, before time.Time) ([]invoice.Invoice, error) {
	var rows []models.InvoiceModel
	err := r.db.WithContext(ctx).
		Where("status IN ? AND due_date < ?",
			[]string{string(invoice.StatusIssued), string(invoice.StatusPartial)}, before).
		Order("due_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find past due invoices: %w", err)
	}

	invoices := make([]invoice.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, nil
}

// saveInvoiceHeader updates every mutable header column where the stored
// version is the one the aggregate was loaded with.
func saveInvoiceHeader(db *gorm.DB, inv *invoice.Invoice) error {
	m := models.InvoiceModelFromDomain(inv)
	result := db.Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version-1).
		Updates(map[string]any{
			"invoice_number":   m.InvoiceNumber,
			"invoice_date":     m.InvoiceDate,
			"due_date":         m.DueDate,
			"status":           m.Status,
			"subtotal":         m.Subtotal,
			"discount_amount":  m.DiscountAmount,
			"discount_reason":  m.DiscountReason,
			"tax_amount":       m.TaxAmount,
			"tax_inclusive":    m.TaxInclusive,
			"total_amount":     m.TotalAmount,
			"paid_amount":      m.PaidAmount,
			"balance_amount":   m.BalanceAmount,
			"notes":            m.Notes,
			"issued_at":        m.IssuedAt,
			"cancelled_at":     m.CancelledAt,
			"cancelled_reason": m.CancelledReason,
			"version":          m.Version,
			"updated_at":       m.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save invoice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

var _ invoice.Repository = (*GormInvoiceRepository)(nil)
