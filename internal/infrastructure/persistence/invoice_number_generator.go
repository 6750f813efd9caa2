package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/invoice"
	"github.com/motorshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultInvoiceNumberPrefix is used when no prefix is configured
const DefaultInvoiceNumberPrefix = "INV"

// GormInvoiceNumberGenerator issues PREFIX-YYYY-NNNNN numbers from a
// per-tenant, per-year counter row.
type GormInvoiceNumberGenerator struct {
	db     *gorm.DB
	prefix string
}

// NewGormInvoiceNumberGenerator creates a generator with the given prefix
func NewGormInvoiceNumberGenerator(db *gorm.DB, prefix string) *GormInvoiceNumberGenerator {
	if prefix == "" {
		prefix = DefaultInvoiceNumberPrefix
	}
	return &GormInvoiceNumberGenerator{db: db, prefix: prefix}
}

// Next increments the tenant's counter for the year of at and formats it.
// The counter row is locked for the duration of the increment.
func (g *GormInvoiceNumberGenerator) Next(ctx context.Context, tenantID uuid.UUID, at time.Time) (string, error) {
	year := at.Year()
	var value int64

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq models.InvoiceSequenceModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND year = ?", tenantID, year).
			First(&seq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seq = models.InvoiceSequenceModel{TenantID: tenantID, Year: year, LastValue: 1}
			value = seq.LastValue
			return tx.Create(&seq).Error
		}
		if err != nil {
			return err
		}

		value = seq.LastValue + 1
		return tx.Model(&models.InvoiceSequenceModel{}).
			Where("tenant_id = ? AND year = ?", tenantID, year).
			Update("last_value", value).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	return FormatInvoiceNumber(g.prefix, year, value), nil
}

// FormatInvoiceNumber renders a sequence value as an invoice number
func FormatInvoiceNumber(prefix string, year int, value int64) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, year, value)
}

var _ invoice.NumberGenerator = (*GormInvoiceNumberGenerator)(nil)
