package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/shared"
)

// Repository persists invoices with their line items and payments
type Repository interface {
	// Create inserts the invoice header only
	Create(ctx context.Context, inv *Invoice) error
	// CreateLineItems inserts the line items of an existing header
	CreateLineItems(ctx context.Context, items []LineItem) error
	// Delete removes a header. It exists for compensating a failed create.
	Delete(ctx context.Context, id uuid.UUID) error
	// FindByID loads an invoice with its line items and payments
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindForTenant lists a tenant's invoices
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]Invoice, int64, error)
	// Save writes header changes. It fails with a concurrency conflict when
	// the stored version is not inv.Version-1.
	Save(ctx context.Context, inv *Invoice) error
	// SavePayment inserts the payment and saves the header in one transaction
	SavePayment(ctx context.Context, inv *Invoice, payment *Payment) error
	// FindPastDue returns issued and partial invoices due before the cutoff
	FindPastDue(ctx context.Context, before time.Time) ([]Invoice, error)
}

// ListFilter narrows FindForTenant
type ListFilter struct {
	shared.Filter
	Status Status
	JobID  *uuid.UUID
}

// JobRepository reads jobs
type JobRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Job, error)
}

// NumberGenerator hands out sequential invoice numbers per tenant
type NumberGenerator interface {
	Next(ctx context.Context, tenantID uuid.UUID, at time.Time) (string, error)
}
