package invoice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	notificationapp "github.com/motorshop/backend/internal/application/notification"
	"github.com/motorshop/backend/internal/domain/invoice"
	"github.com/motorshop/backend/internal/domain/notification"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// memoryInvoices stores detached copies and enforces the version check
type memoryInvoices struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]invoice.Invoice
	payments int
}

func newMemoryInvoices() *memoryInvoices {
	return &memoryInvoices{invoices: make(map[uuid.UUID]invoice.Invoice)}
}

func detach(inv *invoice.Invoice) invoice.Invoice {
	c := *inv
	c.PullEvents()
	c.LineItems = append([]invoice.LineItem(nil), inv.LineItems...)
	c.Payments = append([]invoice.Payment(nil), inv.Payments...)
	return c
}

func (r *memoryInvoices) Create(_ context.Context, inv *invoice.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := detach(inv)
	c.LineItems = nil
	r.invoices[inv.ID] = c
	return nil
}

func (r *memoryInvoices) CreateLineItems(_ context.Context, items []invoice.LineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		inv, ok := r.invoices[item.InvoiceID]
		if !ok {
			return errors.New("invoice header missing")
		}
		inv.LineItems = append(inv.LineItems, item)
		r.invoices[item.InvoiceID] = inv
	}
	return nil
}

func (r *memoryInvoices) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.invoices, id)
	return nil
}

func (r *memoryInvoices) FindByID(_ context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c := detach(&inv)
	return &c, nil
}

func (r *memoryInvoices) FindForTenant(_ context.Context, tenantID uuid.UUID, filter invoice.ListFilter) ([]invoice.Invoice, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []invoice.Invoice
	for _, inv := range r.invoices {
		if inv.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		out = append(out, detach(&inv))
	}
	return out, int64(len(out)), nil
}

func (r *memoryInvoices) Save(_ context.Context, inv *invoice.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(inv)
}

func (r *memoryInvoices) save(inv *invoice.Invoice) error {
	stored, ok := r.invoices[inv.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != inv.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.invoices[inv.ID] = detach(inv)
	return nil
}

func (r *memoryInvoices) SavePayment(_ context.Context, inv *invoice.Invoice, _ *invoice.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.save(inv); err != nil {
		return err
	}
	r.payments++
	return nil
}

func (r *memoryInvoices) FindPastDue(_ context.Context, before time.Time) ([]invoice.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []invoice.Invoice
	for _, inv := range r.invoices {
		if (inv.Status == invoice.StatusIssued || inv.Status == invoice.StatusPartial) && inv.DueDate.Before(before) {
			out = append(out, detach(&inv))
		}
	}
	return out, nil
}

func (r *memoryInvoices) stored(id uuid.UUID) invoice.Invoice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invoices[id]
}

type memoryJobs map[uuid.UUID]*invoice.Job

func (m memoryJobs) FindByID(_ context.Context, id uuid.UUID) (*invoice.Job, error) {
	job, ok := m[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return job, nil
}

// sequentialNumbers hands out INV-2026-00001, INV-2026-00002, ...
type sequentialNumbers struct {
	mu    sync.Mutex
	calls int
}

func (g *sequentialNumbers) Next(_ context.Context, _ uuid.UUID, at time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return fmt.Sprintf("INV-%d-%05d", at.Year(), g.calls), nil
}

// failingNumbers never hands out a number
type failingNumbers struct{ err error }

func (g failingNumbers) Next(context.Context, uuid.UUID, time.Time) (string, error) {
	return "", g.err
}

type enqueued struct {
	tenantID  uuid.UUID
	eventType notification.EventType
	payload   notification.Payload
}

// recordingEnqueuer keeps every enqueued notification
type recordingEnqueuer struct {
	mu      sync.Mutex
	entries []enqueued
	err     error
}

func (e *recordingEnqueuer) Enqueue(_ context.Context, tenantID uuid.UUID, eventType notification.EventType, payload notification.Payload) (*notificationapp.EntryDTO, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	e.entries = append(e.entries, enqueued{tenantID: tenantID, eventType: eventType, payload: payload})
	return &notificationapp.EntryDTO{ID: uuid.New(), TenantID: tenantID, EventType: eventType.String(), Status: "pending"}, nil
}

func (e *recordingEnqueuer) types() []notification.EventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]notification.EventType, 0, len(e.entries))
	for _, en := range e.entries {
		out = append(out, en.eventType)
	}
	return out
}

// MockInvoiceRepository is a mock implementation of invoice.Repository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) CreateLineItems(ctx context.Context, items []invoice.LineItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter invoice.ListFilter) ([]invoice.Invoice, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]invoice.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SavePayment(ctx context.Context, inv *invoice.Invoice, payment *invoice.Payment) error {
	args := m.Called(ctx, inv, payment)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindPastDue(ctx context.Context, before time.Time) ([]invoice.Invoice, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]invoice.Invoice), args.Error(1)
}
