package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the identity and timestamps every persisted record carries
type Entity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEntity assigns a fresh ID created at now
func NewEntity(now time.Time) Entity {
	return Entity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Event is a fact recorded by an aggregate. Pending events are published
// after the aggregate has been saved.
type Event interface {
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	TenantID() uuid.UUID
}

// EventHeader carries the fields every Event shares. Concrete events
// embed it.
type EventHeader struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	At        time.Time `json:"occurred_at"`
	Aggregate uuid.UUID `json:"aggregate_id"`
	Tenant    uuid.UUID `json:"tenant_id"`
}

func NewEventHeader(eventType string, aggregate, tenant uuid.UUID, at time.Time) EventHeader {
	return EventHeader{ID: uuid.New(), Type: eventType, At: at, Aggregate: aggregate, Tenant: tenant}
}

func (h EventHeader) EventType() string      { return h.Type }
func (h EventHeader) OccurredAt() time.Time  { return h.At }
func (h EventHeader) AggregateID() uuid.UUID { return h.Aggregate }
func (h EventHeader) TenantID() uuid.UUID    { return h.Tenant }

// TenantAggregate is the root of a tenant-owned consistency boundary.
// Version starts at 1 and increases with every recorded event; stores use
// it for optimistic locking.
type TenantAggregate struct {
	Entity
	TenantID uuid.UUID
	Version  int
	pending  []Event
}

func NewTenantAggregate(tenantID uuid.UUID, now time.Time) TenantAggregate {
	return TenantAggregate{Entity: NewEntity(now), TenantID: tenantID, Version: 1}
}

// Record bumps the version and queues e for publication
func (a *TenantAggregate) Record(e Event) {
	a.Version++
	a.pending = append(a.pending, e)
}

// PendingEvents returns the queued events without removing them
func (a *TenantAggregate) PendingEvents() []Event {
	return a.pending
}

// PullEvents returns the queued events and empties the queue
func (a *TenantAggregate) PullEvents() []Event {
	events := a.pending
	a.pending = nil
	return events
}
