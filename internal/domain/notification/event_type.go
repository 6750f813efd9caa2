package notification

import (
	"fmt"

	"github.com/motorshop/backend/internal/domain/shared"
)

// EventType is the closed set of notification events
type EventType string

const (
	EventVehicleInwardCreated EventType = "vehicle_inward_created"
	EventStatusUpdated        EventType = "status_updated"
	EventVehicleReady         EventType = "vehicle_ready"
	EventInvoiceIssued        EventType = "invoice_issued"
	EventPaymentReceived      EventType = "payment_received"
	EventInvoiceOverdue       EventType = "invoice_overdue"
	EventInvoiceReminder      EventType = "invoice_reminder"
	EventInvoiceCancelled     EventType = "invoice_cancelled"
)

var allEventTypes = []EventType{
	EventVehicleInwardCreated,
	EventStatusUpdated,
	EventVehicleReady,
	EventInvoiceIssued,
	EventPaymentReceived,
	EventInvoiceOverdue,
	EventInvoiceReminder,
	EventInvoiceCancelled,
}

// AllEventTypes returns every known event type
func AllEventTypes() []EventType {
	out := make([]EventType, len(allEventTypes))
	copy(out, allEventTypes)
	return out
}

// IsValid reports whether t is a known event type
func (t EventType) IsValid() bool {
	for _, known := range allEventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// String returns the wire value
func (t EventType) String() string {
	return string(t)
}

// ParseEventType converts a stored string into an EventType
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if !t.IsValid() {
		return "", shared.NewValidationError(fmt.Sprintf("unknown event type %q", s))
	}
	return t, nil
}
