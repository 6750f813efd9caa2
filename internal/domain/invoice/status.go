package invoice

// Status is the lifecycle state of an invoice
type Status string

const (
	StatusDraft     Status = "draft"
	StatusIssued    Status = "issued"
	StatusPartial   Status = "partial"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is a known invoice status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusIssued, StatusPartial, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for paid and cancelled invoices
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// CanAcceptPayment returns true if a payment may be recorded in this status
func (s Status) CanAcceptPayment() bool {
	return s != StatusCancelled && s != StatusDraft
}

// CanCancel returns true if the invoice may be cancelled from this status
func (s Status) CanCancel() bool {
	return s != StatusPaid && s != StatusCancelled
}

// CanBecomeOverdue returns true for outstanding issued invoices
func (s Status) CanBecomeOverdue() bool {
	return s == StatusIssued || s == StatusPartial
}
