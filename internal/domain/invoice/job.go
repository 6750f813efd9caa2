package invoice

import "github.com/google/uuid"

// Job is the upstream work order (vehicle inward) an invoice bills.
// It is owned elsewhere and only read here.
type Job struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	CustomerName  string
	CustomerPhone string
	VehicleNumber string
	VehicleModel  string
	Status        string
}
