package payroll

import "github.com/google/uuid"

// CreateItemInput carries the fields for adding a payment to a batch. The
// amount is fixed at creation; pay never recomputes it.
type CreateItemInput struct {
	BatchID    uuid.UUID
	EmployeeID uuid.UUID
	AmountUSDC string
}
