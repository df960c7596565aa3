package employees

import "github.com/google/uuid"

// CreateEmployeeInput carries the fields for inviting a new employee.
type CreateEmployeeInput struct {
	CompanyID  uuid.UUID
	Name       string
	Email      string
	Position   *string
	SalaryUSDC string
}

// UpdateEmployeeInput captures admin-editable fields.
type UpdateEmployeeInput struct {
	Name       *string
	Position   *string
	SalaryUSDC *string
	IsActive   *bool
}
