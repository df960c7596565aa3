package companies

import "github.com/google/uuid"

// CreateCompanyInput carries the fields needed to register a company.
type CreateCompanyInput struct {
	Name        string
	OwnerUserID uuid.UUID
}
