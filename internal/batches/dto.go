package batches

import (
	"time"

	"github.com/google/uuid"
)

// CreateBatchInput carries the fields for opening a pay run.
type CreateBatchInput struct {
	CompanyID uuid.UUID
	Title     string
	PayDate   time.Time
	Note      *string
}
