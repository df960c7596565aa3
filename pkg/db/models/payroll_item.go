package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/payrollz/payrollz-backend/pkg/enums"
)

// PayrollItem is one payment owed to one employee within a batch. TxHash is
// nullable on purpose: besides a real transaction hash it can temporarily hold
// a claim sentinel while a transfer is in flight, which is what makes the
// pay operation safe against double submission.
type PayrollItem struct {
	ID         uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BatchID    uuid.UUID               `gorm:"column:batch_id;type:uuid;not null;index"`
	EmployeeID uuid.UUID               `gorm:"column:employee_id;type:uuid;not null;index"`
	AmountUSDC string                  `gorm:"column:amount_usdc;type:numeric(18,6);not null"`
	Status     enums.PayrollItemStatus `gorm:"column:status;type:text;not null;default:'created';index"`
	TxHash     *string                 `gorm:"column:tx_hash;type:text"`
	FailReason *string                 `gorm:"column:fail_reason;type:text"`
	PaidAt     *time.Time              `gorm:"column:paid_at"`
	Employee   *Employee               `gorm:"foreignKey:EmployeeID"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
