package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/payrollz/payrollz-backend/pkg/enums"
)

// PayrollBatch groups the payroll items of one pay run for a company. Status
// is administrative bookkeeping; the money state machine lives on the items.
type PayrollBatch struct {
	ID        uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID uuid.UUID                `gorm:"column:company_id;type:uuid;not null;index"`
	Title     string                   `gorm:"column:title;type:text;not null"`
	PayDate   time.Time                `gorm:"column:pay_date;not null"`
	Note      *string                  `gorm:"column:note;type:text"`
	Status    enums.PayrollBatchStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	Items     []PayrollItem            `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
