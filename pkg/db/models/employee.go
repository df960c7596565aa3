package models

import (
	"time"

	"github.com/google/uuid"
)

// Employee is a payroll recipient inside a company. An employee row exists
// before any user account does: admins create the row with an invite token,
// and the employee later claims it, which links UserID and lets them set a
// wallet address.
type Employee struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID     uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index"`
	Name          string     `gorm:"column:name;type:text;not null"`
	Email         string     `gorm:"column:email;type:text;not null"`
	Position      *string    `gorm:"column:position;type:text"`
	SalaryUSDC    string     `gorm:"column:salary_usdc;type:numeric(18,6);not null;default:0"`
	WalletAddress *string    `gorm:"column:wallet_address;type:text"`
	InviteToken   *string    `gorm:"column:invite_token;type:text;uniqueIndex"`
	UserID        *uuid.UUID `gorm:"column:user_id;type:uuid;uniqueIndex"`
	ClaimedAt     *time.Time `gorm:"column:claimed_at"`
	IsActive      bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
