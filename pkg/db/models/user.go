package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/payrollz/payrollz-backend/pkg/enums"
)

// User represents the canonical identity entity. Admins manage a company,
// employees see their own payroll through a claimed invite.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null"`
	CompanyID    *uuid.UUID     `gorm:"column:company_id;type:uuid"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
