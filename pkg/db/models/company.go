package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is the employer tenant. Every employee, batch and payment hangs off
// a company owned by an admin user.
type Company struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"column:name;type:text;not null"`
	OwnerUserID uuid.UUID  `gorm:"column:owner_user_id;type:uuid;not null"`
	Employees   []Employee `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
