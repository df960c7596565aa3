package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/payrollz/payrollz-backend/pkg/enums"
)

// RegisterInput creates an admin account and its company in one step.
type RegisterInput struct {
	Email       string
	Password    string
	CompanyName string
}

// LoginInput carries the credential pair.
type LoginInput struct {
	Email    string
	Password string
}

// ClaimInviteInput lets an invited employee open their account. The wallet is
// optional at claim time; payments reject items until one is set.
type ClaimInviteInput struct {
	InviteToken   string
	Password      string
	WalletAddress *string
}

// UserView is the safe user projection returned to clients.
type UserView struct {
	ID         uuid.UUID      `json:"id"`
	Email      string         `json:"email"`
	Role       enums.UserRole `json:"role"`
	CompanyID  *uuid.UUID     `json:"company_id,omitempty"`
	EmployeeID *uuid.UUID     `json:"employee_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// AuthResult bundles the minted token with its subject.
type AuthResult struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}
