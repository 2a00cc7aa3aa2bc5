package entities

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents user roles
type UserRole string

const (
	UserRoleConsumer UserRole = "consumer"
	UserRoleMerchant UserRole = "merchant"
	UserRoleAdmin    UserRole = "admin"
)

// User represents a user entity
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         UserRole   `json:"role"`
	MerchantID   *uuid.UUID `json:"merchant_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// RegisterInput represents input for consumer sign-up
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginInput represents input for user login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshInput carries a refresh token
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Principal is the authenticated caller of a request
type Principal struct {
	UserID     uuid.UUID
	Role       UserRole
	MerchantID *uuid.UUID
}

// IsAdmin reports whether the caller is a platform admin
func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

// CanManage reports whether the caller may act for merchantID
func (p Principal) CanManage(merchantID uuid.UUID) bool {
	if p.IsAdmin() {
		return true
	}
	return p.Role == UserRoleMerchant && p.MerchantID != nil && *p.MerchantID == merchantID
}
