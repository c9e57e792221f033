package domain

import (
	"strconv"
	"time"
)

// User represents a user in the system
type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Password      string    `json:"-"` // bcrypt hash, never serialized
	Phone         string    `json:"phone"`
	Bio           string    `json:"bio"`
	EmailVerified bool      `json:"email_verified"`
	OrgID         *int64    `json:"org_id"`
	TenantID      *int64    `json:"tenant_id"`
	Roles         RoleSet   `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewUser creates a user holding the default role
func NewUser(name, email, hashedPassword string) *User {
	now := time.Now()
	return &User{
		Name:      name,
		Email:     email,
		Password:  hashedPassword,
		Roles:     NewRoleSet(RoleUser),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Subject returns the user id in the form carried by the "sub" claim
func (u *User) Subject() string {
	return strconv.FormatInt(u.ID, 10)
}

// HasRole checks if the user has a specific role
func (u *User) HasRole(role Role) bool {
	return u.Roles.Has(role)
}

// RegisterRequest carries the fields needed to create an account
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Bio      string
	OrgID    *int64
	TenantID *int64
}
