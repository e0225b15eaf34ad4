package account

import (
	"time"

	"github.com/google/uuid"
)

// Status is the administrative state of an account.
type Status string

const (
	// StatusActive allows login.
	StatusActive Status = "active"
	// StatusDisabled blocks login while keeping the record.
	StatusDisabled Status = "disabled"
)

// Roles assigned to accounts. The role travels in the token claims and gates
// the management endpoints.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account is the public projection of a user account. It never carries the
// password hash; credential checks go through AuthRecord.
type Account struct {
	ID        int64     `json:"-"`
	PublicID  uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthRecord is the credential projection used only by login and
// change-password. Version is the optimistic-lock counter for password
// mutations.
type AuthRecord struct {
	ID           int64
	PublicID     uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Role         string
	Status       Status
	Version      int64
}

// NewAccount carries the fields for account creation. PasswordHash must
// already be hashed by the caller; the repository never hashes.
type NewAccount struct {
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
	Role         string
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	FullName *string
	Phone    *string
}
