package user

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailAlreadyUsed   = errors.New("email already used")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrEmailRequired      = errors.New("email is required")
	ErrNameRequired       = errors.New("full name is required")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidRole        = errors.New("invalid role")
)

// Role is the closed set of capability tags an authenticated user can carry.
// Authorization decisions compare against these constants only; there is no
// role hierarchy beyond what the policy functions express.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// ParseRole converts a raw string (e.g. from a JWT claim or an admin update
// request) into a Role, rejecting anything outside the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleOperator, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// IsStaff reports whether the role grants operator-level privileges.
// Operators and admins may manage courts, mark bookings paid and act on any
// booking regardless of ownership.
func (r Role) IsStaff() bool {
	return r == RoleOperator || r == RoleAdmin
}

// User represents an authenticated identity in the system.
type User struct {
	ID           int64
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
}

// Filter defines filter options for listing users.
type Filter struct {
	Email    string
	Role     string
	IsActive *bool // pointer to distinguish between false and not set

	Page     int
	PageSize int
}
