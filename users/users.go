package users

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jrsteele09/go-sales-client/internal/utils"
)

// RoleType represents the role the backend assigns to a user
type RoleType string

const (
	RoleAdmin  RoleType = "admin"    // Manages products, sellers and reports
	RoleSeller RoleType = "vendedor" // Records sales and sees their own figures
)

// Valid reports whether r is one of the roles the backend issues
func (r RoleType) Valid() bool {
	return r == RoleAdmin || r == RoleSeller
}

// User is the profile returned by /auth/me and the login endpoint.
// It is never mutated locally; a fresh login or session resolution replaces it.
type User struct {
	ID                int      `json:"id"`
	Name              string   `json:"nombre"`
	Email             string   `json:"email"`
	Role              RoleType `json:"rol"`
	Active            bool     `json:"activo"`
	CommissionPercent *float64 `json:"comision_porcentaje,omitempty"` // Sellers only
}

// HasRole compares roles by exact string equality
func (u *User) HasRole(role RoleType) bool {
	if u == nil {
		return false
	}
	return u.Role == role
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// Commission estimates the seller's commission on a sale amount. The backend
// computes the authoritative figure; this is used for previews only.
func (u *User) Commission(amount float64) float64 {
	if u == nil {
		return 0
	}
	return amount * utils.Value(u.CommissionPercent) / 100
}

func (u *User) String() string {
	if u == nil {
		return "<anonymous>"
	}
	return fmt.Sprintf("%s <%s> (%s)", u.Name, u.Email, u.Role)
}

// Credentials are what the login form collects. The email is sent as the
// form's username field unchecked; the backend owns the rejection message.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the credentials before anything is sent to the backend
func (c Credentials) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("credentials: %w", err)
	}
	return nil
}
