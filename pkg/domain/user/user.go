package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/utils"
	"github.com/google/uuid"
)

var (
	// ErrUserUnauthorized is returned when credentials do not match an active user.
	ErrUserUnauthorized = fmt.Errorf("user %w", domain.ErrUnauthorized)
)

// Role decides what a user may do.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleBranchAdmin Role = "branch_admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleSuperAdmin || r == RoleBranchAdmin
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 4

// User is an administrator account.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone"`
	Role      Role       `json:"role"`
	Password  string     `json:"-"`
	IsActive  bool       `json:"is_active"`
	BranchID  *uuid.UUID `json:"branch_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Params carries the fields needed to create a user.
type Params struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Role      Role
	Password  string
}

// New validates p and returns an active user with a hashed password.
func New(p Params) (*User, error) {
	username := strings.TrimSpace(p.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username cannot be empty", domain.ErrValidation)
	}
	email := strings.TrimSpace(p.Email)
	if email != "" && !utils.IsEmail(email) {
		return nil, fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}
	if !p.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, p.Role)
	}
	if err := ValidatePassword(p.Password, p.Password); err != nil {
		return nil, err
	}
	hashed, err := utils.HashPassword(p.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		FirstName: strings.TrimSpace(p.FirstName),
		LastName:  strings.TrimSpace(p.LastName),
		Phone:     strings.TrimSpace(p.Phone),
		Role:      p.Role,
		Password:  hashed,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidatePassword checks length and confirmation of a new password.
func ValidatePassword(password, confirm string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", domain.ErrValidation, MinPasswordLength)
	}
	if len(password) > 72 {
		return fmt.Errorf("%w: password too long", domain.ErrValidation)
	}
	if password != confirm {
		return fmt.Errorf("%w: passwords do not match", domain.ErrValidation)
	}
	return nil
}

// SetPassword replaces the password hash.
func (u *User) SetPassword(password string) error {
	if err := ValidatePassword(password, password); err != nil {
		return err
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashed
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// IsSuperAdmin reports whether u has the super admin role.
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Principal returns the capability set of u.
func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, Role: u.Role, BranchID: u.BranchID}
}
