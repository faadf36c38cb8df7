package dto

import (
	"github.com/google/uuid"
)

// UserUpdate represents the fields that can be changed on a user.
// Nil fields are left untouched.
type UserUpdate struct {
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Password    *string `json:"-"`
	IsActive    *bool   `json:"is_active,omitempty"`
	BranchID    *uuid.UUID
	ClearBranch bool
}
