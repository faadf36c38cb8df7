package user

import (
	"fmt"

	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/google/uuid"
)

// Principal is the authenticated caller of a service operation.
type Principal struct {
	UserID   uuid.UUID
	Role     Role
	BranchID *uuid.UUID
}

// IsSuperAdmin reports whether the caller has the super admin role.
func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

// RequireSuperAdmin returns ErrForbidden unless the caller is a super admin.
func (p Principal) RequireSuperAdmin() error {
	if !p.IsSuperAdmin() {
		return fmt.Errorf("%w: super admin privileges required", domain.ErrForbidden)
	}
	return nil
}

// CanAccessBranch reports whether the caller may act on branch id.
func (p Principal) CanAccessBranch(id uuid.UUID) bool {
	if p.IsSuperAdmin() {
		return true
	}
	return p.BranchID != nil && *p.BranchID == id
}

// ManagedBranch returns the branch a branch admin manages.
func (p Principal) ManagedBranch() (uuid.UUID, error) {
	if p.BranchID == nil {
		return uuid.Nil, fmt.Errorf("%w: no branch assigned to this account", domain.ErrValidation)
	}
	return *p.BranchID, nil
}

// Actor returns a pointer to the caller id for creator columns.
func (p Principal) Actor() *uuid.UUID {
	if p.UserID == uuid.Nil {
		return nil
	}
	id := p.UserID
	return &id
}
