package user

import (
	"context"

	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/google/uuid"
)

// Repository defines data access for administrator accounts.
type Repository interface {
	// Create inserts a user.
	Create(ctx context.Context, u *user.User) error

	// Update applies the non-nil fields of update.
	Update(ctx context.Context, id uuid.UUID, update *dto.UserUpdate) error

	// Get retrieves a user by ID or returns ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)

	// GetByEmail retrieves a user by email or returns ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*user.User, error)

	// GetByUsername retrieves a user by username or returns ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*user.User, error)

	// List returns users with the given role, newest first. An empty role lists everyone.
	List(ctx context.Context, role user.Role) ([]*user.User, error)

	// CountActive counts active users with the given role.
	CountActive(ctx context.Context, role user.Role) (int64, error)

	// ClearBranch unassigns every admin of a branch.
	ClearBranch(ctx context.Context, branchID uuid.UUID) error

	// Delete removes a user.
	Delete(ctx context.Context, id uuid.UUID) error
}
