package category

import (
	"context"

	"github.com/amirasaad/branchledger/pkg/domain/category"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/google/uuid"
)

// Repository defines data access for income and expenditure categories.
type Repository interface {
	// Create inserts a category.
	Create(ctx context.Context, c *category.Category) error

	// Get retrieves a category by ID or returns ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*category.Category, error)

	// Exists reports whether a category with the given ID exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// List returns categories ordered by name.
	List(ctx context.Context, filter dto.CategoryFilter) ([]*category.Category, error)

	// DeleteByBranch removes categories owned by a branch.
	DeleteByBranch(ctx context.Context, branchID uuid.UUID) error

	// ReassignCreator moves created_by from one user to another.
	ReassignCreator(ctx context.Context, from, to uuid.UUID) error
}
