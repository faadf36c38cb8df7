package branch

import (
	"context"

	"github.com/amirasaad/branchledger/pkg/domain/branch"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines data access for branches.
type Repository interface {
	// Create inserts a new branch. A second main branch fails with ErrAlreadyExists.
	Create(ctx context.Context, b *branch.Branch) error

	// Get retrieves a branch by ID or returns ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*branch.Branch, error)

	// GetForUpdate retrieves a branch and locks its row until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*branch.Branch, error)

	// GetMain retrieves the main branch or returns ErrNotFound.
	GetMain(ctx context.Context) (*branch.Branch, error)

	// List returns branches, newest first.
	List(ctx context.Context, filter dto.BranchFilter) ([]*branch.Branch, error)

	// IncrementAllocatedFunds adds amount to the branch's cumulative allocation.
	IncrementAllocatedFunds(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error

	// SumAllocatedFunds totals allocated funds over active branches.
	SumAllocatedFunds(ctx context.Context) (decimal.Decimal, error)

	// ReassignCreator moves created_by from one user to another.
	ReassignCreator(ctx context.Context, from, to uuid.UUID) error

	// Delete removes a branch row.
	Delete(ctx context.Context, id uuid.UUID) error
}
