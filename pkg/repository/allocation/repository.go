package allocation

import (
	"context"

	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/google/uuid"
)

// Repository defines data access for fund allocations.
type Repository interface {
	// Create inserts an allocation.
	Create(ctx context.Context, a *ledger.FundAllocation) error

	// Get retrieves an allocation by ID or returns ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*ledger.FundAllocation, error)

	// List returns allocations, newest first.
	List(ctx context.Context, filter dto.AllocationFilter) ([]*dto.AllocationRead, error)

	// CountByBranch counts allocations received by a branch.
	CountByBranch(ctx context.Context, branchID uuid.UUID) (int64, error)

	// DeleteByBranch removes allocations received by a branch.
	DeleteByBranch(ctx context.Context, branchID uuid.UUID) error

	// ReassignAllocator moves allocated_by from one user to another.
	ReassignAllocator(ctx context.Context, from, to uuid.UUID) error
}
