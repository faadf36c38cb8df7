package transaction

import (
	"context"

	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/google/uuid"
)

// Repository defines data access for ledger transactions.
type Repository interface {
	// Create inserts a transaction.
	Create(ctx context.Context, t *ledger.Transaction) error

	// Get retrieves a transaction by ID or returns ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error)

	// List returns transactions newest first (date, then creation time).
	// A zero limit means MaxTransactionRows; limits above MaxExportRows are capped.
	List(ctx context.Context, filter dto.TransactionFilter) ([]*dto.TransactionRead, error)

	// Totals sums income and expenditure over the filtered set. The limit
	// of the filter is ignored.
	Totals(ctx context.Context, filter dto.TransactionFilter) (dto.Totals, error)

	// CountByBranch counts transactions recorded on a branch.
	CountByBranch(ctx context.Context, branchID uuid.UUID) (int64, error)

	// Delete removes a transaction.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByBranch removes every transaction recorded on a branch.
	DeleteByBranch(ctx context.Context, branchID uuid.UUID) error

	// UnlinkAllocationsTo clears the allocation reference of transactions
	// generated by allocations to the given branch.
	UnlinkAllocationsTo(ctx context.Context, branchID uuid.UUID) error

	// ReassignCreator moves created_by from one user to another.
	ReassignCreator(ctx context.Context, from, to uuid.UUID) error
}
