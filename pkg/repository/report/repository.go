package report

import (
	"context"

	"github.com/amirasaad/branchledger/pkg/dto"
)

// Repository defines the aggregate queries behind dashboards and reports.
type Repository interface {
	// DailyTotals sums transactions per day and type.
	DailyTotals(ctx context.Context, filter dto.TransactionFilter) ([]dto.DailyTotal, error)

	// CategoryTotals sums transactions per category, largest first.
	// filter.Limit caps the number of rows.
	CategoryTotals(ctx context.Context, filter dto.TransactionFilter) ([]dto.CategoryTotal, error)

	// BranchTotals sums income and expenditure per active branch.
	BranchTotals(ctx context.Context, filter dto.TransactionFilter) ([]dto.BranchTotal, error)
}
