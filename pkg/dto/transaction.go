package dto

import (
	"time"

	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// MaxTransactionRows caps transaction listings served to clients.
	MaxTransactionRows = 100
	// MaxExportRows caps the rows written to a spreadsheet export.
	MaxExportRows = 10000
)

// TransactionFilter narrows transaction queries. Zero values mean no filter.
type TransactionFilter struct {
	BranchID           *uuid.UUID
	Type               ledger.Type
	StartDate          *time.Time
	EndDate            *time.Time
	ActiveBranchesOnly bool
	Limit              int
}

// TransactionRead is a transaction with the names of its branch and category.
type TransactionRead struct {
	ledger.Transaction
	BranchName   string `json:"branch_name"`
	CategoryName string `json:"category_name"`
}

// Totals aggregates a set of transactions.
type Totals struct {
	Income           decimal.Decimal `json:"total_income"`
	Expenditure      decimal.Decimal `json:"total_expenditure"`
	IncomeCount      int64           `json:"income_count"`
	ExpenditureCount int64           `json:"expenditure_count"`
}

// Net returns income minus expenditure.
func (t Totals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expenditure)
}

// Count returns the number of aggregated transactions.
func (t Totals) Count() int64 {
	return t.IncomeCount + t.ExpenditureCount
}

// AllocationFilter narrows allocation queries.
type AllocationFilter struct {
	ToBranchID *uuid.UUID
	Limit      int
}

// AllocationRead is an allocation with branch names.
type AllocationRead struct {
	ledger.FundAllocation
	FromBranchName string `json:"from_branch_name"`
	ToBranchName   string `json:"to_branch_name"`
}
