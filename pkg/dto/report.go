package dto

import (
	"time"

	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailyTotal is the sum of one transaction type on one day.
type DailyTotal struct {
	Date  time.Time
	Type  ledger.Type
	Total decimal.Decimal
}

// CategoryTotal is the sum and count of transactions in one category.
type CategoryTotal struct {
	CategoryID uuid.UUID       `json:"category_id"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
	Count      int64           `json:"count"`
}

// BranchTotal is the income and expenditure of one branch.
type BranchTotal struct {
	BranchID    uuid.UUID       `json:"branch_id"`
	Name        string          `json:"name"`
	Income      decimal.Decimal `json:"income"`
	Expenditure decimal.Decimal `json:"expenditure"`
	Count       int64           `json:"transaction_count"`
}

// Net returns income minus expenditure.
func (b BranchTotal) Net() decimal.Decimal {
	return b.Income.Sub(b.Expenditure)
}
