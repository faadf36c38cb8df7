package ledger

import "github.com/shopspring/decimal"

//revive:disable

// RecordRequest represents the request body for recording a transaction.
// TransactionType is ignored by the typed endpoints.
type RecordRequest struct {
	BranchID        string          `json:"branch_id" validate:"omitempty,uuid"`
	TransactionType string          `json:"transaction_type" validate:"omitempty,oneof=income expenditure"`
	Amount          decimal.Decimal `json:"amount"`
	Date            string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description     string          `json:"description" validate:"max=1000"`
	CategoryID      string          `json:"category_id" validate:"required,uuid"`
}

// AllocateRequest represents the request body for allocating funds from the
// main branch.
type AllocateRequest struct {
	ToBranchID  string          `json:"to_branch_id" validate:"required,uuid"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=1000"`
}
