// Package ledger holds transactions, fund allocations and the balance rules
// that govern them.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/category"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type is the direction of a transaction.
type Type string

const (
	TypeIncome      Type = "income"
	TypeExpenditure Type = "expenditure"
)

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpenditure
}

// Kind returns the category kind matching t.
func (t Type) Kind() category.Kind {
	if t == TypeExpenditure {
		return category.KindExpenditure
	}
	return category.KindIncome
}

// MaxFractionDigits is the precision of stored amounts.
const MaxFractionDigits = 2

// Transaction is a single immutable ledger entry on one branch.
type Transaction struct {
	ID               uuid.UUID       `json:"id"`
	BranchID         uuid.UUID       `json:"branch_id"`
	Type             Type            `json:"transaction_type"`
	Amount           decimal.Decimal `json:"amount"`
	Date             time.Time       `json:"date"`
	Description      string          `json:"description"`
	CategoryID       uuid.UUID       `json:"category_id"`
	FundAllocationID *uuid.UUID      `json:"fund_allocation_id,omitempty"`
	CreatedBy        *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// TransactionParams carries the fields needed to create a transaction.
type TransactionParams struct {
	BranchID         uuid.UUID
	Type             Type
	Amount           decimal.Decimal
	Date             time.Time
	Description      string
	CategoryID       uuid.UUID
	FundAllocationID *uuid.UUID
	CreatedBy        *uuid.UUID
}

// ValidateAmount rejects non-positive amounts and amounts finer than cents.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", domain.ErrValidation)
	}
	if !amount.Equal(amount.Truncate(MaxFractionDigits)) {
		return fmt.Errorf("%w: amount must have at most %d decimal places", domain.ErrValidation, MaxFractionDigits)
	}
	return nil
}

// NewTransaction validates p and returns a transaction dated p.Date, or today
// when no date is given.
func NewTransaction(p TransactionParams) (*Transaction, error) {
	if !p.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", domain.ErrValidation, p.Type)
	}
	if err := ValidateAmount(p.Amount); err != nil {
		return nil, err
	}
	if p.BranchID == uuid.Nil {
		return nil, fmt.Errorf("%w: branch is required", domain.ErrValidation)
	}
	if p.CategoryID == uuid.Nil {
		return nil, fmt.Errorf("%w: category is required", domain.ErrValidation)
	}
	now := time.Now().UTC()
	date := p.Date
	if date.IsZero() {
		date = now
	}
	return &Transaction{
		ID:               uuid.New(),
		BranchID:         p.BranchID,
		Type:             p.Type,
		Amount:           p.Amount,
		Date:             Day(date),
		Description:      strings.TrimSpace(p.Description),
		CategoryID:       p.CategoryID,
		FundAllocationID: p.FundAllocationID,
		CreatedBy:        p.CreatedBy,
		CreatedAt:        now,
	}, nil
}

// Day truncates t to midnight UTC of the same calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Balance is the income and expenditure sum of a set of transactions.
type Balance struct {
	Income      decimal.Decimal `json:"income"`
	Expenditure decimal.Decimal `json:"expenditure"`
}

// Net returns income minus expenditure.
func (b Balance) Net() decimal.Decimal {
	return b.Income.Sub(b.Expenditure)
}

// Add accumulates t into b.
func (b Balance) Add(t *Transaction) Balance {
	if t.Type == TypeIncome {
		b.Income = b.Income.Add(t.Amount)
	} else {
		b.Expenditure = b.Expenditure.Add(t.Amount)
	}
	return b
}
