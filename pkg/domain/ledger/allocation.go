package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/branch"
	"github.com/amirasaad/branchledger/pkg/domain/category"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FundAllocation records money pushed from the main branch to a sub branch.
type FundAllocation struct {
	ID           uuid.UUID       `json:"id"`
	FromBranchID uuid.UUID       `json:"from_branch_id"`
	ToBranchID   uuid.UUID       `json:"to_branch_id"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	AllocatedBy  *uuid.UUID      `json:"allocated_by,omitempty"`
	AllocatedAt  time.Time       `json:"allocated_at"`
	IsActive     bool            `json:"is_active"`
}

// NewAllocation validates the endpoints and amount of an allocation.
func NewAllocation(
	from, to *branch.Branch,
	amount decimal.Decimal,
	description string,
	allocatedBy *uuid.UUID,
) (*FundAllocation, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if !from.IsMain() {
		return nil, fmt.Errorf("%w: allocations must come from the main branch", domain.ErrValidation)
	}
	if to.Type != branch.TypeSub {
		return nil, fmt.Errorf("%w: funds can only be allocated to a sub branch", domain.ErrValidation)
	}
	if !to.IsActive {
		return nil, fmt.Errorf("%w: branch %q is inactive", domain.ErrValidation, to.Name)
	}
	return &FundAllocation{
		ID:           uuid.New(),
		FromBranchID: from.ID,
		ToBranchID:   to.ID,
		Amount:       amount,
		Description:  strings.TrimSpace(description),
		AllocatedBy:  allocatedBy,
		AllocatedAt:  time.Now().UTC(),
		IsActive:     true,
	}, nil
}

// Legs returns the two transactions an allocation produces: income on the
// receiving branch and expenditure on the main branch, both linked back to a.
func (a *FundAllocation) Legs(from, to *branch.Branch) (income, expenditure *Transaction) {
	id := a.ID
	date := Day(a.AllocatedAt)
	income = &Transaction{
		ID:               uuid.New(),
		BranchID:         to.ID,
		Type:             TypeIncome,
		Amount:           a.Amount,
		Date:             date,
		Description:      fmt.Sprintf("Fund allocation received from %s: %s", from.Name, a.Description),
		CategoryID:       category.ReservedIncomeID,
		FundAllocationID: &id,
		CreatedBy:        a.AllocatedBy,
		CreatedAt:        a.AllocatedAt,
	}
	expenditure = &Transaction{
		ID:               uuid.New(),
		BranchID:         from.ID,
		Type:             TypeExpenditure,
		Amount:           a.Amount,
		Date:             date,
		Description:      fmt.Sprintf("Fund allocation to %s: %s", to.Name, a.Description),
		CategoryID:       category.ReservedExpenditureID,
		FundAllocationID: &id,
		CreatedBy:        a.AllocatedBy,
		CreatedAt:        a.AllocatedAt,
	}
	return income, expenditure
}
