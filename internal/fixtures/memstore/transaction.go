package memstore

import (
	"context"
	"sort"

	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type transactionRepository struct {
	db *db
}

// matches applies filter to t. Callers hold the read lock.
func (s memoryState) matches(t ledger.Transaction, filter dto.TransactionFilter) bool {
	if filter.BranchID != nil && t.BranchID != *filter.BranchID {
		return false
	}
	if filter.Type != "" && t.Type != filter.Type {
		return false
	}
	if filter.StartDate != nil && t.Date.Before(ledger.Day(*filter.StartDate)) {
		return false
	}
	if filter.EndDate != nil && t.Date.After(ledger.Day(*filter.EndDate)) {
		return false
	}
	b, ok := s.branches[t.BranchID]
	if !ok {
		return false
	}
	if filter.ActiveBranchesOnly && !b.IsActive {
		return false
	}
	return true
}

func (s memoryState) filtered(filter dto.TransactionFilter) []ledger.Transaction {
	result := make([]ledger.Transaction, 0)
	for _, t := range s.transactions {
		if s.matches(t, filter) {
			result = append(result, t)
		}
	}
	return result
}

func (r *transactionRepository) Create(_ context.Context, t *ledger.Transaction) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.state.transactions[t.ID]; ok {
		return domain.ErrAlreadyExists
	}
	if _, ok := r.db.state.branches[t.BranchID]; !ok {
		return domain.ErrValidation
	}
	if _, ok := r.db.state.categories[t.CategoryID]; !ok {
		return domain.ErrValidation
	}
	r.db.state.transactions[t.ID] = *t
	return nil
}

func (r *transactionRepository) Get(_ context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	t, ok := r.db.state.transactions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r *transactionRepository) List(
	_ context.Context,
	filter dto.TransactionFilter,
) ([]*dto.TransactionRead, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	rows := r.db.state.filtered(filter)
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.After(rows[j].Date)
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	limit := filter.Limit
	if limit <= 0 {
		limit = dto.MaxTransactionRows
	}
	if limit > dto.MaxExportRows {
		limit = dto.MaxExportRows
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	result := make([]*dto.TransactionRead, 0, len(rows))
	for _, t := range rows {
		result = append(result, &dto.TransactionRead{
			Transaction:  t,
			BranchName:   r.db.state.branches[t.BranchID].Name,
			CategoryName: r.db.state.categories[t.CategoryID].Name,
		})
	}
	return result, nil
}

func (r *transactionRepository) Totals(_ context.Context, filter dto.TransactionFilter) (dto.Totals, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	totals := dto.Totals{Income: decimal.Zero, Expenditure: decimal.Zero}
	for _, t := range r.db.state.filtered(filter) {
		if t.Type == ledger.TypeIncome {
			totals.Income = totals.Income.Add(t.Amount)
			totals.IncomeCount++
		} else {
			totals.Expenditure = totals.Expenditure.Add(t.Amount)
			totals.ExpenditureCount++
		}
	}
	return totals, nil
}

func (r *transactionRepository) CountByBranch(_ context.Context, branchID uuid.UUID) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var count int64
	for _, t := range r.db.state.transactions {
		if t.BranchID == branchID {
			count++
		}
	}
	return count, nil
}

func (r *transactionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.state.transactions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.db.state.transactions, id)
	return nil
}

func (r *transactionRepository) DeleteByBranch(_ context.Context, branchID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, t := range r.db.state.transactions {
		if t.BranchID == branchID {
			delete(r.db.state.transactions, id)
		}
	}
	return nil
}

func (r *transactionRepository) UnlinkAllocationsTo(_ context.Context, branchID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, t := range r.db.state.transactions {
		if t.FundAllocationID == nil {
			continue
		}
		a, ok := r.db.state.allocations[*t.FundAllocationID]
		if ok && a.ToBranchID == branchID {
			t.FundAllocationID = nil
			r.db.state.transactions[id] = t
		}
	}
	return nil
}

func (r *transactionRepository) ReassignCreator(_ context.Context, from, to uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, t := range r.db.state.transactions {
		if t.CreatedBy != nil && *t.CreatedBy == from {
			t.CreatedBy = &to
			r.db.state.transactions[id] = t
		}
	}
	return nil
}
