package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/branch"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type branchRepository struct {
	db *db
}

func (r *branchRepository) Create(_ context.Context, b *branch.Branch) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.state.branches[b.ID]; ok {
		return domain.ErrAlreadyExists
	}
	if b.IsMain() {
		for _, existing := range r.db.state.branches {
			if existing.IsMain() {
				return domain.ErrAlreadyExists
			}
		}
	}
	r.db.state.branches[b.ID] = *b
	return nil
}

func (r *branchRepository) Get(_ context.Context, id uuid.UUID) (*branch.Branch, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	b, ok := r.db.state.branches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r *branchRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*branch.Branch, error) {
	return r.Get(ctx, id)
}

func (r *branchRepository) GetMain(_ context.Context) (*branch.Branch, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, b := range r.db.state.branches {
		if b.IsMain() {
			return &b, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *branchRepository) List(_ context.Context, filter dto.BranchFilter) ([]*branch.Branch, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	result := make([]*branch.Branch, 0, len(r.db.state.branches))
	for _, b := range r.db.state.branches {
		if filter.ActiveOnly && !b.IsActive {
			continue
		}
		if filter.Type != "" && b.Type != filter.Type {
			continue
		}
		result = append(result, &b)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *branchRepository) IncrementAllocatedFunds(
	_ context.Context,
	id uuid.UUID,
	amount decimal.Decimal,
) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.state.branches[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.AllocatedFunds = b.AllocatedFunds.Add(amount)
	b.UpdatedAt = time.Now().UTC()
	r.db.state.branches[id] = b
	return nil
}

func (r *branchRepository) SumAllocatedFunds(_ context.Context) (decimal.Decimal, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	total := decimal.Zero
	for _, b := range r.db.state.branches {
		if b.IsActive {
			total = total.Add(b.AllocatedFunds)
		}
	}
	return total, nil
}

func (r *branchRepository) ReassignCreator(_ context.Context, from, to uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, b := range r.db.state.branches {
		if b.CreatedBy != nil && *b.CreatedBy == from {
			b.CreatedBy = &to
			r.db.state.branches[id] = b
		}
	}
	return nil
}

func (r *branchRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.state.branches[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.db.state.branches, id)
	return nil
}
