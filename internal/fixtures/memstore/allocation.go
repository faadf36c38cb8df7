package memstore

import (
	"context"
	"sort"

	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/google/uuid"
)

type allocationRepository struct {
	db *db
}

func (r *allocationRepository) Create(_ context.Context, a *ledger.FundAllocation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.state.allocations[a.ID]; ok {
		return domain.ErrAlreadyExists
	}
	_, fromOK := r.db.state.branches[a.FromBranchID]
	_, toOK := r.db.state.branches[a.ToBranchID]
	if !fromOK || !toOK {
		return domain.ErrValidation
	}
	r.db.state.allocations[a.ID] = *a
	return nil
}

func (r *allocationRepository) Get(_ context.Context, id uuid.UUID) (*ledger.FundAllocation, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	a, ok := r.db.state.allocations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r *allocationRepository) List(
	_ context.Context,
	filter dto.AllocationFilter,
) ([]*dto.AllocationRead, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	result := make([]*dto.AllocationRead, 0, len(r.db.state.allocations))
	for _, a := range r.db.state.allocations {
		if filter.ToBranchID != nil && a.ToBranchID != *filter.ToBranchID {
			continue
		}
		result = append(result, &dto.AllocationRead{
			FundAllocation: a,
			FromBranchName: r.db.state.branches[a.FromBranchID].Name,
			ToBranchName:   r.db.state.branches[a.ToBranchID].Name,
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].AllocatedAt.After(result[j].AllocatedAt)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *allocationRepository) CountByBranch(_ context.Context, branchID uuid.UUID) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var count int64
	for _, a := range r.db.state.allocations {
		if a.ToBranchID == branchID {
			count++
		}
	}
	return count, nil
}

func (r *allocationRepository) DeleteByBranch(_ context.Context, branchID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, a := range r.db.state.allocations {
		if a.ToBranchID == branchID {
			delete(r.db.state.allocations, id)
		}
	}
	return nil
}

func (r *allocationRepository) ReassignAllocator(_ context.Context, from, to uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, a := range r.db.state.allocations {
		if a.AllocatedBy != nil && *a.AllocatedBy == from {
			a.AllocatedBy = &to
			r.db.state.allocations[id] = a
		}
	}
	return nil
}
