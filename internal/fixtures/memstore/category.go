package memstore

import (
	"context"
	"sort"

	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/category"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/google/uuid"
)

type categoryRepository struct {
	db *db
}

func (r *categoryRepository) Create(_ context.Context, c *category.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.state.categories[c.ID]; ok {
		return domain.ErrAlreadyExists
	}
	if c.BranchID != nil {
		if _, ok := r.db.state.branches[*c.BranchID]; !ok {
			return domain.ErrValidation
		}
	}
	r.db.state.categories[c.ID] = *c
	return nil
}

func (r *categoryRepository) Get(_ context.Context, id uuid.UUID) (*category.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, ok := r.db.state.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *categoryRepository) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	_, ok := r.db.state.categories[id]
	return ok, nil
}

func (r *categoryRepository) List(_ context.Context, filter dto.CategoryFilter) ([]*category.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	result := make([]*category.Category, 0, len(r.db.state.categories))
	for _, c := range r.db.state.categories {
		if filter.Kind != "" && c.Kind != filter.Kind {
			continue
		}
		if filter.ActiveOnly && !c.IsActive {
			continue
		}
		result = append(result, &c)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *categoryRepository) DeleteByBranch(_ context.Context, branchID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, c := range r.db.state.categories {
		if c.BranchID != nil && *c.BranchID == branchID {
			delete(r.db.state.categories, id)
		}
	}
	return nil
}

func (r *categoryRepository) ReassignCreator(_ context.Context, from, to uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, c := range r.db.state.categories {
		if c.CreatedBy != nil && *c.CreatedBy == from {
			c.CreatedBy = &to
			r.db.state.categories[id] = c
		}
	}
	return nil
}
