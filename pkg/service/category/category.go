// Package category manages income and expenditure categories.
package category

import (
	"context"
	"log/slog"

	"github.com/amirasaad/branchledger/pkg/domain/branch"
	"github.com/amirasaad/branchledger/pkg/domain/category"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/amirasaad/branchledger/pkg/repository"
	branchrepo "github.com/amirasaad/branchledger/pkg/repository/branch"
	categoryrepo "github.com/amirasaad/branchledger/pkg/repository/category"
)

// Service provides business logic for categories.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a category Service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Create adds a category. An owning branch, when given, must exist.
func (s *Service) Create(
	ctx context.Context,
	p user.Principal,
	params category.Params,
) (c *category.Category, err error) {
	if err = p.RequireSuperAdmin(); err != nil {
		return nil, err
	}
	params.CreatedBy = p.Actor()
	c, err = category.New(params)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		categories, err := repository.Get[categoryrepo.Repository](uow)
		if err != nil {
			return err
		}
		if c.BranchID != nil {
			branches, err := repository.Get[branchrepo.Repository](uow)
			if err != nil {
				return err
			}
			if _, err := branches.Get(ctx, *c.BranchID); err != nil {
				return err
			}
		}
		return categories.Create(ctx, c)
	})
	if err != nil {
		s.logger.Error("Failed to create category", "name", params.Name, "kind", params.Kind, "error", err)
		return nil, err
	}
	s.logger.Info("Category created", "category_id", c.ID, "kind", c.Kind)
	return c, nil
}

// List returns the active categories of kind. Branch admins only get the
// categories their branch may use.
func (s *Service) List(
	ctx context.Context,
	p user.Principal,
	kind category.Kind,
) (result []*category.Category, err error) {
	var managed *branch.Branch
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		categories, err := repository.Get[categoryrepo.Repository](uow)
		if err != nil {
			return err
		}
		if !p.IsSuperAdmin() {
			id, err := p.ManagedBranch()
			if err != nil {
				return err
			}
			branches, err := repository.Get[branchrepo.Repository](uow)
			if err != nil {
				return err
			}
			if managed, err = branches.Get(ctx, id); err != nil {
				return err
			}
		}
		result, err = categories.List(ctx, dto.CategoryFilter{Kind: kind, ActiveOnly: true})
		return err
	})
	if err != nil {
		return nil, err
	}
	if managed == nil {
		return result, nil
	}
	visible := result[:0]
	for _, c := range result {
		if c.VisibleTo(managed) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// EnsureReserved creates the fund allocation categories when missing.
func (s *Service) EnsureReserved(ctx context.Context) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		categories, err := repository.Get[categoryrepo.Repository](uow)
		if err != nil {
			return err
		}
		for _, kind := range []category.Kind{category.KindIncome, category.KindExpenditure} {
			c := category.Reserved(kind)
			ok, err := categories.Exists(ctx, c.ID)
			if err != nil {
				return err
			}
			if ok {
				continue
			}
			if err := categories.Create(ctx, c); err != nil {
				return err
			}
			s.logger.Info("Reserved category created", "category_id", c.ID, "kind", kind)
		}
		return nil
	})
}
