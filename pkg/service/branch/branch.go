// Package branch provides branch management: creation, the main branch
// bootstrap, admin assignment and cascading deletion.
package branch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/branchledger/pkg/config"
	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/branch"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/amirasaad/branchledger/pkg/repository"
	allocationrepo "github.com/amirasaad/branchledger/pkg/repository/allocation"
	branchrepo "github.com/amirasaad/branchledger/pkg/repository/branch"
	categoryrepo "github.com/amirasaad/branchledger/pkg/repository/category"
	transactionrepo "github.com/amirasaad/branchledger/pkg/repository/transaction"
	userrepo "github.com/amirasaad/branchledger/pkg/repository/user"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Service provides business logic for branches.
type Service struct {
	uow      repository.UnitOfWork
	defaults config.MainBranch
	logger   *slog.Logger
	group    singleflight.Group
}

// New creates a branch Service. defaults are used when the main branch has
// to be created; a nil value falls back to built-in names.
func New(
	uow repository.UnitOfWork,
	defaults *config.MainBranch,
	logger *slog.Logger,
) *Service {
	s := &Service{uow: uow, logger: logger}
	if defaults != nil {
		s.defaults = *defaults
	}
	if s.defaults.Name == "" {
		s.defaults.Name = "Main Branch"
	}
	return s
}

// Create adds a branch. Only super admins may create branches.
func (s *Service) Create(
	ctx context.Context,
	p user.Principal,
	params branch.Params,
) (b *branch.Branch, err error) {
	if err = p.RequireSuperAdmin(); err != nil {
		return nil, err
	}
	params.CreatedBy = p.Actor()
	b, err = branch.New(params)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[branchrepo.Repository](uow)
		if err != nil {
			return err
		}
		return repo.Create(ctx, b)
	})
	if err != nil {
		s.logger.Error("Failed to create branch", "name", params.Name, "error", err)
		return nil, err
	}
	s.logger.Info("Branch created", "branch_id", b.ID, "type", b.Type)
	return b, nil
}

// EnsureMain returns the main branch, creating it from the configured
// defaults when it does not exist yet. Concurrent callers share one lookup.
func (s *Service) EnsureMain(ctx context.Context) (*branch.Branch, error) {
	v, err, _ := s.group.Do("main", func() (any, error) {
		b, err := s.getOrCreateMain(ctx)
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Another process created it between our read and insert.
			return s.getMain(ctx)
		}
		return b, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*branch.Branch), nil
}

func (s *Service) getMain(ctx context.Context) (b *branch.Branch, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[branchrepo.Repository](uow)
		if err != nil {
			return err
		}
		b, err = repo.GetMain(ctx)
		return err
	})
	return b, err
}

func (s *Service) getOrCreateMain(ctx context.Context) (b *branch.Branch, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[branchrepo.Repository](uow)
		if err != nil {
			return err
		}
		b, err = repo.GetMain(ctx)
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		b, err = branch.New(branch.Params{
			Name:     s.defaults.Name,
			Location: s.defaults.Location,
			State:    s.defaults.State,
			Address:  s.defaults.Address,
			Type:     branch.TypeMain,
		})
		if err != nil {
			return err
		}
		if err = repo.Create(ctx, b); err != nil {
			return err
		}
		s.logger.Info("Main branch created", "branch_id", b.ID, "name", b.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Get returns a branch visible to p.
func (s *Service) Get(
	ctx context.Context,
	p user.Principal,
	id uuid.UUID,
) (b *branch.Branch, err error) {
	if !p.CanAccessBranch(id) {
		return nil, fmt.Errorf("%w: branch is not managed by this account", domain.ErrForbidden)
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[branchrepo.Repository](uow)
		if err != nil {
			return err
		}
		b, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// List returns branches newest first.
func (s *Service) List(
	ctx context.Context,
	p user.Principal,
	filter dto.BranchFilter,
) (result []*branch.Branch, err error) {
	if err = p.RequireSuperAdmin(); err != nil {
		return nil, err
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown branch type %q", domain.ErrValidation, filter.Type)
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[branchrepo.Repository](uow)
		if err != nil {
			return err
		}
		result, err = repo.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AssignAdmins replaces the admins of a branch with adminIDs. Every id must
// belong to a branch admin.
func (s *Service) AssignAdmins(
	ctx context.Context,
	p user.Principal,
	branchID uuid.UUID,
	adminIDs []uuid.UUID,
) error {
	if err := p.RequireSuperAdmin(); err != nil {
		return err
	}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		branches, err := repository.Get[branchrepo.Repository](uow)
		if err != nil {
			return err
		}
		users, err := repository.Get[userrepo.Repository](uow)
		if err != nil {
			return err
		}
		if _, err = branches.Get(ctx, branchID); err != nil {
			return err
		}
		if err = users.ClearBranch(ctx, branchID); err != nil {
			return err
		}
		for _, id := range adminIDs {
			u, err := users.Get(ctx, id)
			if err != nil {
				return err
			}
			if u.Role != user.RoleBranchAdmin {
				return fmt.Errorf("%w: %q is not a branch admin", domain.ErrValidation, u.Username)
			}
			if err := users.Update(ctx, id, &dto.UserUpdate{BranchID: &branchID}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to assign branch admins", "branch_id", branchID, "error", err)
		return err
	}
	s.logger.Info("Branch admins assigned", "branch_id", branchID, "count", len(adminIDs))
	return nil
}

// DeleteSummary reports what deleting a branch would remove.
func (s *Service) DeleteSummary(
	ctx context.Context,
	p user.Principal,
	id uuid.UUID,
) (summary *dto.BranchDeleteSummary, err error) {
	if err = p.RequireSuperAdmin(); err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		branches, err := repository.Get[branchrepo.Repository](uow)
		if err != nil {
			return err
		}
		txs, err := repository.Get[transactionrepo.Repository](uow)
		if err != nil {
			return err
		}
		allocations, err := repository.Get[allocationrepo.Repository](uow)
		if err != nil {
			return err
		}
		b, err := branches.Get(ctx, id)
		if err != nil {
			return err
		}
		summary = &dto.BranchDeleteSummary{Branch: b}
		if summary.TransactionCount, err = txs.CountByBranch(ctx, id); err != nil {
			return err
		}
		summary.AllocationCount, err = allocations.CountByBranch(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Delete removes a sub branch with its transactions, the allocations it
// received and the categories it owns. Allocation legs recorded on the main
// branch are kept with their allocation reference cleared. The main branch
// cannot be deleted.
func (s *Service) Delete(
	ctx context.Context,
	p user.Principal,
	id uuid.UUID,
) error {
	if err := p.RequireSuperAdmin(); err != nil {
		return err
	}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		branches, err := repository.Get[branchrepo.Repository](uow)
		if err != nil {
			return err
		}
		txs, err := repository.Get[transactionrepo.Repository](uow)
		if err != nil {
			return err
		}
		allocations, err := repository.Get[allocationrepo.Repository](uow)
		if err != nil {
			return err
		}
		categories, err := repository.Get[categoryrepo.Repository](uow)
		if err != nil {
			return err
		}
		users, err := repository.Get[userrepo.Repository](uow)
		if err != nil {
			return err
		}

		b, err := branches.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b.IsMain() {
			return fmt.Errorf("%w: the main branch cannot be deleted", domain.ErrForbidden)
		}
		if err := txs.DeleteByBranch(ctx, id); err != nil {
			return err
		}
		if err := txs.UnlinkAllocationsTo(ctx, id); err != nil {
			return err
		}
		if err := allocations.DeleteByBranch(ctx, id); err != nil {
			return err
		}
		if err := categories.DeleteByBranch(ctx, id); err != nil {
			return err
		}
		if err := users.ClearBranch(ctx, id); err != nil {
			return err
		}
		return branches.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("Failed to delete branch", "branch_id", id, "error", err)
		return err
	}
	s.logger.Info("Branch deleted", "branch_id", id, "user_id", p.UserID)
	return nil
}
