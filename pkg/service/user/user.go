// Package user provides business logic for administrator accounts.
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/amirasaad/branchledger/pkg/repository"
	allocationrepo "github.com/amirasaad/branchledger/pkg/repository/allocation"
	branchrepo "github.com/amirasaad/branchledger/pkg/repository/branch"
	categoryrepo "github.com/amirasaad/branchledger/pkg/repository/category"
	transactionrepo "github.com/amirasaad/branchledger/pkg/repository/transaction"
	userrepo "github.com/amirasaad/branchledger/pkg/repository/user"
	"github.com/google/uuid"
)

// Service provides business logic for user operations.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a new Service with a UnitOfWork and logger.
func New(
	uow repository.UnitOfWork,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:    uow,
		logger: logger,
	}
}

// CreateInput carries the fields of a new account.
type CreateInput struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Phone           string
	Password        string
	ConfirmPassword string
	BranchID        *uuid.UUID
}

// CreateBranchAdmin creates a branch admin, optionally assigned to a branch.
func (s *Service) CreateBranchAdmin(
	ctx context.Context,
	p user.Principal,
	in CreateInput,
) (*user.User, error) {
	if err := p.RequireSuperAdmin(); err != nil {
		return nil, err
	}
	return s.create(ctx, user.RoleBranchAdmin, in)
}

// CreateSuperAdmin creates a super admin. It is meant for bootstrap tooling
// and performs no authorization.
func (s *Service) CreateSuperAdmin(ctx context.Context, in CreateInput) (*user.User, error) {
	in.BranchID = nil
	return s.create(ctx, user.RoleSuperAdmin, in)
}

func (s *Service) create(
	ctx context.Context,
	role user.Role,
	in CreateInput,
) (u *user.User, err error) {
	if err = user.ValidatePassword(in.Password, in.ConfirmPassword); err != nil {
		return nil, err
	}
	u, err = user.New(user.Params{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Role:      role,
		Password:  in.Password,
	})
	if err != nil {
		return nil, err
	}
	u.BranchID = in.BranchID

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := repository.Get[userrepo.Repository](uow)
		if err != nil {
			return err
		}
		if u.BranchID != nil {
			branches, err := repository.Get[branchrepo.Repository](uow)
			if err != nil {
				return err
			}
			if _, err := branches.Get(ctx, *u.BranchID); err != nil {
				return err
			}
		}
		return users.Create(ctx, u)
	})
	if err != nil {
		s.logger.Error("Failed to create user", "username", in.Username, "role", role, "error", err)
		return nil, err
	}
	s.logger.Info("User created", "user_id", u.ID, "role", role)
	return u, nil
}

// Get retrieves a user by ID. Branch admins may only read themselves.
func (s *Service) Get(
	ctx context.Context,
	p user.Principal,
	id uuid.UUID,
) (u *user.User, err error) {
	if !p.IsSuperAdmin() && p.UserID != id {
		return nil, domain.ErrForbidden
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := repository.Get[userrepo.Repository](uow)
		if err != nil {
			return err
		}
		u, err = users.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ListBranchAdmins returns every branch admin, newest first.
func (s *Service) ListBranchAdmins(
	ctx context.Context,
	p user.Principal,
) (result []*user.User, err error) {
	if err = p.RequireSuperAdmin(); err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := repository.Get[userrepo.Repository](uow)
		if err != nil {
			return err
		}
		result, err = users.List(ctx, user.RoleBranchAdmin)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// loadBranchAdmin fetches id and refuses super admin targets.
func loadBranchAdmin(ctx context.Context, users userrepo.Repository, id uuid.UUID) (*user.User, error) {
	u, err := users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsSuperAdmin() {
		return nil, fmt.Errorf("%w: super admin accounts cannot be modified here", domain.ErrForbidden)
	}
	return u, nil
}

// ToggleStatus flips the active flag of a branch admin and returns the
// updated account.
func (s *Service) ToggleStatus(
	ctx context.Context,
	p user.Principal,
	id uuid.UUID,
) (u *user.User, err error) {
	if err = p.RequireSuperAdmin(); err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := repository.Get[userrepo.Repository](uow)
		if err != nil {
			return err
		}
		current, err := loadBranchAdmin(ctx, users, id)
		if err != nil {
			return err
		}
		active := !current.IsActive
		if err := users.Update(ctx, id, &dto.UserUpdate{IsActive: &active}); err != nil {
			return err
		}
		u, err = users.Get(ctx, id)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to toggle user status", "user_id", id, "error", err)
		return nil, err
	}
	s.logger.Info("User status changed", "user_id", id, "active", u.IsActive)
	return u, nil
}

// ResetPassword sets a new password on a branch admin.
func (s *Service) ResetPassword(
	ctx context.Context,
	p user.Principal,
	id uuid.UUID,
	password, confirm string,
) error {
	if err := p.RequireSuperAdmin(); err != nil {
		return err
	}
	if err := user.ValidatePassword(password, confirm); err != nil {
		return err
	}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := repository.Get[userrepo.Repository](uow)
		if err != nil {
			return err
		}
		u, err := loadBranchAdmin(ctx, users, id)
		if err != nil {
			return err
		}
		if err := u.SetPassword(password); err != nil {
			return err
		}
		return users.Update(ctx, id, &dto.UserUpdate{Password: &u.Password})
	})
	if err != nil {
		s.logger.Error("Failed to reset password", "user_id", id, "error", err)
		return err
	}
	s.logger.Info("Password reset", "user_id", id)
	return nil
}

// Delete removes a branch admin. Everything the account created is
// attributed to the acting super admin first.
func (s *Service) Delete(
	ctx context.Context,
	p user.Principal,
	id uuid.UUID,
) error {
	if err := p.RequireSuperAdmin(); err != nil {
		return err
	}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := repository.Get[userrepo.Repository](uow)
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
		branches, err := repository.Get[branchrepo.Repository](uow)
		if err != nil {
			return err
		}

		if _, err := loadBranchAdmin(ctx, users, id); err != nil {
			return err
		}
		if err := txs.ReassignCreator(ctx, id, p.UserID); err != nil {
			return err
		}
		if err := allocations.ReassignAllocator(ctx, id, p.UserID); err != nil {
			return err
		}
		if err := categories.ReassignCreator(ctx, id, p.UserID); err != nil {
			return err
		}
		if err := branches.ReassignCreator(ctx, id, p.UserID); err != nil {
			return err
		}
		return users.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("Failed to delete user", "user_id", id, "error", err)
		return err
	}
	s.logger.Info("User deleted", "user_id", id, "reassigned_to", p.UserID)
	return nil
}
