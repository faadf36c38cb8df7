// Package ledger implements the balance rules of the branch ledger: recording
// income and expenditure, allocating funds from the main branch and reading
// balances. Every write runs inside one unit of work; expenditures and
// allocations take row locks on the branches they touch so concurrent
// requests cannot overdraw a branch.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/branchledger/pkg/config"
	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/branch"
	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/amirasaad/branchledger/pkg/repository"
	allocationrepo "github.com/amirasaad/branchledger/pkg/repository/allocation"
	branchrepo "github.com/amirasaad/branchledger/pkg/repository/branch"
	categoryrepo "github.com/amirasaad/branchledger/pkg/repository/category"
	transactionrepo "github.com/amirasaad/branchledger/pkg/repository/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides the ledger operations.
type Service struct {
	uow                repository.UnitOfWork
	logger             *slog.Logger
	enforceMainBalance bool
}

// New creates a ledger Service. A nil cfg keeps the defaults.
func New(
	uow repository.UnitOfWork,
	cfg *config.Ledger,
	logger *slog.Logger,
) *Service {
	s := &Service{uow: uow, logger: logger}
	if cfg != nil {
		s.enforceMainBalance = cfg.EnforceMainBalance
	}
	return s
}

// RecordInput describes a manual income or expenditure entry.
type RecordInput struct {
	BranchID    uuid.UUID
	Type        ledger.Type
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	CategoryID  uuid.UUID
}

// AllocateInput describes a transfer from the main branch to a sub branch.
type AllocateInput struct {
	ToBranchID  uuid.UUID
	Amount      decimal.Decimal
	Description string
}

// TransactionPage is a filtered transaction listing with the totals of the
// whole filtered set.
type TransactionPage struct {
	Transactions []*dto.TransactionRead `json:"transactions"`
	Totals       dto.Totals             `json:"totals"`
	Net          decimal.Decimal        `json:"net"`
}

// balance computes income minus expenditure of a branch from its transactions.
func balance(
	ctx context.Context,
	txs transactionrepo.Repository,
	branchID uuid.UUID,
) (decimal.Decimal, error) {
	totals, err := txs.Totals(ctx, dto.TransactionFilter{BranchID: &branchID})
	if err != nil {
		return decimal.Zero, err
	}
	return totals.Net(), nil
}

// GetBalance returns the current balance of a branch.
func (s *Service) GetBalance(
	ctx context.Context,
	p user.Principal,
	branchID uuid.UUID,
) (bal decimal.Decimal, err error) {
	if !p.CanAccessBranch(branchID) {
		return decimal.Zero, fmt.Errorf("%w: branch is not managed by this account", domain.ErrForbidden)
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
		if _, err = branches.Get(ctx, branchID); err != nil {
			return err
		}
		bal, err = balance(ctx, txs, branchID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return bal, nil
}

// RecordTransaction validates and stores a manual transaction. Expenditures
// lock the branch row and re-check the balance before inserting.
func (s *Service) RecordTransaction(
	ctx context.Context,
	p user.Principal,
	in RecordInput,
) (tx *ledger.Transaction, err error) {
	log := s.logger.With(
		"operation", "RecordTransaction",
		"branch_id", in.BranchID,
		"type", in.Type,
		"amount", in.Amount.String(),
	)
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", domain.ErrValidation, in.Type)
	}
	if err = ledger.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	if err = authorizeRecord(p, &in); err != nil {
		log.Warn("Transaction refused", "user_id", p.UserID, "error", err)
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		branches, err := repository.Get[branchrepo.Repository](uow)
		if err != nil {
			return err
		}
		categories, err := repository.Get[categoryrepo.Repository](uow)
		if err != nil {
			return err
		}
		txs, err := repository.Get[transactionrepo.Repository](uow)
		if err != nil {
			return err
		}

		var b *branch.Branch
		if in.Type == ledger.TypeExpenditure {
			b, err = branches.GetForUpdate(ctx, in.BranchID)
		} else {
			b, err = branches.Get(ctx, in.BranchID)
		}
		if err != nil {
			return err
		}
		if !b.IsActive {
			return fmt.Errorf("%w: branch %q is inactive", domain.ErrValidation, b.Name)
		}

		c, err := categories.Get(ctx, in.CategoryID)
		if err != nil {
			return err
		}
		if !c.IsActive {
			return fmt.Errorf("%w: category %q is inactive", domain.ErrValidation, c.Name)
		}
		if c.Kind != in.Type.Kind() {
			return fmt.Errorf("%w: category %q is not an %s category", domain.ErrValidation, c.Name, in.Type)
		}
		if !c.VisibleTo(b) {
			return fmt.Errorf("%w: %q for %q", domain.ErrCategoryNotVisible, c.Name, b.Name)
		}

		if in.Type == ledger.TypeExpenditure {
			current, err := balance(ctx, txs, b.ID)
			if err != nil {
				return err
			}
			if err := ledger.CheckSufficient(current, in.Amount); err != nil {
				return err
			}
		}

		tx, err = ledger.NewTransaction(ledger.TransactionParams{
			BranchID:    b.ID,
			Type:        in.Type,
			Amount:      in.Amount,
			Date:        in.Date,
			Description: in.Description,
			CategoryID:  c.ID,
			CreatedBy:   p.Actor(),
		})
		if err != nil {
			return err
		}
		return txs.Create(ctx, tx)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			log.Info("Expenditure rejected", "error", err)
		} else {
			log.Error("Failed to record transaction", "error", err)
		}
		return nil, err
	}
	log.Info("Transaction recorded", "transaction_id", tx.ID)
	return tx, nil
}

// authorizeRecord applies the role rules of manual entries. A branch admin
// without an explicit branch records on the branch they manage.
func authorizeRecord(p user.Principal, in *RecordInput) error {
	if p.IsSuperAdmin() {
		return nil
	}
	if in.Type == ledger.TypeIncome {
		return fmt.Errorf("%w: only super admins can record income", domain.ErrForbidden)
	}
	managed, err := p.ManagedBranch()
	if err != nil {
		return err
	}
	if in.BranchID == uuid.Nil {
		in.BranchID = managed
	}
	if in.BranchID != managed {
		return fmt.Errorf("%w: branch is not managed by this account", domain.ErrForbidden)
	}
	return nil
}

// AllocateFunds moves amount from the main branch to a sub branch. The
// allocation, both ledger legs and the allocated funds counter are written
// in one transaction with the main and sub branch rows locked in that order.
func (s *Service) AllocateFunds(
	ctx context.Context,
	p user.Principal,
	in AllocateInput,
) (alloc *ledger.FundAllocation, err error) {
	log := s.logger.With(
		"operation", "AllocateFunds",
		"to_branch_id", in.ToBranchID,
		"amount", in.Amount.String(),
	)
	if err = p.RequireSuperAdmin(); err != nil {
		return nil, err
	}
	if err = ledger.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		branches, err := repository.Get[branchrepo.Repository](uow)
		if err != nil {
			return err
		}
		allocations, err := repository.Get[allocationrepo.Repository](uow)
		if err != nil {
			return err
		}
		txs, err := repository.Get[transactionrepo.Repository](uow)
		if err != nil {
			return err
		}

		mainBranch, err := branches.GetMain(ctx)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNoMainBranch
		}
		if err != nil {
			return err
		}
		if mainBranch, err = branches.GetForUpdate(ctx, mainBranch.ID); err != nil {
			return err
		}
		to, err := branches.GetForUpdate(ctx, in.ToBranchID)
		if err != nil {
			return err
		}

		alloc, err = ledger.NewAllocation(mainBranch, to, in.Amount, in.Description, p.Actor())
		if err != nil {
			return err
		}
		if s.enforceMainBalance {
			current, err := balance(ctx, txs, mainBranch.ID)
			if err != nil {
				return err
			}
			if err := ledger.CheckSufficient(current, in.Amount); err != nil {
				return err
			}
		}

		if err := branches.IncrementAllocatedFunds(ctx, to.ID, in.Amount); err != nil {
			return err
		}
		if err := allocations.Create(ctx, alloc); err != nil {
			return err
		}
		income, expenditure := alloc.Legs(mainBranch, to)
		if err := txs.Create(ctx, income); err != nil {
			return err
		}
		return txs.Create(ctx, expenditure)
	})
	if err != nil {
		log.Error("Fund allocation failed", "error", err)
		return nil, err
	}
	log.Info("Funds allocated", "allocation_id", alloc.ID)
	return alloc, nil
}

// DeleteTransaction removes a transaction. Branch admins may only delete
// transactions of the branch they manage.
func (s *Service) DeleteTransaction(
	ctx context.Context,
	p user.Principal,
	id uuid.UUID,
) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := repository.Get[transactionrepo.Repository](uow)
		if err != nil {
			return err
		}
		t, err := txs.Get(ctx, id)
		if err != nil {
			return err
		}
		if !p.CanAccessBranch(t.BranchID) {
			return fmt.Errorf("%w: transaction belongs to another branch", domain.ErrForbidden)
		}
		return txs.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("Failed to delete transaction", "transaction_id", id, "error", err)
		return err
	}
	s.logger.Info("Transaction deleted", "transaction_id", id, "user_id", p.UserID)
	return nil
}

// ListTransactions returns the newest transactions of active branches
// matching filter, with totals over every matching row. Branch admins only
// see their own branch.
func (s *Service) ListTransactions(
	ctx context.Context,
	p user.Principal,
	filter dto.TransactionFilter,
) (*TransactionPage, error) {
	if !p.IsSuperAdmin() {
		managed, err := p.ManagedBranch()
		if err != nil {
			return nil, err
		}
		filter.BranchID = &managed
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", domain.ErrValidation, filter.Type)
	}
	filter.ActiveBranchesOnly = true
	if filter.Limit <= 0 || filter.Limit > dto.MaxTransactionRows {
		filter.Limit = dto.MaxTransactionRows
	}

	page := &TransactionPage{}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := repository.Get[transactionrepo.Repository](uow)
		if err != nil {
			return err
		}
		if page.Transactions, err = txs.List(ctx, filter); err != nil {
			return err
		}
		page.Totals, err = txs.Totals(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	page.Net = page.Totals.Net()
	return page, nil
}

// ListAllocations returns fund allocations, newest first.
func (s *Service) ListAllocations(
	ctx context.Context,
	p user.Principal,
	filter dto.AllocationFilter,
) (result []*dto.AllocationRead, err error) {
	if err = p.RequireSuperAdmin(); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 || filter.Limit > dto.MaxTransactionRows {
		filter.Limit = dto.MaxTransactionRows
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		allocations, err := repository.Get[allocationrepo.Repository](uow)
		if err != nil {
			return err
		}
		result, err = allocations.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
