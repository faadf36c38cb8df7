// Package fixtures holds test helpers shared across packages: a populated
// in-memory ledger and principals for each role.
package fixtures

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/branchledger/internal/fixtures/memstore"
	"github.com/amirasaad/branchledger/pkg/domain/branch"
	"github.com/amirasaad/branchledger/pkg/domain/category"
	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/amirasaad/branchledger/pkg/repository"
	branchrepo "github.com/amirasaad/branchledger/pkg/repository/branch"
	categoryrepo "github.com/amirasaad/branchledger/pkg/repository/category"
	transactionrepo "github.com/amirasaad/branchledger/pkg/repository/transaction"
	userrepo "github.com/amirasaad/branchledger/pkg/repository/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// World is an in-memory ledger with a main branch, one sub branch, the
// reserved categories and one global category of each kind.
type World struct {
	Store       *memstore.Store
	Main        *branch.Branch
	Sub         *branch.Branch
	Income      *category.Category
	Expenditure *category.Category
	Super       user.Principal
}

// NewWorld builds a World. The super admin principal is backed by a stored user.
func NewWorld(t testing.TB) *World {
	t.Helper()
	w := &World{Store: memstore.New()}

	admin, err := user.New(user.Params{
		Username: "root",
		Email:    "root@example.com",
		Role:     user.RoleSuperAdmin,
		Password: "secret",
	})
	require.NoError(t, err)
	w.Super = admin.Principal()

	w.Main = w.AddBranch(t, "Head Office", branch.TypeMain)
	w.Sub = w.AddBranch(t, "SubA", branch.TypeSub)
	w.AddCategory(t, category.Reserved(category.KindIncome))
	w.AddCategory(t, category.Reserved(category.KindExpenditure))
	w.Income = w.NewCategory(t, category.Params{Kind: category.KindIncome, Name: "Donations"})
	w.Expenditure = w.NewCategory(t, category.Params{Kind: category.KindExpenditure, Name: "Utilities"})

	w.do(t, func(uow repository.UnitOfWork) error {
		users, err := repository.Get[userrepo.Repository](uow)
		require.NoError(t, err)
		return users.Create(context.Background(), admin)
	})
	return w
}

func (w *World) do(t testing.TB, fn func(uow repository.UnitOfWork) error) {
	t.Helper()
	require.NoError(t, w.Store.Do(context.Background(), fn))
}

// AddBranch stores a new active branch.
func (w *World) AddBranch(t testing.TB, name string, typ branch.Type) *branch.Branch {
	t.Helper()
	b, err := branch.New(branch.Params{Name: name, Type: typ})
	require.NoError(t, err)
	w.do(t, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[branchrepo.Repository](uow)
		require.NoError(t, err)
		return repo.Create(context.Background(), b)
	})
	return b
}

// NewCategory builds and stores a category.
func (w *World) NewCategory(t testing.TB, p category.Params) *category.Category {
	t.Helper()
	c, err := category.New(p)
	require.NoError(t, err)
	w.AddCategory(t, c)
	return c
}

// AddCategory stores c as is.
func (w *World) AddCategory(t testing.TB, c *category.Category) {
	t.Helper()
	w.do(t, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[categoryrepo.Repository](uow)
		require.NoError(t, err)
		return repo.Create(context.Background(), c)
	})
}

// AddUser stores a user with the given role and managed branch.
func (w *World) AddUser(t testing.TB, username string, role user.Role, branchID *uuid.UUID) *user.User {
	t.Helper()
	u, err := user.New(user.Params{Username: username, Role: role, Password: "secret"})
	require.NoError(t, err)
	u.BranchID = branchID
	w.do(t, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[userrepo.Repository](uow)
		require.NoError(t, err)
		return repo.Create(context.Background(), u)
	})
	return u
}

// Post writes a transaction directly, bypassing every business rule.
func (w *World) Post(
	t testing.TB,
	branchID uuid.UUID,
	typ ledger.Type,
	amount string,
	date time.Time,
) *ledger.Transaction {
	t.Helper()
	categoryID := w.Income.ID
	if typ == ledger.TypeExpenditure {
		categoryID = w.Expenditure.ID
	}
	tx, err := ledger.NewTransaction(ledger.TransactionParams{
		BranchID:   branchID,
		Type:       typ,
		Amount:     decimal.RequireFromString(amount),
		Date:       date,
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	w.do(t, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[transactionrepo.Repository](uow)
		require.NoError(t, err)
		return repo.Create(context.Background(), tx)
	})
	return tx
}

// Balance reads the balance of a branch straight from the store.
func (w *World) Balance(t testing.TB, branchID uuid.UUID) decimal.Decimal {
	t.Helper()
	var totals dto.Totals
	w.do(t, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[transactionrepo.Repository](uow)
		require.NoError(t, err)
		totals, err = repo.Totals(context.Background(), dto.TransactionFilter{BranchID: &branchID})
		return err
	})
	return totals.Net()
}

// Branch reloads a branch.
func (w *World) Branch(t testing.TB, id uuid.UUID) *branch.Branch {
	t.Helper()
	var b *branch.Branch
	w.do(t, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[branchrepo.Repository](uow)
		require.NoError(t, err)
		b, err = repo.Get(context.Background(), id)
		return err
	})
	return b
}

// BranchAdmin returns a principal managing branchID without storing a user.
func BranchAdmin(branchID uuid.UUID) user.Principal {
	return user.Principal{UserID: uuid.New(), Role: user.RoleBranchAdmin, BranchID: &branchID}
}

// User reloads a stored user.
func (w *World) User(t testing.TB, userID uuid.UUID) *user.User {
	t.Helper()
	var u *user.User
	w.do(t, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[userrepo.Repository](uow)
		require.NoError(t, err)
		u, err = repo.Get(context.Background(), userID)
		return err
	})
	return u
}

// Principal reloads a stored user and returns its principal.
func (w *World) Principal(t testing.TB, userID uuid.UUID) user.Principal {
	t.Helper()
	return w.User(t, userID).Principal()
}
