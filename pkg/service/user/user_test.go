package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/branchledger/internal/fixtures"
	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/amirasaad/branchledger/pkg/repository"
	transactionrepo "github.com/amirasaad/branchledger/pkg/repository/transaction"
	usersvc "github.com/amirasaad/branchledger/pkg/service/user"
	"github.com/amirasaad/branchledger/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func input(username string) usersvc.CreateInput {
	return usersvc.CreateInput{
		Username:        username,
		Email:           username + "@example.com",
		FirstName:       "Ada",
		LastName:        "Obi",
		Password:        "pass1",
		ConfirmPassword: "pass1",
	}
}

func TestCreateBranchAdmin(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := usersvc.New(w.Store, fixtures.Logger())
	ctx := context.Background()

	in := input("alice")
	in.BranchID = &w.Sub.ID
	u, err := svc.CreateBranchAdmin(ctx, w.Super, in)
	require.NoError(t, err)
	assert.Equal(t, user.RoleBranchAdmin, u.Role)
	assert.NotEqual(t, "pass1", u.Password)
	assert.True(t, utils.CheckPasswordHash("pass1", u.Password))
	assert.Equal(t, "Ada Obi", u.FullName())

	_, err = svc.CreateBranchAdmin(ctx, w.Super, input("alice"))
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	bad := input("bob")
	bad.ConfirmPassword = "pass2"
	_, err = svc.CreateBranchAdmin(ctx, w.Super, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	short := input("carol")
	short.Password, short.ConfirmPassword = "abc", "abc"
	_, err = svc.CreateBranchAdmin(ctx, w.Super, short)
	assert.ErrorIs(t, err, domain.ErrValidation)

	missing := uuid.New()
	orphan := input("dave")
	orphan.BranchID = &missing
	_, err = svc.CreateBranchAdmin(ctx, w.Super, orphan)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.CreateBranchAdmin(ctx, fixtures.BranchAdmin(w.Sub.ID), input("eve"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateSuperAdmin(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := usersvc.New(w.Store, fixtures.Logger())

	in := input("owner")
	in.BranchID = &w.Sub.ID
	u, err := svc.CreateSuperAdmin(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, u.IsSuperAdmin())
	assert.Nil(t, u.BranchID)
}

func TestListAndGet(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := usersvc.New(w.Store, fixtures.Logger())
	ctx := context.Background()
	a := w.AddUser(t, "a", user.RoleBranchAdmin, &w.Sub.ID)
	w.AddUser(t, "b", user.RoleBranchAdmin, nil)

	admins, err := svc.ListBranchAdmins(ctx, w.Super)
	require.NoError(t, err)
	assert.Len(t, admins, 2)

	self, err := svc.Get(ctx, a.Principal(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", self.Username)

	_, err = svc.Get(ctx, a.Principal(), w.Super.UserID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.ListBranchAdmins(ctx, a.Principal())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestToggleStatus(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := usersvc.New(w.Store, fixtures.Logger())
	ctx := context.Background()
	a := w.AddUser(t, "a", user.RoleBranchAdmin, nil)

	u, err := svc.ToggleStatus(ctx, w.Super, a.ID)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	u, err = svc.ToggleStatus(ctx, w.Super, a.ID)
	require.NoError(t, err)
	assert.True(t, u.IsActive)

	_, err = svc.ToggleStatus(ctx, w.Super, w.Super.UserID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestResetPassword(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := usersvc.New(w.Store, fixtures.Logger())
	ctx := context.Background()
	a := w.AddUser(t, "a", user.RoleBranchAdmin, nil)

	require.NoError(t, svc.ResetPassword(ctx, w.Super, a.ID, "newpass", "newpass"))
	got, err := svc.Get(ctx, w.Super, a.ID)
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("newpass", got.Password))

	assert.ErrorIs(t, svc.ResetPassword(ctx, w.Super, a.ID, "x", "x"), domain.ErrValidation)
	assert.ErrorIs(t, svc.ResetPassword(ctx, w.Super, a.ID, "newpass", "other"), domain.ErrValidation)
	assert.ErrorIs(t, svc.ResetPassword(ctx, w.Super, uuid.New(), "newpass", "newpass"), domain.ErrNotFound)
}

func TestDelete_ReassignsRecords(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := usersvc.New(w.Store, fixtures.Logger())
	ctx := context.Background()
	a := w.AddUser(t, "a", user.RoleBranchAdmin, &w.Sub.ID)

	tx := w.Post(t, w.Sub.ID, ledger.TypeIncome, "10", time.Now())
	require.NoError(t, w.Store.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[transactionrepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, tx.ID); err != nil {
			return err
		}
		tx.CreatedBy = &a.ID
		return repo.Create(ctx, tx)
	}))

	require.NoError(t, svc.Delete(ctx, w.Super, a.ID))
	_, err := svc.Get(ctx, w.Super, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var rows []*dto.TransactionRead
	require.NoError(t, w.Store.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[transactionrepo.Repository](uow)
		if err != nil {
			return err
		}
		rows, err = repo.List(ctx, dto.TransactionFilter{})
		return err
	}))
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].CreatedBy)
	assert.Equal(t, w.Super.UserID, *rows[0].CreatedBy)

	assert.ErrorIs(t, svc.Delete(ctx, w.Super, w.Super.UserID), domain.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, a.Principal(), w.Super.UserID), domain.ErrForbidden)
}
