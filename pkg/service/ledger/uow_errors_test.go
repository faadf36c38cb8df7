package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/amirasaad/branchledger/internal/fixtures"
	"github.com/amirasaad/branchledger/internal/fixtures/mocks"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/pkg/repository"
	ledgersvc "github.com/amirasaad/branchledger/pkg/service/ledger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var root = user.Principal{UserID: uuid.New(), Role: user.RoleSuperAdmin}

func TestGetBalance_UoWError(t *testing.T) {
	t.Parallel()
	uow := mocks.NewMockUnitOfWork(t)
	expectedErr := errors.New("connection refused")
	uow.EXPECT().Do(mock.Anything, mock.Anything).Return(expectedErr).Once()

	svc := ledgersvc.New(uow, nil, fixtures.Logger())
	bal, err := svc.GetBalance(context.Background(), root, uuid.New())
	require.ErrorIs(t, err, expectedErr)
	assert.True(t, bal.IsZero())
}

func TestAllocateFunds_RepositoryLookupError(t *testing.T) {
	t.Parallel()
	uow := mocks.NewMockUnitOfWork(t)
	expectedErr := errors.New("unsupported repository type")
	uow.EXPECT().Do(mock.Anything, mock.Anything).RunAndReturn(
		func(ctx context.Context, fn func(repository.UnitOfWork) error) error {
			return fn(uow)
		},
	).Once()
	uow.EXPECT().GetRepository(mock.Anything).Return(nil, expectedErr).Once()

	svc := ledgersvc.New(uow, nil, fixtures.Logger())
	alloc, err := svc.AllocateFunds(context.Background(), root, ledgersvc.AllocateInput{
		ToBranchID: uuid.New(),
		Amount:     dec("10"),
	})
	require.ErrorIs(t, err, expectedErr)
	assert.Nil(t, alloc)
}

func TestRecordTransaction_ValidationBeforeUoW(t *testing.T) {
	t.Parallel()
	uow := mocks.NewMockUnitOfWork(t)

	svc := ledgersvc.New(uow, nil, fixtures.Logger())
	_, err := svc.RecordTransaction(context.Background(), root, ledgersvc.RecordInput{
		BranchID: uuid.New(),
		Type:     "income",
		Amount:   dec("0.001"),
	})
	require.Error(t, err)
	uow.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}
