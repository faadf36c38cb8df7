package infra

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirasaad/branchledger/pkg/repository"
	branchrepo "github.com/amirasaad/branchledger/pkg/repository/branch"
	reportrepo "github.com/amirasaad/branchledger/pkg/repository/report"
	transactionrepo "github.com/amirasaad/branchledger/pkg/repository/transaction"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockUoW(t *testing.T) (*UoW, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDb.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return NewUoW(db), mock
}

func TestUoW_GetRepository(t *testing.T) {
	uow, _ := newMockUoW(t)

	branches, err := repository.Get[branchrepo.Repository](uow)
	require.NoError(t, err)
	assert.NotNil(t, branches)

	reports, err := repository.Get[reportrepo.Repository](uow)
	require.NoError(t, err)
	assert.NotNil(t, reports)

	_, err = uow.GetRepository((*error)(nil))
	assert.Error(t, err)
}

func TestUoW_DoCommits(t *testing.T) {
	uow, mock := newMockUoW(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "transactions" WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(uow repository.UnitOfWork) error {
		txs, err := repository.Get[transactionrepo.Repository](uow)
		if err != nil {
			return err
		}
		return txs.Delete(context.Background(), uuid.New())
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_DoRollsBack(t *testing.T) {
	uow, mock := newMockUoW(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := uow.Do(context.Background(), func(repository.UnitOfWork) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_NestedDoJoinsOuterTransaction(t *testing.T) {
	uow, mock := newMockUoW(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := uow.Do(context.Background(), func(outer repository.UnitOfWork) error {
		calls++
		return outer.Do(context.Background(), func(inner repository.UnitOfWork) error {
			calls++
			assert.Same(t, outer, inner)
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
