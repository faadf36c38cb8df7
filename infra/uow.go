package infra

import (
	"context"
	"fmt"
	"reflect"

	"github.com/amirasaad/branchledger/infra/repository/allocation"
	"github.com/amirasaad/branchledger/infra/repository/branch"
	"github.com/amirasaad/branchledger/infra/repository/category"
	"github.com/amirasaad/branchledger/infra/repository/report"
	"github.com/amirasaad/branchledger/infra/repository/transaction"
	"github.com/amirasaad/branchledger/infra/repository/user"
	"github.com/amirasaad/branchledger/pkg/repository"
	allocationrepo "github.com/amirasaad/branchledger/pkg/repository/allocation"
	branchrepo "github.com/amirasaad/branchledger/pkg/repository/branch"
	categoryrepo "github.com/amirasaad/branchledger/pkg/repository/category"
	reportrepo "github.com/amirasaad/branchledger/pkg/repository/report"
	transactionrepo "github.com/amirasaad/branchledger/pkg/repository/transaction"
	userrepo "github.com/amirasaad/branchledger/pkg/repository/user"
	"gorm.io/gorm"
)

// UoW provides the transaction boundary and repository access in one abstraction.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{
		db: db,
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			repoKey((*branchrepo.Repository)(nil)):      func(db *gorm.DB) any { return branch.New(db) },
			repoKey((*categoryrepo.Repository)(nil)):    func(db *gorm.DB) any { return category.New(db) },
			repoKey((*transactionrepo.Repository)(nil)): func(db *gorm.DB) any { return transaction.New(db) },
			repoKey((*allocationrepo.Repository)(nil)):  func(db *gorm.DB) any { return allocation.New(db) },
			repoKey((*userrepo.Repository)(nil)):        func(db *gorm.DB) any { return user.New(db) },
			repoKey((*reportrepo.Repository)(nil)):      func(db *gorm.DB) any { return report.New(db) },
		},
	}
}

func repoKey(repoType any) reflect.Type {
	t := reflect.TypeOf(repoType)
	if t != nil && t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

// Do runs fn in a database transaction. Nested calls join the outer transaction.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx, repoRegistry: u.repoRegistry})
	})
}

// GetRepository returns the repository registered for repoType, bound to the
// transaction when called inside Do and to the pool otherwise.
func (u *UoW) GetRepository(repoType any) (any, error) {
	constructor, ok := u.repoRegistry[repoKey(repoType)]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %T", repoType)
	}
	session := u.tx
	if session == nil {
		session = u.db
	}
	return constructor(session), nil
}

var _ repository.UnitOfWork = (*UoW)(nil)
