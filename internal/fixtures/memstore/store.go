// Package memstore provides an in-memory transactional implementation of
// every repository. Do serialises units of work and restores a snapshot of
// the state when the work returns an error.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"sync"

	"github.com/amirasaad/branchledger/pkg/domain/branch"
	"github.com/amirasaad/branchledger/pkg/domain/category"
	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/pkg/repository"
	allocationrepo "github.com/amirasaad/branchledger/pkg/repository/allocation"
	branchrepo "github.com/amirasaad/branchledger/pkg/repository/branch"
	categoryrepo "github.com/amirasaad/branchledger/pkg/repository/category"
	reportrepo "github.com/amirasaad/branchledger/pkg/repository/report"
	transactionrepo "github.com/amirasaad/branchledger/pkg/repository/transaction"
	userrepo "github.com/amirasaad/branchledger/pkg/repository/user"
	"github.com/google/uuid"
)

type memoryState struct {
	branches     map[uuid.UUID]branch.Branch
	categories   map[uuid.UUID]category.Category
	transactions map[uuid.UUID]ledger.Transaction
	allocations  map[uuid.UUID]ledger.FundAllocation
	users        map[uuid.UUID]user.User
}

func newMemoryState() memoryState {
	return memoryState{
		branches:     map[uuid.UUID]branch.Branch{},
		categories:   map[uuid.UUID]category.Category{},
		transactions: map[uuid.UUID]ledger.Transaction{},
		allocations:  map[uuid.UUID]ledger.FundAllocation{},
		users:        map[uuid.UUID]user.User{},
	}
}

func (s memoryState) clone() memoryState {
	return memoryState{
		branches:     maps.Clone(s.branches),
		categories:   maps.Clone(s.categories),
		transactions: maps.Clone(s.transactions),
		allocations:  maps.Clone(s.allocations),
		users:        maps.Clone(s.users),
	}
}

type db struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	state memoryState
}

// Store implements repository.UnitOfWork in memory.
type Store struct {
	db   *db
	inTx bool
}

// New returns an empty store.
func New() *Store {
	return &Store{db: &db{state: newMemoryState()}}
}

// Do runs fn with exclusive access to the store and rolls back on error.
func (s *Store) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.txMu.Lock()
	defer s.db.txMu.Unlock()

	s.db.mu.RLock()
	snapshot := s.db.state.clone()
	s.db.mu.RUnlock()

	if err := fn(&Store{db: s.db, inTx: true}); err != nil {
		s.db.mu.Lock()
		s.db.state = snapshot
		s.db.mu.Unlock()
		return err
	}
	return nil
}

// GetRepository returns the in-memory repository for repoType.
func (s *Store) GetRepository(repoType any) (any, error) {
	t := reflect.TypeOf(repoType)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case reflect.TypeOf((*branchrepo.Repository)(nil)).Elem():
		return &branchRepository{db: s.db}, nil
	case reflect.TypeOf((*categoryrepo.Repository)(nil)).Elem():
		return &categoryRepository{db: s.db}, nil
	case reflect.TypeOf((*transactionrepo.Repository)(nil)).Elem():
		return &transactionRepository{db: s.db}, nil
	case reflect.TypeOf((*allocationrepo.Repository)(nil)).Elem():
		return &allocationRepository{db: s.db}, nil
	case reflect.TypeOf((*userrepo.Repository)(nil)).Elem():
		return &userRepository{db: s.db}, nil
	case reflect.TypeOf((*reportrepo.Repository)(nil)).Elem():
		return &reportRepository{db: s.db}, nil
	}
	return nil, fmt.Errorf("unsupported repository type: %T", repoType)
}

// Counts reports how many rows each table holds.
type Counts struct {
	Branches     int
	Categories   int
	Transactions int
	Allocations  int
	Users        int
}

// Counts returns the current row counts.
func (s *Store) Counts() Counts {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return Counts{
		Branches:     len(s.db.state.branches),
		Categories:   len(s.db.state.categories),
		Transactions: len(s.db.state.transactions),
		Allocations:  len(s.db.state.allocations),
		Users:        len(s.db.state.users),
	}
}

var _ repository.UnitOfWork = (*Store)(nil)
