package repository

import (
	"context"
	"fmt"
)

// UnitOfWork defines the contract for transactional work and repository access.
//
// All repositories obtained from the UnitOfWork passed to Do share one
// database transaction, so a failed step rolls back every earlier write.
//
//	err := uow.Do(ctx, func(uow repository.UnitOfWork) error {
//		repo, err := repository.Get[branch.Repository](uow)
//		...
//	})
type UnitOfWork interface {
	// Do executes fn within a transaction boundary. If fn returns an error
	// the transaction is rolled back. Calling Do on a UnitOfWork that is
	// already inside a transaction joins it.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// GetRepository returns the repository registered for repoType, bound to
	// the current session. repoType is a typed nil pointer to the repository
	// interface, e.g. (*branch.Repository)(nil).
	GetRepository(repoType any) (any, error)
}

// Get returns the repository of interface type T from uow.
func Get[T any](uow UnitOfWork) (T, error) {
	var zero T
	repoAny, err := uow.GetRepository((*T)(nil))
	if err != nil {
		return zero, err
	}
	repo, ok := repoAny.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected repository type %T", repoAny)
	}
	return repo, nil
}
