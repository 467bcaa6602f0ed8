package unitofwork

import "context"

type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork

	// Do runs fn inside one transaction. fn's error rolls it back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error
}
