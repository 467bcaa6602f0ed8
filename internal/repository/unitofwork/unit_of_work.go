package unitofwork

import (
	"context"
	"errors"

	"order-card-bot/internal/repository/contract"
)

var (
	ErrTransactionStarted = errors.New("transaction already started")
	ErrNoTransaction      = errors.New("no transaction in progress")
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DraftRepository() contract.DraftRepository
	CredentialRepository() contract.CredentialRepository
}
