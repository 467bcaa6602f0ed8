package relational

import (
	"context"

	"order-card-bot/internal/entity"
	"order-card-bot/internal/pkg/secret"
	"order-card-bot/internal/repository/contract"
	"order-card-bot/internal/repository/unitofwork"
)

type CredentialStore struct {
	factory unitofwork.RepositoryFactory
	sealer  *secret.Sealer
}

func NewCredentialStore(factory unitofwork.RepositoryFactory, sealer *secret.Sealer) *CredentialStore {
	return &CredentialStore{factory: factory, sealer: sealer}
}

var _ contract.CredentialStore = (*CredentialStore)(nil)

func (s *CredentialStore) Find(ctx context.Context, operatorID int64) (entity.Lookup[*entity.Credentials], error) {
	creds, err := s.factory.NewUnitOfWork(ctx).CredentialRepository().FindByOperator(ctx, operatorID)
	if err != nil {
		return entity.Lookup[*entity.Credentials]{}, &contract.StorageError{Op: "find credentials", OperatorID: operatorID, Err: err}
	}
	if creds == nil {
		return entity.NotConfigured[*entity.Credentials](), nil
	}

	token, err := s.sealer.Open(creds.Token)
	if err != nil {
		return entity.Lookup[*entity.Credentials]{}, &contract.StorageError{Op: "find credentials", OperatorID: operatorID, Err: err}
	}
	creds.Token = token
	return entity.Found(creds), nil
}

func (s *CredentialStore) Save(ctx context.Context, operatorID int64, creds *entity.Credentials) error {
	token, err := s.sealer.Seal(creds.Token)
	if err != nil {
		return &contract.StorageError{Op: "save credentials", OperatorID: operatorID, Err: err}
	}

	sealed := *creds
	sealed.Token = token
	if err := s.factory.NewUnitOfWork(ctx).CredentialRepository().Upsert(ctx, operatorID, &sealed); err != nil {
		return &contract.StorageError{Op: "save credentials", OperatorID: operatorID, Err: err}
	}
	return nil
}
