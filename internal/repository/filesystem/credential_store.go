package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"order-card-bot/internal/entity"
	"order-card-bot/internal/pkg/secret"
	"order-card-bot/internal/repository/contract"
)

// CredentialStore keeps every operator's credentials in a single yaml document.
type CredentialStore struct {
	path   string
	sealer *secret.Sealer
	mu     sync.Mutex
}

func NewCredentialStore(dataDir string, sealer *secret.Sealer) *CredentialStore {
	return &CredentialStore{
		path:   filepath.Join(dataDir, "credentials.yaml"),
		sealer: sealer,
	}
}

var _ contract.CredentialStore = (*CredentialStore)(nil)

func (s *CredentialStore) load() (map[int64]entity.Credentials, error) {
	all := make(map[int64]entity.Credentials)
	if err := readYAML(s.path, &all); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return all, nil
		}
		return nil, err
	}
	return all, nil
}

func (s *CredentialStore) Find(ctx context.Context, operatorID int64) (entity.Lookup[*entity.Credentials], error) {
	if err := ctx.Err(); err != nil {
		return entity.Lookup[*entity.Credentials]{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return entity.Lookup[*entity.Credentials]{}, &contract.StorageError{Op: "find credentials", OperatorID: operatorID, Err: err}
	}

	creds, ok := all[operatorID]
	if !ok {
		return entity.NotConfigured[*entity.Credentials](), nil
	}

	token, err := s.sealer.Open(creds.Token)
	if err != nil {
		return entity.Lookup[*entity.Credentials]{}, &contract.StorageError{Op: "find credentials", OperatorID: operatorID, Err: err}
	}
	creds.Token = token
	return entity.Found(&creds), nil
}

func (s *CredentialStore) Save(ctx context.Context, operatorID int64, creds *entity.Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return &contract.StorageError{Op: "save credentials", OperatorID: operatorID, Err: err}
	}

	token, err := s.sealer.Seal(creds.Token)
	if err != nil {
		return &contract.StorageError{Op: "save credentials", OperatorID: operatorID, Err: err}
	}
	sealed := *creds
	sealed.Token = token
	all[operatorID] = sealed

	if err := writeYAML(s.path, all); err != nil {
		return &contract.StorageError{Op: "save credentials", OperatorID: operatorID, Err: err}
	}
	return nil
}
