package contract

import (
	"context"

	"order-card-bot/internal/entity"
)

// CredentialRepository stores credential rows as given; sealing is the caller's concern.
type CredentialRepository interface {
	Upsert(ctx context.Context, operatorID int64, creds *entity.Credentials) error
	FindByOperator(ctx context.Context, operatorID int64) (*entity.Credentials, error)
}
