package contract

import (
	"context"

	"order-card-bot/internal/entity"
)

// DraftStore is the durable, per-operator ordered collection of drafts.
// Indices are dense (0..N-1) and follow creation order.
type DraftStore interface {
	Append(ctx context.Context, operatorID int64, draft *entity.Draft) (int, error)
	List(ctx context.Context, operatorID int64) ([]*entity.Draft, error)
	// Replace returns false when index is out of range.
	Replace(ctx context.Context, operatorID int64, index int, draft *entity.Draft) (bool, error)
	Clear(ctx context.Context, operatorID int64) error
}

// CredentialStore holds one credential record per operator.
type CredentialStore interface {
	Find(ctx context.Context, operatorID int64) (entity.Lookup[*entity.Credentials], error)
	Save(ctx context.Context, operatorID int64, creds *entity.Credentials) error
}
