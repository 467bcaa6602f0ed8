package contract

import (
	"context"

	"order-card-bot/internal/entity"
	"order-card-bot/internal/repository/specification"
)

type DraftRepository interface {
	Create(ctx context.Context, draft *entity.StoredDraft) error
	Update(ctx context.Context, draft *entity.StoredDraft) error
	DeleteAllByOperator(ctx context.Context, operatorID int64) error
	// MaxSequence returns -1 when the operator has no drafts.
	MaxSequence(ctx context.Context, operatorID int64) (int, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StoredDraft, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StoredDraft, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
