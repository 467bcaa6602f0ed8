package relational

import (
	"context"
	"time"

	"order-card-bot/internal/entity"
	"order-card-bot/internal/repository/contract"
	"order-card-bot/internal/repository/specification"
	"order-card-bot/internal/repository/unitofwork"
)

// DraftStore keeps drafts as (operator_id, sequence) rows in Postgres.
type DraftStore struct {
	factory unitofwork.RepositoryFactory
}

func NewDraftStore(factory unitofwork.RepositoryFactory) *DraftStore {
	return &DraftStore{factory: factory}
}

var _ contract.DraftStore = (*DraftStore)(nil)

func (s *DraftStore) Append(ctx context.Context, operatorID int64, draft *entity.Draft) (int, error) {
	var index int
	err := s.factory.Do(ctx, func(uow unitofwork.UnitOfWork) error {
		repo := uow.DraftRepository()
		last, err := repo.MaxSequence(ctx, operatorID)
		if err != nil {
			return err
		}

		stored := draft.Clone()
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = time.Now().UTC()
		}
		if err := repo.Create(ctx, &entity.StoredDraft{
			OperatorID: operatorID,
			Sequence:   last + 1,
			Draft:      stored,
		}); err != nil {
			return err
		}

		count, err := repo.Count(ctx, specification.ByOperator{OperatorID: operatorID})
		if err != nil {
			return err
		}
		index = int(count) - 1
		return nil
	})
	if err != nil {
		return 0, &contract.StorageError{Op: "append", OperatorID: operatorID, Err: err}
	}
	return index, nil
}

func (s *DraftStore) List(ctx context.Context, operatorID int64) ([]*entity.Draft, error) {
	rows, err := s.factory.NewUnitOfWork(ctx).DraftRepository().FindAll(ctx,
		specification.ByOperator{OperatorID: operatorID},
		specification.InCreationOrder(),
	)
	if err != nil {
		return nil, &contract.StorageError{Op: "list", OperatorID: operatorID, Err: err}
	}

	drafts := make([]*entity.Draft, 0, len(rows))
	for _, row := range rows {
		drafts = append(drafts, row.Draft)
	}
	return drafts, nil
}

func (s *DraftStore) Replace(ctx context.Context, operatorID int64, index int, draft *entity.Draft) (bool, error) {
	if index < 0 {
		return false, nil
	}

	var found bool
	err := s.factory.Do(ctx, func(uow unitofwork.UnitOfWork) error {
		repo := uow.DraftRepository()
		row, err := repo.FindOne(ctx,
			specification.ByOperator{OperatorID: operatorID},
			specification.AtPosition{Index: index},
		)
		if err != nil || row == nil {
			return err
		}

		row.Draft = draft.Clone()
		if err := repo.Update(ctx, row); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, &contract.StorageError{Op: "replace", OperatorID: operatorID, Err: err}
	}
	return found, nil
}

func (s *DraftStore) Clear(ctx context.Context, operatorID int64) error {
	if err := s.factory.NewUnitOfWork(ctx).DraftRepository().DeleteAllByOperator(ctx, operatorID); err != nil {
		return &contract.StorageError{Op: "clear", OperatorID: operatorID, Err: err}
	}
	return nil
}
