package implementation

import (
	"context"
	"database/sql"
	"errors"

	"order-card-bot/internal/entity"
	"order-card-bot/internal/mapper"
	"order-card-bot/internal/model"
	"order-card-bot/internal/repository/contract"
	"order-card-bot/internal/repository/specification"

	"gorm.io/gorm"
)

type DraftRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DraftMapper
}

func NewDraftRepository(db *gorm.DB) contract.DraftRepository {
	return &DraftRepositoryImpl{
		db:     db,
		mapper: mapper.NewDraftMapper(),
	}
}

func (r *DraftRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DraftRepositoryImpl) Create(ctx context.Context, draft *entity.StoredDraft) error {
	m, err := r.mapper.ToModel(draft)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	draft.ID = m.Id
	draft.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *DraftRepositoryImpl) Update(ctx context.Context, draft *entity.StoredDraft) error {
	m, err := r.mapper.ToModel(draft)
	if err != nil {
		return err
	}
	// only the payload columns change; identity and sequence are fixed at creation
	return r.db.WithContext(ctx).
		Model(&model.Draft{}).
		Where("id = ?", m.Id).
		Updates(map[string]interface{}{
			"title":   m.Title,
			"payload": m.Payload,
		}).Error
}

func (r *DraftRepositoryImpl) DeleteAllByOperator(ctx context.Context, operatorID int64) error {
	return r.db.WithContext(ctx).Where("operator_id = ?", operatorID).Delete(&model.Draft{}).Error
}

func (r *DraftRepositoryImpl) MaxSequence(ctx context.Context, operatorID int64) (int, error) {
	var maxSeq sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&model.Draft{}).
		Where("operator_id = ?", operatorID).
		Select("MAX(sequence)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	if !maxSeq.Valid {
		return -1, nil
	}
	return int(maxSeq.Int64), nil
}

func (r *DraftRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StoredDraft, error) {
	var m model.Draft
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *DraftRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StoredDraft, error) {
	var models []*model.Draft
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models)
}

func (r *DraftRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Draft{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
