package implementation

import (
	"context"
	"errors"

	"order-card-bot/internal/entity"
	"order-card-bot/internal/mapper"
	"order-card-bot/internal/model"
	"order-card-bot/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CredentialRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CredentialMapper
}

func NewCredentialRepository(db *gorm.DB) contract.CredentialRepository {
	return &CredentialRepositoryImpl{
		db:     db,
		mapper: mapper.NewCredentialMapper(),
	}
}

func (r *CredentialRepositoryImpl) Upsert(ctx context.Context, operatorID int64, creds *entity.Credentials) error {
	m := r.mapper.ToModel(operatorID, creds)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "operator_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"api_key", "token", "board_id", "updated_at"}),
	}).Create(m).Error
}

func (r *CredentialRepositoryImpl) FindByOperator(ctx context.Context, operatorID int64) (*entity.Credentials, error) {
	var m model.OperatorCredential
	if err := r.db.WithContext(ctx).Where("operator_id = ?", operatorID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
