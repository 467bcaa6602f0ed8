package mapper

import (
	"encoding/json"
	"fmt"

	"order-card-bot/internal/entity"
	"order-card-bot/internal/model"

	"gorm.io/datatypes"
)

type DraftMapper struct{}

func NewDraftMapper() *DraftMapper {
	return &DraftMapper{}
}

func (m *DraftMapper) ToEntity(d *model.Draft) (*entity.StoredDraft, error) {
	if d == nil {
		return nil, nil
	}

	var draft entity.Draft
	if err := json.Unmarshal(d.Payload, &draft); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", d.Id, err)
	}

	return &entity.StoredDraft{
		ID:         d.Id,
		OperatorID: d.OperatorId,
		Sequence:   d.Sequence,
		Draft:      &draft,
		UpdatedAt:  d.UpdatedAt,
	}, nil
}

func (m *DraftMapper) ToModel(d *entity.StoredDraft) (*model.Draft, error) {
	if d == nil || d.Draft == nil {
		return nil, fmt.Errorf("draft payload is required")
	}

	payload, err := json.Marshal(d.Draft)
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}

	return &model.Draft{
		Id:         d.ID,
		OperatorId: d.OperatorID,
		Sequence:   d.Sequence,
		Title:      d.Draft.Title,
		Payload:    datatypes.JSON(payload),
		CreatedAt:  d.Draft.CreatedAt,
	}, nil
}

func (m *DraftMapper) ToEntities(drafts []*model.Draft) ([]*entity.StoredDraft, error) {
	result := make([]*entity.StoredDraft, 0, len(drafts))
	for _, d := range drafts {
		e, err := m.ToEntity(d)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, nil
}
