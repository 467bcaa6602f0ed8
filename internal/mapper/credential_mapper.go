package mapper

import (
	"order-card-bot/internal/entity"
	"order-card-bot/internal/model"
)

type CredentialMapper struct{}

func NewCredentialMapper() *CredentialMapper {
	return &CredentialMapper{}
}

func (m *CredentialMapper) ToEntity(c *model.OperatorCredential) *entity.Credentials {
	if c == nil {
		return nil
	}
	return &entity.Credentials{
		APIKey:  c.ApiKey,
		Token:   c.Token,
		BoardID: c.BoardId,
	}
}

func (m *CredentialMapper) ToModel(operatorID int64, c *entity.Credentials) *model.OperatorCredential {
	if c == nil {
		return nil
	}
	return &model.OperatorCredential{
		OperatorId: operatorID,
		ApiKey:     c.APIKey,
		Token:      c.Token,
		BoardId:    c.BoardID,
	}
}
