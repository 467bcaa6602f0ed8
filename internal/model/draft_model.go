package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Draft struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OperatorId int64          `gorm:"not null;uniqueIndex:idx_drafts_operator_sequence,priority:1"`
	Sequence   int            `gorm:"not null;uniqueIndex:idx_drafts_operator_sequence,priority:2"`
	Title      string         `gorm:"type:varchar(512);not null"`
	Payload    datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
}

func (Draft) TableName() string {
	return "drafts"
}
