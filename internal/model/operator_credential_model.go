package model

import "time"

type OperatorCredential struct {
	OperatorId int64     `gorm:"primaryKey;autoIncrement:false"`
	ApiKey     string    `gorm:"type:varchar(255);not null"`
	Token      string    `gorm:"type:text;not null"`
	BoardId    string    `gorm:"type:varchar(64);not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (OperatorCredential) TableName() string {
	return "operator_credentials"
}
