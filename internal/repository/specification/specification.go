package specification

import (
	"fmt"

	"gorm.io/gorm"
)

// Specification narrows a gorm query.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	if s.Desc {
		return db.Order(fmt.Sprintf("%s DESC", s.Field))
	}
	return db.Order(fmt.Sprintf("%s ASC", s.Field))
}
