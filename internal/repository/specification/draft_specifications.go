package specification

import "gorm.io/gorm"

// ByOperator scopes a query to one operator's rows.
type ByOperator struct {
	OperatorID int64
}

func (s ByOperator) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("operator_id = ?", s.OperatorID)
}

// AtPosition selects the draft at a zero-based position in creation order.
// Sequences may have gaps after a partial clear, so position is not the sequence number.
type AtPosition struct {
	Index int
}

func (s AtPosition) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("sequence ASC").Offset(s.Index).Limit(1)
}

// InCreationOrder sorts drafts by their sequence number.
func InCreationOrder() Specification {
	return OrderBy{Field: "sequence"}
}
