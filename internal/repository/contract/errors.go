package contract

import "fmt"

// StorageError wraps a durable read or write failure of a store operation.
type StorageError struct {
	Op         string
	OperatorID int64
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s for operator %d: %v", e.Op, e.OperatorID, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
