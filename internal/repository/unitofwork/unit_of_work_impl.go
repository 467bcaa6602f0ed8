package unitofwork

import (
	"context"

	"order-card-bot/internal/repository/contract"
	"order-card-bot/internal/repository/implementation"

	"gorm.io/gorm"
)

type gormUnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

func newGormUnitOfWork(db *gorm.DB) *gormUnitOfWork {
	return &gormUnitOfWork{db: db}
}

// conn is the open transaction if any, else the pool.
func (u *gormUnitOfWork) conn() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *gormUnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return ErrTransactionStarted
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *gormUnitOfWork) Commit() error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *gormUnitOfWork) Rollback() error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *gormUnitOfWork) DraftRepository() contract.DraftRepository {
	return implementation.NewDraftRepository(u.conn())
}

func (u *gormUnitOfWork) CredentialRepository() contract.CredentialRepository {
	return implementation.NewCredentialRepository(u.conn())
}
