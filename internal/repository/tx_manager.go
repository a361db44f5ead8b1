package repository

import (
	"context"

	"gorm.io/gorm"
)

type ctxKey int

// activeTxKey carries the open gorm transaction through a request's context.
const activeTxKey ctxKey = iota

// TransactionManager runs a unit of work inside a single database
// transaction. Repositories invoked with the context it hands to fn join
// that transaction through GetDB, so a multi-repository write commits or
// rolls back as one.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, activeTxKey, tx))
	})
}

// GetDB returns the transaction stored in ctx when one is open, otherwise
// the root database handle.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(activeTxKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
