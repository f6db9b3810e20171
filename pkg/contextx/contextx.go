// Package contextx 在 context 中传递事务句柄，供仓储与 outbox 在同一事务内写入
package contextx

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// WithTx 返回携带事务的 context
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTx 取出事务，没有时返回 nil
func GetTx(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return nil
	}
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

// DB 返回 context 中的事务，否则返回 fallback
func DB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx := GetTx(ctx); tx != nil {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}
