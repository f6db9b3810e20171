// Package testutil 测试辅助：临时 SQLite 数据库
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/optionsdesk/pkg/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB 在临时目录创建 SQLite 数据库并迁移给定模型
func NewDB(t testing.TB, models ...any) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: db.NewGormLogger(false, 0),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) > 0 {
		require.NoError(t, gdb.AutoMigrate(models...))
	}
	return gdb
}
