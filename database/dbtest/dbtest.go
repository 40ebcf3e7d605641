// Package dbtest 为测试提供隔离的内存数据库
package dbtest

import (
	"fmt"
	"testing"

	"github.com/anoixa/bandpress/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewProvider 创建已建表的内存 SQLite，每次调用一个独立的库
func NewProvider(t testing.TB, app string) *database.GormProvider {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, app))

	p := database.NewProviderFromDB(db, "sqlite")
	t.Cleanup(func() { _ = p.Close() })
	return p
}
