// Package dbtest 为仓储测试提供基于内存 SQLite 的数据库
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/wyfcoding/jobportal/pkg/db"
)

// Open 打开以测试名隔离的内存库并迁移给定模型
func Open(t testing.TB, models ...interface{}) *db.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	d, err := db.Open(sqlite.Open(dsn), db.Config{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(models) > 0 {
		if err := d.AutoMigrate(models...); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}
