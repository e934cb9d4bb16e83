// Package dbtest opens throwaway SQLite databases carrying the retail schema.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/angelmondragon/retail-backend/pkg/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns a client over a fresh file-backed SQLite database with foreign keys
// enforced and a single pooled connection.
func Open(t testing.TB) *db.Client {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "retail.db") + "?_foreign_keys=1&_busy_timeout=5000"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.MigrateSQLite(context.Background(), conn); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db.NewFromGorm(conn)
}
