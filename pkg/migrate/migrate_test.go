package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/retail-backend/pkg/config"
	"github.com/angelmondragon/retail-backend/pkg/db"
	"github.com/angelmondragon/retail-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1, "expected exactly one %s migration", suffix)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestMigrationsContainConstraints(t *testing.T) {
	cases := map[string][]string{
		"create_customers": {
			"CREATE TABLE IF NOT EXISTS customers",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_email",
			"DROP TABLE IF EXISTS customers",
		},
		"create_products": {
			"CREATE TABLE IF NOT EXISTS products",
			"price NUMERIC(10,2) NOT NULL",
			"CHECK (price >= 0)",
			"CHECK (stock_quantity >= 0)",
			"DROP TABLE IF EXISTS products",
		},
		"create_sales": {
			"CREATE TABLE IF NOT EXISTS sales",
			"REFERENCES customers(customer_id) ON DELETE RESTRICT",
			"REFERENCES products(product_id) ON DELETE RESTRICT",
			"CHECK (quantity > 0)",
			"DROP TABLE IF EXISTS sales",
		},
		"create_orders": {
			"CREATE TABLE IF NOT EXISTS orders",
			"CREATE TABLE IF NOT EXISTS order_items",
			"REFERENCES orders(order_id) ON DELETE CASCADE",
		},
		"create_payments": {
			"CREATE TABLE IF NOT EXISTS payments",
			"REFERENCES orders(order_id)",
		},
	}

	for suffix, checks := range cases {
		t.Run(suffix, func(t *testing.T) {
			content := readMigration(t, suffix)
			for _, sub := range checks {
				assert.Contains(t, content, sub)
			}
		})
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	err := ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid migration filename")

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_no_down.sql"), []byte("-- +goose Up\n"), 0o644))
	err = ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")

	require.Error(t, ValidateDir(t.TempDir()), "empty directory has no migrations")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Sales Index!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_sales_index.sql"), path)
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}

func TestCreateSQLMigrationOrdersAfterLatest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "29990101000000_future.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	path, err := CreateSQLMigration(dir, "next")
	require.NoError(t, err)
	assert.Equal(t, "29990101000001_next.sql", filepath.Base(path))
}

func TestValidateDirRejectsUnbalancedStatements(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_unbalanced.sql"), []byte(body), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unbalanced")
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", Dialect("SQLite"))
	assert.Equal(t, "postgres", Dialect("postgres"))
	assert.Equal(t, "postgres", Dialect(""))
}

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	entries, err := embedded.ReadDir(embeddedDir)
	require.NoError(t, err)
	disk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	require.NoError(t, err)
	assert.Len(t, entries, len(disk))
}

func TestMaybeRunDevSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:"+filepath.Join(t.TempDir(), "dev.db")), &gorm.Config{})
	require.NoError(t, err)
	client := db.NewFromGorm(conn)
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		App:          config.AppConfig{Env: config.AppEnvDev},
		DB:           config.DBConfig{Driver: config.DriverSQLite},
		FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true},
	}
	require.NoError(t, MaybeRunDev(context.Background(), cfg, logger.Nop(), client))

	for _, table := range []string{"customers", "products", "sales"} {
		assert.True(t, conn.Migrator().HasTable(table), "expected table %s", table)
	}

	// second boot against an existing schema
	require.NoError(t, MaybeRunDev(context.Background(), cfg, logger.Nop(), client))
	var refs []struct {
		Table string `gorm:"column:table"`
	}
	require.NoError(t, conn.Raw("PRAGMA foreign_key_list(sales)").Scan(&refs).Error)
	assert.Len(t, refs, 2)
}

func TestMaybeRunDevSkipsOutsideDev(t *testing.T) {
	cfg := &config.Config{
		App:          config.AppConfig{Env: config.AppEnvProd},
		FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true},
	}
	require.NoError(t, MaybeRunDev(context.Background(), cfg, logger.Nop(), nil))
}
