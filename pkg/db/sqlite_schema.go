package db

import (
	"context"
	"fmt"

	"github.com/angelmondragon/retail-backend/pkg/db/models"
	"gorm.io/gorm"
)

// sqliteSalesDDL mirrors the sales goose migration. SQLite cannot add foreign keys to
// an existing table, so the table is created by hand instead of through AutoMigrate.
var sqliteSalesDDL = []string{
	`CREATE TABLE IF NOT EXISTS sales (
  sale_id INTEGER PRIMARY KEY AUTOINCREMENT,
  customer_id INTEGER NOT NULL,
  product_id INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  sale_date DATETIME NOT NULL,
  CONSTRAINT chk_sales_quantity CHECK (quantity > 0),
  CONSTRAINT fk_sales_customer FOREIGN KEY (customer_id) REFERENCES customers(customer_id) ON DELETE RESTRICT,
  CONSTRAINT fk_sales_product FOREIGN KEY (product_id) REFERENCES products(product_id) ON DELETE RESTRICT
)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_customer ON sales(customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_product ON sales(product_id)`,
}

// MigrateSQLite brings a SQLite database up to the retail schema. Foreign keys are
// only enforced when the connection was opened with _foreign_keys=1.
func MigrateSQLite(ctx context.Context, conn *gorm.DB) error {
	conn = conn.WithContext(ctx)
	if err := conn.AutoMigrate(&models.Customer{}, &models.Product{}); err != nil {
		return fmt.Errorf("auto-migrating customers and products: %w", err)
	}
	for _, stmt := range sqliteSalesDDL {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("creating sales table: %w", err)
		}
	}
	return nil
}
