package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalogue entry. StockQuantity is only decremented through
// the conditional update in the sales repository.
type Product struct {
	ID            int64           `gorm:"column:product_id;primaryKey;autoIncrement"`
	Name          string          `gorm:"column:name;not null"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null;check:chk_products_price,price >= 0"`
	Category      string          `gorm:"column:category;not null"`
	Description   *string         `gorm:"column:description"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0;check:chk_products_stock,stock_quantity >= 0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }
