package models

import "time"

// Sale records a quantity of one product sold to one customer. The references to
// customers and products are ON DELETE RESTRICT foreign keys owned by the sales table.
type Sale struct {
	ID         int64     `gorm:"column:sale_id;primaryKey;autoIncrement"`
	CustomerID int64     `gorm:"column:customer_id;not null;index:idx_sales_customer"`
	ProductID  int64     `gorm:"column:product_id;not null;index:idx_sales_product"`
	Quantity   int       `gorm:"column:quantity;not null;check:chk_sales_quantity,quantity > 0"`
	SaleDate   time.Time `gorm:"column:sale_date;not null"`
}

func (Sale) TableName() string { return "sales" }
