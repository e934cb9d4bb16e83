package product

import (
	"time"

	"github.com/angelmondragon/retail-backend/pkg/db/models"
)

// ProductDTO is the product payload returned to clients. Price is rendered with two decimals.
type ProductDTO struct {
	ID            int64     `json:"product_id"`
	Name          string    `json:"name"`
	Price         string    `json:"price"`
	Category      string    `json:"category"`
	Description   *string   `json:"description,omitempty"`
	StockQuantity int       `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:            product.ID,
		Name:          product.Name,
		Price:         product.Price.StringFixed(2),
		Category:      product.Category,
		Description:   product.Description,
		StockQuantity: product.StockQuantity,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}
