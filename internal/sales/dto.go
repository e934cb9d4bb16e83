package sale

import (
	"time"

	"github.com/angelmondragon/retail-backend/pkg/db/models"
)

// SaleDTO is the sale payload returned to clients.
type SaleDTO struct {
	ID         int64     `json:"sale_id"`
	CustomerID int64     `json:"customer_id"`
	ProductID  int64     `json:"product_id"`
	Quantity   int       `json:"quantity"`
	SaleDate   time.Time `json:"sale_date"`
}

func NewSaleDTO(sale *models.Sale) *SaleDTO {
	return &SaleDTO{
		ID:         sale.ID,
		CustomerID: sale.CustomerID,
		ProductID:  sale.ProductID,
		Quantity:   sale.Quantity,
		SaleDate:   sale.SaleDate.UTC(),
	}
}
