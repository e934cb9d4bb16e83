package product

import (
	"context"
	"time"

	"github.com/angelmondragon/retail-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists products through GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// List returns every product ordered by identity.
func (r *Repository) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("product_id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByID loads a single product or returns gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "product_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create inserts the product and populates its generated identity.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Replace overwrites every mutable column of the product in one statement.
// It returns gorm.ErrRecordNotFound when no row matched.
func (r *Repository) Replace(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("product_id = ?", product.ID).
		Updates(map[string]any{
			"name":           product.Name,
			"price":          product.Price,
			"category":       product.Category,
			"description":    product.Description,
			"stock_quantity": product.StockQuantity,
			"updated_at":     product.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the product, returning gorm.ErrRecordNotFound when it was absent.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("product_id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountSales returns how many sales reference the product.
func (r *Repository) CountSales(ctx context.Context, id int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("product_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
