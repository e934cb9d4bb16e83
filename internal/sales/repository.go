package sale

import (
	"context"
	"time"

	"github.com/angelmondragon/retail-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists sales and performs the stock guard they depend on.
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

// List returns every sale ordered by identity.
func (r *Repository) List(ctx context.Context) ([]models.Sale, error) {
	var sales []models.Sale
	if err := r.db.WithContext(ctx).Order("sale_id ASC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// FindByID loads a single sale or returns gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).First(&sale, "sale_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// Create inserts the sale and populates its generated identity.
func (r *Repository) Create(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

// Replace overwrites customer, product and quantity. sale_date is left untouched.
func (r *Repository) Replace(ctx context.Context, sale *models.Sale) error {
	res := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("sale_id = ?", sale.ID).
		Updates(map[string]any{
			"customer_id": sale.CustomerID,
			"product_id":  sale.ProductID,
			"quantity":    sale.Quantity,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the sale, returning gorm.ErrRecordNotFound when it was absent.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("sale_id = ?", id).Delete(&models.Sale{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindProduct loads the product a sale refers to.
func (r *Repository) FindProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "product_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// CustomerExists reports whether a customer row with the identity exists.
func (r *Repository) CustomerExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("customer_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DecrementStock subtracts qty from the product only when enough stock remains.
// It reports false when the guard rejected the update or the product is gone.
func (r *Repository) DecrementStock(ctx context.Context, productID int64, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("product_id = ? AND stock_quantity >= ?", productID, qty).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", qty),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
