package dbtest

import (
	"testing"
	"time"

	"github.com/angelmondragon/retail-backend/pkg/db"
	"github.com/angelmondragon/retail-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type foreignKey struct {
	Table    string `gorm:"column:table"`
	From     string `gorm:"column:from"`
	To       string `gorm:"column:to"`
	OnDelete string `gorm:"column:on_delete"`
}

func foreignKeys(t *testing.T, client *db.Client, table string) []foreignKey {
	t.Helper()
	var keys []foreignKey
	require.NoError(t, client.DB().Raw("PRAGMA foreign_key_list(" + table + ")").Scan(&keys).Error)
	return keys
}

func seed(t *testing.T, client *db.Client) (*models.Customer, *models.Product) {
	t.Helper()
	customer := &models.Customer{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	require.NoError(t, client.DB().Create(customer).Error)
	product := &models.Product{Name: "Lamp", Price: decimal.RequireFromString("19.99"), Category: "home", StockQuantity: 3}
	require.NoError(t, client.DB().Create(product).Error)
	return customer, product
}

func TestOpenSalesOwnTheForeignKeys(t *testing.T) {
	client := Open(t)

	keys := foreignKeys(t, client, "sales")
	require.Len(t, keys, 2)
	byColumn := map[string]foreignKey{}
	for _, k := range keys {
		byColumn[k.From] = k
	}
	assert.Equal(t, foreignKey{Table: "customers", From: "customer_id", To: "customer_id", OnDelete: "RESTRICT"}, byColumn["customer_id"])
	assert.Equal(t, foreignKey{Table: "products", From: "product_id", To: "product_id", OnDelete: "RESTRICT"}, byColumn["product_id"])

	assert.Empty(t, foreignKeys(t, client, "customers"))
	assert.Empty(t, foreignKeys(t, client, "products"))
}

func TestOpenRejectsSaleForUnknownCustomer(t *testing.T) {
	client := Open(t)
	_, product := seed(t, client)

	err := client.DB().Create(&models.Sale{CustomerID: 404, ProductID: product.ID, Quantity: 1, SaleDate: time.Now()}).Error
	require.Error(t, err)
	assert.True(t, db.IsForeignKeyViolation(err), "unexpected error: %v", err)
}

func TestOpenRestrictsDeletingReferencedProduct(t *testing.T) {
	client := Open(t)
	customer, product := seed(t, client)
	require.NoError(t, client.DB().Create(&models.Sale{CustomerID: customer.ID, ProductID: product.ID, Quantity: 1, SaleDate: time.Now()}).Error)

	err := client.DB().Delete(&models.Product{}, product.ID).Error
	require.Error(t, err)
	assert.True(t, db.IsForeignKeyViolation(err), "unexpected error: %v", err)

	var count int64
	require.NoError(t, client.DB().Model(&models.Product{}).Where("product_id = ?", product.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOpenRejectsNonPositiveSaleQuantity(t *testing.T) {
	client := Open(t)
	customer, product := seed(t, client)

	err := client.DB().Create(&models.Sale{CustomerID: customer.ID, ProductID: product.ID, Quantity: 0, SaleDate: time.Now()}).Error
	require.Error(t, err)
	assert.True(t, db.IsCheckViolation(err), "unexpected error: %v", err)
}
