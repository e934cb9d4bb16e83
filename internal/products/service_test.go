package product

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/retail-backend/internal/schema"
	"github.com/angelmondragon/retail-backend/pkg/db"
	"github.com/angelmondragon/retail-backend/pkg/db/dbtest"
	"github.com/angelmondragon/retail-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/retail-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()), client, nil, nil)
	require.NoError(t, err)
	return svc, client
}

func laptopFields(price string, stock int) schema.ProductFields {
	p := decimal.RequireFromString(price)
	return schema.ProductFields{
		Name:          "Laptop",
		Price:         &p,
		Category:      "Electronics",
		StockQuantity: &stock,
	}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code(), "unexpected error: %v", err)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, &db.Client{}, nil, nil)
	require.Error(t, err)
	_, err = NewService(&Repository{}, nil, nil, nil)
	require.Error(t, err)
}

func TestProductRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, laptopFields("1200.00", 5))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", got.Name)
	assert.Equal(t, "1200.00", got.Price)
	assert.Equal(t, "Electronics", got.Category)
	assert.Equal(t, 5, got.StockQuantity)
	assert.Nil(t, got.Description)

	updated, err := svc.UpdateProduct(ctx, created.ID, laptopFields("999.00", 5))
	require.NoError(t, err)
	assert.Equal(t, "999.00", updated.Price)

	got, err = svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "999.00", got.Price)
	assert.Equal(t, "Laptop", got.Name)
	assert.Equal(t, "Electronics", got.Category)
	assert.Equal(t, 5, got.StockQuantity)
}

func TestCreateProductValidation(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	fields := laptopFields("-1", 5)
	_, err := svc.CreateProduct(ctx, fields)
	requireCode(t, err, pkgerrors.CodeValidation)
	assert.Equal(t, "price", pkgerrors.As(err).Details().(map[string]any)["field"])

	fields = laptopFields("10", -1)
	_, err = svc.CreateProduct(ctx, fields)
	requireCode(t, err, pkgerrors.CodeValidation)

	fields = laptopFields("10", 1)
	fields.Name = "   "
	_, err = svc.CreateProduct(ctx, fields)
	requireCode(t, err, pkgerrors.CodeValidation)
	assert.Equal(t, "name", pkgerrors.As(err).Details().(map[string]any)["field"])

	var count int64
	require.NoError(t, client.DB().Model(&models.Product{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateProductValidationDoesNotPartiallyApply(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, laptopFields("1200", 5))
	require.NoError(t, err)

	bad := laptopFields("800", 5)
	bad.Category = ""
	_, err = svc.UpdateProduct(ctx, created.ID, bad)
	requireCode(t, err, pkgerrors.CodeValidation)

	got, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "1200.00", got.Price)
	assert.Equal(t, "Electronics", got.Category)
}

func TestProductNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetProduct(ctx, 42)
	requireCode(t, err, pkgerrors.CodeNotFound)
	assert.Equal(t, map[string]any{"entity": "product", "id": int64(42)}, pkgerrors.As(err).Details())

	_, err = svc.UpdateProduct(ctx, 42, laptopFields("1", 1))
	requireCode(t, err, pkgerrors.CodeNotFound)

	err = svc.DeleteProduct(ctx, 42)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestListProductsIsStableAndOrdered(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Laptop", "Mouse", "Desk"} {
		fields := laptopFields("10", 1)
		fields.Name = name
		_, err := svc.CreateProduct(ctx, fields)
		require.NoError(t, err)
	}

	first, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	second, err := svc.ListProducts(ctx)
	require.NoError(t, err)

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, "Laptop", first[0].Name)
	assert.Equal(t, "Desk", first[2].Name)
}

func TestListProductsEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	list, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestDeleteProductRejectedWhileSalesReferenceIt(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, laptopFields("10", 5))
	require.NoError(t, err)

	customer := &models.Customer{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	require.NoError(t, client.DB().Create(customer).Error)
	sale := &models.Sale{CustomerID: customer.ID, ProductID: created.ID, Quantity: 1, SaleDate: time.Now().UTC()}
	require.NoError(t, client.DB().Create(sale).Error)

	err = svc.DeleteProduct(ctx, created.ID)
	requireCode(t, err, pkgerrors.CodeConflict)

	_, err = svc.GetProduct(ctx, created.ID)
	require.NoError(t, err, "product must survive a rejected delete")

	require.NoError(t, client.DB().Delete(sale).Error)
	require.NoError(t, svc.DeleteProduct(ctx, created.ID))

	_, err = svc.GetProduct(ctx, created.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestCancelledContextIsStorageUnavailable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ListProducts(ctx)
	requireCode(t, err, pkgerrors.CodeStorageUnavailable)
	assert.True(t, pkgerrors.As(err).Retryable())
}
