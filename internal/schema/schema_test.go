package schema

import (
	"math"
	"testing"

	pkgerrors "github.com/angelmondragon/retail-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimalPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

func requireFieldError(t *testing.T, err error, field, reason string) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, field, details["field"])
	if reason != "" {
		assert.Equal(t, reason, details["reason"])
	}
}

func TestValidateProduct(t *testing.T) {
	valid, err := ValidateProduct(ProductFields{
		Name:          "  Laptop ",
		Price:         decimalPtr("1200.005"),
		Category:      "Electronics",
		Description:   strPtr("   "),
		StockQuantity: intPtr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, "Laptop", valid.Name)
	assert.Equal(t, "1200.01", valid.Price.StringFixed(2))
	assert.Nil(t, valid.Description)
	assert.Equal(t, 0, valid.StockQuantity)
}

func TestValidateProductRejections(t *testing.T) {
	base := func() ProductFields {
		return ProductFields{
			Name:          "Laptop",
			Price:         decimalPtr("10"),
			Category:      "Electronics",
			StockQuantity: intPtr(1),
		}
	}

	cases := []struct {
		name   string
		mutate func(*ProductFields)
		field  string
		reason string
	}{
		{"blank name", func(f *ProductFields) { f.Name = "  " }, "name", "is required"},
		{"blank category", func(f *ProductFields) { f.Category = "" }, "category", "is required"},
		{"missing stock", func(f *ProductFields) { f.StockQuantity = nil }, "stock_quantity", "is required"},
		{"negative stock", func(f *ProductFields) { f.StockQuantity = intPtr(-1) }, "stock_quantity", "must be at least 0"},
		{"missing price", func(f *ProductFields) { f.Price = nil }, "price", "is required"},
		{"negative price", func(f *ProductFields) { f.Price = decimalPtr("-0.01") }, "price", "must be at least 0"},
		{"price overflow", func(f *ProductFields) { f.Price = decimalPtr("100000000") }, "price", "must be at most 99999999.99"},
		{"price rounds past max", func(f *ProductFields) { f.Price = decimalPtr("99999999.995") }, "price", "must be at most 99999999.99"},
		{"stock overflow", func(f *ProductFields) { f.StockQuantity = intPtr(math.MaxInt32 + 1) }, "stock_quantity", "must be at most 2147483647"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := base()
			tc.mutate(&fields)
			_, err := ValidateProduct(fields)
			requireFieldError(t, err, tc.field, tc.reason)
		})
	}
}

func TestValidateSaleInput(t *testing.T) {
	valid, err := ValidateSaleInput(SaleFields{CustomerID: int64Ptr(1), ProductID: int64Ptr(2), Quantity: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, ValidatedSale{CustomerID: 1, ProductID: 2, Quantity: 3}, valid)

	_, err = ValidateSaleInput(SaleFields{CustomerID: int64Ptr(1), ProductID: int64Ptr(2), Quantity: intPtr(0)})
	requireFieldError(t, err, "quantity", "must be greater than 0")

	_, err = ValidateSaleInput(SaleFields{CustomerID: int64Ptr(1), ProductID: int64Ptr(2), Quantity: intPtr(math.MaxInt32 + 1)})
	requireFieldError(t, err, "quantity", "must be at most 2147483647")

	_, err = ValidateSaleInput(SaleFields{ProductID: int64Ptr(2), Quantity: intPtr(1)})
	requireFieldError(t, err, "customer_id", "is required")

	_, err = ValidateSaleInput(SaleFields{CustomerID: int64Ptr(1), Quantity: intPtr(1)})
	requireFieldError(t, err, "product_id", "is required")
}

func TestValidateSaleInputDoesNotCheckExistence(t *testing.T) {
	_, err := ValidateSaleInput(SaleFields{CustomerID: int64Ptr(999999), ProductID: int64Ptr(888888), Quantity: intPtr(1)})
	require.NoError(t, err)
}

func TestValidateCustomer(t *testing.T) {
	valid, err := ValidateCustomer(CustomerFields{
		FirstName: " Ada ",
		LastName:  "Lovelace",
		Email:     " Ada@Example.com ",
		Phone:     strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", valid.FirstName)
	assert.Equal(t, "ada@example.com", valid.Email)
	assert.Nil(t, valid.Phone)

	_, err = ValidateCustomer(CustomerFields{FirstName: "Ada", LastName: "Lovelace", Email: "not-an-email"})
	requireFieldError(t, err, "email", "must be a valid email address")
}
