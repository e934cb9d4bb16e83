// Package schema holds the shape and value rules every product and sale write must satisfy
// before it reaches storage. Existence of referenced rows is checked by the services.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/retail-backend/pkg/errors"
)

var validate = newValidator()

// maxPrice is the largest value a NUMERIC(10,2) price column holds.
var maxPrice = decimal.RequireFromString("99999999.99")

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// ProductFields is the raw product payload. Pointers distinguish "absent" from zero.
type ProductFields struct {
	Name          string           `json:"name" validate:"required"`
	Price         *decimal.Decimal `json:"price"`
	Category      string           `json:"category" validate:"required"`
	Description   *string          `json:"description"`
	StockQuantity *int             `json:"stock_quantity" validate:"required,min=0,max=2147483647"`
}

// ValidatedProduct is a product payload that passed ValidateProduct.
type ValidatedProduct struct {
	Name          string
	Price         decimal.Decimal
	Category      string
	Description   *string
	StockQuantity int
}

// SaleFields is the raw sale payload.
type SaleFields struct {
	CustomerID *int64 `json:"customer_id" validate:"required,gt=0"`
	ProductID  *int64 `json:"product_id" validate:"required,gt=0"`
	Quantity   *int   `json:"quantity" validate:"required,gt=0,max=2147483647"`
}

// ValidatedSale is a sale payload that passed ValidateSaleInput.
type ValidatedSale struct {
	CustomerID int64
	ProductID  int64
	Quantity   int
}

// ValidateProduct trims text fields and checks required and range rules.
func ValidateProduct(fields ProductFields) (ValidatedProduct, error) {
	fields.Name = strings.TrimSpace(fields.Name)
	fields.Category = strings.TrimSpace(fields.Category)

	if err := validate.Struct(fields); err != nil {
		return ValidatedProduct{}, firstFieldError(err)
	}
	if fields.Price == nil {
		return ValidatedProduct{}, pkgerrors.Validation("price", "is required")
	}
	if fields.Price.IsNegative() {
		return ValidatedProduct{}, pkgerrors.Validation("price", "must be at least 0")
	}
	price := fields.Price.Round(2)
	if price.GreaterThan(maxPrice) {
		return ValidatedProduct{}, pkgerrors.Validation("price", "must be at most "+maxPrice.StringFixed(2))
	}

	return ValidatedProduct{
		Name:          fields.Name,
		Price:         price,
		Category:      fields.Category,
		Description:   trimOptional(fields.Description),
		StockQuantity: *fields.StockQuantity,
	}, nil
}

// ValidateSaleInput checks the sale shape only; it never touches storage.
func ValidateSaleInput(fields SaleFields) (ValidatedSale, error) {
	if err := validate.Struct(fields); err != nil {
		return ValidatedSale{}, firstFieldError(err)
	}
	return ValidatedSale{
		CustomerID: *fields.CustomerID,
		ProductID:  *fields.ProductID,
		Quantity:   *fields.Quantity,
	}, nil
}

// Struct runs the validate tags of any payload struct and reports the first failing
// field the same way the Validate* functions do.
func Struct(v any) error {
	if err := validate.Struct(v); err != nil {
		return firstFieldError(err)
	}
	return nil
}

func firstFieldError(err error) *pkgerrors.Error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		fe := errs[0]
		return pkgerrors.Validation(fe.Field(), reason(fe))
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email":
		return "must be a valid email address"
	}
	return "is invalid"
}

// CustomerFields is the raw customer payload.
type CustomerFields struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

// ValidateCustomer trims the payload and checks names and email shape.
func ValidateCustomer(fields CustomerFields) (CustomerFields, error) {
	fields.FirstName = strings.TrimSpace(fields.FirstName)
	fields.LastName = strings.TrimSpace(fields.LastName)
	fields.Email = strings.ToLower(strings.TrimSpace(fields.Email))
	fields.Phone = trimOptional(fields.Phone)
	fields.Address = trimOptional(fields.Address)

	if err := validate.Struct(fields); err != nil {
		return CustomerFields{}, firstFieldError(err)
	}
	return fields, nil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
