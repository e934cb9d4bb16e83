package sale

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/retail-backend/internal/schema"
	"github.com/angelmondragon/retail-backend/pkg/db"
	"github.com/angelmondragon/retail-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/retail-backend/pkg/errors"
	"github.com/angelmondragon/retail-backend/pkg/logger"
	"github.com/angelmondragon/retail-backend/pkg/metrics"
	"gorm.io/gorm"
)

const (
	opList   = "sales.list"
	opGet    = "sales.get"
	opCreate = "sales.create"
	opUpdate = "sales.update"
	opDelete = "sales.delete"

	reasonInsufficientStock = "insufficient stock"
)

// Service records and manages sales.
//
// Inventory is only touched by CreateSale. UpdateSale and DeleteSale never restock or
// re-decrement the product.
type Service interface {
	ListSales(ctx context.Context) ([]SaleDTO, error)
	GetSale(ctx context.Context, id int64) (*SaleDTO, error)
	CreateSale(ctx context.Context, fields schema.SaleFields) (*SaleDTO, error)
	UpdateSale(ctx context.Context, id int64, fields schema.SaleFields) (*SaleDTO, error)
	DeleteSale(ctx context.Context, id int64) error
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	logg     *logger.Logger
	metrics  *metrics.OperationMetrics
	now      func() time.Time
}

// NewService constructs a sale service instance. logg and opMetrics may be nil.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger, opMetrics *metrics.OperationMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sale repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		logg:     logg,
		metrics:  opMetrics,
		now:      time.Now,
	}, nil
}

func (s *service) ListSales(ctx context.Context) (_ []SaleDTO, err error) {
	defer s.finish(ctx, opList, time.Now(), &err)

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, db.StorageError(opList, err)
	}
	out := make([]SaleDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewSaleDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) GetSale(ctx context.Context, id int64) (_ *SaleDTO, err error) {
	defer s.finish(ctx, opGet, time.Now(), &err)

	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("sale", id)
		}
		return nil, db.StorageError(opGet, err)
	}
	return NewSaleDTO(sale), nil
}

// CreateSale checks references, decrements stock with a guarded update and inserts the
// sale. Both writes share one transaction; a concurrent sale that would drive stock
// negative fails with a conflict instead.
func (s *service) CreateSale(ctx context.Context, fields schema.SaleFields) (_ *SaleDTO, err error) {
	defer s.finish(ctx, opCreate, time.Now(), &err)

	valid, err := schema.ValidateSaleInput(fields)
	if err != nil {
		return nil, err
	}

	sale := &models.Sale{
		CustomerID: valid.CustomerID,
		ProductID:  valid.ProductID,
		Quantity:   valid.Quantity,
	}
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := checkReferences(ctx, repo, valid); err != nil {
			return err
		}

		ok, err := repo.DecrementStock(ctx, valid.ProductID, valid.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return s.stockRejection(ctx, repo, valid)
		}

		sale.SaleDate = s.now().UTC()
		return repo.Create(ctx, sale)
	})
	if err != nil {
		return nil, mapWriteError(opCreate, err)
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"sale_id":    sale.ID,
		"product_id": sale.ProductID,
		"quantity":   sale.Quantity,
	})
	s.logg.Info(ctx, "sale recorded")
	return NewSaleDTO(sale), nil
}

// UpdateSale replaces customer, product and quantity without adjusting inventory.
func (s *service) UpdateSale(ctx context.Context, id int64, fields schema.SaleFields) (_ *SaleDTO, err error) {
	defer s.finish(ctx, opUpdate, time.Now(), &err)

	valid, err := schema.ValidateSaleInput(fields)
	if err != nil {
		return nil, err
	}

	var updated *models.Sale
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.NotFound("sale", id)
			}
			return err
		}
		if err := checkReferences(ctx, repo, valid); err != nil {
			return err
		}

		current.CustomerID = valid.CustomerID
		current.ProductID = valid.ProductID
		current.Quantity = valid.Quantity
		if err := repo.Replace(ctx, current); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.NotFound("sale", id)
			}
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, mapWriteError(opUpdate, err)
	}
	return NewSaleDTO(updated), nil
}

// DeleteSale removes the sale record. Stock is not returned to the product.
func (s *service) DeleteSale(ctx context.Context, id int64) (err error) {
	defer s.finish(ctx, opDelete, time.Now(), &err)

	if err := s.repo.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.NotFound("sale", id)
		}
		return db.StorageError(opDelete, err)
	}
	return nil
}

// checkReferences verifies the product first, then the customer.
func checkReferences(ctx context.Context, repo *Repository, valid schema.ValidatedSale) error {
	if _, err := repo.FindProduct(ctx, valid.ProductID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.NotFound("product", valid.ProductID)
		}
		return err
	}
	exists, err := repo.CustomerExists(ctx, valid.CustomerID)
	if err != nil {
		return err
	}
	if !exists {
		return pkgerrors.NotFound("customer", valid.CustomerID)
	}
	return nil
}

// stockRejection re-reads the product inside the transaction to tell a vanished
// product apart from exhausted stock.
func (s *service) stockRejection(ctx context.Context, repo *Repository, valid schema.ValidatedSale) error {
	product, err := repo.FindProduct(ctx, valid.ProductID)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.NotFound("product", valid.ProductID)
		}
		return err
	}

	s.metrics.IncInsufficientStock()
	warnCtx := s.logg.WithFields(ctx, map[string]any{
		"product_id": valid.ProductID,
		"requested":  valid.Quantity,
		"available":  product.StockQuantity,
	})
	s.logg.Warn(warnCtx, "sale rejected: insufficient stock")

	return pkgerrors.Conflict(reasonInsufficientStock).WithDetails(map[string]any{
		"reason":     reasonInsufficientStock,
		"product_id": valid.ProductID,
		"requested":  valid.Quantity,
		"available":  product.StockQuantity,
	})
}

func (s *service) finish(ctx context.Context, op string, start time.Time, errp *error) {
	err := *errp
	s.metrics.Observe(op, start, err)
	if pkgerrors.IsCode(err, pkgerrors.CodeStorageUnavailable) {
		s.logg.Error(s.logg.WithOperation(ctx, op), "storage operation failed", err)
	}
}

func mapWriteError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case pkgerrors.As(err) != nil:
		return err
	case db.IsForeignKeyViolation(err):
		return pkgerrors.New(pkgerrors.CodeNotFound, "referenced customer or product not found")
	case db.IsCheckViolation(err):
		return pkgerrors.Conflict(reasonInsufficientStock)
	}
	return db.StorageError(op, err)
}
