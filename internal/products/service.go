package product

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
	opList   = "products.list"
	opGet    = "products.get"
	opCreate = "products.create"
	opUpdate = "products.update"
	opDelete = "products.delete"
)

// Service exposes catalogue operations.
type Service interface {
	ListProducts(ctx context.Context) ([]ProductDTO, error)
	GetProduct(ctx context.Context, id int64) (*ProductDTO, error)
	CreateProduct(ctx context.Context, fields schema.ProductFields) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id int64, fields schema.ProductFields) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	logg     *logger.Logger
	metrics  *metrics.OperationMetrics
}

// NewService constructs a product service instance. logg and opMetrics may be nil.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger, opMetrics *metrics.OperationMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
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
	}, nil
}

func (s *service) ListProducts(ctx context.Context) (_ []ProductDTO, err error) {
	defer s.finish(ctx, opList, time.Now(), &err)

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, db.StorageError(opList, err)
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewProductDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) GetProduct(ctx context.Context, id int64) (_ *ProductDTO, err error) {
	defer s.finish(ctx, opGet, time.Now(), &err)

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("product", id)
		}
		return nil, db.StorageError(opGet, err)
	}
	return NewProductDTO(product), nil
}

func (s *service) CreateProduct(ctx context.Context, fields schema.ProductFields) (_ *ProductDTO, err error) {
	defer s.finish(ctx, opCreate, time.Now(), &err)

	valid, err := schema.ValidateProduct(fields)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:          valid.Name,
		Price:         valid.Price,
		Category:      valid.Category,
		Description:   valid.Description,
		StockQuantity: valid.StockQuantity,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, mapWriteError(opCreate, err)
	}
	return NewProductDTO(product), nil
}

func (s *service) UpdateProduct(ctx context.Context, id int64, fields schema.ProductFields) (_ *ProductDTO, err error) {
	defer s.finish(ctx, opUpdate, time.Now(), &err)

	valid, err := schema.ValidateProduct(fields)
	if err != nil {
		return nil, err
	}

	var updated *models.Product
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.NotFound("product", id)
			}
			return err
		}

		current.Name = valid.Name
		current.Price = valid.Price
		current.Category = valid.Category
		current.Description = valid.Description
		current.StockQuantity = valid.StockQuantity
		if err := repo.Replace(ctx, current); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.NotFound("product", id)
			}
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, mapWriteError(opUpdate, err)
	}
	return NewProductDTO(updated), nil
}

// DeleteProduct refuses to remove a product that sales still reference.
func (s *service) DeleteProduct(ctx context.Context, id int64) (err error) {
	defer s.finish(ctx, opDelete, time.Now(), &err)

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.NotFound("product", id)
			}
			return err
		}

		referencing, err := repo.CountSales(ctx, id)
		if err != nil {
			return err
		}
		if referencing > 0 {
			return pkgerrors.Conflict("product is referenced by existing sales").
				WithDetails(map[string]any{
					"reason":     "product is referenced by existing sales",
					"product_id": id,
					"sales":      referencing,
				})
		}

		if err := repo.Delete(ctx, id); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.NotFound("product", id)
			}
			return err
		}
		return nil
	})
	return mapWriteError(opDelete, err)
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
		return pkgerrors.Conflict("product is referenced by existing sales")
	case db.IsCheckViolation(err):
		return pkgerrors.Conflict("product violates a storage constraint")
	}
	return db.StorageError(op, err)
}
