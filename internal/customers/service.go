package customer

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
)

const (
	opList   = "customers.list"
	opGet    = "customers.get"
	opCreate = "customers.create"
)

// CustomerDTO is the customer payload returned to clients.
type CustomerDTO struct {
	ID        int64     `json:"customer_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newCustomerDTO(c *models.Customer) *CustomerDTO {
	return &CustomerDTO{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}

// Service manages the customers sales refer to.
type Service interface {
	ListCustomers(ctx context.Context) ([]CustomerDTO, error)
	GetCustomer(ctx context.Context, id int64) (*CustomerDTO, error)
	CreateCustomer(ctx context.Context, fields schema.CustomerFields) (*CustomerDTO, error)
}

type service struct {
	repo    *Repository
	logg    *logger.Logger
	metrics *metrics.OperationMetrics
}

func NewService(repo *Repository, logg *logger.Logger, opMetrics *metrics.OperationMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg, metrics: opMetrics}, nil
}

func (s *service) ListCustomers(ctx context.Context) (_ []CustomerDTO, err error) {
	defer s.finish(ctx, opList, time.Now(), &err)

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, db.StorageError(opList, err)
	}
	out := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *newCustomerDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) GetCustomer(ctx context.Context, id int64) (_ *CustomerDTO, err error) {
	defer s.finish(ctx, opGet, time.Now(), &err)

	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("customer", id)
		}
		return nil, db.StorageError(opGet, err)
	}
	return newCustomerDTO(customer), nil
}

func (s *service) CreateCustomer(ctx context.Context, fields schema.CustomerFields) (_ *CustomerDTO, err error) {
	defer s.finish(ctx, opCreate, time.Now(), &err)

	valid, err := schema.ValidateCustomer(fields)
	if err != nil {
		return nil, err
	}
	customer := &models.Customer{
		FirstName: valid.FirstName,
		LastName:  valid.LastName,
		Email:     valid.Email,
		Phone:     valid.Phone,
		Address:   valid.Address,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Conflict("email already registered")
		}
		return nil, db.StorageError(opCreate, err)
	}
	return newCustomerDTO(customer), nil
}

func (s *service) finish(ctx context.Context, op string, start time.Time, errp *error) {
	err := *errp
	s.metrics.Observe(op, start, err)
	if pkgerrors.IsCode(err, pkgerrors.CodeStorageUnavailable) {
		s.logg.Error(s.logg.WithOperation(ctx, op), "storage operation failed", err)
	}
}
