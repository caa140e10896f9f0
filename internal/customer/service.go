// Package customer owns the supporting customer and payment-method records.
// The orchestration core treats these as referenced-by-id, read-mostly inputs;
// the operations here are plain CRUD with no orchestration logic.
package customer

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/payment-orchestration/internal"
	custmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/customer"
)

type RepositoryAPI interface {
	CreateCustomer(c *custmodel.Customer) error
	GetCustomer(id string) (*custmodel.Customer, error)
	UpdateCustomer(c *custmodel.Customer) error
	ListCustomers(offset, limit int) ([]*custmodel.Customer, int64, error)

	CreatePaymentMethod(m *custmodel.PaymentMethod) error
	GetPaymentMethod(id string) (*custmodel.PaymentMethod, error)
	ListPaymentMethods(customerID string) ([]*custmodel.PaymentMethod, error)
	DeletePaymentMethod(id string) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateCustomer(c *custmodel.Customer) (*custmodel.Customer, error) {
	if c.ID == "" {
		c.ID = "cust_" + uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.repo.CreateCustomer(c); err != nil {
		s.logger.Error("failed to create customer", "error", err)
		return nil, err
	}
	return c, nil
}

func (s *Service) GetCustomer(id string) (*custmodel.Customer, error) {
	c, err := s.repo.GetCustomer(id)
	if err != nil {
		return nil, internal.ErrCustomerNotFound
	}
	return c, nil
}

func (s *Service) UpdateCustomer(c *custmodel.Customer) (*custmodel.Customer, error) {
	c.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateCustomer(c); err != nil {
		s.logger.Error("failed to update customer", "error", err, "customer_id", c.ID)
		return nil, err
	}
	return c, nil
}

func (s *Service) ListCustomers(offset, limit int) ([]*custmodel.Customer, int64, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListCustomers(offset, limit)
}

func (s *Service) CreatePaymentMethod(m *custmodel.PaymentMethod) (*custmodel.PaymentMethod, error) {
	if m.ID == "" {
		m.ID = "pm_" + uuid.New().String()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := s.repo.CreatePaymentMethod(m); err != nil {
		s.logger.Error("failed to create payment method", "error", err, "customer_id", m.CustomerID)
		return nil, err
	}
	return m, nil
}

// GetPaymentMethod resolves a method by id. Unresolvable or expired methods
// surface as payment_method_error so the orchestrator can reject up front.
func (s *Service) GetPaymentMethod(id string) (*custmodel.PaymentMethod, error) {
	m, err := s.repo.GetPaymentMethod(id)
	if err != nil {
		return nil, internal.NewPaymentMethodError("payment method " + id + " not found")
	}
	if m.Expired(time.Now().UTC()) {
		return nil, internal.NewPaymentMethodError("payment method " + id + " is expired")
	}
	return m, nil
}

func (s *Service) ListPaymentMethods(customerID string) ([]*custmodel.PaymentMethod, error) {
	return s.repo.ListPaymentMethods(customerID)
}

func (s *Service) DeletePaymentMethod(id string) error {
	return s.repo.DeletePaymentMethod(id)
}
