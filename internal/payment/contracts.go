package payment

import (
	"context"

	"github.com/frahmantamala/payment-orchestration/internal"
	custmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/customer"
	riskmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/risk"
	txmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/transaction"
	"github.com/frahmantamala/payment-orchestration/internal/refund"
	"github.com/frahmantamala/payment-orchestration/internal/risk"
)

// Collaborator contracts the orchestrator depends on. Concrete
// implementations live in their owning packages; tests substitute mocks.

type CustomerAPI interface {
	CreateCustomer(c *custmodel.Customer) (*custmodel.Customer, error)
	GetCustomer(id string) (*custmodel.Customer, error)
	UpdateCustomer(c *custmodel.Customer) (*custmodel.Customer, error)
	ListCustomers(offset, limit int) ([]*custmodel.Customer, int64, error)

	CreatePaymentMethod(m *custmodel.PaymentMethod) (*custmodel.PaymentMethod, error)
	GetPaymentMethod(id string) (*custmodel.PaymentMethod, error)
	ListPaymentMethods(customerID string) ([]*custmodel.PaymentMethod, error)
	DeletePaymentMethod(id string) error
}

type RiskAPI interface {
	Assess(ctx context.Context, input *risk.Input) *internal.Result[*riskmodel.Assessment]
}

type RefundAPI interface {
	Refund(ctx context.Context, req *refund.Request) *internal.Result[*txmodel.Refund]
}
