package payment

import (
	errors "github.com/frahmantamala/payment-orchestration/internal"
	"github.com/frahmantamala/payment-orchestration/internal/core/common/validation"
)

// Request is the ephemeral input to payment processing. It is consumed to
// produce a Transaction and never persisted itself.
type Request struct {
	Amount          int64             `json:"amount"`
	Currency        string            `json:"currency"`
	PaymentMethodID string            `json:"payment_method_id"`
	CustomerID      string            `json:"customer_id"`
	AuthorizeOnly   bool              `json:"authorize_only"`
	IdempotencyKey  string            `json:"idempotency_key,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	ShippingAddress string            `json:"shipping_address,omitempty"`
	ReturnURL       string            `json:"return_url,omitempty"`
}

func (r *Request) Validate() *errors.AppError {
	validator := validation.NewValidator()

	validator.Field("amount", r.Amount).Required().PositiveInt()
	validator.Field("currency", r.Currency).Required().Currency()
	validator.Field("payment_method_id", r.PaymentMethodID).Required()
	validator.Field("customer_id", r.CustomerID).Required()
	validator.Field("idempotency_key", r.IdempotencyKey).MaxLength(255)

	return validator.Validate()
}
