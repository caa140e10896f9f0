// Package provider defines the capability-described interface every payment
// backend implements, and the registry binding payment-method types to the
// active implementation.
package provider

import (
	"context"

	"github.com/frahmantamala/payment-orchestration/internal"
	riskmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/risk"
	txmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/transaction"
)

type PaymentMethodType string

const (
	MethodCard         PaymentMethodType = "card"
	MethodBankTransfer PaymentMethodType = "bank_transfer"
	MethodWallet       PaymentMethodType = "wallet"
)

// Features are the boolean capability flags a provider advertises. The
// orchestrator and refund service consult these instead of probing methods.
type Features struct {
	ProcessPayments  bool `json:"process_payments"`
	Refunds          bool `json:"refunds"`
	PartialRefunds   bool `json:"partial_refunds"`
	CapturePayments  bool `json:"capture_payments"`
	CancelPayments   bool `json:"cancel_payments"`
	ThreeDSecure     bool `json:"three_d_secure"`
	RecurringBilling bool `json:"recurring_billing"`
}

// ProcessRequest is the provider-facing slice of a payment request. The
// orchestrator builds it after resolving the payment method.
type ProcessRequest struct {
	TransactionID   string
	Amount          int64
	Currency        string
	PaymentMethodID string
	MethodType      PaymentMethodType
	CustomerID      string
	AuthorizeOnly   bool
	IdempotencyKey  string
	Metadata        map[string]string
}

type RefundRequest struct {
	TransactionID string
	ProviderRef   string
	Amount        int64
	Currency      string
	Reason        string
}

type RefundResult struct {
	ProviderRef string
	Status      txmodel.RefundStatus
}

// Provider is implemented once per payment backend. Initialize must be called
// exactly once before any settlement verb; IsConfigured reflects readiness.
// Every verb returns an envelope — providers never panic into the caller.
type Provider interface {
	Name() string
	DisplayName() string
	SupportedPaymentMethods() []PaymentMethodType
	Features() Features

	Initialize(ctx context.Context, creds internal.ProviderCredentials) error
	IsConfigured() bool

	ProcessPayment(ctx context.Context, req *ProcessRequest) *internal.Result[*txmodel.Transaction]
	AuthorizePayment(ctx context.Context, req *ProcessRequest) *internal.Result[*txmodel.Transaction]
	CapturePayment(ctx context.Context, tx *txmodel.Transaction, amount int64) *internal.Result[*txmodel.Transaction]
	CancelPayment(ctx context.Context, tx *txmodel.Transaction) *internal.Result[*txmodel.Transaction]
	RefundPayment(ctx context.Context, req *RefundRequest) *internal.Result[*RefundResult]
}

// RiskAssessor is the optional risk capability. Whether a provider has it is
// decided once at registration time by type assertion, never by per-call
// introspection.
type RiskAssessor interface {
	AssessRisk(ctx context.Context, req *ProcessRequest) *internal.Result[*riskmodel.Assessment]
}
