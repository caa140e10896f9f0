// Package payment is the orchestration facade: it validates input, resolves
// the provider, runs the risk merge, dispatches the settlement verb, persists
// the resulting transaction, and normalizes every failure into the envelope.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/frahmantamala/payment-orchestration/internal"
	riskmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/risk"
	txmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/transaction"
	"github.com/frahmantamala/payment-orchestration/internal/core/events"
	"github.com/frahmantamala/payment-orchestration/internal/idempotency"
	"github.com/frahmantamala/payment-orchestration/internal/provider"
	"github.com/frahmantamala/payment-orchestration/internal/refund"
	"github.com/frahmantamala/payment-orchestration/internal/risk"
	transactionpkg "github.com/frahmantamala/payment-orchestration/internal/transaction"
)

// Processor presents the uniform transaction lifecycle over the registered
// providers. All operations require Initialize to have completed; no
// operation mutates a transaction without loading its current state and
// validating the transition first.
//
// Concurrent capture/cancel against the same transaction id is not serialized
// here; deployments must serialize per id at the persistence layer.
type Processor struct {
	cfg          *internal.Config
	registry     *provider.Registry
	riskEngine   RiskAPI
	transactions transactionpkg.RepositoryAPI
	customers    CustomerAPI
	refunds      RefundAPI
	guard        idempotency.Guard
	events       *events.EventBus
	logger       *slog.Logger
	initialized  atomic.Bool
}

type Dependencies struct {
	Registry     *provider.Registry
	RiskEngine   RiskAPI
	Transactions transactionpkg.RepositoryAPI
	Customers    CustomerAPI
	Refunds      RefundAPI
	Guard        idempotency.Guard // optional
	Events       *events.EventBus
	Logger       *slog.Logger
}

// NewProcessor validates configuration up front. Configuration problems are
// fatal here, never returned inside a per-call envelope.
func NewProcessor(cfg *internal.Config, deps Dependencies) (*Processor, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Processor{
		cfg:          cfg,
		registry:     deps.Registry,
		riskEngine:   deps.RiskEngine,
		transactions: deps.Transactions,
		customers:    deps.Customers,
		refunds:      deps.Refunds,
		guard:        deps.Guard,
		events:       deps.Events,
		logger:       deps.Logger,
	}, nil
}

// Initialize is the one-time startup barrier: every provider is initialized
// with its credentials and registered before any processing call is accepted.
func (p *Processor) Initialize(ctx context.Context, providers ...provider.Provider) error {
	if p.initialized.Load() {
		return internal.NewConfigurationError("processor already initialized")
	}

	for _, prov := range providers {
		creds, ok := p.cfg.Providers[prov.Name()]
		if !ok {
			return internal.NewConfigurationError(fmt.Sprintf("no credentials configured for provider %s", prov.Name()))
		}
		if err := prov.Initialize(ctx, creds); err != nil {
			return internal.Normalize(err)
		}
		if !prov.IsConfigured() {
			return internal.NewConfigurationError(fmt.Sprintf("provider %s did not become configured", prov.Name()))
		}
		p.registry.Register(prov)
	}

	p.initialized.Store(true)
	p.logger.Info("payment processor initialized",
		"environment", p.cfg.Environment,
		"default_currency", p.cfg.DefaultCurrency,
		"fraud_detection", p.cfg.FraudDetection.Enabled,
		"providers", len(providers))
	return nil
}

func notInitialized[T any]() *internal.Result[T] {
	return internal.Fail[T](internal.NewConfigurationError("payment processor is not initialized"))
}

// recoverTo converts a panic anywhere below the orchestrator boundary into a
// failure envelope. Callers are never exposed to a raw failure.
func recoverTo[T any](res **internal.Result[T]) {
	if r := recover(); r != nil {
		*res = internal.Fail[T](internal.NewPaymentError(fmt.Sprintf("unexpected failure: %v", r), nil))
	}
}

// ProcessPayment runs the full orchestration sequence for one payment
// request. The provider's envelope is returned verbatim, augmented only by
// the persistence side effect on success.
func (p *Processor) ProcessPayment(ctx context.Context, req *Request) (res *internal.Result[*txmodel.Transaction]) {
	defer recoverTo(&res)

	if !p.initialized.Load() {
		return notInitialized[*txmodel.Transaction]()
	}

	if req.Currency == "" {
		req.Currency = p.cfg.DefaultCurrency
	}
	if appErr := req.Validate(); appErr != nil {
		return internal.Fail[*txmodel.Transaction](appErr)
	}

	if req.IdempotencyKey != "" {
		existing, err := p.transactions.GetByIdempotencyKey(req.IdempotencyKey)
		if err != nil {
			return internal.Fail[*txmodel.Transaction](err)
		}
		if existing != nil {
			return internal.Fail[*txmodel.Transaction](
				internal.NewDuplicateError("idempotency key already used", existing.ID))
		}
		if p.guard != nil {
			duplicate, err := p.guard.Begin(ctx, req.IdempotencyKey)
			if err != nil {
				p.logger.Warn("idempotency guard unavailable, relying on persistence uniqueness",
					"error", err)
			} else if duplicate {
				return internal.Fail[*txmodel.Transaction](
					internal.NewDuplicateError("request with this idempotency key is already in flight", ""))
			}
		}
	}
	releaseGuard := func() {
		if p.guard != nil && req.IdempotencyKey != "" {
			if err := p.guard.Release(ctx, req.IdempotencyKey); err != nil {
				p.logger.Warn("failed to release idempotency claim", "error", err)
			}
		}
	}

	method, err := p.customers.GetPaymentMethod(req.PaymentMethodID)
	if err != nil {
		releaseGuard()
		return internal.Fail[*txmodel.Transaction](internal.NewPaymentMethodError(err.Error()))
	}
	if method.CustomerID != req.CustomerID {
		releaseGuard()
		return internal.Fail[*txmodel.Transaction](
			internal.NewPaymentMethodError("payment method does not belong to customer"))
	}

	procReq := &provider.ProcessRequest{
		TransactionID:   "tx_" + uuid.New().String(),
		Amount:          req.Amount,
		Currency:        req.Currency,
		PaymentMethodID: method.ID,
		MethodType:      provider.PaymentMethodType(method.Type),
		CustomerID:      req.CustomerID,
		AuthorizeOnly:   req.AuthorizeOnly,
		IdempotencyKey:  req.IdempotencyKey,
		Metadata:        req.Metadata,
	}

	var assessment *riskmodel.Assessment
	if p.cfg.FraudDetection.Enabled {
		cust, custErr := p.customers.GetCustomer(req.CustomerID)
		if custErr != nil {
			cust = nil
		}
		riskResult := p.riskEngine.Assess(ctx, &risk.Input{
			Request:  procReq,
			Customer: cust,
			Method:   method,
		})
		if !riskResult.Success {
			releaseGuard()
			return internal.FailFrom[*txmodel.Transaction](riskResult)
		}
		assessment = riskResult.Data

		if assessment.Level == riskmodel.LevelHigh && p.cfg.FraudDetection.Thresholds.HighRisk > 0 {
			releaseGuard()
			p.logger.Warn("payment blocked by risk decision",
				"customer_id", req.CustomerID,
				"risk_score", assessment.Score)
			appErr := &internal.AppError{
				Type:       internal.ErrorTypeFraud,
				Code:       internal.ErrCodeHighRiskPayment,
				Message:    "payment blocked: combined risk level is high",
				StatusCode: 403,
				Details:    assessment,
			}
			return internal.Fail[*txmodel.Transaction](appErr)
		}
	}

	prov, ok := p.registry.Get(procReq.MethodType)
	if !ok {
		releaseGuard()
		return internal.Fail[*txmodel.Transaction](internal.ErrProviderNotFound)
	}

	var result *internal.Result[*txmodel.Transaction]
	if req.AuthorizeOnly {
		result = prov.AuthorizePayment(ctx, procReq)
	} else {
		result = prov.ProcessPayment(ctx, procReq)
	}
	if !result.Success {
		releaseGuard()
		return result
	}

	tx := result.Data
	if assessment != nil {
		score := assessment.Score
		level := string(assessment.Level)
		tx.RiskScore = &score
		tx.RiskLevel = &level
	}

	if err := p.transactions.Save(tx); err != nil {
		releaseGuard()
		p.logger.Error("failed to persist transaction", "error", err, "transaction_id", tx.ID)
		return internal.Fail[*txmodel.Transaction](err)
	}

	if p.guard != nil && req.IdempotencyKey != "" {
		if err := p.guard.Complete(ctx, req.IdempotencyKey); err != nil {
			p.logger.Warn("failed to mark idempotency key completed", "error", err)
		}
	}

	eventType := events.EventTypeTransactionCaptured
	if tx.Status == txmodel.StatusAuthorized {
		eventType = events.EventTypeTransactionAuthorized
	}
	p.events.Publish(ctx, events.NewTransactionEvent(
		eventType, tx.ID, tx.CustomerID, tx.Amount, tx.Currency, string(tx.Status)))

	p.logger.Info("payment processed",
		"transaction_id", tx.ID,
		"status", tx.Status,
		"amount", tx.Amount,
		"currency", tx.Currency,
		"provider", prov.Name())

	return result
}

// AuthorizePayment is ProcessPayment with the authorize-only flag forced.
func (p *Processor) AuthorizePayment(ctx context.Context, req *Request) *internal.Result[*txmodel.Transaction] {
	authorized := *req
	authorized.AuthorizeOnly = true
	return p.ProcessPayment(ctx, &authorized)
}

// CapturePayment settles a previously authorized transaction, optionally for
// a smaller amount. amount <= 0 captures the full authorized amount.
func (p *Processor) CapturePayment(ctx context.Context, transactionID string, amount int64) (res *internal.Result[*txmodel.Transaction]) {
	defer recoverTo(&res)

	if !p.initialized.Load() {
		return notInitialized[*txmodel.Transaction]()
	}

	tx, err := p.transactions.GetByID(transactionID)
	if err != nil {
		return internal.Fail[*txmodel.Transaction](err)
	}

	if !transactionpkg.CanCapture(tx.Status) {
		return internal.Fail[*txmodel.Transaction](
			internal.NewInvalidStateError(tx.ID, string(tx.Status), "capture"))
	}

	if amount <= 0 {
		amount = tx.Amount
	}
	if amount > tx.Amount {
		return internal.Fail[*txmodel.Transaction](
			internal.NewValidationFieldError("amount", "capture amount exceeds authorized amount"))
	}

	prov, ok := p.registry.Get(provider.PaymentMethodType(tx.PaymentMethodType))
	if !ok {
		return internal.Fail[*txmodel.Transaction](internal.ErrProviderNotFound)
	}

	result := prov.CapturePayment(ctx, tx, amount)
	if !result.Success {
		return result
	}

	if err := p.transactions.Update(result.Data); err != nil {
		p.logger.Error("failed to persist capture", "error", err, "transaction_id", tx.ID)
		return internal.Fail[*txmodel.Transaction](err)
	}

	p.events.Publish(ctx, events.NewTransactionEvent(
		events.EventTypeTransactionCaptured, tx.ID, tx.CustomerID, amount, tx.Currency, string(result.Data.Status)))

	p.logger.Info("payment captured", "transaction_id", tx.ID, "amount", amount)
	return result
}

// CancelPayment voids a transaction that has not yet captured funds.
func (p *Processor) CancelPayment(ctx context.Context, transactionID string) (res *internal.Result[*txmodel.Transaction]) {
	defer recoverTo(&res)

	if !p.initialized.Load() {
		return notInitialized[*txmodel.Transaction]()
	}

	tx, err := p.transactions.GetByID(transactionID)
	if err != nil {
		return internal.Fail[*txmodel.Transaction](err)
	}

	if !transactionpkg.CanCancel(tx.Status) {
		return internal.Fail[*txmodel.Transaction](
			internal.NewInvalidStateError(tx.ID, string(tx.Status), "cancel"))
	}

	prov, ok := p.registry.Get(provider.PaymentMethodType(tx.PaymentMethodType))
	if !ok {
		return internal.Fail[*txmodel.Transaction](internal.ErrProviderNotFound)
	}

	result := prov.CancelPayment(ctx, tx)
	if !result.Success {
		return result
	}

	if err := p.transactions.Update(result.Data); err != nil {
		p.logger.Error("failed to persist cancellation", "error", err, "transaction_id", tx.ID)
		return internal.Fail[*txmodel.Transaction](err)
	}

	p.events.Publish(ctx, events.NewTransactionEvent(
		events.EventTypeTransactionCanceled, tx.ID, tx.CustomerID, tx.Amount, tx.Currency, string(result.Data.Status)))

	p.logger.Info("payment canceled", "transaction_id", tx.ID)
	return result
}

// RefundPayment delegates entirely to the refund collaborator; any failure is
// converted and returned, never propagated.
func (p *Processor) RefundPayment(ctx context.Context, req *refund.Request) (res *internal.Result[*txmodel.Refund]) {
	defer recoverTo(&res)

	if !p.initialized.Load() {
		return notInitialized[*txmodel.Refund]()
	}
	return p.refunds.Refund(ctx, req)
}

// AssessRisk exposes the risk merge without processing a payment.
func (p *Processor) AssessRisk(ctx context.Context, req *Request) (res *internal.Result[*riskmodel.Assessment]) {
	defer recoverTo(&res)

	if !p.initialized.Load() {
		return notInitialized[*riskmodel.Assessment]()
	}

	if req.Currency == "" {
		req.Currency = p.cfg.DefaultCurrency
	}
	if appErr := req.Validate(); appErr != nil {
		return internal.Fail[*riskmodel.Assessment](appErr)
	}

	cust, err := p.customers.GetCustomer(req.CustomerID)
	if err != nil {
		cust = nil
	}
	method, err := p.customers.GetPaymentMethod(req.PaymentMethodID)
	if err != nil {
		method = nil
	}

	methodType := ""
	if method != nil {
		methodType = method.Type
	}
	return p.riskEngine.Assess(ctx, &risk.Input{
		Request: &provider.ProcessRequest{
			Amount:          req.Amount,
			Currency:        req.Currency,
			PaymentMethodID: req.PaymentMethodID,
			MethodType:      provider.PaymentMethodType(methodType),
			CustomerID:      req.CustomerID,
			Metadata:        req.Metadata,
		},
		Customer: cust,
		Method:   method,
	})
}
