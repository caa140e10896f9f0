// Package refund implements the refund collaborator the orchestrator
// delegates to. Refunds only apply to transactions whose capture completed;
// they are recorded as status transitions and refund entries, never as
// deletion of the original record.
package refund

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/payment-orchestration/internal"
	"github.com/frahmantamala/payment-orchestration/internal/core/datamodel/transaction"
	"github.com/frahmantamala/payment-orchestration/internal/core/events"
	"github.com/frahmantamala/payment-orchestration/internal/provider"
	transactionpkg "github.com/frahmantamala/payment-orchestration/internal/transaction"
)

type Request struct {
	TransactionID string `json:"transaction_id"`
	// Amount in minor units; zero means refund the full remaining amount.
	Amount int64  `json:"amount,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type Service struct {
	transactions transactionpkg.RepositoryAPI
	registry     *provider.Registry
	events       *events.EventBus
	logger       *slog.Logger
}

func NewService(transactions transactionpkg.RepositoryAPI, registry *provider.Registry, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		transactions: transactions,
		registry:     registry,
		events:       bus,
		logger:       logger,
	}
}

// Refund validates refundability, delegates to the provider, then records the
// refund and the resulting status transition.
func (s *Service) Refund(ctx context.Context, req *Request) *internal.Result[*transaction.Refund] {
	if req.TransactionID == "" {
		return internal.Fail[*transaction.Refund](internal.NewValidationFieldError("transaction_id", "transaction_id is required"))
	}
	if req.Amount < 0 {
		return internal.Fail[*transaction.Refund](internal.NewValidationFieldError("amount", "amount cannot be negative"))
	}

	tx, err := s.transactions.GetByID(req.TransactionID)
	if err != nil {
		return internal.Fail[*transaction.Refund](err)
	}

	if !transactionpkg.CanRefund(tx.Status) {
		return internal.Fail[*transaction.Refund](internal.NewInvalidStateError(tx.ID, string(tx.Status), "refund"))
	}

	remaining := tx.RemainingRefundable()
	amount := req.Amount
	if amount == 0 {
		amount = remaining
	}
	if amount > remaining {
		return internal.Fail[*transaction.Refund](internal.NewValidationFieldError("amount", "refund amount exceeds remaining refundable amount"))
	}

	p, ok := s.registry.Get(provider.PaymentMethodType(tx.PaymentMethodType))
	if !ok {
		return internal.Fail[*transaction.Refund](internal.ErrProviderNotFound)
	}
	features := p.Features()
	if !features.Refunds {
		return internal.Fail[*transaction.Refund](internal.NewValidationError("provider " + p.Name() + " does not support refunds"))
	}
	if amount < remaining && !features.PartialRefunds {
		return internal.Fail[*transaction.Refund](internal.NewValidationError("provider " + p.Name() + " does not support partial refunds"))
	}

	s.logger.Info("refunding transaction",
		"transaction_id", tx.ID,
		"amount", amount,
		"remaining", remaining,
		"provider", p.Name())

	result := p.RefundPayment(ctx, &provider.RefundRequest{
		TransactionID: tx.ID,
		ProviderRef:   tx.ProviderRefs["payment"],
		Amount:        amount,
		Currency:      tx.Currency,
		Reason:        req.Reason,
	})
	if !result.Success {
		s.logger.Error("provider refund failed",
			"transaction_id", tx.ID,
			"provider", p.Name(),
			"error_code", result.ErrorCode)
		return internal.FailFrom[*transaction.Refund](result)
	}

	entry := transaction.Refund{
		ID:          "re_" + uuid.New().String(),
		Amount:      amount,
		Currency:    tx.Currency,
		Status:      result.Data.Status,
		Reason:      req.Reason,
		ProviderRef: result.Data.ProviderRef,
		CreatedAt:   time.Now().UTC(),
	}
	tx.Refunds = append(tx.Refunds, entry)

	target := transaction.StatusPartiallyRefunded
	if tx.RemainingRefundable() == 0 {
		target = transaction.StatusRefunded
	}
	if appErr := transactionpkg.Transition(tx, target, "refund", map[string]string{
		"refund_id": entry.ID,
	}); appErr != nil {
		return internal.Fail[*transaction.Refund](appErr)
	}

	if err := s.transactions.Update(tx); err != nil {
		s.logger.Error("failed to persist refund", "error", err, "transaction_id", tx.ID)
		return internal.Fail[*transaction.Refund](err)
	}

	s.events.Publish(ctx, events.NewTransactionEvent(
		events.EventTypeTransactionRefunded, tx.ID, tx.CustomerID, amount, tx.Currency, string(tx.Status)))

	return internal.OK(&entry)
}
