// Package transaction owns status-transition legality. It is the only writer
// of transaction status: every mutation goes through Transition, which
// validates legality first and appends exactly one timeline event.
package transaction

import (
	"time"

	"github.com/frahmantamala/payment-orchestration/internal"
	txmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/transaction"
)

// legalTransitions lists, per current status, the statuses a transaction may
// move to. Statuses absent from the map are terminal.
var legalTransitions = map[txmodel.Status][]txmodel.Status{
	txmodel.StatusInitialized: {
		txmodel.StatusPending, txmodel.StatusAuthorized, txmodel.StatusCaptured,
		txmodel.StatusFailed, txmodel.StatusDeclined, txmodel.StatusCanceled, txmodel.StatusExpired,
	},
	txmodel.StatusPending: {
		txmodel.StatusAuthorized, txmodel.StatusCaptured,
		txmodel.StatusFailed, txmodel.StatusDeclined, txmodel.StatusCanceled, txmodel.StatusExpired,
	},
	txmodel.StatusAuthorized: {
		txmodel.StatusCaptured, txmodel.StatusCanceled, txmodel.StatusFailed, txmodel.StatusExpired,
	},
	txmodel.StatusCaptured: {
		txmodel.StatusPartiallyRefunded, txmodel.StatusRefunded, txmodel.StatusDisputed,
	},
	txmodel.StatusPartiallyRefunded: {
		txmodel.StatusPartiallyRefunded, txmodel.StatusRefunded, txmodel.StatusDisputed,
	},
	txmodel.StatusDisputed: {
		txmodel.StatusCaptured, txmodel.StatusRefunded,
	},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to txmodel.Status) bool {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanCapture: capture is legal only from authorized.
func CanCapture(status txmodel.Status) bool {
	return status == txmodel.StatusAuthorized
}

// CanCancel: cancel is legal only before funds are captured.
func CanCancel(status txmodel.Status) bool {
	switch status {
	case txmodel.StatusInitialized, txmodel.StatusAuthorized, txmodel.StatusPending:
		return true
	}
	return false
}

// CanRefund: refunds apply only to transactions whose capture completed.
func CanRefund(status txmodel.Status) bool {
	switch status {
	case txmodel.StatusCaptured, txmodel.StatusPartiallyRefunded:
		return true
	}
	return false
}

// Transition validates legality, then mutates status and appends one timeline
// event. On an illegal transition the transaction is left untouched and an
// invalid-state error naming the id and current status is returned.
func Transition(tx *txmodel.Transaction, to txmodel.Status, eventType string, data map[string]string) *internal.AppError {
	if !CanTransition(tx.Status, to) {
		return internal.NewInvalidStateError(tx.ID, string(tx.Status), "transition to "+string(to))
	}
	applyTransition(tx, to, eventType, data)
	return nil
}

// Begin stamps a freshly created transaction with its initial status and the
// first timeline event. Initial status is assigned by the orchestrator, not
// transitioned to.
func Begin(tx *txmodel.Transaction, initial txmodel.Status, eventType string, data map[string]string) {
	applyTransition(tx, initial, eventType, data)
}

func applyTransition(tx *txmodel.Transaction, to txmodel.Status, eventType string, data map[string]string) {
	now := time.Now().UTC()
	tx.Status = to
	tx.UpdatedAt = now
	tx.Timeline = append(tx.Timeline, txmodel.Event{
		Type:            eventType,
		Timestamp:       now,
		ResultingStatus: to,
		Data:            data,
	})
}
