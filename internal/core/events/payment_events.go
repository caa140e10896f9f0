package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTransactionAuthorized = "transaction.authorized"
	EventTypeTransactionCaptured   = "transaction.captured"
	EventTypeTransactionCanceled   = "transaction.canceled"
	EventTypeTransactionFailed     = "transaction.failed"
	EventTypeTransactionRefunded   = "transaction.refunded"
)

// TransactionEvent is published after a transaction status change has been
// persisted. Handlers observe; they never feed back into the state machine.
type TransactionEvent struct {
	BaseEvent
	TransactionID string `json:"transaction_id"`
	CustomerID    string `json:"customer_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
}

func NewTransactionEvent(eventType, transactionID, customerID string, amount int64, currency, status string) *TransactionEvent {
	return &TransactionEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"transaction_id": transactionID,
				"customer_id":    customerID,
				"amount":         amount,
				"currency":       currency,
				"status":         status,
			},
		},
		TransactionID: transactionID,
		CustomerID:    customerID,
		Amount:        amount,
		Currency:      currency,
		Status:        status,
	}
}
