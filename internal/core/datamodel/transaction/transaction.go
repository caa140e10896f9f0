package transaction

import (
	"time"
)

type Status string

const (
	StatusInitialized       Status = "initialized"
	StatusPending           Status = "pending"
	StatusAuthorized        Status = "authorized"
	StatusCaptured          Status = "captured"
	StatusFailed            Status = "failed"
	StatusDeclined          Status = "declined"
	StatusRefunded          Status = "refunded"
	StatusPartiallyRefunded Status = "partially_refunded"
	StatusDisputed          Status = "disputed"
	StatusCanceled          Status = "canceled"
	StatusExpired           Status = "expired"
)

// Transaction is the authoritative record of one money movement attempt.
// Amounts are integer minor currency units. Status changes only through the
// state machine; the timeline is append-only and records never deleted —
// refund and cancel are transitions, not erasure.
type Transaction struct {
	ID                string            `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Status            Status            `gorm:"column:status;not null;index" json:"status"`
	Amount            int64             `gorm:"column:amount;not null" json:"amount"`
	OriginalAmount    int64             `gorm:"column:original_amount;not null" json:"original_amount"`
	Currency          string            `gorm:"column:currency;type:char(3);not null" json:"currency"`
	PaymentMethodID   string            `gorm:"column:payment_method_id;not null;index" json:"payment_method_id"`
	PaymentMethodType string            `gorm:"column:payment_method_type;not null" json:"payment_method_type"`
	CustomerID        string            `gorm:"column:customer_id;not null;index" json:"customer_id"`
	IsAuthorizedOnly  bool              `gorm:"column:is_authorized_only" json:"is_authorized_only"`
	IdempotencyKey    *string           `gorm:"column:idempotency_key;uniqueIndex" json:"idempotency_key,omitempty"`
	ProviderRefs      map[string]string `gorm:"column:provider_refs;serializer:json" json:"provider_refs,omitempty"`
	Timeline          []Event           `gorm:"column:timeline;serializer:json" json:"timeline"`
	RiskScore         *float64          `gorm:"column:risk_score" json:"risk_score,omitempty"`
	RiskLevel         *string           `gorm:"column:risk_level" json:"risk_level,omitempty"`
	Refunds           []Refund          `gorm:"column:refunds;serializer:json" json:"refunds,omitempty"`
	FeeAmount         *int64            `gorm:"column:fee_amount" json:"fee_amount,omitempty"`
	NetAmount         *int64            `gorm:"column:net_amount" json:"net_amount,omitempty"`
	FailureReason     *string           `gorm:"column:failure_reason" json:"failure_reason,omitempty"`
	Metadata          map[string]string `gorm:"column:metadata;serializer:json" json:"metadata,omitempty"`
	CreatedAt         time.Time         `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"column:updated_at" json:"updated_at"`
}

func (Transaction) TableName() string { return "transactions" }

// Event is one entry of a transaction's timeline.
type Event struct {
	Type            string            `json:"type"`
	Timestamp       time.Time         `json:"timestamp"`
	ResultingStatus Status            `json:"resulting_status"`
	Data            map[string]string `json:"data,omitempty"`
}

type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusCompleted RefundStatus = "completed"
	RefundStatusFailed    RefundStatus = "failed"
)

type Refund struct {
	ID          string       `json:"id"`
	Amount      int64        `json:"amount"`
	Currency    string       `json:"currency"`
	Status      RefundStatus `json:"status"`
	Reason      string       `json:"reason,omitempty"`
	ProviderRef string       `json:"provider_ref,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// RefundedAmount sums refunds that actually moved money back.
func (t *Transaction) RefundedAmount() int64 {
	var total int64
	for _, r := range t.Refunds {
		if r.Status == RefundStatusCompleted {
			total += r.Amount
		}
	}
	return total
}

// PendingRefundAmount sums refunds the provider has accepted but not yet
// settled. Pending amounts are reserved: they count against the refundable
// balance so the same money cannot be submitted for refund twice.
func (t *Transaction) PendingRefundAmount() int64 {
	var total int64
	for _, r := range t.Refunds {
		if r.Status == RefundStatusPending {
			total += r.Amount
		}
	}
	return total
}

// RemainingRefundable is the captured amount neither returned nor reserved by
// an in-flight refund. Failed refunds release their reservation.
func (t *Transaction) RemainingRefundable() int64 {
	return t.Amount - t.RefundedAmount() - t.PendingRefundAmount()
}

func (t *Transaction) IsTerminal() bool {
	switch t.Status {
	case StatusFailed, StatusDeclined, StatusCanceled, StatusExpired, StatusRefunded:
		return true
	}
	return false
}

// Page is the uniform shape of filtered, paginated lookups.
type Page struct {
	Items    []*Transaction `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// SearchFilter narrows paginated transaction lookups. Zero values mean "any".
type SearchFilter struct {
	CustomerID        string
	Status            Status
	PaymentMethodType string
	Currency          string
	CreatedAfter      *time.Time
	CreatedBefore     *time.Time
	Page              int
	PageSize          int
}
