package customer

import "time"

// Customer and PaymentMethod are read-mostly inputs to the orchestration core,
// owned by their stores and referenced by id from transactions.
type Customer struct {
	ID              string            `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Email           string            `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Name            string            `gorm:"column:name" json:"name"`
	DefaultCurrency string            `gorm:"column:default_currency;type:char(3)" json:"default_currency,omitempty"`
	Metadata        map[string]string `gorm:"column:metadata;serializer:json" json:"metadata,omitempty"`
	CreatedAt       time.Time         `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"column:updated_at" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

type PaymentMethod struct {
	ID         string            `gorm:"primaryKey;type:varchar(64)" json:"id"`
	CustomerID string            `gorm:"column:customer_id;not null;index" json:"customer_id"`
	Type       string            `gorm:"column:type;not null" json:"type"`
	Last4      string            `gorm:"column:last4;type:char(4)" json:"last4,omitempty"`
	ExpMonth   int               `gorm:"column:exp_month" json:"exp_month,omitempty"`
	ExpYear    int               `gorm:"column:exp_year" json:"exp_year,omitempty"`
	Token      string            `gorm:"column:token" json:"-"`
	IsDefault  bool              `gorm:"column:is_default" json:"is_default"`
	IsVerified bool              `gorm:"column:is_verified" json:"is_verified"`
	Metadata   map[string]string `gorm:"column:metadata;serializer:json" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"column:updated_at" json:"updated_at"`
}

func (PaymentMethod) TableName() string { return "payment_methods" }

// Expired reports whether a card-style method is past its expiry month.
func (m *PaymentMethod) Expired(now time.Time) bool {
	if m.ExpYear == 0 {
		return false
	}
	endOfMonth := time.Date(m.ExpYear, time.Month(m.ExpMonth)+1, 1, 0, 0, 0, 0, time.UTC)
	return !now.Before(endOfMonth)
}

type RecurringBillingProfile struct {
	ID              string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	CustomerID      string     `gorm:"column:customer_id;not null;index" json:"customer_id"`
	PaymentMethodID string     `gorm:"column:payment_method_id;not null" json:"payment_method_id"`
	Amount          int64      `gorm:"column:amount;not null" json:"amount"`
	Currency        string     `gorm:"column:currency;type:char(3);not null" json:"currency"`
	Interval        string     `gorm:"column:interval;not null" json:"interval"`
	Active          bool       `gorm:"column:active;default:true" json:"active"`
	NextBillingAt   *time.Time `gorm:"column:next_billing_at" json:"next_billing_at,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (RecurringBillingProfile) TableName() string { return "recurring_billing_profiles" }
