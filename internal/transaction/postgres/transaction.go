package postgres

import (
	"errors"

	"github.com/frahmantamala/payment-orchestration/internal"
	txmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/transaction"
	transactionpkg "github.com/frahmantamala/payment-orchestration/internal/transaction"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) transactionpkg.RepositoryAPI {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Save(tx *txmodel.Transaction) error {
	return r.db.Create(tx).Error
}

func (r *TransactionRepository) Update(tx *txmodel.Transaction) error {
	return r.db.Save(tx).Error
}

func (r *TransactionRepository) GetByID(id string) (*txmodel.Transaction, error) {
	var tx txmodel.Transaction
	err := r.db.Where("id = ?", id).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) GetByIdempotencyKey(key string) (*txmodel.Transaction, error) {
	var tx txmodel.Transaction
	err := r.db.Where("idempotency_key = ?", key).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) Search(filter txmodel.SearchFilter) (*txmodel.Page, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := r.db.Model(&txmodel.Transaction{})
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentMethodType != "" {
		query = query.Where("payment_method_type = ?", filter.PaymentMethodType)
	}
	if filter.Currency != "" {
		query = query.Where("currency = ?", filter.Currency)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []*txmodel.Transaction
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &txmodel.Page{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
