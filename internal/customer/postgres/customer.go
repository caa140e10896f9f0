package postgres

import (
	custmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/customer"
	customerpkg "github.com/frahmantamala/payment-orchestration/internal/customer"
	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) customerpkg.RepositoryAPI {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) CreateCustomer(c *custmodel.Customer) error {
	return r.db.Create(c).Error
}

func (r *CustomerRepository) GetCustomer(id string) (*custmodel.Customer, error) {
	var c custmodel.Customer
	err := r.db.Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) UpdateCustomer(c *custmodel.Customer) error {
	return r.db.Save(c).Error
}

func (r *CustomerRepository) ListCustomers(offset, limit int) ([]*custmodel.Customer, int64, error) {
	var total int64
	if err := r.db.Model(&custmodel.Customer{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []*custmodel.Customer
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&customers).Error
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *CustomerRepository) CreatePaymentMethod(m *custmodel.PaymentMethod) error {
	return r.db.Create(m).Error
}

func (r *CustomerRepository) GetPaymentMethod(id string) (*custmodel.PaymentMethod, error) {
	var m custmodel.PaymentMethod
	err := r.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *CustomerRepository) ListPaymentMethods(customerID string) ([]*custmodel.PaymentMethod, error) {
	var methods []*custmodel.PaymentMethod
	err := r.db.Where("customer_id = ?", customerID).Order("created_at DESC").Find(&methods).Error
	return methods, err
}

func (r *CustomerRepository) DeletePaymentMethod(id string) error {
	return r.db.Where("id = ?", id).Delete(&custmodel.PaymentMethod{}).Error
}
