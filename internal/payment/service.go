package payment

import (
	"github.com/frahmantamala/payment-orchestration/internal"
	custmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/customer"
	txmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/transaction"
)

// Pass-through delegations to the owning collaborators. No orchestration
// logic lives here; the processor only folds results into envelopes.

func (p *Processor) GetTransaction(id string) *internal.Result[*txmodel.Transaction] {
	if !p.initialized.Load() {
		return notInitialized[*txmodel.Transaction]()
	}
	tx, err := p.transactions.GetByID(id)
	if err != nil {
		return internal.Fail[*txmodel.Transaction](err)
	}
	return internal.OK(tx)
}

func (p *Processor) SearchTransactions(filter txmodel.SearchFilter) *internal.Result[*txmodel.Page] {
	if !p.initialized.Load() {
		return notInitialized[*txmodel.Page]()
	}
	page, err := p.transactions.Search(filter)
	if err != nil {
		return internal.Fail[*txmodel.Page](err)
	}
	return internal.OK(page)
}

func (p *Processor) CreateCustomer(c *custmodel.Customer) *internal.Result[*custmodel.Customer] {
	if !p.initialized.Load() {
		return notInitialized[*custmodel.Customer]()
	}
	created, err := p.customers.CreateCustomer(c)
	if err != nil {
		return internal.Fail[*custmodel.Customer](err)
	}
	return internal.OK(created)
}

func (p *Processor) GetCustomer(id string) *internal.Result[*custmodel.Customer] {
	if !p.initialized.Load() {
		return notInitialized[*custmodel.Customer]()
	}
	c, err := p.customers.GetCustomer(id)
	if err != nil {
		return internal.Fail[*custmodel.Customer](err)
	}
	return internal.OK(c)
}

func (p *Processor) UpdateCustomer(c *custmodel.Customer) *internal.Result[*custmodel.Customer] {
	if !p.initialized.Load() {
		return notInitialized[*custmodel.Customer]()
	}
	updated, err := p.customers.UpdateCustomer(c)
	if err != nil {
		return internal.Fail[*custmodel.Customer](err)
	}
	return internal.OK(updated)
}

func (p *Processor) CreatePaymentMethod(m *custmodel.PaymentMethod) *internal.Result[*custmodel.PaymentMethod] {
	if !p.initialized.Load() {
		return notInitialized[*custmodel.PaymentMethod]()
	}
	created, err := p.customers.CreatePaymentMethod(m)
	if err != nil {
		return internal.Fail[*custmodel.PaymentMethod](err)
	}
	return internal.OK(created)
}

func (p *Processor) ListPaymentMethods(customerID string) *internal.Result[[]*custmodel.PaymentMethod] {
	if !p.initialized.Load() {
		return notInitialized[[]*custmodel.PaymentMethod]()
	}
	methods, err := p.customers.ListPaymentMethods(customerID)
	if err != nil {
		return internal.Fail[[]*custmodel.PaymentMethod](err)
	}
	return internal.OK(methods)
}

func (p *Processor) DeletePaymentMethod(id string) *internal.Result[bool] {
	if !p.initialized.Load() {
		return notInitialized[bool]()
	}
	if err := p.customers.DeletePaymentMethod(id); err != nil {
		return internal.Fail[bool](err)
	}
	return internal.OK(true)
}
