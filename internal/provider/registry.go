package provider

import (
	"log/slog"
	"sync"
)

type entry struct {
	provider Provider
	assessor RiskAssessor
}

// Registry maps a payment-method type to the currently active provider. One
// provider per type; re-registration overwrites (last write wins). It is
// written during initialization and read thereafter; the lock exists for the
// rare runtime re-registration.
type Registry struct {
	mu      sync.RWMutex
	entries map[PaymentMethodType]entry
	logger  *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		entries: make(map[PaymentMethodType]entry),
		logger:  logger,
	}
}

// Register binds p to every payment-method type it supports. The optional
// risk capability is detected here, once.
func (r *Registry) Register(p Provider) {
	assessor, _ := p.(RiskAssessor)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, methodType := range p.SupportedPaymentMethods() {
		r.entries[methodType] = entry{provider: p, assessor: assessor}
		r.logger.Info("provider registered",
			"provider", p.Name(),
			"payment_method_type", methodType,
			"risk_capable", assessor != nil)
	}
}

// RegisterFor binds p to a single payment-method type, overwriting any
// existing binding.
func (r *Registry) RegisterFor(methodType PaymentMethodType, p Provider) {
	assessor, _ := p.(RiskAssessor)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[methodType] = entry{provider: p, assessor: assessor}
	r.logger.Info("provider registered",
		"provider", p.Name(),
		"payment_method_type", methodType,
		"risk_capable", assessor != nil)
}

func (r *Registry) Get(methodType PaymentMethodType) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[methodType]
	if !ok {
		return nil, false
	}
	return e.provider, true
}

// RiskAssessor returns the risk capability of the provider bound to
// methodType, when both the binding and the capability exist.
func (r *Registry) RiskAssessor(methodType PaymentMethodType) (RiskAssessor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[methodType]
	if !ok || e.assessor == nil {
		return nil, false
	}
	return e.assessor, true
}
