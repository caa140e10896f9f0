package provider_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/payment-orchestration/internal"
	riskmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/risk"
	txmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/transaction"
	"github.com/frahmantamala/payment-orchestration/internal/provider"
)

func TestProvider(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Provider Suite")
}

type fakeProvider struct {
	name    string
	methods []provider.PaymentMethodType
}

func (p *fakeProvider) Name() string        { return p.name }
func (p *fakeProvider) DisplayName() string { return p.name }
func (p *fakeProvider) SupportedPaymentMethods() []provider.PaymentMethodType {
	return p.methods
}
func (p *fakeProvider) Features() provider.Features { return provider.Features{ProcessPayments: true} }
func (p *fakeProvider) Initialize(_ context.Context, _ internal.ProviderCredentials) error {
	return nil
}
func (p *fakeProvider) IsConfigured() bool { return true }
func (p *fakeProvider) ProcessPayment(_ context.Context, _ *provider.ProcessRequest) *internal.Result[*txmodel.Transaction] {
	return internal.Fail[*txmodel.Transaction](internal.NewProviderError("not implemented", nil))
}
func (p *fakeProvider) AuthorizePayment(_ context.Context, _ *provider.ProcessRequest) *internal.Result[*txmodel.Transaction] {
	return internal.Fail[*txmodel.Transaction](internal.NewProviderError("not implemented", nil))
}
func (p *fakeProvider) CapturePayment(_ context.Context, _ *txmodel.Transaction, _ int64) *internal.Result[*txmodel.Transaction] {
	return internal.Fail[*txmodel.Transaction](internal.NewProviderError("not implemented", nil))
}
func (p *fakeProvider) CancelPayment(_ context.Context, _ *txmodel.Transaction) *internal.Result[*txmodel.Transaction] {
	return internal.Fail[*txmodel.Transaction](internal.NewProviderError("not implemented", nil))
}
func (p *fakeProvider) RefundPayment(_ context.Context, _ *provider.RefundRequest) *internal.Result[*provider.RefundResult] {
	return internal.Fail[*provider.RefundResult](internal.NewProviderError("not implemented", nil))
}

type fakeRiskCapableProvider struct {
	fakeProvider
}

func (p *fakeRiskCapableProvider) AssessRisk(_ context.Context, _ *provider.ProcessRequest) *internal.Result[*riskmodel.Assessment] {
	return internal.OK(&riskmodel.Assessment{Level: riskmodel.LevelLow})
}

var _ = Describe("Registry", func() {
	var registry *provider.Registry

	BeforeEach(func() {
		registry = provider.NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	Describe("Register", func() {
		It("should bind the provider to every payment method type it supports", func() {
			p := &fakeProvider{
				name:    "multi_gateway",
				methods: []provider.PaymentMethodType{provider.MethodCard, provider.MethodWallet},
			}
			registry.Register(p)

			forCard, ok := registry.Get(provider.MethodCard)
			Expect(ok).To(BeTrue())
			Expect(forCard.Name()).To(Equal("multi_gateway"))

			forWallet, ok := registry.Get(provider.MethodWallet)
			Expect(ok).To(BeTrue())
			Expect(forWallet.Name()).To(Equal("multi_gateway"))

			_, ok = registry.Get(provider.MethodBankTransfer)
			Expect(ok).To(BeFalse())
		})

		It("should overwrite an existing binding, last write wins", func() {
			first := &fakeProvider{name: "first", methods: []provider.PaymentMethodType{provider.MethodCard}}
			second := &fakeProvider{name: "second", methods: []provider.PaymentMethodType{provider.MethodCard}}

			registry.Register(first)
			registry.Register(second)

			active, ok := registry.Get(provider.MethodCard)
			Expect(ok).To(BeTrue())
			Expect(active.Name()).To(Equal("second"))
		})
	})

	Describe("RegisterFor", func() {
		It("should bind only the given payment method type", func() {
			p := &fakeProvider{
				name:    "bank_gateway",
				methods: []provider.PaymentMethodType{provider.MethodCard, provider.MethodBankTransfer},
			}
			registry.RegisterFor(provider.MethodBankTransfer, p)

			_, ok := registry.Get(provider.MethodBankTransfer)
			Expect(ok).To(BeTrue())
			_, ok = registry.Get(provider.MethodCard)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("RiskAssessor", func() {
		It("should expose the capability when the provider implements it", func() {
			registry.Register(&fakeRiskCapableProvider{
				fakeProvider: fakeProvider{name: "capable", methods: []provider.PaymentMethodType{provider.MethodCard}},
			})

			assessor, ok := registry.RiskAssessor(provider.MethodCard)
			Expect(ok).To(BeTrue())
			Expect(assessor).NotTo(BeNil())
		})

		It("should report absence for providers without the capability", func() {
			registry.Register(&fakeProvider{name: "plain", methods: []provider.PaymentMethodType{provider.MethodCard}})

			_, ok := registry.RiskAssessor(provider.MethodCard)
			Expect(ok).To(BeFalse())
		})

		It("should report absence for unbound payment method types", func() {
			_, ok := registry.RiskAssessor(provider.MethodWallet)
			Expect(ok).To(BeFalse())
		})

		It("should lose the capability when a plain provider overwrites a capable one", func() {
			registry.Register(&fakeRiskCapableProvider{
				fakeProvider: fakeProvider{name: "capable", methods: []provider.PaymentMethodType{provider.MethodCard}},
			})
			registry.Register(&fakeProvider{name: "plain", methods: []provider.PaymentMethodType{provider.MethodCard}})

			_, ok := registry.RiskAssessor(provider.MethodCard)
			Expect(ok).To(BeFalse())
		})
	})
})
