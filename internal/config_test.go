package internal_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/payment-orchestration/internal"
)

func validConfig() *internal.Config {
	return &internal.Config{
		Environment:     "test",
		DefaultCurrency: "USD",
		Providers: map[string]internal.ProviderCredentials{
			"card_gateway": {APIURL: "https://gateway.example.com", APIKey: "sk_test"},
		},
		Logging: internal.LoggingConfig{Level: "info", Format: "json"},
	}
}

var _ = Describe("Config", func() {
	Describe("ApplyDefaults", func() {
		It("should fill logging, risk thresholds and provider timeouts", func() {
			cfg := validConfig()
			cfg.Logging = internal.LoggingConfig{}

			cfg.ApplyDefaults()

			Expect(cfg.Logging.Level).To(Equal("info"))
			Expect(cfg.Logging.Format).To(Equal("json"))
			Expect(cfg.FraudDetection.Thresholds.HighRisk).To(Equal(0.8))
			Expect(cfg.FraudDetection.Thresholds.MediumRisk).To(Equal(0.5))
			Expect(cfg.Providers["card_gateway"].Timeout).To(Equal(30 * time.Second))
		})

		It("should not overwrite explicit thresholds", func() {
			cfg := validConfig()
			cfg.FraudDetection.Thresholds = internal.RiskThresholds{HighRisk: 0.9, MediumRisk: 0.4}

			cfg.ApplyDefaults()

			Expect(cfg.FraudDetection.Thresholds.HighRisk).To(Equal(0.9))
			Expect(cfg.FraudDetection.Thresholds.MediumRisk).To(Equal(0.4))
		})
	})

	Describe("Validate", func() {
		It("should accept a defaulted valid configuration", func() {
			cfg := validConfig()
			cfg.ApplyDefaults()

			Expect(cfg.Validate()).To(Succeed())
		})

		It("should collect every problem into one configuration error", func() {
			cfg := &internal.Config{
				DefaultCurrency: "DOLLARS",
				Logging:         internal.LoggingConfig{Level: "loud", Format: "json"},
			}

			err := cfg.Validate()

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeConfiguration))
			Expect(appErr.Message).To(ContainSubstring("environment is required"))
			Expect(appErr.Message).To(ContainSubstring("DOLLARS"))
			Expect(appErr.Message).To(ContainSubstring("provider"))
		})

		It("should reject provider credentials missing the api key", func() {
			cfg := validConfig()
			cfg.Providers["card_gateway"] = internal.ProviderCredentials{APIURL: "https://gateway.example.com"}
			cfg.ApplyDefaults()

			err := cfg.Validate()

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("api_key is required"))
		})

		It("should reject a medium threshold above the high threshold", func() {
			cfg := validConfig()
			cfg.FraudDetection.Thresholds = internal.RiskThresholds{HighRisk: 0.5, MediumRisk: 0.8}
			cfg.ApplyDefaults()

			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject thresholds outside the unit interval", func() {
			cfg := validConfig()
			cfg.FraudDetection.Thresholds = internal.RiskThresholds{HighRisk: 1.5, MediumRisk: 0.5}

			Expect(cfg.Validate()).NotTo(Succeed())
		})
	})
})
