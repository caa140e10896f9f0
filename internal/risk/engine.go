// Package risk merges the internal fraud assessment with an optional
// provider-supplied one into a single accept/review/block signal. The merge
// always biases toward the higher-risk reading: a provider's silence or
// failure never masks risk, because the internal assessment is the safety net.
package risk

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/payment-orchestration/internal"
	custmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/customer"
	riskmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/risk"
	"github.com/frahmantamala/payment-orchestration/internal/provider"
)

const (
	SourceInternal = "internal"
	SourceProvider = "provider"
	SourceMerged   = "merged"
)

// Internal rule weights. Deliberately coarse: the score is a triage signal,
// not a probability.
const (
	weightLargeAmount      = 0.35
	weightVeryLargeAmount  = 0.30
	weightCurrencyMismatch = 0.20
	weightUnverifiedMethod = 0.15
	weightExpiredMethod    = 0.30
	weightVelocityFlag     = 0.30

	largeAmountThreshold     = 500_000
	veryLargeAmountThreshold = 2_000_000
)

// Input carries everything the internal assessor may inspect. Customer and
// Method may be nil when unresolved.
type Input struct {
	Request  *provider.ProcessRequest
	Customer *custmodel.Customer
	Method   *custmodel.PaymentMethod
}

type Engine struct {
	cfg      internal.FraudDetectionConfig
	registry *provider.Registry
	logger   *slog.Logger
}

func NewEngine(cfg internal.FraudDetectionConfig, registry *provider.Registry, logger *slog.Logger) *Engine {
	return &Engine{cfg: cfg, registry: registry, logger: logger}
}

// Assess produces one assessment for a payment request.
//
// Disabled fraud detection short-circuits to a fixed low-risk assessment with
// no provider or internal calls. Otherwise the provider's optional risk
// capability is consulted; on success its result is merged with the internal
// assessment, on absence or failure the internal assessment stands alone.
func (e *Engine) Assess(ctx context.Context, input *Input) *internal.Result[*riskmodel.Assessment] {
	if !e.cfg.Enabled {
		return internal.OK(syntheticAllow())
	}

	internalAssessment := e.assessInternal(input)

	assessor, ok := e.registry.RiskAssessor(input.Request.MethodType)
	if !ok {
		return internal.OK(internalAssessment)
	}

	providerResult := assessor.AssessRisk(ctx, input.Request)
	if !providerResult.Success {
		e.logger.Warn("provider risk assessment failed, falling back to internal",
			"payment_method_type", input.Request.MethodType,
			"error_code", providerResult.ErrorCode)
		return internal.OK(internalAssessment)
	}

	merged := Merge(providerResult.Data, internalAssessment, e.cfg.Thresholds)
	return internal.OK(merged)
}

// Merge combines a provider and an internal assessment into a new one. The
// combined score is the max of both (never averaged), the level is re-derived
// from thresholds, and factor/recommendation/rule lists are concatenated
// provider-then-internal with both orderings preserved and no de-duplication.
func Merge(providerA, internalA *riskmodel.Assessment, thresholds internal.RiskThresholds) *riskmodel.Assessment {
	score := providerA.Score
	if internalA.Score > score {
		score = internalA.Score
	}

	merged := &riskmodel.Assessment{
		Score:      score,
		Level:      riskmodel.LevelForScore(score, thresholds.HighRisk, thresholds.MediumRisk),
		Source:     SourceMerged,
		AssessedAt: time.Now().UTC(),
	}
	merged.Factors = append(merged.Factors, providerA.Factors...)
	merged.Factors = append(merged.Factors, internalA.Factors...)
	merged.Recommendations = append(merged.Recommendations, providerA.Recommendations...)
	merged.Recommendations = append(merged.Recommendations, internalA.Recommendations...)
	merged.TriggeredRules = append(merged.TriggeredRules, providerA.TriggeredRules...)
	merged.TriggeredRules = append(merged.TriggeredRules, internalA.TriggeredRules...)
	return merged
}

func syntheticAllow() *riskmodel.Assessment {
	return &riskmodel.Assessment{
		Score:           0,
		Level:           riskmodel.LevelLow,
		Recommendations: []riskmodel.Recommendation{riskmodel.RecommendationAllow},
		Source:          SourceInternal,
		AssessedAt:      time.Now().UTC(),
	}
}

// assessInternal scores a request with deterministic weighted rules. Factors
// record each contributing signal with its impact; the score is their sum
// capped at 1.
func (e *Engine) assessInternal(input *Input) *riskmodel.Assessment {
	req := input.Request

	var score float64
	var factors []riskmodel.Factor
	var rules []string

	addFactor := func(name, description string, impact float64) {
		score += impact
		factors = append(factors, riskmodel.Factor{Name: name, Description: description, Impact: impact})
		rules = append(rules, name)
	}

	if req.Amount >= largeAmountThreshold {
		addFactor("large_amount", "amount exceeds the large-transaction threshold", weightLargeAmount)
	}
	if req.Amount >= veryLargeAmountThreshold {
		addFactor("very_large_amount", "amount exceeds the very-large-transaction threshold", weightVeryLargeAmount)
	}
	if input.Customer != nil && input.Customer.DefaultCurrency != "" && input.Customer.DefaultCurrency != req.Currency {
		addFactor("currency_mismatch", "request currency differs from the customer's default", weightCurrencyMismatch)
	}
	if input.Method == nil || !input.Method.IsVerified {
		addFactor("unverified_payment_method", "payment method has not been verified", weightUnverifiedMethod)
	}
	if input.Method != nil && input.Method.Expired(time.Now().UTC()) {
		addFactor("expired_payment_method", "payment method is past its expiry", weightExpiredMethod)
	}
	if req.Metadata["velocity_flag"] == "true" {
		addFactor("velocity_flag", "caller flagged elevated request velocity for this customer", weightVelocityFlag)
	}

	if score > 1 {
		score = 1
	}

	level := riskmodel.LevelForScore(score, e.cfg.Thresholds.HighRisk, e.cfg.Thresholds.MediumRisk)

	return &riskmodel.Assessment{
		Score:           score,
		Level:           level,
		Factors:         factors,
		Recommendations: recommendationsFor(level),
		TriggeredRules:  rules,
		Source:          SourceInternal,
		AssessedAt:      time.Now().UTC(),
	}
}

func recommendationsFor(level riskmodel.Level) []riskmodel.Recommendation {
	switch level {
	case riskmodel.LevelHigh:
		return []riskmodel.Recommendation{riskmodel.RecommendationBlock}
	case riskmodel.LevelMedium:
		return []riskmodel.Recommendation{
			riskmodel.RecommendationReview,
			riskmodel.RecommendationAdditionalVerification,
		}
	default:
		return []riskmodel.Recommendation{riskmodel.RecommendationAllow}
	}
}
