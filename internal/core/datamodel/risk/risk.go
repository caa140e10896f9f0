// Package risk holds the shared risk-assessment shapes. Assessments are
// produced fresh per payment request and never mutated; merging two always
// yields a new instance.
package risk

import "time"

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

type Recommendation string

const (
	RecommendationBlock                  Recommendation = "block"
	RecommendationReview                 Recommendation = "review"
	RecommendationAdditionalVerification Recommendation = "additional_verification"
	RecommendationAllow                  Recommendation = "allow"
)

// Factor is one contributing signal with its numeric impact on the score.
type Factor struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Impact      float64 `json:"impact"`
}

type Assessment struct {
	Score           float64          `json:"score"`
	Level           Level            `json:"level"`
	Factors         []Factor         `json:"factors"`
	Recommendations []Recommendation `json:"recommendations"`
	TriggeredRules  []string         `json:"triggered_rules"`
	Source          string           `json:"source"`
	AssessedAt      time.Time        `json:"assessed_at"`
}

// LevelForScore derives a level from configured thresholds, checked
// high-then-medium-then-low in that order.
func LevelForScore(score, highThreshold, mediumThreshold float64) Level {
	switch {
	case score >= highThreshold:
		return LevelHigh
	case score >= mediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}
