// Package gate implements the confidence/relevance threshold check that
// guards every ingest. It is pure and holds no pending-approval state:
// a re-submission after human confirmation is a fresh call.
package gate

import (
	"math"

	"github.com/starford/munin/internal/apperr"
	"github.com/starford/munin/internal/models"
)

// Thresholds are the configured minimum scores for an unattended commit.
type Thresholds struct {
	Confidence float64
	Relevance  float64
}

// Evaluate returns nil when both scores meet their thresholds.
// Scores outside [0,1] return *apperr.InvalidScoreError. Scores below a
// threshold return *apperr.ReviewRequiredError listing every failing
// dimension with its actual and threshold values.
func Evaluate(s models.Scores, t Thresholds) error {
	// NaN fails every comparison, so it must be rejected explicitly or it
	// would sail through both the range check and the threshold compare.
	if s.Confidence < 0 || s.Confidence > 1 || math.IsNaN(s.Confidence) {
		return &apperr.InvalidScoreError{Dimension: "confidence", Value: s.Confidence}
	}
	if s.Relevance < 0 || s.Relevance > 1 || math.IsNaN(s.Relevance) {
		return &apperr.InvalidScoreError{Dimension: "relevance", Value: s.Relevance}
	}

	var reasons []apperr.ReviewReason
	if s.Confidence < t.Confidence {
		reasons = append(reasons, apperr.ReviewReason{
			Dimension: "confidence",
			Value:     s.Confidence,
			Threshold: t.Confidence,
		})
	}
	if s.Relevance < t.Relevance {
		reasons = append(reasons, apperr.ReviewReason{
			Dimension: "relevance",
			Value:     s.Relevance,
			Threshold: t.Relevance,
		})
	}
	if len(reasons) > 0 {
		return &apperr.ReviewRequiredError{Reasons: reasons}
	}
	return nil
}
