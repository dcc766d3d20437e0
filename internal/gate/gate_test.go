package gate

import (
	"errors"
	"math"
	"testing"

	"github.com/starford/munin/internal/apperr"
	"github.com/starford/munin/internal/models"
)

var defaults = Thresholds{Confidence: 0.7, Relevance: 0.7}

func TestEvaluate_Allowed(t *testing.T) {
	cases := []models.Scores{
		{Confidence: 0.7, Relevance: 0.7},
		{Confidence: 1.0, Relevance: 1.0},
		{Confidence: 0.71, Relevance: 0.9},
	}
	for _, s := range cases {
		if err := Evaluate(s, defaults); err != nil {
			t.Errorf("Evaluate(%+v) = %v, want nil", s, err)
		}
	}
}

func TestEvaluate_ConfidenceBelowThreshold(t *testing.T) {
	err := Evaluate(models.Scores{Confidence: 0.65, Relevance: 0.9}, defaults)
	var rr *apperr.ReviewRequiredError
	if !errors.As(err, &rr) {
		t.Fatalf("expected ReviewRequiredError, got %v", err)
	}
	if len(rr.Reasons) != 1 {
		t.Fatalf("reasons = %d, want 1", len(rr.Reasons))
	}
	r := rr.Reasons[0]
	if r.Dimension != "confidence" || r.Value != 0.65 || r.Threshold != 0.7 {
		t.Errorf("reason = %+v", r)
	}
}

func TestEvaluate_BothBelowThreshold(t *testing.T) {
	err := Evaluate(models.Scores{Confidence: 0.1, Relevance: 0.2}, defaults)
	var rr *apperr.ReviewRequiredError
	if !errors.As(err, &rr) {
		t.Fatalf("expected ReviewRequiredError, got %v", err)
	}
	if len(rr.Reasons) != 2 {
		t.Fatalf("reasons = %d, want 2 (both dimensions must be reported)", len(rr.Reasons))
	}
	if rr.Reasons[0].Dimension != "confidence" || rr.Reasons[1].Dimension != "relevance" {
		t.Errorf("reasons = %+v", rr.Reasons)
	}
}

func TestEvaluate_BoundaryEqualsThresholdPasses(t *testing.T) {
	if err := Evaluate(models.Scores{Confidence: 0.7, Relevance: 0.7}, defaults); err != nil {
		t.Errorf("score equal to threshold should pass: %v", err)
	}
}

func TestEvaluate_OutOfRange(t *testing.T) {
	cases := []struct {
		scores models.Scores
		dim    string
	}{
		{models.Scores{Confidence: -0.1, Relevance: 0.5}, "confidence"},
		{models.Scores{Confidence: 1.1, Relevance: 0.5}, "confidence"},
		{models.Scores{Confidence: 0.9, Relevance: -1}, "relevance"},
		{models.Scores{Confidence: 0.9, Relevance: 2}, "relevance"},
		{models.Scores{Confidence: math.NaN(), Relevance: 0.9}, "confidence"},
		{models.Scores{Confidence: 0.9, Relevance: math.NaN()}, "relevance"},
	}
	for _, c := range cases {
		err := Evaluate(c.scores, defaults)
		var inv *apperr.InvalidScoreError
		if !errors.As(err, &inv) {
			t.Errorf("Evaluate(%+v): expected InvalidScoreError, got %v", c.scores, err)
			continue
		}
		if inv.Dimension != c.dim {
			t.Errorf("Evaluate(%+v): dimension = %q, want %q", c.scores, inv.Dimension, c.dim)
		}
	}
}

func TestEvaluate_ZeroThresholdsAllowEverything(t *testing.T) {
	if err := Evaluate(models.Scores{Confidence: 0, Relevance: 0}, Thresholds{}); err != nil {
		t.Errorf("zero thresholds should allow zero scores: %v", err)
	}
}
