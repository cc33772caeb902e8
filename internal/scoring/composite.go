package scoring

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/charter-stone/analyst-cli/internal/model"
)

// ScoringModel identifies the composite scoring revision in output records.
const ScoringModel = "composite-v2.0"

// Urgency thresholds on the truncated composite score.
const (
	urgencyImmediateMin = 90
	urgencyHighMin      = 75
)

// CompositeScorer combines a V1 baseline score with credibility-gated
// amplification from real-time signals. Deterministic given fixed inputs
// and clock; the clock is injectable for tests.
type CompositeScorer struct {
	nowFunc func() time.Time
}

// NewCompositeScorer creates a scorer using wall-clock time.
func NewCompositeScorer() *CompositeScorer {
	return &CompositeScorer{nowFunc: time.Now}
}

// NewCompositeScorerAt creates a scorer with a fixed clock.
func NewCompositeScorerAt(now func() time.Time) *CompositeScorer {
	return &CompositeScorer{nowFunc: now}
}

// Score resolves the base score, runs the credibility gate over each
// category, and produces the saturated composite. The composite never
// drops below the truncated base and never exceeds 100; truncation is
// floor, so amplification is never inflated by rounding.
func (s *CompositeScorer) Score(base model.BaseScore, signals model.SignalSet) model.CompositeScore {
	baseScore := base.Resolve()

	amplification := 0
	var breakdown []model.AmplifiedSignal
	for _, category := range model.Categories {
		sig := signals.ByCategory(category)
		points, fired := GateSignal(category, sig)
		if !fired {
			continue
		}
		amplification += points
		breakdown = append(breakdown, model.AmplifiedSignal{
			Signal:         category,
			Amplification:  points,
			FindingSnippet: snippet(sig.Finding),
		})
	}

	composite := int(math.Floor(math.Min(baseScore+float64(amplification), 100)))

	result := model.CompositeScore{
		CompositeScore:  composite,
		UrgencyFlag:     urgencyFor(composite),
		V1BaseScore:     int(math.Floor(baseScore)),
		V2Amplification: amplification,
		SignalBreakdown: breakdown,
		CalculatedAt:    s.nowFunc().UTC(),
		ScoringModel:    ScoringModel,
	}

	zap.L().Debug("scoring: composite calculated",
		zap.Int("base_score", result.V1BaseScore),
		zap.Int("amplification", amplification),
		zap.Int("composite_score", composite),
		zap.String("urgency_flag", string(result.UrgencyFlag)),
	)

	return result
}

func urgencyFor(composite int) model.UrgencyFlag {
	switch {
	case composite >= urgencyImmediateMin:
		return model.UrgencyImmediate
	case composite >= urgencyHighMin:
		return model.UrgencyHigh
	default:
		return model.UrgencyMonitor
	}
}
