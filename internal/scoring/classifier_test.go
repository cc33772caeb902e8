package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/charter-stone/analyst-cli/internal/model"
)

func critical(n int) []model.Indicator {
	var out []model.Indicator
	for i := 0; i < n; i++ {
		out = append(out, model.Indicator{Severity: model.SeverityCritical})
	}
	return out
}

func warning(n int) []model.Indicator {
	var out []model.Indicator
	for i := 0; i < n; i++ {
		out = append(out, model.Indicator{Severity: model.SeverityWarning})
	}
	return out
}

func TestClassify_Stable(t *testing.T) {
	assert.Equal(t, model.DistressStable, Classify(model.Float64(0.90), nil, nil))
	assert.Equal(t, model.DistressStable, Classify(nil, nil, nil))
	assert.Equal(t, model.DistressStable, Classify(model.Float64(0.95), nil, warning(1)))
}

func TestClassify_Watch(t *testing.T) {
	assert.Equal(t, model.DistressWatch, Classify(model.Float64(0.96), nil, nil))
	assert.Equal(t, model.DistressWatch, Classify(nil, nil, warning(2)))
}

func TestClassify_Elevated(t *testing.T) {
	assert.Equal(t, model.DistressElevated, Classify(model.Float64(1.05), nil, nil))
	assert.Equal(t, model.DistressElevated, Classify(nil, model.Float64(3.5), nil))
	assert.Equal(t, model.DistressElevated, Classify(nil, nil, critical(1)))
}

func TestClassify_Critical(t *testing.T) {
	assert.Equal(t, model.DistressCritical, Classify(model.Float64(1.33), nil, nil))
	assert.Equal(t, model.DistressCritical, Classify(nil, model.Float64(1.9), nil))
	assert.Equal(t, model.DistressCritical, Classify(nil, nil, critical(2)))
}

func TestClassify_MostSevereRuleWins(t *testing.T) {
	// Ratio triggers critical even though runway alone would be elevated.
	assert.Equal(t, model.DistressCritical,
		Classify(model.Float64(1.25), model.Float64(3.0), warning(2)))
}

func TestClassify_NilRatioNeverTriggers(t *testing.T) {
	// A missing ratio contributes to no rule at any tier.
	assert.Equal(t, model.DistressStable, Classify(nil, nil, warning(1)))
	assert.Equal(t, model.DistressElevated, Classify(nil, model.Float64(3.9), nil))
}

func TestClassify_ThresholdBoundaries(t *testing.T) {
	// Thresholds are strict inequalities for ratios, strict less-than for runway.
	assert.Equal(t, model.DistressElevated, Classify(model.Float64(1.2), nil, nil))
	assert.Equal(t, model.DistressWatch, Classify(model.Float64(1.0), nil, nil))
	assert.Equal(t, model.DistressStable, Classify(model.Float64(0.95), nil, nil))
	assert.Equal(t, model.DistressElevated, Classify(nil, model.Float64(2.0), nil))
	assert.Equal(t, model.DistressStable, Classify(nil, model.Float64(4.0), nil))
}

func TestClassify_MonotonicInCriticalCount(t *testing.T) {
	ratios := []*float64{nil, model.Float64(0.9), model.Float64(0.97), model.Float64(1.1), model.Float64(1.3)}
	runways := []*float64{nil, model.Float64(1.5), model.Float64(3.0), model.Float64(10.0)}

	for _, ratio := range ratios {
		for _, runway := range runways {
			prev := -1
			for n := 0; n <= 3; n++ {
				level := Classify(ratio, runway, critical(n))
				rank := level.Rank()
				assert.GreaterOrEqual(t, rank, prev,
					"adding a critical indicator must never decrease severity")
				prev = rank
			}
		}
	}
}

func TestClassify_DistressedCollegeScenario(t *testing.T) {
	// expense_ratio 1.330, runway 2.2y: critical on the ratio rule alone.
	assert.Equal(t, model.DistressCritical,
		Classify(model.Float64(1.330), model.Float64(2.2), nil))
}
