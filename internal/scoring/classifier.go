// Package scoring classifies institutional distress and combines the V1
// baseline with credibility-gated real-time signals into a composite
// urgency score.
package scoring

import "github.com/charter-stone/analyst-cli/internal/model"

// Classification thresholds. A nil expense ratio never triggers a rule.
const (
	expenseRatioCritical = 1.2
	expenseRatioElevated = 1.0
	expenseRatioWatch    = 0.95

	runwayCriticalYears = 2.0
	runwayElevatedYears = 4.0
)

// Classify maps derived metrics and V1 indicators to a distress level.
// Rules are evaluated most severe first; the first match wins:
//
//	critical: ratio > 1.2, or runway < 2y, or 2+ critical indicators
//	elevated: ratio > 1.0, or runway < 4y, or 1+ critical indicator
//	watch:    ratio > 0.95, or 2+ warning indicators
//	stable:   otherwise
//
// Pure and total: every input combination maps to exactly one level, and a
// single additional indicator promotes by at most one rule tier.
func Classify(expenseRatio, runwayYears *float64, indicators []model.Indicator) model.DistressLevel {
	criticalCount := model.CountBySeverity(indicators, model.SeverityCritical)
	warningCount := model.CountBySeverity(indicators, model.SeverityWarning)

	if ratioExceeds(expenseRatio, expenseRatioCritical) ||
		runwayBelow(runwayYears, runwayCriticalYears) ||
		criticalCount >= 2 {
		return model.DistressCritical
	}

	if ratioExceeds(expenseRatio, expenseRatioElevated) ||
		runwayBelow(runwayYears, runwayElevatedYears) ||
		criticalCount >= 1 {
		return model.DistressElevated
	}

	if ratioExceeds(expenseRatio, expenseRatioWatch) || warningCount >= 2 {
		return model.DistressWatch
	}

	return model.DistressStable
}

func ratioExceeds(ratio *float64, threshold float64) bool {
	return ratio != nil && *ratio > threshold
}

func runwayBelow(runway *float64, threshold float64) bool {
	return runway != nil && *runway < threshold
}
