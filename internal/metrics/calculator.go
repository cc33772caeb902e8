// Package metrics derives financial distress indicators from raw IRS 990
// filing values. Every division is guarded: an undefined metric is nil,
// never an error or a zero stand-in.
package metrics

import (
	"math"

	"github.com/charter-stone/analyst-cli/internal/model"
)

// Calculate derives metrics from one fiscal-year snapshot. Pure and total:
// any combination of nil or zero inputs maps to a well-defined result.
//
// Preconditions per metric:
//   - expense_ratio: total_revenue > 0 and total_expenses present.
//   - runway_years: operating deficit (< 0) and net_assets > 0. A surplus
//     position never produces a runway. Depleted assets with a deficit also
//     yield nil — callers detect that more severe state via net_assets <= 0.
//   - tuition_dependency: tuition_revenue present and total_revenue > 0;
//     a reported zero is a legitimate 0.0, not nil.
func Calculate(facts model.FinancialFacts) model.DerivedMetrics {
	revenue := model.OrZero(facts.TotalRevenue)
	expenses := model.OrZero(facts.TotalExpenses)
	netAssets := model.OrZero(facts.NetAssets)

	m := model.DerivedMetrics{
		OperatingSurplusDeficit: revenue - expenses,
	}

	if revenue > 0 && facts.TotalExpenses != nil {
		m.ExpenseRatio = model.Float64(round3(expenses / revenue))
	}

	if m.OperatingSurplusDeficit < 0 && netAssets > 0 {
		annualDeficit := math.Abs(m.OperatingSurplusDeficit)
		m.RunwayYears = model.Float64(round1(netAssets / annualDeficit))
	}

	if facts.TuitionRevenue != nil && revenue > 0 {
		m.TuitionDependency = model.Float64(round3(*facts.TuitionRevenue / revenue))
	}

	return m
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
