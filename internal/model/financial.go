package model

// FinancialFacts is one fiscal-year snapshot of an institution's IRS 990
// filing. Monetary fields are nullable: a nil pointer means the line was
// absent from the filing, which is distinct from a reported zero.
type FinancialFacts struct {
	TotalRevenue     *float64 `json:"total_revenue"`
	TotalExpenses    *float64 `json:"total_expenses"`
	NetAssets        *float64 `json:"net_assets"`
	TuitionRevenue   *float64 `json:"tuition_revenue"`
	Contributions    *float64 `json:"contributions"`
	InvestmentIncome *float64 `json:"investment_income"`
	FilingYear       int      `json:"filing_year"`
}

// DerivedMetrics holds the calculated indicators for a filing. A nil metric
// means its defining precondition did not hold (see metrics.Calculate), never
// that a division failed.
type DerivedMetrics struct {
	ExpenseRatio            *float64 `json:"expense_ratio"`
	OperatingSurplusDeficit float64  `json:"operating_surplus_deficit"`
	RunwayYears             *float64 `json:"runway_years"`
	TuitionDependency       *float64 `json:"tuition_dependency"`
}

// Float64 returns a pointer to v. Convenience for building nullable facts.
func Float64(v float64) *float64 {
	return &v
}

// OrZero dereferences p, treating nil as zero.
func OrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
