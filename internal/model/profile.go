package model

import "time"

const (
	// SchemaVersionV1 is the Prospect Data Standard version for V1 profiles.
	SchemaVersionV1 = "1.0.0"
	// SchemaVersionV2 marks profiles carrying the additive v2_signals block.
	SchemaVersionV2 = "2.0.0"
)

// Meta carries profile provenance.
type Meta struct {
	SchemaVersion string       `json:"schema_version"`
	GeneratedAt   time.Time    `json:"generated_at"`
	GeneratedBy   string       `json:"generated_by"`
	DataSources   []DataSource `json:"data_sources"`
}

// DataSource records where a section of the profile came from.
type DataSource struct {
	Source      string    `json:"source"`
	RetrievedAt time.Time `json:"retrieved_at"`
	Confidence  string    `json:"confidence"`
}

// Location places the institution.
type Location struct {
	City   string `json:"city"`
	State  string `json:"state"`
	Region string `json:"region"`
}

// Enrollment holds headcount figures when known.
type Enrollment struct {
	Total *int    `json:"total"`
	FTE   *int    `json:"fte"`
	AsOf  *string `json:"as_of"`
}

// InstitutionRecord is the institution section of a profile.
type InstitutionRecord struct {
	Name           string     `json:"name"`
	Aliases        []string   `json:"aliases"`
	EIN            string     `json:"ein"`
	Type           string     `json:"type"`
	Classification string     `json:"classification,omitempty"`
	Location       Location   `json:"location"`
	Enrollment     Enrollment `json:"enrollment"`
	Website        string     `json:"website,omitempty"`
}

// FilingSource records which IRS form a financials section came from.
type FilingSource struct {
	Form          string `json:"form"`
	TaxPeriod     string `json:"tax_period"`
	RetrievedFrom string `json:"retrieved_from"`
}

// Financials is the financials section of a profile: raw filing values plus
// calculated indicators.
type Financials struct {
	FiscalYear              int            `json:"fiscal_year"`
	TotalRevenue            *float64       `json:"total_revenue"`
	TotalExpenses           *float64       `json:"total_expenses"`
	OperatingSurplusDeficit float64        `json:"operating_surplus_deficit"`
	NetAssets               *float64       `json:"net_assets"`
	TuitionRevenue          *float64       `json:"tuition_revenue"`
	Contributions           *float64       `json:"contributions"`
	InvestmentIncome        *float64       `json:"investment_income"`
	Calculated              DerivedMetrics `json:"calculated"`
	DataSource              FilingSource   `json:"data_source"`
}

// ProfileSignals is the V1 signals section.
type ProfileSignals struct {
	DistressLevel DistressLevel `json:"distress_level"`
	Indicators    []Indicator   `json:"indicators"`
	NewsHits      []string      `json:"news_hits"`
}

// Contact is a leadership contact slot, unresolved by this pipeline.
type Contact struct {
	Name        *string `json:"name"`
	Title       *string `json:"title"`
	TenureStart *string `json:"tenure_start,omitempty"`
	Email       *string `json:"email"`
}

// Leadership is the leadership section of a profile.
type Leadership struct {
	President      Contact `json:"president"`
	CFO            Contact `json:"cfo"`
	Provost        Contact `json:"provost"`
	StabilityNotes *string `json:"stability_notes"`
}

// Engagement tracks outreach workflow state.
type Engagement struct {
	Status         string   `json:"status"`
	Priority       string   `json:"priority"`
	LastContact    *string  `json:"last_contact"`
	NextAction     string   `json:"next_action"`
	NextActionDate *string  `json:"next_action_date"`
	Owner          string   `json:"owner"`
	Notes          []string `json:"notes"`
}

// BlindedPresentation is the anonymized external-use block.
type BlindedPresentation struct {
	DisplayName         string `json:"display_name"`
	ApprovedForExternal bool   `json:"approved_for_external"`
}

// V2Signals is the additive real-time intelligence block merged into a V1
// profile on a successful V2 run. No V1 field is removed or renamed by the
// merge; this block only ever appears alongside them.
type V2Signals struct {
	RealTimeIntel   SignalSet         `json:"real_time_intel"`
	CompositeScore  int               `json:"composite_score"`
	UrgencyFlag     UrgencyFlag       `json:"urgency_flag"`
	V1BaseScore     int               `json:"v1_base_score"`
	V2Contribution  int               `json:"v2_contribution"`
	SignalBreakdown []AmplifiedSignal `json:"signal_breakdown"`
}

// ProfileMetadata is the run-level metadata updated by the V2 merge.
type ProfileMetadata struct {
	AnalystVersion          string `json:"analyst_version"`
	IntelligenceQueriesUsed int    `json:"intelligence_queries_used"`
	SchemaVersion           string `json:"schema_version"`
}

// Profile is the complete merged record for one institution and one pipeline
// run. Profiles are never mutated after merge; later runs produce new
// profiles distinguished by version fields.
type Profile struct {
	Meta                Meta                `json:"meta"`
	Institution         InstitutionRecord   `json:"institution"`
	Financials          Financials          `json:"financials"`
	Signals             ProfileSignals      `json:"signals"`
	Leadership          Leadership          `json:"leadership"`
	Engagement          Engagement          `json:"engagement"`
	BlindedPresentation BlindedPresentation `json:"blinded_presentation"`
	ProfileVersion      string              `json:"profile_version,omitempty"`
	V2Signals           *V2Signals          `json:"v2_signals,omitempty"`
	Metadata            *ProfileMetadata    `json:"metadata,omitempty"`
}

// Clone deep-copies the profile so the merge stage can build a V2 record
// without aliasing the V1 input.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	out := *p

	out.Meta.DataSources = append([]DataSource(nil), p.Meta.DataSources...)
	out.Institution.Aliases = append([]string(nil), p.Institution.Aliases...)
	out.Institution.Enrollment.Total = cloneInt(p.Institution.Enrollment.Total)
	out.Institution.Enrollment.FTE = cloneInt(p.Institution.Enrollment.FTE)
	out.Institution.Enrollment.AsOf = cloneString(p.Institution.Enrollment.AsOf)

	out.Financials.TotalRevenue = cloneFloat(p.Financials.TotalRevenue)
	out.Financials.TotalExpenses = cloneFloat(p.Financials.TotalExpenses)
	out.Financials.NetAssets = cloneFloat(p.Financials.NetAssets)
	out.Financials.TuitionRevenue = cloneFloat(p.Financials.TuitionRevenue)
	out.Financials.Contributions = cloneFloat(p.Financials.Contributions)
	out.Financials.InvestmentIncome = cloneFloat(p.Financials.InvestmentIncome)
	out.Financials.Calculated.ExpenseRatio = cloneFloat(p.Financials.Calculated.ExpenseRatio)
	out.Financials.Calculated.RunwayYears = cloneFloat(p.Financials.Calculated.RunwayYears)
	out.Financials.Calculated.TuitionDependency = cloneFloat(p.Financials.Calculated.TuitionDependency)

	out.Signals.Indicators = append([]Indicator(nil), p.Signals.Indicators...)
	out.Signals.NewsHits = append([]string(nil), p.Signals.NewsHits...)

	out.Leadership.President = cloneContact(p.Leadership.President)
	out.Leadership.CFO = cloneContact(p.Leadership.CFO)
	out.Leadership.Provost = cloneContact(p.Leadership.Provost)
	out.Leadership.StabilityNotes = cloneString(p.Leadership.StabilityNotes)

	out.Engagement.LastContact = cloneString(p.Engagement.LastContact)
	out.Engagement.NextActionDate = cloneString(p.Engagement.NextActionDate)
	out.Engagement.Notes = append([]string(nil), p.Engagement.Notes...)

	if p.V2Signals != nil {
		v2 := *p.V2Signals
		v2.SignalBreakdown = append([]AmplifiedSignal(nil), p.V2Signals.SignalBreakdown...)
		out.V2Signals = &v2
	}
	if p.Metadata != nil {
		md := *p.Metadata
		out.Metadata = &md
	}

	return &out
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneContact(c Contact) Contact {
	return Contact{
		Name:        cloneString(c.Name),
		Title:       cloneString(c.Title),
		TenureStart: cloneString(c.TenureStart),
		Email:       cloneString(c.Email),
	}
}
