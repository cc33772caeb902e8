package pipeline

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/charter-stone/analyst-cli/internal/model"
)

var currencyPrinter = message.NewPrinter(language.AmericanEnglish)

// fmtCurrency renders a dollar amount with thousands separators.
func fmtCurrency(v float64) string {
	if v < 0 {
		return currencyPrinter.Sprintf("-$%.0f", -v)
	}
	return currencyPrinter.Sprintf("$%.0f", v)
}

func healthStatus(level model.DistressLevel) string {
	switch level {
	case model.DistressCritical:
		return "CRITICAL"
	case model.DistressElevated:
		return "ELEVATED RISK"
	case model.DistressWatch:
		return "WATCH"
	default:
		return "STABLE"
	}
}

// RenderDossier produces the human-readable markdown companion to the JSON
// profile.
func RenderDossier(a *Analysis, generatedAt time.Time) string {
	p := a.Profile
	fy := p.Financials.FiscalYear
	revenue := model.OrZero(p.Financials.TotalRevenue)
	expenses := model.OrZero(p.Financials.TotalExpenses)
	operating := p.Financials.OperatingSurplusDeficit
	calc := p.Financials.Calculated
	level := p.Signals.DistressLevel

	var b strings.Builder
	fmt.Fprintf(&b, "# Prospect Dossier: %s\n\n---\n\n", p.Institution.Name)
	fmt.Fprintf(&b, "| Field | Value |\n|-------|-------|\n")
	fmt.Fprintf(&b, "| **Generated** | %s |\n", generatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "| **Agent** | analyst-cli v%s |\n", AnalystVersion)
	fmt.Fprintf(&b, "| **EIN** | %s |\n", p.Institution.EIN)
	fmt.Fprintf(&b, "| **Data Source** | IRS Form 990 (%d) |\n\n---\n\n", fy)

	fmt.Fprintf(&b, "## Executive Summary\n\n")
	fmt.Fprintf(&b, "**Institution:** %s  \n", p.Institution.Name)
	fmt.Fprintf(&b, "**Health Status:** %s  \n", healthStatus(level))
	fmt.Fprintf(&b, "**Distress Level:** %s\n\n", strings.ToUpper(string(level)))

	if p.V2Signals != nil {
		fmt.Fprintf(&b, "**Composite Score:** %d/100  \n", p.V2Signals.CompositeScore)
		fmt.Fprintf(&b, "**Urgency:** %s\n\n", p.V2Signals.UrgencyFlag)
	}

	fmt.Fprintf(&b, "---\n\n## Financial Overview (FY%d)\n\n", fy)
	fmt.Fprintf(&b, "| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| **Total Revenue** | %s |\n", fmtCurrency(revenue))
	fmt.Fprintf(&b, "| **Total Expenses** | %s |\n", fmtCurrency(expenses))
	fmt.Fprintf(&b, "| **Operating Result** | %s |\n", fmtCurrency(operating))
	fmt.Fprintf(&b, "| **Net Assets** | %s |\n\n", fmtCurrency(model.OrZero(p.Financials.NetAssets)))

	fmt.Fprintf(&b, "### Calculated Indicators\n\n")
	fmt.Fprintf(&b, "| Indicator | Value | Interpretation |\n|-----------|-------|----------------|\n")
	fmt.Fprintf(&b, "| **Expense Ratio** | %s | %s |\n", fmtRatio(calc.ExpenseRatio), interpretRatio(calc.ExpenseRatio))
	fmt.Fprintf(&b, "| **Runway (Years)** | %s | %s |\n\n", fmtRunway(calc.RunwayYears), interpretRunway(calc.RunwayYears))

	fmt.Fprintf(&b, "---\n\n## Distress Signals\n\n%s\n\n", formatIndicators(p.Signals.Indicators))

	if p.V2Signals != nil {
		writeIntelSection(&b, p.V2Signals)
	}

	fmt.Fprintf(&b, "---\n\n## Engagement Recommendation\n\n%s\n", recommendation(level))

	fmt.Fprintf(&b, "\n---\n\n## Blinded Presentation\n\n")
	fmt.Fprintf(&b, "For use in external materials:\n\n")
	fmt.Fprintf(&b, "> **%s**\n>\n", p.BlindedPresentation.DisplayName)
	if operating < 0 {
		fmt.Fprintf(&b, "> - Operating deficit: %s\n", fmtCurrency(operating))
	} else {
		fmt.Fprintf(&b, "> - Operating deficit: None\n")
	}
	fmt.Fprintf(&b, "> - Expense ratio: %s\n", fmtRatio(calc.ExpenseRatio))
	fmt.Fprintf(&b, "> - Runway: %s\n\n", fmtRunway(calc.RunwayYears))

	fmt.Fprintf(&b, "---\n\n## Data Provenance\n\n")
	fmt.Fprintf(&b, "- **Source:** ProPublica Nonprofit Explorer API\n")
	fmt.Fprintf(&b, "- **Form:** IRS 990 (Tax Year %d)\n", fy)
	fmt.Fprintf(&b, "- **Retrieved:** %s\n", generatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- **Confidence:** High (official IRS filing data)\n")
	if a.Metadata.V2Enabled {
		fmt.Fprintf(&b, "- **Intelligence Queries Used:** %d\n", a.Metadata.QueriesUsed)
	}
	fmt.Fprintf(&b, "\n*Schema Version: %s*\n", schemaVersion(p))

	return b.String()
}

func schemaVersion(p *model.Profile) string {
	if p.Metadata != nil {
		return p.Metadata.SchemaVersion
	}
	return p.Meta.SchemaVersion
}

func fmtRatio(r *float64) string {
	if r == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *r*100)
}

func interpretRatio(r *float64) string {
	switch {
	case r == nil:
		return "—"
	case *r > 1.0:
		return "Deficit spending"
	default:
		return "Within budget"
	}
}

func fmtRunway(r *float64) string {
	if r == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *r)
}

func interpretRunway(r *float64) string {
	switch {
	case r == nil:
		return "No deficit"
	case *r < 2:
		return "Critical (<2 years)"
	case *r < 4:
		return "Limited (<4 years)"
	default:
		return "—"
	}
}

func formatIndicators(indicators []model.Indicator) string {
	if len(indicators) == 0 {
		return "*(No active distress signals detected)*"
	}
	lines := make([]string, 0, len(indicators))
	for _, ind := range indicators {
		lines = append(lines, fmt.Sprintf("- [%s] **%s** — %s: %s",
			strings.ToUpper(string(ind.Severity)), ind.DetectedAt, ind.Type, ind.Signal))
	}
	return strings.Join(lines, "\n")
}

func writeIntelSection(b *strings.Builder, v2 *model.V2Signals) {
	fmt.Fprintf(b, "---\n\n## Real-Time Intelligence\n\n")
	fmt.Fprintf(b, "| Category | Finding | Source | Credibility |\n|----------|---------|--------|-------------|\n")
	for _, category := range model.Categories {
		sig := v2.RealTimeIntel.ByCategory(category)
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", category, sig.Finding, sig.Source, sig.Credibility)
	}
	fmt.Fprintf(b, "\n**Composite:** %d (base %d + amplification %d)\n\n",
		v2.CompositeScore, v2.V1BaseScore, v2.V2Contribution)
}

func recommendation(level model.DistressLevel) string {
	switch level {
	case model.DistressCritical:
		return `**PRIORITY: HIGH**

This institution shows critical financial distress indicators. Immediate outreach recommended with emphasis on:
- Operational triage services
- Financial stabilization consulting
- Leadership advisory support

*Suggested approach: Direct executive contact with diagnostic in hand.*`
	case model.DistressElevated:
		return `**PRIORITY: MEDIUM-HIGH**

This institution shows elevated risk indicators. Proactive outreach recommended with emphasis on:
- Financial health assessment
- Operational efficiency review
- Strategic planning support

*Suggested approach: Consultative outreach positioning the firm as a strategic partner.*`
	case model.DistressWatch:
		return `**PRIORITY: MEDIUM**

This institution shows early warning indicators. Monitor and consider outreach with emphasis on:
- Preventive assessment
- Peer benchmarking
- Process optimization

*Suggested approach: Add to watch list; consider outreach if additional signals emerge.*`
	default:
		return `**PRIORITY: LOW**

This institution appears financially stable. No immediate outreach recommended unless:
- Strategic opportunity identified
- Referral received
- New distress signals emerge

*Suggested approach: Monitor only.*`
	}
}
