package scoring

import (
	"strings"

	"github.com/charter-stone/analyst-cli/internal/model"
)

// categoryKeywords are the per-category trigger sets. A TRUSTED finding must
// match at least one keyword (case-insensitive) to contribute; trust alone
// is not sufficient.
var categoryKeywords = map[model.SignalCategory][]string{
	model.CategoryEnrollmentTrends:    {"decline", "drop", "fell", "decreased", "loss", "reduced"},
	model.CategoryLeadershipChanges:   {"interim", "resignation", "resigned", "departure", "departed", "turnover"},
	model.CategoryAccreditationStatus: {"probation", "warning", "closure", "alert", "violation", "sanction"},
}

// categoryPoints are the amplification values awarded at most once per
// category per scoring pass.
var categoryPoints = map[model.SignalCategory]int{
	model.CategoryEnrollmentTrends:    10,
	model.CategoryLeadershipChanges:   15,
	model.CategoryAccreditationStatus: 20,
}

// snippetLen bounds the finding excerpt carried in the score breakdown.
const snippetLen = 80

// GateSignal decides whether one extracted signal contributes amplification.
// UNTRUSTED and N/A signals never contribute, regardless of content. A
// TRUSTED signal contributes its category's point value exactly once when
// any keyword matches — multiple keyword hits do not compound.
func GateSignal(category model.SignalCategory, sig model.Signal) (int, bool) {
	if sig.Credibility != model.CredibilityTrusted {
		return 0, false
	}

	finding := strings.ToLower(sig.Finding)
	for _, kw := range categoryKeywords[category] {
		if strings.Contains(finding, kw) {
			return categoryPoints[category], true
		}
	}
	return 0, false
}

// snippet truncates a finding to snippetLen characters for the audit
// breakdown, never splitting a multi-byte rune.
func snippet(finding string) string {
	if finding == "" {
		return "N/A"
	}
	runes := []rune(finding)
	if len(runes) > snippetLen {
		return string(runes[:snippetLen])
	}
	return finding
}
