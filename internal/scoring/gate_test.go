package scoring

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/charter-stone/analyst-cli/internal/model"
)

func TestGateSignal_TrustedKeywordMatch(t *testing.T) {
	points, fired := GateSignal(model.CategoryEnrollmentTrends, model.Signal{
		Finding:     "Fall enrollment declined 12% year over year",
		Source:      "Chronicle of Higher Education, 2025-01-10",
		Credibility: model.CredibilityTrusted,
	})
	assert.True(t, fired)
	assert.Equal(t, 10, points)
}

func TestGateSignal_UntrustedNeverAmplifies(t *testing.T) {
	// Credibility gate dominates content match.
	points, fired := GateSignal(model.CategoryAccreditationStatus, model.Signal{
		Finding:     "placed on probation by its accreditor",
		Source:      "campus forum post",
		Credibility: model.CredibilityUntrusted,
	})
	assert.False(t, fired)
	assert.Zero(t, points)
}

func TestGateSignal_UnavailableNeverAmplifies(t *testing.T) {
	points, fired := GateSignal(model.CategoryLeadershipChanges, model.Signal{
		Finding:     "interim president appointed after resignation",
		Credibility: model.CredibilityUnavailable,
	})
	assert.False(t, fired)
	assert.Zero(t, points)
}

func TestGateSignal_TrustedWithoutKeywordContributesZero(t *testing.T) {
	points, fired := GateSignal(model.CategoryEnrollmentTrends, model.Signal{
		Finding:     "Enrollment held steady for the third consecutive year",
		Credibility: model.CredibilityTrusted,
	})
	assert.False(t, fired)
	assert.Zero(t, points)
}

func TestGateSignal_CaseInsensitive(t *testing.T) {
	_, fired := GateSignal(model.CategoryAccreditationStatus, model.Signal{
		Finding:     "PROBATION status confirmed by MSCHE",
		Credibility: model.CredibilityTrusted,
	})
	assert.True(t, fired)
}

func TestGateSignal_MultipleKeywordsCountOnce(t *testing.T) {
	points, fired := GateSignal(model.CategoryLeadershipChanges, model.Signal{
		Finding:     "CFO resignation and provost departure; interim leadership named",
		Credibility: model.CredibilityTrusted,
	})
	assert.True(t, fired)
	assert.Equal(t, 15, points)
}

func TestGateSignal_CategoryPointValues(t *testing.T) {
	cases := []struct {
		category model.SignalCategory
		finding  string
		points   int
	}{
		{model.CategoryEnrollmentTrends, "headcount fell sharply", 10},
		{model.CategoryLeadershipChanges, "executive turnover continues", 15},
		{model.CategoryAccreditationStatus, "formal sanction issued", 20},
	}
	for _, tc := range cases {
		points, fired := GateSignal(tc.category, model.Signal{
			Finding:     tc.finding,
			Credibility: model.CredibilityTrusted,
		})
		assert.True(t, fired, tc.category)
		assert.Equal(t, tc.points, points, tc.category)
	}
}

func TestGateSignal_KeywordDoesNotCrossCategories(t *testing.T) {
	// "probation" is an accreditation keyword; it must not fire for enrollment.
	_, fired := GateSignal(model.CategoryEnrollmentTrends, model.Signal{
		Finding:     "probation announced",
		Credibility: model.CredibilityTrusted,
	})
	assert.False(t, fired)
}

func TestSnippet_Truncation(t *testing.T) {
	long := strings.Repeat("enrollment decline ", 10)
	assert.Len(t, snippet(long), 80)
	assert.Equal(t, "short", snippet("short"))
	assert.Equal(t, "N/A", snippet(""))
}

func TestSnippet_MultiByteFindings(t *testing.T) {
	long := strings.Repeat("Université enrollment féll — ", 10)
	got := snippet(long)
	assert.True(t, utf8.ValidString(got))
	assert.Len(t, []rune(got), 80)
	assert.Equal(t, string([]rune(long)[:80]), got)
}
