package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDossier_Baseline(t *testing.T) {
	a := New(&fakeFilings{}, nil, nil, nil, WithV2Enabled(false), WithClock(frozenClock))
	analysis, err := a.Analyze(context.Background(), inst())
	require.NoError(t, err)

	md := RenderDossier(analysis, frozenNow)

	assert.True(t, strings.HasPrefix(md, "# Prospect Dossier: Albright College"))
	assert.Contains(t, md, "| **EIN** | 23-1352615 |")
	assert.Contains(t, md, "**Health Status:** ELEVATED RISK")
	assert.Contains(t, md, "| **Total Revenue** | $61,000,000 |")
	assert.Contains(t, md, "| **Operating Result** | -$20,100,000 |")
	assert.Contains(t, md, "| **Expense Ratio** | 133.0% | Deficit spending |")
	assert.Contains(t, md, "| **Runway (Years)** | 2.2 | Limited (<4 years) |")
	assert.Contains(t, md, "*(No active distress signals detected)*")
	assert.Contains(t, md, "**PRIORITY: MEDIUM-HIGH**")
	assert.Contains(t, md, "> - Operating deficit: -$20,100,000")
	assert.NotContains(t, md, "Real-Time Intelligence")
	assert.Contains(t, md, "*Schema Version: 1.0.0*")
}

func TestRenderDossier_WithIntel(t *testing.T) {
	a := New(&fakeFilings{}, nil, &fakeRecon{result: successfulRecon()},
		&fakeExtractor{result: successfulExtraction()}, WithClock(frozenClock))
	analysis, err := a.Analyze(context.Background(), inst())
	require.NoError(t, err)

	md := RenderDossier(analysis, frozenNow)

	assert.Contains(t, md, "**Composite Score:** 90/100")
	assert.Contains(t, md, "**Urgency:** IMMEDIATE")
	assert.Contains(t, md, "## Real-Time Intelligence")
	assert.Contains(t, md, "Enrollment declined 14% since 2022")
	assert.Contains(t, md, "**Composite:** 90 (base 65 + amplification 25)")
	assert.Contains(t, md, "- **Intelligence Queries Used:** 3")
	assert.Contains(t, md, "*Schema Version: 2.0.0*")
}

func TestFmtCurrency(t *testing.T) {
	assert.Equal(t, "$1,234,567", fmtCurrency(1234567))
	assert.Equal(t, "-$500", fmtCurrency(-500))
	assert.Equal(t, "$0", fmtCurrency(0))
}
