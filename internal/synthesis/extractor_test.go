package synthesis

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charter-stone/analyst-cli/internal/model"
	"github.com/charter-stone/analyst-cli/internal/resilience"
	"github.com/charter-stone/analyst-cli/pkg/anthropic"
)

var frozenNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const validSignalsJSON = `{
	"enrollment_trends": {"finding": "Enrollment declined 14% since 2022", "source": "Inside Higher Ed, 2025-04-12", "credibility": "TRUSTED"},
	"leadership_changes": {"finding": "President resigned; interim appointed", "source": "Chronicle of Higher Education, 2025-03-30", "credibility": "TRUSTED"},
	"accreditation_status": {"finding": "No credible signals detected", "source": "Search corpus reviewed 2025-06-01", "credibility": "N/A"}
}`

type fakeClaude struct {
	text string
	err  error
	req  anthropic.MessageRequest
}

func (f *fakeClaude) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.text}},
	}, nil
}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 1, InitialBackoff: time.Millisecond, JitterFraction: 0}
}

func newTestExtractor(client anthropic.Client) *ClaudeExtractor {
	return New(client,
		WithRetryConfig(fastRetry()),
		WithClock(func() time.Time { return frozenNow }),
	)
}

func reconFixture() model.ReconResult {
	return model.ReconResult{
		Status:      model.StageSuccess,
		Institution: "Albright College",
		Raw: map[model.SignalCategory]model.QueryResult{
			model.CategoryEnrollmentTrends: {Query: "q", Response: "enrollment fell", Status: "success"},
		},
	}
}

func TestExtract_Success(t *testing.T) {
	fake := &fakeClaude{text: validSignalsJSON}
	e := newTestExtractor(fake)

	result := e.Extract(context.Background(), reconFixture())

	assert.Equal(t, model.StageSuccess, result.Status)
	assert.Equal(t, "Albright College", result.Institution)
	assert.Equal(t, frozenNow, result.Timestamp)
	assert.Equal(t, model.CredibilityTrusted, result.Signals.EnrollmentTrends.Credibility)
	assert.Contains(t, result.Signals.EnrollmentTrends.Finding, "declined 14%")
	assert.Equal(t, model.CredibilityUnavailable, result.Signals.AccreditationStatus.Credibility)

	// The prompt carries the institution and the raw payload.
	assert.Contains(t, fake.req.Messages[0].Content, "Albright College")
	assert.Contains(t, fake.req.Messages[0].Content, "enrollment fell")
	assert.NotEmpty(t, fake.req.System)
	require.NotNil(t, fake.req.Temperature)
	assert.Equal(t, 0.3, *fake.req.Temperature)
}

func TestExtract_FencedJSON(t *testing.T) {
	fake := &fakeClaude{text: "Here are the signals:\n```json\n" + validSignalsJSON + "\n```\n"}
	e := newTestExtractor(fake)

	result := e.Extract(context.Background(), reconFixture())

	assert.Equal(t, model.StageSuccess, result.Status)
	assert.Equal(t, model.CredibilityTrusted, result.Signals.LeadershipChanges.Credibility)
}

func TestExtract_APIError_DegradesToUnavailable(t *testing.T) {
	fake := &fakeClaude{err: eris.New("overloaded")}
	e := newTestExtractor(fake)

	result := e.Extract(context.Background(), reconFixture())

	assert.Equal(t, model.StageError, result.Status)
	assert.Contains(t, result.Error, "overloaded")
	assert.Equal(t, model.UnavailableSignals(), result.Signals)
}

func TestExtract_MalformedJSON_DegradesToUnavailable(t *testing.T) {
	fake := &fakeClaude{text: "I could not find anything relevant."}
	e := newTestExtractor(fake)

	result := e.Extract(context.Background(), reconFixture())

	assert.Equal(t, model.StageError, result.Status)
	assert.Contains(t, result.Error, "malformed JSON")
	assert.Equal(t, model.UnavailableSignals(), result.Signals)
}

func TestExtract_SparseResponseFilledIn(t *testing.T) {
	fake := &fakeClaude{text: `{"enrollment_trends": {"finding": "Enrollment fell", "source": "NYT, 2025-05-01", "credibility": "TRUSTED"}}`}
	e := newTestExtractor(fake)

	result := e.Extract(context.Background(), reconFixture())

	assert.Equal(t, model.StageSuccess, result.Status)
	assert.Equal(t, model.CredibilityTrusted, result.Signals.EnrollmentTrends.Credibility)
	assert.Equal(t, "Unavailable", result.Signals.LeadershipChanges.Finding)
	assert.Equal(t, model.CredibilityUnavailable, result.Signals.AccreditationStatus.Credibility)
}

func TestParseSignals_PlainFence(t *testing.T) {
	set, err := parseSignals("```\n" + validSignalsJSON + "\n```")
	require.NoError(t, err)
	assert.Equal(t, model.CredibilityTrusted, set.EnrollmentTrends.Credibility)
}
