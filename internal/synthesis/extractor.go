// Package synthesis turns raw reconnaissance payloads into structured,
// credibility-classified signals using a language model.
package synthesis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/charter-stone/analyst-cli/internal/model"
	"github.com/charter-stone/analyst-cli/internal/resilience"
	"github.com/charter-stone/analyst-cli/pkg/anthropic"
)

const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultMaxTokens = 1024
	// Low temperature for factual extraction.
	extractionTemperature = 0.3
)

const systemPrompt = `You are the intelligence synthesis engine for a higher-education
financial distress analyst. Your role is to extract structured, actionable
signals from web search results about universities under financial pressure.

PRINCIPLES
1. Every finding must be decision-ready, not a data dump.
2. Only external, public data sources are used.
3. Every claim requires source attribution with publication date.

CREDIBILITY CLASSIFICATION (BINARY ONLY)
- TRUSTED: .edu domains, .gov sites, Chronicle of Higher Education, Inside
  Higher Ed, WSJ, NYT, Bloomberg, official accreditor disclosures.
- UNTRUSTED: forums, blogs, Reddit, unverified social media, press releases
  without third-party confirmation.
Do NOT use weighted scores or confidence percentages. Classification is
binary: TRUSTED or UNTRUSTED.

CITATION FORMAT
Every finding must include a source as "Publication Name, YYYY-MM-DD".

IGNORE
- Marketing announcements, opinion pieces without factual claims, paywalled
  snippets with no actionable data, duplicate reports of the same event.

TONE
Factual and clinical. "Enrollment declined 12%", never editorializing.`

// Extractor defines the signal extraction stage.
type Extractor interface {
	Extract(ctx context.Context, recon model.ReconResult) model.ExtractionResult
}

// ClaudeExtractor implements Extractor against the Anthropic API.
type ClaudeExtractor struct {
	client  anthropic.Client
	model   string
	retry   resilience.RetryConfig
	nowFunc func() time.Time
}

// Option configures a ClaudeExtractor.
type Option func(*ClaudeExtractor)

// WithModel overrides the extraction model.
func WithModel(m string) Option {
	return func(e *ClaudeExtractor) { e.model = m }
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(e *ClaudeExtractor) { e.retry = cfg }
}

// WithClock injects a clock for deterministic timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(e *ClaudeExtractor) { e.nowFunc = now }
}

// New creates a ClaudeExtractor.
func New(client anthropic.Client, opts ...Option) *ClaudeExtractor {
	e := &ClaudeExtractor{
		client:  client,
		model:   defaultModel,
		retry:   resilience.DefaultRetryConfig(),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract converts raw reconnaissance payloads into one signal per category.
// On any failure the result degrades to the Unavailable triple with
// StageError; it never returns a partial set.
func (e *ClaudeExtractor) Extract(ctx context.Context, recon model.ReconResult) model.ExtractionResult {
	result := model.ExtractionResult{
		Institution: recon.Institution,
		Model:       e.model,
		Timestamp:   e.nowFunc().UTC(),
	}

	signals, err := e.extract(ctx, recon)
	if err != nil {
		zap.L().Warn("signal extraction failed",
			zap.String("institution", recon.Institution),
			zap.Error(err),
		)
		result.Status = model.StageError
		result.Error = err.Error()
		result.Signals = model.UnavailableSignals()
		return result
	}

	result.Status = model.StageSuccess
	result.Signals = signals
	return result
}

func (e *ClaudeExtractor) extract(ctx context.Context, recon model.ReconResult) (model.SignalSet, error) {
	var zero model.SignalSet

	rawJSON, err := json.MarshalIndent(recon.Raw, "", "  ")
	if err != nil {
		return zero, eris.Wrap(err, "synthesis: marshal recon payload")
	}

	userPrompt := buildUserPrompt(recon.Institution, string(rawJSON))

	retryCfg := e.retry
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "extract_signals")

	resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return e.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       e.model,
			MaxTokens:   defaultMaxTokens,
			System:      systemPrompt,
			Temperature: model.Float64(extractionTemperature),
			Messages: []anthropic.Message{
				{Role: "user", Content: userPrompt},
			},
		})
	})
	if err != nil {
		return zero, eris.Wrap(err, "synthesis: create message")
	}

	resp.Usage.LogCost(e.model, "synthesis")

	signals, err := parseSignals(resp.Text())
	if err != nil {
		return zero, err
	}
	return signals, nil
}

func buildUserPrompt(institution, rawJSON string) string {
	var b strings.Builder
	b.WriteString("MISSION: Extract actionable intelligence signals for ")
	b.WriteString(institution)
	b.WriteString(".\n\nRAW SEARCH RESULTS:\n")
	b.WriteString(rawJSON)
	b.WriteString(`

OUTPUT FORMAT: Return ONLY valid JSON (no markdown, no code blocks) with structure:
{
  "enrollment_trends": {"finding": "specific factual claim", "source": "publication name, date", "credibility": "TRUSTED|UNTRUSTED|N/A"},
  "leadership_changes": {"finding": "specific factual claim", "source": "publication name, date", "credibility": "TRUSTED|UNTRUSTED|N/A"},
  "accreditation_status": {"finding": "specific factual claim", "source": "publication name, date", "credibility": "TRUSTED|UNTRUSTED|N/A"}
}

GUARDRAILS:
- Every finding MUST cite source with date.
- Credibility is BINARY: TRUSTED or UNTRUSTED. N/A only when no credible evidence exists.
- If insufficient evidence, return finding: "No credible signals detected".
- NO weighted scores. NO confidence percentages.
`)
	return b.String()
}

// parseSignals decodes the model output, tolerating a JSON payload wrapped in
// a markdown code fence.
func parseSignals(text string) (model.SignalSet, error) {
	var set model.SignalSet

	candidate := strings.TrimSpace(text)
	if err := json.Unmarshal([]byte(candidate), &set); err == nil {
		return normalize(set), nil
	}

	if fenced, ok := extractFenced(candidate); ok {
		if err := json.Unmarshal([]byte(fenced), &set); err == nil {
			return normalize(set), nil
		}
	}

	return set, eris.Errorf("synthesis: model returned malformed JSON: %.120s", candidate)
}

func extractFenced(text string) (string, bool) {
	for _, marker := range []string{"```json", "```"} {
		if idx := strings.Index(text, marker); idx >= 0 {
			rest := text[idx+len(marker):]
			if end := strings.Index(rest, "```"); end >= 0 {
				return strings.TrimSpace(rest[:end]), true
			}
		}
	}
	return "", false
}

// normalize coerces empty categories into explicit Unavailable signals so a
// sparse model response still yields a full set.
func normalize(set model.SignalSet) model.SignalSet {
	unavailable := model.Signal{Finding: "Unavailable", Source: "N/A", Credibility: model.CredibilityUnavailable}
	if set.EnrollmentTrends == (model.Signal{}) {
		set.EnrollmentTrends = unavailable
	}
	if set.LeadershipChanges == (model.Signal{}) {
		set.LeadershipChanges = unavailable
	}
	if set.AccreditationStatus == (model.Signal{}) {
		set.AccreditationStatus = unavailable
	}
	return set
}
