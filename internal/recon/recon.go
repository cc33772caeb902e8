// Package recon runs the web reconnaissance stage: a fixed set of
// search-grounded queries per institution, one per signal category, under a
// hard per-run query budget.
package recon

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/charter-stone/analyst-cli/internal/model"
	"github.com/charter-stone/analyst-cli/internal/resilience"
	"github.com/charter-stone/analyst-cli/pkg/perplexity"
)

// DefaultQueryBudget caps the number of web queries per institution run.
const DefaultQueryBudget = 3

const searchRecency = "month"

// queryTemplates holds one search query per signal category. The %s is the
// institution name.
var queryTemplates = map[model.SignalCategory]string{
	model.CategoryEnrollmentTrends:    "%s university enrollment decline financial difficulties budget cuts 2024 2025",
	model.CategoryLeadershipChanges:   "%s university president provost CFO resignation interim leadership change 2024 2025",
	model.CategoryAccreditationStatus: "%s university accreditation probation warning sanction status 2024 2025",
}

// Recon executes the reconnaissance stage.
type Recon struct {
	client  perplexity.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
	budget  int
	nowFunc func() time.Time
}

// Option configures a Recon.
type Option func(*Recon)

// WithQueryBudget overrides the per-run query budget.
func WithQueryBudget(n int) Option {
	return func(r *Recon) {
		if n > 0 {
			r.budget = n
		}
	}
}

// WithRateLimit sets the outbound query rate (queries per second with burst).
func WithRateLimit(qps float64, burst int) Option {
	return func(r *Recon) { r.limiter = rate.NewLimiter(rate.Limit(qps), burst) }
}

// WithRetryConfig overrides the per-query retry policy.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(r *Recon) { r.retry = cfg }
}

// WithClock injects a clock for deterministic timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recon) { r.nowFunc = now }
}

// New creates a Recon backed by the given search client.
func New(client perplexity.Client, opts ...Option) *Recon {
	r := &Recon{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		retry:   resilience.DefaultRetryConfig(),
		budget:  DefaultQueryBudget,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Gather runs one query per signal category for the institution, stopping at
// the query budget. A failed individual query is recorded in the raw results
// but does not fail the stage; the stage errors only when every query fails.
func (r *Recon) Gather(ctx context.Context, inst model.Institution) model.ReconResult {
	result := model.ReconResult{
		Status:        model.StageSuccess,
		Raw:           make(map[model.SignalCategory]model.QueryResult, len(model.Categories)),
		QueriesBudget: r.budget,
		Institution:   inst.Name,
		EIN:           inst.EIN,
		Timestamp:     r.nowFunc().UTC(),
	}

	failures := 0
	for _, category := range model.Categories {
		if result.QueriesExecuted >= r.budget {
			zap.L().Warn("query budget exhausted",
				zap.String("institution", inst.Name),
				zap.String("skipped_category", string(category)),
				zap.Int("budget", r.budget),
			)
			break
		}

		query := fmt.Sprintf(queryTemplates[category], inst.Name)
		qr := r.runQuery(ctx, query)
		result.Raw[category] = qr
		result.QueriesExecuted++

		if qr.Status != string(model.StageSuccess) {
			failures++
		}
	}

	if result.QueriesExecuted == 0 {
		result.Status = model.StageError
		result.Reason = "query budget is zero"
	} else if failures == result.QueriesExecuted {
		result.Status = model.StageError
		result.Reason = "all reconnaissance queries failed"
	}

	zap.L().Info("reconnaissance complete",
		zap.String("institution", inst.Name),
		zap.String("status", string(result.Status)),
		zap.Int("queries_executed", result.QueriesExecuted),
		zap.Int("failures", failures),
	)
	return result
}

func (r *Recon) runQuery(ctx context.Context, query string) model.QueryResult {
	qr := model.QueryResult{
		Query:     query,
		Timestamp: r.nowFunc().UTC(),
	}

	if err := r.limiter.Wait(ctx); err != nil {
		qr.Status = string(model.StageError)
		qr.Error = err.Error()
		return qr
	}

	req := perplexity.ChatCompletionRequest{
		Messages: []perplexity.Message{
			{Role: "system", Content: "You are a research assistant. Report only factual, recent findings with sources."},
			{Role: "user", Content: query},
		},
		SearchRecencyFilter: searchRecency,
	}

	retryCfg := r.retry
	retryCfg.OnRetry = resilience.RetryLogger("perplexity", "chat_completion")

	resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*perplexity.ChatCompletionResponse, error) {
		return r.client.ChatCompletion(ctx, req)
	})
	if err != nil {
		qr.Status = string(model.StageError)
		qr.Error = err.Error()
		return qr
	}

	qr.Status = string(model.StageSuccess)
	qr.Response = resp.Text()
	qr.Citations = resp.Citations
	return qr
}
