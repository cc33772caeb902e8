package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/charter-stone/analyst-cli/internal/pipeline"
	"github.com/charter-stone/analyst-cli/internal/recon"
	"github.com/charter-stone/analyst-cli/internal/store"
	"github.com/charter-stone/analyst-cli/internal/synthesis"
	"github.com/charter-stone/analyst-cli/internal/watchlist"
	anthropicpkg "github.com/charter-stone/analyst-cli/pkg/anthropic"
	"github.com/charter-stone/analyst-cli/pkg/perplexity"
	"github.com/charter-stone/analyst-cli/pkg/propublica"
)

// analystEnv holds the initialized store and pipeline needed by the
// analyze/batch/serve commands.
type analystEnv struct {
	Store   store.Store
	Analyst *pipeline.Analyst
}

// Close releases resources held by the environment.
func (ae *analystEnv) Close() {
	if ae.Store != nil {
		_ = ae.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "analyst.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initAnalyst sets up the store, API clients, watchlist, and pipeline.
// Callers should defer env.Close().
func initAnalyst(ctx context.Context, v2Enabled bool) (*analystEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	filings := propublica.New(propublica.WithBaseURL(cfg.ProPublica.BaseURL))

	// The watchlist is optional curated context. Absence is not an error.
	wl := watchlist.Empty()
	if cfg.Analyst.WatchlistPath != "" {
		wl, err = watchlist.Load(cfg.Analyst.WatchlistPath)
		if err != nil {
			zap.L().Warn("watchlist load failed, proceeding without curated indicators",
				zap.String("path", cfg.Analyst.WatchlistPath),
				zap.Error(err),
			)
			wl = watchlist.Empty()
		} else {
			zap.L().Info("watchlist loaded", zap.Int("institutions", wl.Len()))
		}
	}

	if v2Enabled && cfg.Perplexity.Key == "" {
		zap.L().Warn("ANALYST_PERPLEXITY_KEY not set, disabling intelligence enrichment")
		v2Enabled = false
	}
	if v2Enabled && cfg.Anthropic.Key == "" {
		zap.L().Warn("ANALYST_ANTHROPIC_KEY not set, disabling intelligence enrichment")
		v2Enabled = false
	}

	perplexityClient := perplexity.NewClient(cfg.Perplexity.Key,
		perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
		perplexity.WithModel(cfg.Perplexity.Model),
	)
	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)

	gatherer := recon.New(perplexityClient,
		recon.WithQueryBudget(cfg.Analyst.QueryBudget),
		recon.WithRateLimit(cfg.Analyst.QueryRateQPS, 1),
	)
	extractor := synthesis.New(anthropicClient, synthesis.WithModel(cfg.Anthropic.SonnetModel))

	analyst := pipeline.New(filings, wl, gatherer, extractor,
		pipeline.WithV2Enabled(v2Enabled),
	)

	return &analystEnv{Store: st, Analyst: analyst}, nil
}
