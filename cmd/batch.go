package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/charter-stone/analyst-cli/internal/cohort"
	"github.com/charter-stone/analyst-cli/internal/model"
)

var (
	batchCohortPath  string
	batchLimit       int
	batchConcurrency int
	batchSummaryPath string
	batchNoV2        bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze a cohort of institutions from a CSV or XLSX file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		institutions, err := cohort.Load(batchCohortPath)
		if err != nil {
			return err
		}

		env, err := initAnalyst(ctx, !batchNoV2)
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrentInstitutions
		}

		summary := processCohort(ctx, institutions, batchLimit, concurrency, func(ctx context.Context, inst model.Institution) (*model.RunResult, error) {
			return analyzeOne(ctx, env, inst)
		})

		if batchSummaryPath != "" {
			if err := writeSummary(batchSummaryPath, summary); err != nil {
				return err
			}
			zap.L().Info("batch summary written", zap.String("path", batchSummaryPath))
		}

		if summary.Failed > 0 {
			return eris.Errorf("batch finished with %d of %d institutions failed", summary.Failed, summary.Total)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchCohortPath, "cohort", "", "CSV or XLSX file listing institutions (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of institutions to process (0 = all)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "concurrent analyses (default from config)")
	batchCmd.Flags().StringVar(&batchSummaryPath, "summary", "", "write a YAML batch summary to this path")
	batchCmd.Flags().BoolVar(&batchNoV2, "no-v2", false, "skip intelligence enrichment for the whole cohort")
	_ = batchCmd.MarkFlagRequired("cohort")
	rootCmd.AddCommand(batchCmd)
}

// batchSummary is the YAML report written after a cohort run.
type batchSummary struct {
	Total     int            `yaml:"total"`
	Succeeded int            `yaml:"succeeded"`
	Failed    int            `yaml:"failed"`
	Skipped   int            `yaml:"skipped,omitempty"`
	Results   []batchOutcome `yaml:"results"`
}

type batchOutcome struct {
	Institution    string `yaml:"institution"`
	EIN            string `yaml:"ein"`
	DistressLevel  string `yaml:"distress_level,omitempty"`
	CompositeScore *int   `yaml:"composite_score,omitempty"`
	UrgencyFlag    string `yaml:"urgency_flag,omitempty"`
	Skipped        bool   `yaml:"skipped,omitempty"`
	Error          string `yaml:"error,omitempty"`
}

// analyzeFunc is the callback signature for running analysis on an institution.
type analyzeFunc func(ctx context.Context, inst model.Institution) (*model.RunResult, error)

// processCohort applies the limit, then analyzes institutions concurrently.
// Individual failures are recorded in the summary but do not abort the batch.
// Cancellation stops launching new institutions only: an analysis underway
// runs to completion on an uncancellable context, and institutions not yet
// launched are recorded as skipped, never failed.
func processCohort(ctx context.Context, institutions []model.Institution, limit, concurrency int, analyze analyzeFunc) *batchSummary {
	if limit > 0 && len(institutions) > limit {
		institutions = institutions[:limit]
	}

	zap.L().Info("processing cohort",
		zap.Int("institutions", len(institutions)),
		zap.Int("concurrency", concurrency),
	)

	summary := &batchSummary{
		Total:   len(institutions),
		Results: make([]batchOutcome, len(institutions)),
	}
	var mu sync.Mutex

	runCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, inst := range institutions {
		g.Go(func() error {
			log := zap.L().With(zap.String("institution", inst.Name))

			outcome := batchOutcome{Institution: inst.Name, EIN: inst.EIN}

			// Checked after a worker slot frees up, so a cancel that
			// arrives while earlier institutions run stops the rest here.
			if ctx.Err() != nil {
				outcome.Skipped = true
				mu.Lock()
				summary.Skipped++
				summary.Results[i] = outcome
				mu.Unlock()
				return nil
			}

			result, err := analyze(runCtx, inst)
			if err != nil {
				log.Error("analysis failed", zap.Error(err))
				outcome.Error = err.Error()
				mu.Lock()
				summary.Failed++
				summary.Results[i] = outcome
				mu.Unlock()
				return nil // don't abort batch on individual failure
			}

			outcome.DistressLevel = string(result.DistressLevel)
			outcome.CompositeScore = result.CompositeScore
			outcome.UrgencyFlag = string(result.UrgencyFlag)
			log.Info("analysis complete", zap.String("distress_level", outcome.DistressLevel))

			mu.Lock()
			summary.Succeeded++
			summary.Results[i] = outcome
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	zap.L().Info("batch complete",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return summary
}

// analyzeOne runs the full per-institution flow: run record, pipeline,
// profile persistence, and output artifacts.
func analyzeOne(ctx context.Context, env *analystEnv, inst model.Institution) (*model.RunResult, error) {
	run, err := env.Store.CreateRun(ctx, inst)
	if err != nil {
		return nil, eris.Wrap(err, "create run")
	}
	return analyzeRun(ctx, env, run.ID, inst, cfg.Analyst.OutputDir)
}

func writeSummary(path string, summary *batchSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "create summary file")
	}
	defer f.Close() //nolint:errcheck

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(summary); err != nil {
		return eris.Wrap(err, "encode summary")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "flush summary")
	}
	fmt.Fprintf(os.Stderr, "Summary: %d succeeded, %d failed (%s)\n", summary.Succeeded, summary.Failed, path)
	return nil
}
