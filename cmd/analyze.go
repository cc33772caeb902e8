package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/charter-stone/analyst-cli/internal/model"
	"github.com/charter-stone/analyst-cli/internal/pipeline"
)

var (
	analyzeName   string
	analyzeEIN    string
	analyzeOutDir string
	analyzeNoV2   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a single institution",
	Long:  "Builds the baseline financial profile from the latest IRS 990 filing, then layers real-time intelligence signals on top unless --no-v2 is set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initAnalyst(ctx, !analyzeNoV2)
		if err != nil {
			return err
		}
		defer env.Close()

		inst := model.Institution{Name: analyzeName, EIN: analyzeEIN}

		run, err := env.Store.CreateRun(ctx, inst)
		if err != nil {
			return eris.Wrap(err, "create run")
		}

		outDir := analyzeOutDir
		if outDir == "" {
			outDir = cfg.Analyst.OutputDir
		}

		result, err := analyzeRun(ctx, env, run.ID, inst, outDir)
		if err != nil {
			return eris.Wrap(err, "analyze institution")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "institution name (required)")
	analyzeCmd.Flags().StringVar(&analyzeEIN, "ein", "", "institution EIN (required)")
	analyzeCmd.Flags().StringVar(&analyzeOutDir, "output-dir", "", "directory for profile and dossier output (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeNoV2, "no-v2", false, "skip intelligence enrichment, produce baseline profile only")
	_ = analyzeCmd.MarkFlagRequired("name")
	_ = analyzeCmd.MarkFlagRequired("ein")
	rootCmd.AddCommand(analyzeCmd)
}

// analyzeRun executes the pipeline against an existing run record, persists
// the profile and result, and writes the output artifacts.
func analyzeRun(ctx context.Context, env *analystEnv, runID string, inst model.Institution, outDir string) (*model.RunResult, error) {
	if err := env.Store.UpdateRunStatus(ctx, runID, model.RunStatusFetching); err != nil {
		return nil, eris.Wrap(err, "update run status")
	}

	analysis, err := env.Analyst.Analyze(ctx, inst)
	if err != nil {
		failRun(ctx, env, runID, err)
		return nil, err
	}

	if err := env.Store.SaveProfile(ctx, runID, analysis.Profile); err != nil {
		return nil, eris.Wrap(err, "save profile")
	}

	result := runResultFrom(analysis)
	if err := env.Store.UpdateRunResult(ctx, runID, result); err != nil {
		return nil, eris.Wrap(err, "update run result")
	}

	profilePath, dossierPath, err := writeArtifacts(outDir, analysis, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	zap.L().Info("analysis complete",
		zap.String("institution", inst.Name),
		zap.String("run_id", runID),
		zap.String("distress_level", string(result.DistressLevel)),
		zap.String("profile", profilePath),
		zap.String("dossier", dossierPath),
	)

	return result, nil
}

// runResultFrom summarizes a completed analysis into the stored run result.
func runResultFrom(a *pipeline.Analysis) *model.RunResult {
	res := &model.RunResult{
		DistressLevel:  a.Profile.Signals.DistressLevel,
		ProfileVersion: profileVersionOf(a.Profile),
		Metadata:       a.Metadata,
	}
	if a.Profile.V2Signals != nil {
		score := a.Profile.V2Signals.CompositeScore
		res.CompositeScore = &score
		res.UrgencyFlag = a.Profile.V2Signals.UrgencyFlag
	}
	return res
}

func profileVersionOf(p *model.Profile) string {
	if p.ProfileVersion != "" {
		return p.ProfileVersion
	}
	return p.Meta.SchemaVersion
}

// failRun records a pipeline failure against the run. Best-effort: the
// original error is what the caller reports.
func failRun(ctx context.Context, env *analystEnv, runID string, runErr error) {
	result := &model.RunResult{Error: runErr.Error()}
	if err := env.Store.UpdateRunResult(ctx, runID, result); err != nil {
		zap.L().Warn("failed to record run failure", zap.String("run_id", runID), zap.Error(err))
	}
}

// writeArtifacts writes the profile JSON and rendered dossier for an analysis.
func writeArtifacts(outDir string, a *pipeline.Analysis, generatedAt time.Time) (profilePath, dossierPath string, err error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", "", eris.Wrap(err, "create output directory")
	}

	slug := model.SanitizeFilename(a.Profile.Institution.Name)

	profilePath = filepath.Join(outDir, slug+"_profile.json")
	data, err := json.MarshalIndent(a.Profile, "", "  ")
	if err != nil {
		return "", "", eris.Wrap(err, "marshal profile")
	}
	if err := os.WriteFile(profilePath, data, 0o644); err != nil {
		return "", "", eris.Wrap(err, "write profile")
	}

	dossierPath = filepath.Join(outDir, slug+"_dossier.md")
	if err := os.WriteFile(dossierPath, []byte(pipeline.RenderDossier(a, generatedAt)), 0o644); err != nil {
		return "", "", eris.Wrap(err, "write dossier")
	}

	return profilePath, dossierPath, nil
}
