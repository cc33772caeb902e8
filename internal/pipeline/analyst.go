// Package pipeline orchestrates the full analysis run: Form 990 retrieval,
// derived metrics, distress classification, real-time intelligence, composite
// scoring, and the profile merge.
package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/charter-stone/analyst-cli/internal/metrics"
	"github.com/charter-stone/analyst-cli/internal/model"
	"github.com/charter-stone/analyst-cli/internal/scoring"
	"github.com/charter-stone/analyst-cli/internal/synthesis"
	"github.com/charter-stone/analyst-cli/pkg/propublica"
)

// AnalystVersion stamps merged profiles and run metadata.
const AnalystVersion = "2.0.0"

// Reconner is the web reconnaissance stage.
type Reconner interface {
	Gather(ctx context.Context, inst model.Institution) model.ReconResult
}

// IndicatorSource supplies V1 distress indicators for an institution.
type IndicatorSource interface {
	IndicatorsFor(ctx context.Context, inst model.Institution) ([]model.Indicator, error)
}

// Analyst runs the end-to-end pipeline for one institution.
type Analyst struct {
	filings    propublica.Client
	indicators IndicatorSource
	recon      Reconner
	extractor  synthesis.Extractor
	scorer     *scoring.CompositeScorer
	v2Enabled  bool
	nowFunc    func() time.Time
}

// Option configures an Analyst.
type Option func(*Analyst)

// WithV2Enabled toggles the real-time intelligence phases.
func WithV2Enabled(enabled bool) Option {
	return func(a *Analyst) { a.v2Enabled = enabled }
}

// WithClock injects a clock for deterministic output in tests.
func WithClock(now func() time.Time) Option {
	return func(a *Analyst) { a.nowFunc = now }
}

// New creates an Analyst from its stage collaborators. recon and extractor
// may be nil when V2 is disabled.
func New(filings propublica.Client, indicators IndicatorSource, recon Reconner, extractor synthesis.Extractor, opts ...Option) *Analyst {
	a := &Analyst{
		filings:    filings,
		indicators: indicators,
		recon:      recon,
		extractor:  extractor,
		v2Enabled:  true,
		nowFunc:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.scorer = scoring.NewCompositeScorerAt(a.nowFunc)
	return a
}

// Analysis is the complete output of one run.
type Analysis struct {
	Profile  *model.Profile
	Recon    model.ReconResult
	Signals  model.ExtractionResult
	Score    model.CompositeScore
	Metadata model.RunMetadata
}

// Analyze executes the full pipeline. The baseline phases are mandatory: a
// failure there fails the run. The intelligence phases degrade: any failure
// leaves the profile at the V1 baseline, recorded in the run metadata.
func (a *Analyst) Analyze(ctx context.Context, inst model.Institution) (*Analysis, error) {
	started := a.nowFunc().UTC()
	md := model.RunMetadata{
		V2Enabled: a.v2Enabled,
		StartedAt: started,
	}

	v1, err := a.BuildBaselineProfile(ctx, inst)
	if err != nil {
		return nil, err
	}
	md.PhasesExecuted = append(md.PhasesExecuted, "baseline")

	analysis := &Analysis{Profile: v1, Metadata: md}

	if !a.v2Enabled {
		// Disabled is a configuration outcome, not a failure: both stages
		// carry an explicit skipped record so batch callers can tell it
		// apart from a degraded run.
		analysis.Recon = model.ReconResult{
			Status:      model.StageSkipped,
			Reason:      "v2 intelligence disabled",
			Institution: inst.Name,
			EIN:         inst.EIN,
			Timestamp:   a.nowFunc().UTC(),
		}
		analysis.Signals = model.ExtractionResult{
			Status:      model.StageSkipped,
			Signals:     model.UnavailableSignals(),
			Institution: inst.Name,
			Timestamp:   a.nowFunc().UTC(),
		}
		analysis.Metadata.Status = "complete"
		analysis.Metadata.BaseScoreSource = "unset"
		analysis.Metadata.FinishedAt = a.nowFunc().UTC()
		return analysis, nil
	}

	analysis.Recon = a.recon.Gather(ctx, inst)
	analysis.Metadata.PhasesExecuted = append(analysis.Metadata.PhasesExecuted, "recon")
	analysis.Metadata.QueriesUsed = analysis.Recon.QueriesExecuted

	if analysis.Recon.Status == model.StageError {
		// Extraction gets no payload; record the degraded stage explicitly.
		analysis.Signals = model.ExtractionResult{
			Status:      model.StageSkipped,
			Error:       analysis.Recon.Reason,
			Signals:     model.UnavailableSignals(),
			Institution: inst.Name,
			Timestamp:   a.nowFunc().UTC(),
		}
	} else {
		analysis.Signals = a.extractor.Extract(ctx, analysis.Recon)
		analysis.Metadata.PhasesExecuted = append(analysis.Metadata.PhasesExecuted, "synthesis")
	}

	base := baselineScore(v1)
	analysis.Metadata.BaseScoreSource = base.Source()
	analysis.Score = a.scorer.Score(base, analysis.Signals.Signals)
	analysis.Metadata.PhasesExecuted = append(analysis.Metadata.PhasesExecuted, "classification")

	analysis.Profile = Merge(v1, analysis.Recon, analysis.Signals, analysis.Score, a.v2Enabled)
	analysis.Metadata.PhasesExecuted = append(analysis.Metadata.PhasesExecuted, "merge")

	analysis.Metadata.Status = "complete"
	analysis.Metadata.FinishedAt = a.nowFunc().UTC()

	zap.L().Info("analysis complete",
		zap.String("institution", inst.Name),
		zap.String("distress_level", string(analysis.Profile.Signals.DistressLevel)),
		zap.String("profile_version", analysis.Profile.ProfileVersion),
		zap.Int("queries_used", analysis.Metadata.QueriesUsed),
	)
	return analysis, nil
}

// BuildBaselineProfile runs the mandatory phases: filing retrieval, derived
// metrics, indicator collection, and distress classification.
func (a *Analyst) BuildBaselineProfile(ctx context.Context, inst model.Institution) (*model.Profile, error) {
	filing, err := a.filings.Organization(ctx, inst.EIN)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: fetch filing for %s", inst.Name)
	}

	derived := metrics.Calculate(filing.Facts)

	var indicators []model.Indicator
	if a.indicators != nil {
		indicators, err = a.indicators.IndicatorsFor(ctx, inst)
		if err != nil {
			// Indicators are supplementary; classification proceeds on
			// financial metrics alone.
			zap.L().Warn("indicator lookup failed",
				zap.String("institution", inst.Name),
				zap.Error(err),
			)
			indicators = nil
		}
	}

	level := scoring.Classify(derived.ExpenseRatio, derived.RunwayYears, indicators)

	return a.assembleProfile(inst, filing, derived, indicators, level), nil
}

func (a *Analyst) assembleProfile(inst model.Institution, filing *propublica.Filing, derived model.DerivedMetrics, indicators []model.Indicator, level model.DistressLevel) *model.Profile {
	now := a.nowFunc().UTC()
	name := inst.Name
	if name == "" {
		name = filing.Org.Name
	}
	region := model.Region(filing.Org.State)
	const orgType = "private-nonprofit"

	return &model.Profile{
		Meta: model.Meta{
			SchemaVersion: model.SchemaVersionV1,
			GeneratedAt:   now,
			GeneratedBy:   "analyst-cli v" + AnalystVersion,
			DataSources: []model.DataSource{
				{Source: "ProPublica Nonprofit Explorer", RetrievedAt: now, Confidence: "high"},
			},
		},
		Institution: model.InstitutionRecord{
			Name:           name,
			Aliases:        []string{},
			EIN:            model.FormatEIN(filing.Org.EIN),
			Type:           orgType,
			Classification: filing.Org.Classification,
			Location: model.Location{
				City:   filing.Org.City,
				State:  filing.Org.State,
				Region: region,
			},
			Website: filing.Org.Website,
		},
		Financials: model.Financials{
			FiscalYear:              filing.Facts.FilingYear,
			TotalRevenue:            filing.Facts.TotalRevenue,
			TotalExpenses:           filing.Facts.TotalExpenses,
			OperatingSurplusDeficit: derived.OperatingSurplusDeficit,
			NetAssets:               filing.Facts.NetAssets,
			TuitionRevenue:          filing.Facts.TuitionRevenue,
			Contributions:           filing.Facts.Contributions,
			InvestmentIncome:        filing.Facts.InvestmentIncome,
			Calculated:              derived,
			DataSource: model.FilingSource{
				Form:          "IRS-990",
				TaxPeriod:     taxPeriod(filing.Facts.FilingYear),
				RetrievedFrom: "ProPublica Nonprofit Explorer API",
			},
		},
		Signals: model.ProfileSignals{
			DistressLevel: level,
			Indicators:    indicators,
			NewsHits:      []string{},
		},
		Engagement: model.Engagement{
			Status:     "prospect",
			Priority:   "tier-2",
			NextAction: "Review diagnostic and determine outreach approach",
			Owner:      "unassigned",
			Notes:      []string{},
		},
		BlindedPresentation: model.BlindedPresentation{
			DisplayName:         model.BlindedName(orgType, region),
			ApprovedForExternal: false,
		},
	}
}

// baselineScore derives the composite base from the V1 classification.
// Levels map onto the pain-level label table so a bare V1 profile still
// produces a meaningful composite floor.
func baselineScore(p *model.Profile) model.BaseScore {
	switch p.Signals.DistressLevel {
	case model.DistressCritical:
		return model.BaseScoreFromLabel("CRITICAL")
	case model.DistressElevated:
		return model.BaseScoreFromLabel("ELEVATED")
	case model.DistressWatch:
		return model.BaseScoreFromLabel("MODERATE")
	case model.DistressStable:
		return model.BaseScoreFromLabel("LOW")
	default:
		return model.BaseScore{}
	}
}

func taxPeriod(year int) string {
	if year <= 0 {
		return "unknown"
	}
	return strconv.Itoa(year)
}
