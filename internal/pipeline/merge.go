package pipeline

import (
	"github.com/charter-stone/analyst-cli/internal/model"
)

// Merge enhances a baseline profile with the real-time intelligence block.
// The merge is all-or-nothing: when V2 is disabled, or the recon or
// extraction stage errored, the baseline profile is returned unchanged (the
// same pointer, byte for byte). On success a deep copy is returned; the
// input is never mutated. The merge is strictly additive: no baseline field
// is removed or renamed.
func Merge(v1 *model.Profile, recon model.ReconResult, extraction model.ExtractionResult, score model.CompositeScore, v2Enabled bool) *model.Profile {
	if !v2Enabled {
		return v1
	}
	if recon.Status == model.StageError || extraction.Status == model.StageError ||
		extraction.Status == model.StageSkipped {
		return v1
	}

	enhanced := v1.Clone()
	enhanced.ProfileVersion = model.SchemaVersionV2
	enhanced.V2Signals = &model.V2Signals{
		RealTimeIntel:   extraction.Signals,
		CompositeScore:  score.CompositeScore,
		UrgencyFlag:     score.UrgencyFlag,
		V1BaseScore:     score.V1BaseScore,
		V2Contribution:  score.V2Amplification,
		SignalBreakdown: append([]model.AmplifiedSignal(nil), score.SignalBreakdown...),
	}
	enhanced.Metadata = &model.ProfileMetadata{
		AnalystVersion:          AnalystVersion,
		IntelligenceQueriesUsed: recon.QueriesExecuted,
		SchemaVersion:           model.SchemaVersionV2,
	}
	return enhanced
}
