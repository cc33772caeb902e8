package model

import (
	"strings"
	"time"
)

// UrgencyFlag is the discretized action priority derived from the composite
// score.
type UrgencyFlag string

const (
	UrgencyImmediate UrgencyFlag = "IMMEDIATE"
	UrgencyHigh      UrgencyFlag = "HIGH"
	UrgencyMonitor   UrgencyFlag = "MONITOR"
)

// painLevelScores maps string pain-level labels to baseline scores.
var painLevelScores = map[string]float64{
	"CRITICAL": 85,
	"SEVERE":   75,
	"ELEVATED": 65,
	"MODERATE": 50,
	"LOW":      25,
	"MINIMAL":  10,
}

// BaseScore is the V1 baseline input to composite scoring: either a numeric
// pain level or a string label, resolved exactly once at scoring entry. The
// zero value is "unset", which callers must resolve from the V1 distress
// classification rather than folding into zero.
type BaseScore struct {
	label   string
	numeric float64
	kind    baseScoreKind
}

type baseScoreKind int

const (
	baseScoreUnset baseScoreKind = iota
	baseScoreLabel
	baseScoreNumeric
)

// BaseScoreFromLabel builds a label-valued base score.
func BaseScoreFromLabel(label string) BaseScore {
	return BaseScore{label: label, kind: baseScoreLabel}
}

// BaseScoreFromNumeric builds a numeric base score.
func BaseScoreFromNumeric(v float64) BaseScore {
	return BaseScore{numeric: v, kind: baseScoreNumeric}
}

// IsSet reports whether the base score carries a value.
func (b BaseScore) IsSet() bool {
	return b.kind != baseScoreUnset
}

// Source describes where the base score came from, for run metadata.
func (b BaseScore) Source() string {
	switch b.kind {
	case baseScoreLabel:
		return "label"
	case baseScoreNumeric:
		return "numeric"
	default:
		return "unset"
	}
}

// Resolve normalizes the base score to [0, 100]. Labels map through the
// fixed pain-level table, unknown labels resolve to 50. An unset score
// resolves to 0; callers are expected to check IsSet first.
func (b BaseScore) Resolve() float64 {
	switch b.kind {
	case baseScoreLabel:
		if v, ok := painLevelScores[strings.ToUpper(b.label)]; ok {
			return v
		}
		return 50
	case baseScoreNumeric:
		return clamp(b.numeric, 0, 100)
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AmplifiedSignal itemizes one credibility-gated contribution to the
// composite score. Every amplification point must trace to exactly one
// category and one finding.
type AmplifiedSignal struct {
	Signal         SignalCategory `json:"signal"`
	Amplification  int            `json:"amplification"`
	FindingSnippet string         `json:"finding_snippet"`
}

// CompositeScore is the merged V1+V2 urgency scoring result.
type CompositeScore struct {
	CompositeScore  int               `json:"composite_score"`
	UrgencyFlag     UrgencyFlag       `json:"urgency_flag"`
	V1BaseScore     int               `json:"v1_base_score"`
	V2Amplification int               `json:"v2_amplification"`
	SignalBreakdown []AmplifiedSignal `json:"amplified_signals"`
	CalculatedAt    time.Time         `json:"calculation_timestamp"`
	ScoringModel    string            `json:"scoring_model"`
}
