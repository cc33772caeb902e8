package model

// DistressLevel is the ordinal classification of institutional distress.
type DistressLevel string

const (
	DistressStable   DistressLevel = "stable"
	DistressWatch    DistressLevel = "watch"
	DistressElevated DistressLevel = "elevated"
	DistressCritical DistressLevel = "critical"
)

// distressRank orders levels by severity. Used for monotonicity checks and
// sorting; higher means more severe.
var distressRank = map[DistressLevel]int{
	DistressStable:   0,
	DistressWatch:    1,
	DistressElevated: 2,
	DistressCritical: 3,
}

// Rank returns the numeric severity of the level. Unknown levels rank below
// stable so a corrupted record never inflates severity.
func (d DistressLevel) Rank() int {
	r, ok := distressRank[d]
	if !ok {
		return -1
	}
	return r
}

// Severity grades a V1 indicator.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Indicator is a single V1 distress observation attached to a profile.
type Indicator struct {
	Type       string   `json:"type"`
	Signal     string   `json:"signal"`
	Severity   Severity `json:"severity"`
	DetectedAt string   `json:"detected_at"`
	SourceURL  string   `json:"source_url,omitempty"`
}

// CountBySeverity tallies indicators with the given severity.
func CountBySeverity(indicators []Indicator, sev Severity) int {
	n := 0
	for i := range indicators {
		if indicators[i].Severity == sev {
			n++
		}
	}
	return n
}
