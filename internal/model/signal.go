package model

import "time"

// SignalCategory identifies one of the three real-time intelligence lanes.
type SignalCategory string

const (
	CategoryEnrollmentTrends    SignalCategory = "enrollment_trends"
	CategoryLeadershipChanges   SignalCategory = "leadership_changes"
	CategoryAccreditationStatus SignalCategory = "accreditation_status"
)

// Categories lists the signal categories in scoring order.
var Categories = []SignalCategory{
	CategoryEnrollmentTrends,
	CategoryLeadershipChanges,
	CategoryAccreditationStatus,
}

// Credibility is the binary trust classification applied to an extracted
// claim. There are no weighted scores: a signal is TRUSTED, UNTRUSTED, or
// N/A (no credible evidence found / extraction unavailable).
type Credibility string

const (
	CredibilityTrusted     Credibility = "TRUSTED"
	CredibilityUntrusted   Credibility = "UNTRUSTED"
	CredibilityUnavailable Credibility = "N/A"
)

// Signal is one extracted real-time claim about an institution.
type Signal struct {
	Finding     string      `json:"finding"`
	Source      string      `json:"source"`
	Credibility Credibility `json:"credibility"`
}

// SignalSet holds exactly one signal per category. The extraction
// collaborator always produces a full set; missing categories degrade to
// Unavailable stand-ins, never to absent entries.
type SignalSet struct {
	EnrollmentTrends    Signal `json:"enrollment_trends"`
	LeadershipChanges   Signal `json:"leadership_changes"`
	AccreditationStatus Signal `json:"accreditation_status"`
}

// ByCategory returns the signal for the given category.
func (s SignalSet) ByCategory(c SignalCategory) Signal {
	switch c {
	case CategoryEnrollmentTrends:
		return s.EnrollmentTrends
	case CategoryLeadershipChanges:
		return s.LeadershipChanges
	case CategoryAccreditationStatus:
		return s.AccreditationStatus
	default:
		return Signal{Finding: "Unavailable", Source: "N/A", Credibility: CredibilityUnavailable}
	}
}

// UnavailableSignals returns the degrade triple used when recon or
// extraction fails: one N/A signal per category.
func UnavailableSignals() SignalSet {
	unavailable := Signal{
		Finding:     "Unavailable",
		Source:      "N/A",
		Credibility: CredibilityUnavailable,
	}
	return SignalSet{
		EnrollmentTrends:    unavailable,
		LeadershipChanges:   unavailable,
		AccreditationStatus: unavailable,
	}
}

// StageStatus marks the outcome of an external collaborator stage.
type StageStatus string

const (
	StageSuccess StageStatus = "success"
	StageError   StageStatus = "error"
	StageSkipped StageStatus = "skipped"
)

// QueryResult is one raw web search payload from the recon collaborator.
// The body is opaque to the scoring core.
type QueryResult struct {
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Citations []string  `json:"citations,omitempty"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReconResult is the output of the web reconnaissance stage.
type ReconResult struct {
	Status          StageStatus                    `json:"status"`
	Reason          string                         `json:"reason,omitempty"`
	Raw             map[SignalCategory]QueryResult `json:"raw_results,omitempty"`
	QueriesExecuted int                            `json:"queries_executed"`
	QueriesBudget   int                            `json:"queries_budget"`
	Institution     string                         `json:"institution"`
	EIN             string                         `json:"ein"`
	Timestamp       time.Time                      `json:"timestamp"`
}

// ExtractionResult is the output of the signal extraction stage. On any
// failure Signals holds the Unavailable triple and Status is StageError.
type ExtractionResult struct {
	Status      StageStatus `json:"status"`
	Error       string      `json:"error,omitempty"`
	Signals     SignalSet   `json:"signals"`
	Institution string      `json:"institution"`
	Model       string      `json:"model,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}
