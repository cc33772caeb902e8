package model

import "strings"

// Institution identifies a target university.
type Institution struct {
	Name string `json:"name"`
	EIN  string `json:"ein"`
}

// OrgInfo is organization metadata returned alongside financial facts.
type OrgInfo struct {
	Name           string `json:"name"`
	EIN            string `json:"ein"`
	City           string `json:"city"`
	State          string `json:"state"`
	NTEECode       string `json:"ntee_code,omitempty"`
	Classification string `json:"classification,omitempty"`
	Website        string `json:"website,omitempty"`
}

// NormalizeEIN strips separators from an EIN, leaving nine digits.
func NormalizeEIN(ein string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(ein))
}

// FormatEIN renders an EIN in the canonical XX-XXXXXXX form. Inputs that are
// not nine digits after normalization are returned unchanged.
func FormatEIN(ein string) string {
	clean := NormalizeEIN(ein)
	if len(clean) != 9 {
		return ein
	}
	return clean[:2] + "-" + clean[2:]
}

// SanitizeFilename converts an institution name to a filesystem-safe slug.
func SanitizeFilename(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "_")
	return strings.NewReplacer(",", "", ".", "", "'", "").Replace(s)
}
