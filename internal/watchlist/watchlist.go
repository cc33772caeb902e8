// Package watchlist supplies curated distress indicators per institution
// from a YAML file maintained by the research team. Entries feed the
// baseline classification alongside the financial metrics.
package watchlist

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/charter-stone/analyst-cli/internal/model"
)

// entry is one YAML indicator record.
type entry struct {
	Date        string `yaml:"date"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Severity    string `yaml:"severity"`
	URL         string `yaml:"url,omitempty"`
}

// Watchlist maps normalized institution names to indicators.
type Watchlist struct {
	entries map[string][]model.Indicator
}

// Load reads a watchlist YAML file. The file maps institution names to
// indicator lists:
//
//	albright college:
//	  - date: 2025-01-15
//	    type: FINANCIAL
//	    description: Credit rating downgraded to B2
//	    severity: critical
func Load(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "watchlist: read %s", path)
	}
	return Parse(data)
}

// Parse builds a watchlist from YAML bytes.
func Parse(data []byte) (*Watchlist, error) {
	var raw map[string][]entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "watchlist: parse yaml")
	}

	w := &Watchlist{entries: make(map[string][]model.Indicator, len(raw))}
	for name, list := range raw {
		indicators := make([]model.Indicator, 0, len(list))
		for _, e := range list {
			indicators = append(indicators, model.Indicator{
				Type:       strings.ToLower(e.Type),
				Signal:     e.Description,
				Severity:   severityFor(e.Severity),
				DetectedAt: normalizeDate(e.Date),
				SourceURL:  e.URL,
			})
		}
		w.entries[normalize(name)] = indicators
	}
	return w, nil
}

// Empty returns a watchlist with no entries.
func Empty() *Watchlist {
	return &Watchlist{entries: map[string][]model.Indicator{}}
}

// IndicatorsFor returns the curated indicators for an institution, or nil
// when none are listed.
func (w *Watchlist) IndicatorsFor(_ context.Context, inst model.Institution) ([]model.Indicator, error) {
	return w.entries[normalize(inst.Name)], nil
}

// Len reports how many institutions carry entries.
func (w *Watchlist) Len() int {
	return len(w.entries)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func severityFor(s string) model.Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return model.SeverityCritical
	case "warning":
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}

// normalizeDate renders the entry date as YYYY-MM-DD, passing through
// values it cannot parse.
func normalizeDate(s string) string {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
