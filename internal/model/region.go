package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// stateRegions maps US state codes to sales regions. Loaded once at process
// start; never mutated.
var stateRegions = map[string]string{
	// Northeast
	"CT": "northeast", "ME": "northeast", "MA": "northeast", "NH": "northeast",
	"RI": "northeast", "VT": "northeast", "NJ": "northeast", "NY": "northeast",
	"PA": "northeast", "DE": "northeast", "MD": "northeast", "DC": "northeast",
	// Southeast
	"AL": "southeast", "AR": "southeast", "FL": "southeast", "GA": "southeast",
	"KY": "southeast", "LA": "southeast", "MS": "southeast", "NC": "southeast",
	"SC": "southeast", "TN": "southeast", "VA": "southeast", "WV": "southeast",
	// Midwest
	"IL": "midwest", "IN": "midwest", "IA": "midwest", "KS": "midwest",
	"MI": "midwest", "MN": "midwest", "MO": "midwest", "NE": "midwest",
	"ND": "midwest", "OH": "midwest", "SD": "midwest", "WI": "midwest",
	// Southwest
	"AZ": "southwest", "NM": "southwest", "OK": "southwest", "TX": "southwest",
	// West
	"AK": "west", "CA": "west", "CO": "west", "HI": "west", "ID": "west",
	"MT": "west", "NV": "west", "OR": "west", "UT": "west", "WA": "west",
	"WY": "west",
}

// orgTypeNames maps institution types to blinded display descriptions.
var orgTypeNames = map[string]string{
	"private-nonprofit": "Private Nonprofit College",
	"private-forprofit": "Private For-Profit Institution",
	"public-state":      "Public State University",
	"public-local":      "Public Community College",
	"public-federal":    "Federal Institution",
}

var titleCaser = cases.Title(language.AmericanEnglish)

// Region returns the sales region for a state code, or "unknown".
func Region(state string) string {
	if r, ok := stateRegions[strings.ToUpper(state)]; ok {
		return r
	}
	return "unknown"
}

// BlindedName generates the anonymized display name used in external
// materials, e.g. "Representative Private Nonprofit College (Northeast)".
func BlindedName(orgType, region string) string {
	typeName, ok := orgTypeNames[orgType]
	if !ok {
		typeName = "Higher Education Institution"
	}
	regionName := "United States"
	if region != "" && region != "unknown" {
		regionName = titleCaser.String(region)
	}
	return "Representative " + typeName + " (" + regionName + ")"
}
