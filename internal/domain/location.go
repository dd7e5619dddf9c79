package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// States maps USPS state codes to display names.
var States = map[string]string{
	"AK": "Alaska", "AL": "Alabama", "AR": "Arkansas", "AZ": "Arizona",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DC": "District of Columbia",
	"DE": "Delaware", "FL": "Florida", "GA": "Georgia", "HI": "Hawaii",
	"IA": "Iowa", "ID": "Idaho", "IL": "Illinois", "IN": "Indiana",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "MA": "Massachusetts",
	"MD": "Maryland", "ME": "Maine", "MI": "Michigan", "MN": "Minnesota",
	"MO": "Missouri", "MS": "Mississippi", "MT": "Montana", "NC": "North Carolina",
	"ND": "North Dakota", "NE": "Nebraska", "NH": "New Hampshire", "NJ": "New Jersey",
	"NM": "New Mexico", "NV": "Nevada", "NY": "New York", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island",
	"SC": "South Carolina", "SD": "South Dakota", "TN": "Tennessee", "TX": "Texas",
	"UT": "Utah", "VA": "Virginia", "VT": "Vermont", "WA": "Washington",
	"WI": "Wisconsin", "WV": "West Virginia", "WY": "Wyoming",
}

// countyRe matches the URL form of a county name, e.g. "alameda_county".
var countyRe = regexp.MustCompile(`^[a-z0-9]+(?:_[a-z0-9]+)*$`)

// Location identifies a state, or a county within a state when County is set.
type Location struct {
	State  string `json:"state"`
	County string `json:"county,omitempty"`
}

// ParseLocation validates and normalizes a state code and optional county URL name.
func ParseLocation(state, county string) (Location, error) {
	code := strings.ToUpper(strings.TrimSpace(state))
	if _, ok := States[code]; !ok {
		return Location{}, fmt.Errorf("%w: state %q", ErrNotFound, state)
	}
	county = strings.ToLower(strings.TrimSpace(county))
	if county != "" && !countyRe.MatchString(county) {
		return Location{}, fmt.Errorf("%w: county %q", ErrNotFound, county)
	}
	return Location{State: code, County: county}, nil
}

// StateName returns the state's display name.
func (l Location) StateName() string {
	return States[l.State]
}

// CountyName converts the county URL name to title case, "alameda_county" -> "Alameda County".
func (l Location) CountyName() string {
	if l.County == "" {
		return ""
	}
	words := strings.Split(l.County, "_")
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// DisplayName is "County Name, State Name" for counties and the state name otherwise.
func (l Location) DisplayName() string {
	if l.County == "" {
		return l.StateName()
	}
	return fmt.Sprintf("%s, %s", l.CountyName(), l.StateName())
}

// Key is a stable string form used for cache keys and log fields.
func (l Location) Key() string {
	if l.County == "" {
		return l.State
	}
	return l.State + "/" + l.County
}
