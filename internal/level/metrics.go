package level

import (
	"errors"
	"fmt"
	"math"
)

// Colour tokens shared by every metric table.
const (
	ColorGreen  = "#00d474"
	ColorOrange = "#ffc900"
	ColorRed    = "#ff0034"
	ColorGray   = "#9e9e9e"
)

const (
	nameLow     = "Low"
	nameMedium  = "Medium"
	nameHigh    = "High"
	nameUnknown = "Unknown"

	detailUnknown = "Insufficient data to assess"
)

// Metric identifies a tracked epidemiological series.
type Metric string

const (
	CaseGrowthRate Metric = "case_growth_rate"
	TestPositivity Metric = "test_positivity"
	ICUHeadroom    Metric = "icu_headroom"
)

// ErrUnknownMetric is returned when a metric id has no definition.
var ErrUnknownMetric = errors.New("unknown metric")

// Format selects how a metric's values are printed on charts and widgets.
type Format string

const (
	FormatDecimal Format = "decimal"
	FormatPercent Format = "percent"
)

// Definition bundles a metric's level table with its display settings.
type Definition struct {
	ID         Metric       `json:"id"`
	Name       string       `json:"name"`
	Levels     LevelInfoMap `json:"levels"`
	Disclaimer string       `json:"disclaimer,omitempty"`
	// CapY bounds the chart's y-axis so outliers don't flatten the curve.
	CapY   float64 `json:"cap_y"`
	Format Format  `json:"format"`
}

func table(limitLow, limitMedium float64, detailLow, detailMedium, detailHigh string) LevelInfoMap {
	return MustLevelInfoMap(
		LevelInfo{Level: Low, UpperLimit: limitLow, Name: nameLow, Color: ColorGreen, Detail: detailLow},
		LevelInfo{Level: Medium, UpperLimit: limitMedium, Name: nameMedium, Color: ColorOrange, Detail: detailMedium},
		LevelInfo{Level: High, UpperLimit: math.Inf(1), Name: nameHigh, Color: ColorRed, Detail: detailHigh},
		LevelInfo{Level: Unknown, UpperLimit: 0, Name: nameUnknown, Color: ColorGray, Detail: detailUnknown},
	)
}

// CaseGrowthRateLevels classifies the infection rate (R_t).
var CaseGrowthRateLevels = table(1, 1.2,
	"Active cases are decreasing",
	"Active cases are slowly increasing",
	"Active cases are increasing",
)

// TestPositivityLevels classifies the share of tests that come back positive.
var TestPositivityLevels = table(0.03, 0.1,
	"Indicates widespread, aggressive testing",
	"Indicates adequate testing",
	"Indicates insufficient testing",
)

// ICUHeadroomLevels classifies the share of ICU capacity taken by COVID patients.
var ICUHeadroomLevels = table(0.5, 0.7,
	"Can likely handle a new wave of COVID",
	"At risk to a new wave of COVID",
	"Cannot handle a new wave of COVID",
)

var definitions = [...]Definition{
	{
		ID:     CaseGrowthRate,
		Name:   "Infection rate",
		Levels: CaseGrowthRateLevels,
		Disclaimer: "Each data point is a 14-day weighted average. Data is often revised by states several days " +
			"after reporting. Containing COVID requires an infection rate of less than 1.0.",
		CapY:   2.5,
		Format: FormatDecimal,
	},
	{
		ID:     TestPositivity,
		Name:   "Positive test rate",
		Levels: TestPositivityLevels,
		Disclaimer: "A low percentage of positive tests suggests enough widespread, aggressive testing " +
			"to detect most new cases.",
		CapY:   0.4,
		Format: FormatPercent,
	},
	{
		ID:     ICUHeadroom,
		Name:   "ICU headroom used",
		Levels: ICUHeadroomLevels,
		Disclaimer: "Share of ICU beds needed by COVID patients, out of the beds available " +
			"once typical non-COVID occupancy is accounted for.",
		CapY:   1,
		Format: FormatPercent,
	},
}

// Definitions returns every metric definition in a stable order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions[:])
	return out
}

// Lookup returns the definition for id.
func Lookup(id Metric) (Definition, error) {
	for _, d := range definitions {
		if d.ID == id {
			return d, nil
		}
	}
	return Definition{}, fmt.Errorf("%w: %q", ErrUnknownMetric, id)
}
