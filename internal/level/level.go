package level

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Level is a discrete risk category assigned to a metric value.
type Level int

const (
	Low Level = iota
	Medium
	High
	Unknown
)

// ordered lists the levels that take part in magnitude classification,
// lowest first. Unknown is deliberately absent.
var ordered = [...]Level{Low, Medium, High}

func (l Level) String() string {
	switch l {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// ParseLevel converts the text form produced by String back into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	case "unknown":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("invalid level: %q", s)
	}
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// LevelInfo describes one level of a metric: its inclusive upper bound and
// the label, colour and description shown to users.
type LevelInfo struct {
	Level      Level
	UpperLimit float64
	Name       string
	Color      string
	Detail     string
}

type levelInfoJSON struct {
	Level      Level    `json:"level"`
	UpperLimit *float64 `json:"upper_limit"` // null when unbounded
	Name       string   `json:"name"`
	Color      string   `json:"color"`
	Detail     string   `json:"detail"`
}

// MarshalJSON encodes an unbounded upper limit as null, since JSON has no
// representation for infinity.
func (li LevelInfo) MarshalJSON() ([]byte, error) {
	out := levelInfoJSON{Level: li.Level, Name: li.Name, Color: li.Color, Detail: li.Detail}
	if !math.IsInf(li.UpperLimit, 0) {
		limit := li.UpperLimit
		out.UpperLimit = &limit
	}
	return json.Marshal(out)
}

func (li *LevelInfo) UnmarshalJSON(b []byte) error {
	var in levelInfoJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*li = LevelInfo{Level: in.Level, Name: in.Name, Color: in.Color, Detail: in.Detail}
	if in.UpperLimit == nil {
		li.UpperLimit = math.Inf(1)
	} else {
		li.UpperLimit = *in.UpperLimit
	}
	return nil
}

// Errors returned by NewLevelInfoMap.
var (
	ErrLevelMismatch  = errors.New("level info does not match its slot")
	ErrNotIncreasing  = errors.New("upper limits must strictly increase from low to high")
	ErrBoundedHighest = errors.New("high level upper limit must be +Inf")
)

// LevelInfoMap holds exactly one LevelInfo per Level. The zero value is not
// usable; build one with NewLevelInfoMap or MustLevelInfoMap.
type LevelInfoMap struct {
	infos [4]LevelInfo
}

// NewLevelInfoMap validates and assembles a level table. Upper limits must
// strictly increase from low to high and the high limit must be unbounded,
// so every finite value resolves to some level.
func NewLevelInfoMap(low, medium, high, unknown LevelInfo) (LevelInfoMap, error) {
	m := LevelInfoMap{infos: [4]LevelInfo{low, medium, high, unknown}}
	for i, info := range m.infos {
		if info.Level != Level(i) {
			return LevelInfoMap{}, fmt.Errorf("%w: slot %s holds %s", ErrLevelMismatch, Level(i), info.Level)
		}
	}
	for i := 1; i < len(ordered); i++ {
		prev, cur := m.infos[ordered[i-1]].UpperLimit, m.infos[ordered[i]].UpperLimit
		if math.IsNaN(prev) || math.IsNaN(cur) || cur <= prev {
			return LevelInfoMap{}, fmt.Errorf("%w: %s=%g, %s=%g", ErrNotIncreasing, ordered[i-1], prev, ordered[i], cur)
		}
	}
	if !math.IsInf(high.UpperLimit, 1) {
		return LevelInfoMap{}, fmt.Errorf("%w: got %g", ErrBoundedHighest, high.UpperLimit)
	}
	return m, nil
}

// MustLevelInfoMap is like NewLevelInfoMap but panics on an invalid table.
// Static tables use it so a malformed table fails at start-up.
func MustLevelInfoMap(low, medium, high, unknown LevelInfo) LevelInfoMap {
	m, err := NewLevelInfoMap(low, medium, high, unknown)
	if err != nil {
		panic(fmt.Sprintf("level: invalid level table: %v", err))
	}
	return m
}

// Get returns the entry for l. Out-of-range levels map to Unknown.
func (m LevelInfoMap) Get(l Level) LevelInfo {
	if l < Low || l > Unknown {
		return m.infos[Unknown]
	}
	return m.infos[l]
}

// Ordered returns the low, medium and high entries in ascending order.
func (m LevelInfoMap) Ordered() []LevelInfo {
	out := make([]LevelInfo, 0, len(ordered))
	for _, l := range ordered {
		out = append(out, m.infos[l])
	}
	return out
}

// Classify is a method form of the package-level Classify.
func (m LevelInfoMap) Classify(value float64) LevelInfo {
	return Classify(value, m)
}

// MarshalJSON encodes the table as an array ordered low, medium, high, unknown.
func (m LevelInfoMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.infos[:])
}

// Classify returns the first level, in ascending order, whose inclusive upper
// limit is at least value. NaN stands in for a missing value and yields the
// Unknown entry.
func Classify(value float64, table LevelInfoMap) LevelInfo {
	if math.IsNaN(value) {
		return table.infos[Unknown]
	}
	for _, l := range ordered {
		if value <= table.infos[l].UpperLimit {
			return table.infos[l]
		}
	}
	// Unreachable for a validated table: High is unbounded.
	return table.infos[Unknown]
}

// ClassifyOptional classifies a possibly missing value.
func ClassifyOptional(value *float64, table LevelInfoMap) LevelInfo {
	if value == nil {
		return table.infos[Unknown]
	}
	return Classify(*value, table)
}
