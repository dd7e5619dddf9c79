package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/covid-risk-levels/internal/level"
)

var errMissingDate = errors.New("missing date")

// ParseRawEvent deserializes a RawEvent's value into an Observation. It
// validates the location and metric and normalizes the date to midnight UTC.
// A missing date falls back to the message timestamp.
func ParseRawEvent(raw RawEvent) (Observation, error) {
	var rec RawObservationRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Observation{}, fmt.Errorf("parse raw event: %w", err)
	}

	loc, err := ParseLocation(rec.State, rec.County)
	if err != nil {
		return Observation{}, fmt.Errorf("parse raw event: %w", err)
	}

	def, err := level.Lookup(level.Metric(strings.TrimSpace(rec.Metric)))
	if err != nil {
		return Observation{}, fmt.Errorf("parse raw event: %w", err)
	}

	date, err := ParseDate(rec.Date)
	if errors.Is(err, errMissingDate) && !raw.Timestamp.IsZero() {
		date, err = Day(raw.Timestamp), nil
	}
	if err != nil {
		return Observation{}, fmt.Errorf("parse raw event: %w", err)
	}

	return Observation{
		Location: loc,
		Metric:   def.ID,
		Point:    Point{X: date, Y: rec.Value},
	}, nil
}

// ParseDate accepts a calendar day (2006-01-02) or an RFC 3339 timestamp and
// returns midnight UTC of that day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errMissingDate
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return Day(t), nil
}

// Assess classifies an observation against its metric's level table and
// stamps it with a deterministic ID.
func Assess(obs Observation) (Assessment, error) {
	def, err := level.Lookup(obs.Metric)
	if err != nil {
		return Assessment{}, err
	}

	value := obs.Point.Y
	if !HasData(obs.Point) {
		value = nil
	}
	info := level.ClassifyOptional(value, def.Levels)

	return Assessment{
		ID:         generateID(obs.Location, obs.Metric, obs.Point.X, value),
		Location:   obs.Location,
		Metric:     obs.Metric,
		Date:       obs.Point.X,
		Value:      value,
		Level:      info.Level,
		LevelName:  info.Name,
		Color:      info.Color,
		Detail:     info.Detail,
		AssessedAt: assessedNow(),
	}, nil
}

// SeriesKey identifies the series an assessment belongs to. It keys sink
// messages so every assessment of one series lands on the same partition.
func (a Assessment) SeriesKey() string {
	return a.Location.State + "|" + a.Location.County + "|" + string(a.Metric)
}

// SerializeAssessment marshals an assessment for the sink topic.
func SerializeAssessment(a Assessment) (OutputEvent, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize assessment: %w", err)
	}
	return OutputEvent{
		Key:   []byte(a.SeriesKey()),
		Value: data,
		Headers: map[string]string{
			"metric":      string(a.Metric),
			"level":       a.Level.String(),
			"assessed_at": a.AssessedAt.Format(time.RFC3339),
		},
	}, nil
}

// generateID produces a deterministic ID from the assessment's key fields so
// replaying the same observation yields the same ID.
func generateID(loc Location, metric level.Metric, date time.Time, value *float64) string {
	v := "null"
	if value != nil {
		v = fmt.Sprintf("%g", *value)
	}
	input := fmt.Sprintf("%s|%s|%s|%s|%s", loc.State, loc.County, metric, date.Format(time.DateOnly), v)
	hash := sha256.Sum256([]byte(input))
	return string(metric) + "-" + hex.EncodeToString(hash[:8])
}
