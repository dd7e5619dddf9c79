package domain

import (
	"context"
	"time"

	"github.com/couchcryptid/covid-risk-levels/internal/level"
)

// RawObservationRecord is the flat JSON structure published to the source topic.
type RawObservationRecord struct {
	State  string   `json:"state"`
	County string   `json:"county"`
	Metric string   `json:"metric"`
	Date   string   `json:"date"`  // YYYY-MM-DD or RFC 3339
	Value  *float64 `json:"value"` // null when unreported
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Observation is one parsed metric value for a location and day.
type Observation struct {
	Location Location     `json:"location"`
	Metric   level.Metric `json:"metric"`
	Point    Point        `json:"point"`
}

// Assessment is an observation together with its classified risk level.
type Assessment struct {
	ID         string       `json:"id"`
	Location   Location     `json:"location"`
	Metric     level.Metric `json:"metric"`
	Date       time.Time    `json:"date"`
	Value      *float64     `json:"value"`
	Level      level.Level  `json:"level"`
	LevelName  string       `json:"level_name"`
	Color      string       `json:"color"`
	Detail     string       `json:"detail"`
	AssessedAt time.Time    `json:"assessed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
