package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/covid-risk-levels/internal/chart"
	"github.com/couchcryptid/covid-risk-levels/internal/domain"
	"github.com/couchcryptid/covid-risk-levels/internal/level"
)

func newChartCmd() *cobra.Command {
	var (
		metric, input, output, now string
		width, height              int
	)
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render a series file as an SVG chart",
		Long: "Render a series file as an SVG chart. The input is a JSON array of " +
			`{"date":"2020-05-01","value":1.05} records, as written by "riskctl mock".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def, err := level.Lookup(level.Metric(metric))
			if err != nil {
				return err
			}
			points, err := readSeries(input)
			if err != nil {
				return err
			}

			var clock clockwork.Clock
			if now != "" {
				at, err := domain.ParseDate(now)
				if err != nil {
					return fmt.Errorf("--now: %w", err)
				}
				clock = clockwork.NewFakeClockAt(at)
			}

			opts := chart.DefaultOptions()
			opts.Width, opts.Height = width, height
			svg, err := chart.NewRenderer(clock).Render(def, points, opts)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, svg)
		},
	}
	cmd.Flags().StringVar(&metric, "metric", string(level.CaseGrowthRate), "metric id")
	cmd.Flags().StringVarP(&input, "input", "i", "", "series JSON file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&now, "now", "", "date the time axis is anchored to (default: today)")
	cmd.Flags().IntVar(&width, "width", 600, "chart width in pixels")
	cmd.Flags().IntVar(&height, "height", 400, "chart height in pixels")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newMockCmd() *cobra.Command {
	var (
		metric, state, county, start, output string
		days                                 int
		assess                               bool
	)
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Generate a deterministic series fixture",
		Long: "Generate a deterministic series fixture that rises through every level " +
			"and falls back. With --assess the records are classified, stamped by a " +
			"fixed clock set to the day after the series ends.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def, err := level.Lookup(level.Metric(metric))
			if err != nil {
				return err
			}
			loc, err := domain.ParseLocation(state, county)
			if err != nil {
				return err
			}
			first, err := domain.ParseDate(start)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}

			records := mockSeries(def, loc, first, days)
			var v any = records
			if assess {
				v, err = assessAll(records, first.AddDate(0, 0, days))
				if err != nil {
					return err
				}
			}

			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, append(data, '\n'))
		},
	}
	cmd.Flags().StringVar(&metric, "metric", string(level.CaseGrowthRate), "metric id")
	cmd.Flags().StringVar(&state, "state", "CA", "state code")
	cmd.Flags().StringVar(&county, "county", "", "county URL name, e.g. alameda_county")
	cmd.Flags().StringVar(&start, "start", "2020-03-01", "first day of the series")
	cmd.Flags().IntVar(&days, "days", 60, "number of days")
	cmd.Flags().BoolVar(&assess, "assess", false, "emit classified assessments instead of raw records")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// mockSeries sweeps from half the Low limit to well above the Medium limit and
// back over one sine period, so every level appears. Every seventh day is left
// unreported.
func mockSeries(def level.Definition, loc domain.Location, first time.Time, days int) []domain.RawObservationRecord {
	ordered := def.Levels.Ordered()
	lo := ordered[0].UpperLimit * 0.5
	hi := ordered[1].UpperLimit * 1.4

	records := make([]domain.RawObservationRecord, days)
	for i := range records {
		records[i] = domain.RawObservationRecord{
			State:  loc.State,
			County: loc.County,
			Metric: string(def.ID),
			Date:   first.AddDate(0, 0, i).Format(time.DateOnly),
		}
		if i%7 == 6 {
			continue
		}
		phase := float64(i) / float64(days) * 2 * math.Pi
		v := lo + (hi-lo)*(1-math.Cos(phase))/2
		v = math.Round(v*1e4) / 1e4
		records[i].Value = &v
	}
	return records
}

func assessAll(records []domain.RawObservationRecord, at time.Time) ([]domain.Assessment, error) {
	defer domain.SetClock(clockwork.NewFakeClockAt(at))()

	out := make([]domain.Assessment, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		obs, err := domain.ParseRawEvent(domain.RawEvent{Value: data})
		if err != nil {
			return nil, err
		}
		a, err := domain.Assess(obs)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func readSeries(path string) ([]domain.Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []domain.RawObservationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	points := make([]domain.Point, 0, len(records))
	for i, rec := range records {
		date, err := domain.ParseDate(rec.Date)
		if err != nil {
			return nil, fmt.Errorf("%s record %d: %w", path, i, err)
		}
		points = append(points, domain.Point{X: date, Y: rec.Value})
	}
	return points, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	var w io.Writer = cmd.OutOrStdout()
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err := w.Write(data)
	return err
}
