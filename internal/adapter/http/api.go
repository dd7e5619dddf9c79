package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/covid-risk-levels/internal/chart"
	"github.com/couchcryptid/covid-risk-levels/internal/domain"
	"github.com/couchcryptid/covid-risk-levels/internal/level"
	"github.com/couchcryptid/covid-risk-levels/internal/zone"
)

const maxBodyBytes = 1 << 20

// API serves metric definitions, classification, series and charts.
type API struct {
	store    domain.SeriesStore
	renderer chart.SVGRenderer
	chart    chart.Options
	logger   *slog.Logger
}

// NewAPI creates the API handlers. chartOpts supplies the default chart size.
func NewAPI(store domain.SeriesStore, renderer chart.SVGRenderer, chartOpts chart.Options, logger *slog.Logger) *API {
	return &API{store: store, renderer: renderer, chart: chartOpts, logger: logger}
}

func (a *API) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/metrics", a.handleListMetrics)
	mux.HandleFunc("GET /api/v1/metrics/{metric}/classify", a.handleClassify)
	mux.HandleFunc("GET /api/v1/metrics/{metric}/zones", a.handleZones)

	for _, prefix := range []string{
		"/api/v1/states/{state}/metrics/{metric}",
		"/api/v1/states/{state}/counties/{county}/metrics/{metric}",
	} {
		mux.HandleFunc("GET "+prefix, a.handleSeries)
		mux.HandleFunc("POST "+prefix+"/points", a.handleUpsertPoints)
		mux.HandleFunc("GET "+prefix+"/chart.svg", a.handleChart)
	}

	mux.HandleFunc("GET /embed/states/{state}", a.handleEmbed)
	mux.HandleFunc("GET /embed/states/{state}/counties/{county}", a.handleEmbed)
}

type classifyResponse struct {
	Metric level.Metric    `json:"metric"`
	Value  *float64        `json:"value"`
	Level  level.LevelInfo `json:"level"`
}

type zonesResponse struct {
	Metric  level.Metric  `json:"metric"`
	Min     float64       `json:"min"`
	Max     float64       `json:"max"`
	Regions []zone.Region `json:"regions"`
	Ticks   []float64     `json:"ticks"`
}

type seriesResponse struct {
	Location    domain.Location `json:"location"`
	DisplayName string          `json:"display_name"`
	Metric      level.Metric    `json:"metric"`
	Name        string          `json:"name"`
	Points      []domain.Point  `json:"points"`
	Latest      *domain.Point   `json:"latest"`
	Level       level.LevelInfo `json:"level"`
	Bands       chart.Bands     `json:"bands"`
	Disclaimer  string          `json:"disclaimer"`
}

type pointRequest struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

type upsertRequest struct {
	Points []pointRequest `json:"points"`
}

func (a *API) handleListMetrics(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, level.Definitions())
}

func (a *API) handleClassify(w http.ResponseWriter, r *http.Request) {
	def, ok := a.lookupMetric(w, r)
	if !ok {
		return
	}

	var value *float64
	if s := strings.TrimSpace(r.URL.Query().Get("value")); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid value %q", s))
			return
		}
		value = &v
	}

	info := level.ClassifyOptional(value, def.Levels)
	if value != nil && (math.IsNaN(*value) || math.IsInf(*value, 0)) {
		value = nil // not representable in JSON
	}
	sharedobs.WriteJSON(w, http.StatusOK, classifyResponse{Metric: def.ID, Value: value, Level: info})
}

func (a *API) handleZones(w http.ResponseWriter, r *http.Request) {
	def, ok := a.lookupMetric(w, r)
	if !ok {
		return
	}

	lo, errLo := parseFinite(r.URL.Query().Get("min"))
	hi, errHi := parseFinite(r.URL.Query().Get("max"))
	if err := errors.Join(errLo, errHi); err != nil {
		writeError(w, http.StatusBadRequest, "min and max must be finite numbers")
		return
	}
	if lo >= hi {
		writeError(w, http.StatusBadRequest, "min must be less than max")
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, zonesResponse{
		Metric:  def.ID,
		Min:     lo,
		Max:     hi,
		Regions: zone.ComputeRegions(lo, hi, def.Levels),
		Ticks:   zone.ComputeTickPositions(lo, hi, def.Levels),
	})
}

func (a *API) handleSeries(w http.ResponseWriter, r *http.Request) {
	loc, def, ok := a.lookupSeries(w, r)
	if !ok {
		return
	}
	points, err := a.store.Series(r.Context(), loc, def.ID)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}

	valid := domain.ValidPoints(points)
	last, ok := domain.Last(valid)
	if !ok {
		writeError(w, http.StatusNotFound, "series has no data")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, seriesResponse{
		Location:    loc,
		DisplayName: loc.DisplayName(),
		Metric:      def.ID,
		Name:        def.Name,
		Points:      valid,
		Latest:      &last,
		Level:       level.Classify(*last.Y, def.Levels),
		Bands:       chart.ComputeBands(def, valid),
		Disclaimer:  def.Disclaimer,
	})
}

func (a *API) handleUpsertPoints(w http.ResponseWriter, r *http.Request) {
	loc, def, ok := a.lookupSeries(w, r)
	if !ok {
		return
	}

	var req upsertRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	observations := make([]domain.Observation, 0, len(req.Points))
	for i, p := range req.Points {
		date, err := domain.ParseDate(p.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("points[%d]: %v", i, err))
			return
		}
		observations = append(observations, domain.Observation{
			Location: loc,
			Metric:   def.ID,
			Point:    domain.Point{X: date, Y: p.Value},
		})
	}

	if err := a.store.Upsert(r.Context(), observations); err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.logger.Info("points upserted", "location", loc.Key(), "metric", def.ID, "count", len(observations))
	sharedobs.WriteJSON(w, http.StatusOK, map[string]int{"accepted": len(observations)})
}

func (a *API) handleChart(w http.ResponseWriter, r *http.Request) {
	loc, def, ok := a.lookupSeries(w, r)
	if !ok {
		return
	}

	opts := a.chart
	var err error
	if opts.Width, err = parseSize(r.URL.Query().Get("width"), opts.Width); err != nil {
		writeError(w, http.StatusBadRequest, "width: "+err.Error())
		return
	}
	if opts.Height, err = parseSize(r.URL.Query().Get("height"), opts.Height); err != nil {
		writeError(w, http.StatusBadRequest, "height: "+err.Error())
		return
	}
	opts.IDPrefix = chartID(loc, def.ID)

	points, err := a.store.Series(r.Context(), loc, def.ID)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}

	svg, err := a.renderer.Render(def, points, opts)
	switch {
	case errors.Is(err, chart.ErrNoData):
		writeError(w, http.StatusNotFound, "series has no data")
		return
	case err != nil:
		a.logger.Error("render chart failed", "error", err, "location", loc.Key(), "metric", def.ID)
		writeError(w, http.StatusInternalServerError, "render chart failed")
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(svg) //nolint:errcheck // client went away
}

func (a *API) lookupMetric(w http.ResponseWriter, r *http.Request) (level.Definition, bool) {
	def, err := level.Lookup(level.Metric(r.PathValue("metric")))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return level.Definition{}, false
	}
	return def, true
}

func (a *API) lookupSeries(w http.ResponseWriter, r *http.Request) (domain.Location, level.Definition, bool) {
	loc, err := domain.ParseLocation(r.PathValue("state"), r.PathValue("county"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return domain.Location{}, level.Definition{}, false
	}
	def, ok := a.lookupMetric(w, r)
	if !ok {
		return domain.Location{}, level.Definition{}, false
	}
	return loc, def, true
}

func (a *API) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no data for this location and metric")
		return
	}
	a.logger.Error("series store failed", "error", err)
	writeError(w, http.StatusInternalServerError, "series store unavailable")
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not finite", s)
	}
	return v, nil
}

func parseSize(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 100 || n > 4000 {
		return 0, fmt.Errorf("must be an integer between 100 and 4000")
	}
	return n, nil
}

// chartID builds a clip-path prefix unique to a location and metric.
func chartID(loc domain.Location, metric level.Metric) string {
	id := strings.ToLower(loc.State) + "-" + string(metric)
	if loc.County != "" {
		id = strings.ToLower(loc.State) + "-" + loc.County + "-" + string(metric)
	}
	return id
}

// seriesPath is the API path of a location's metric series.
func seriesPath(loc domain.Location, metric level.Metric) string {
	if loc.County == "" {
		return fmt.Sprintf("/api/v1/states/%s/metrics/%s", loc.State, metric)
	}
	return fmt.Sprintf("/api/v1/states/%s/counties/%s/metrics/%s", loc.State, loc.County, metric)
}
