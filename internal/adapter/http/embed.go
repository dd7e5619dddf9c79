package http

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/couchcryptid/covid-risk-levels/internal/chart"
	"github.com/couchcryptid/covid-risk-levels/internal/domain"
	"github.com/couchcryptid/covid-risk-levels/internal/level"
)

// embedTimeout bounds the store reads behind one widget.
const embedTimeout = 5 * time.Second

type embedCard struct {
	Metric   level.Metric
	Name     string
	HasData  bool
	Value    string
	Date     string
	Level    level.LevelInfo
	ChartURL string
}

type embedPage struct {
	Title string
	Cards []embedCard
}

var embedTemplate = template.Must(template.New("embed").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} COVID risk levels</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; margin: 0; padding: 16px; color: #212121; }
h1 { font-size: 20px; margin: 0 0 12px; }
.cards { display: flex; flex-wrap: wrap; gap: 12px; }
.card { flex: 1 1 280px; border: 1px solid #e0e0e0; border-radius: 4px; padding: 12px; }
.card h2 { font-size: 14px; margin: 0 0 6px; text-transform: uppercase; color: #616161; }
.value { font-size: 28px; font-weight: 600; }
.level { display: inline-block; padding: 2px 8px; border-radius: 10px; color: #ffffff; font-size: 12px; }
.detail, .date { font-size: 13px; color: #616161; margin: 6px 0 0; }
.card img { width: 100%; height: auto; margin-top: 8px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="cards">
{{- range .Cards}}
<section class="card" data-metric="{{.Metric}}">
<h2>{{.Name}}</h2>
{{- if .HasData}}
<div class="value">{{.Value}}</div>
<span class="level" style="background-color: {{.Level.Color}}">{{.Level.Name}}</span>
<p class="detail">{{.Level.Detail}}</p>
<p class="date">As of {{.Date}}</p>
<img src="{{.ChartURL}}" alt="{{.Name}} chart">
{{- else}}
<span class="level" style="background-color: {{.Level.Color}}">{{.Level.Name}}</span>
<p class="detail">{{.Level.Detail}}</p>
{{- end}}
</section>
{{- end}}
</div>
</body>
</html>
`))

func (a *API) handleEmbed(w http.ResponseWriter, r *http.Request) {
	loc, err := domain.ParseLocation(r.PathValue("state"), r.PathValue("county"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), embedTimeout)
	defer cancel()

	page := embedPage{Title: loc.DisplayName()}
	for _, def := range level.Definitions() {
		card, err := a.embedCard(ctx, loc, def)
		if err != nil {
			a.writeStoreError(w, err)
			return
		}
		page.Cards = append(page.Cards, card)
	}

	var buf bytes.Buffer
	if err := embedTemplate.Execute(&buf, page); err != nil {
		a.logger.Error("render embed failed", "error", err, "location", loc.Key())
		writeError(w, http.StatusInternalServerError, "render embed failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

// embedCard summarizes the latest value of one metric. A missing series is
// shown as Unknown rather than failing the page.
func (a *API) embedCard(ctx context.Context, loc domain.Location, def level.Definition) (embedCard, error) {
	card := embedCard{
		Metric: def.ID,
		Name:   def.Name,
		Level:  def.Levels.Get(level.Unknown),
	}

	points, err := a.store.Series(ctx, loc, def.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return card, nil
	}
	if err != nil {
		return embedCard{}, err
	}

	last, ok := domain.Last(domain.ValidPoints(points))
	if !ok {
		return card, nil
	}
	_, format := chart.Formatter(def.Format)
	card.HasData = true
	card.Value = format(*last.Y)
	card.Date = last.X.Format("Jan 2, 2006")
	card.Level = level.Classify(*last.Y, def.Levels)
	card.ChartURL = seriesPath(loc, def.ID) + "/chart.svg"
	return card, nil
}
