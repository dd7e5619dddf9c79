package chart

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/couchcryptid/covid-risk-levels/internal/domain"
	"github.com/couchcryptid/covid-risk-levels/internal/level"
	"github.com/couchcryptid/covid-risk-levels/internal/observability"
)

// SVGRenderer renders a metric series to SVG bytes.
type SVGRenderer interface {
	Render(def level.Definition, points []domain.Point, opts Options) ([]byte, error)
}

// CachedRenderer wraps an SVGRenderer with an expiring LRU keyed by the
// series content and render options.
type CachedRenderer struct {
	inner   SVGRenderer
	cache   *expirable.LRU[string, []byte]
	metrics *observability.Metrics
}

// NewCachedRenderer creates a cache decorator around a renderer. Entries
// expire after ttl so the time axis keeps moving forward.
func NewCachedRenderer(inner SVGRenderer, size int, ttl time.Duration, metrics *observability.Metrics) *CachedRenderer {
	return &CachedRenderer{
		inner:   inner,
		cache:   expirable.NewLRU[string, []byte](size, nil, ttl),
		metrics: metrics,
	}
}

func (c *CachedRenderer) Render(def level.Definition, points []domain.Point, opts Options) ([]byte, error) {
	key := cacheKey(def.ID, points, opts)
	if svg, ok := c.cache.Get(key); ok {
		c.metrics.ChartCache.WithLabelValues("hit").Inc()
		return svg, nil
	}
	c.metrics.ChartCache.WithLabelValues("miss").Inc()

	start := time.Now()
	svg, err := c.inner.Render(def, points, opts)
	if err != nil {
		return nil, err
	}
	c.metrics.ChartRenders.Inc()
	c.metrics.ChartRenderDuration.Observe(time.Since(start).Seconds())

	c.cache.Add(key, svg)
	return svg, nil
}

// Len reports the number of cached charts.
func (c *CachedRenderer) Len() int {
	return c.cache.Len()
}

func cacheKey(metric level.Metric, points []domain.Point, opts Options) string {
	h := sha256.New()
	h.Write([]byte(metric))
	h.Write([]byte{0})
	h.Write([]byte(opts.IDPrefix))
	h.Write([]byte{0})
	for _, v := range []int{opts.Width, opts.Height, opts.MarginTop, opts.MarginBottom, opts.MarginLeft, opts.MarginRight} {
		writeUint(h, uint64(v))
	}
	for _, p := range points {
		writeUint(h, uint64(p.X.Unix()))
		if p.Y == nil {
			h.Write([]byte{0})
			continue
		}
		h.Write([]byte{1})
		writeUint(h, math.Float64bits(*p.Y))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeUint(h hash.Hash, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}
