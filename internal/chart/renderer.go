package chart

import (
	"log/slog"

	"github.com/diogo/forecastchat/internal/models"
)

// Renderer owns the single live chart instance. The previous instance is
// always released before a new one is built.
type Renderer struct {
	window   int
	maxTicks int
	styles   Styles
	logger   *slog.Logger

	current *Chart
	live    int
	builds  int

	// rasterization cache for the current instance
	cacheW, cacheH int
	cache          string
}

// RendererOption configures a Renderer
type RendererOption func(*Renderer)

// WithWindow sets how many historical points are kept
func WithWindow(n int) RendererOption {
	return func(r *Renderer) {
		if n > 0 {
			r.window = n
		}
	}
}

// WithMaxTicks caps the visible x-axis labels
func WithMaxTicks(n int) RendererOption {
	return func(r *Renderer) {
		if n > 0 {
			r.maxTicks = n
		}
	}
}

// WithStyles sets the drawing styles
func WithStyles(st Styles) RendererOption {
	return func(r *Renderer) {
		r.styles = st
	}
}

// NewRenderer creates a renderer with no chart
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		window:   models.HistoryWindow,
		maxTicks: models.MaxTicks,
		styles:   DefaultStyles(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render replaces the current chart with one built from payload
func (r *Renderer) Render(payload models.ForecastPayload) *Chart {
	r.Release()

	c := Build(payload, r.window, r.maxTicks)
	r.current = c
	r.live++
	r.builds++

	r.logger.Debug("chart rebuilt",
		"historical", c.Boundary,
		"forecast", c.Len()-c.Boundary,
		"builds", r.builds,
	)
	return c
}

// Release frees the current chart, if any
func (r *Renderer) Release() {
	if r.current == nil {
		return
	}
	r.current.release()
	r.current = nil
	r.live--
	r.cache = ""
	r.cacheW, r.cacheH = 0, 0
}

// Current returns the live chart or nil
func (r *Renderer) Current() *Chart {
	return r.current
}

// Live returns the number of live chart instances (0 or 1)
func (r *Renderer) Live() int {
	return r.live
}

// Builds returns how many charts have been built over the renderer's lifetime
func (r *Renderer) Builds() int {
	return r.builds
}

// View draws the current chart at the given size. Drawings are cached per
// size so unrelated re-renders do not redraw the chart.
func (r *Renderer) View(width, height int) string {
	if r.current == nil {
		return ""
	}
	if r.cache != "" && r.cacheW == width && r.cacheH == height {
		return r.cache
	}
	r.cache = r.current.Draw(width, height, r.styles)
	r.cacheW, r.cacheH = width, height
	return r.cache
}
