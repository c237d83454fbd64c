// Package chart builds and draws the historical + forecast line chart.
package chart

import (
	"fmt"
	"math"

	"github.com/diogo/forecastchat/internal/models"
)

// Series is one material's values in label order
type Series struct {
	Material models.Material
	Values   []float64
}

// Chart is a single built chart instance.
// Labels and every series share the same length; index Boundary is the first
// forecast point.
type Chart struct {
	Title    string
	YTitle   string
	Labels   []string
	Series   []Series
	Boundary int
	MaxTicks int

	released bool
}

// TrailingWindow returns the last n points, preserving order
func TrailingWindow(points []models.SeriesPoint, n int) []models.SeriesPoint {
	if n < 0 {
		n = 0
	}
	if len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}

// Build constructs a chart from payload, keeping at most window historical points.
func Build(payload models.ForecastPayload, window, maxTicks int) *Chart {
	if window <= 0 {
		window = models.HistoryWindow
	}
	if maxTicks <= 0 {
		maxTicks = models.MaxTicks
	}

	hist := TrailingWindow(payload.Historical, window)
	total := len(hist) + len(payload.Forecast)

	labels := make([]string, 0, total)
	for _, p := range hist {
		labels = append(labels, p.Date)
	}
	for _, p := range payload.Forecast {
		labels = append(labels, p.Date)
	}

	materials := models.Materials()
	series := make([]Series, len(materials))
	for i, m := range materials {
		values := make([]float64, 0, total)
		for _, p := range hist {
			values = append(values, p.Value(m))
		}
		for _, p := range payload.Forecast {
			values = append(values, p.Value(m))
		}
		series[i] = Series{Material: m, Values: values}
	}

	return &Chart{
		Title: fmt.Sprintf("Supply Chain Forecast (Historical %d days + Forecast %d days)",
			len(hist), len(payload.Forecast)),
		YTitle:   models.YAxisTitle,
		Labels:   labels,
		Series:   series,
		Boundary: len(hist),
		MaxTicks: maxTicks,
	}
}

// Len returns the number of points on the x axis
func (c *Chart) Len() int {
	return len(c.Labels)
}

// Dashed reports whether the segment starting at point i is drawn dashed.
// Dashing starts at the last observed point so it meets the marker.
func (c *Chart) Dashed(i int) bool {
	return i >= c.Boundary-1
}

// MarkerIndex returns the point index of the "Today" marker, or -1 when the
// chart has no history.
func (c *Chart) MarkerIndex() int {
	if c.Boundary <= 0 {
		return -1
	}
	return c.Boundary - 1
}

// TickIndices returns at most MaxTicks evenly spaced label indices
func (c *Chart) TickIndices() []int {
	n := c.Len()
	m := c.MaxTicks
	if n == 0 || m <= 0 {
		return nil
	}
	if n <= m {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	if m == 1 {
		return []int{0}
	}

	idx := make([]int, m)
	for i := 0; i < m; i++ {
		idx[i] = int(math.Round(float64(i) * float64(n-1) / float64(m-1)))
	}
	return idx
}

// Range returns the minimum and maximum value across all series
func (c *Chart) Range() (lo, hi float64) {
	first := true
	for _, s := range c.Series {
		for _, v := range s.Values {
			if first {
				lo, hi = v, v
				first = false
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}

func (c *Chart) release() {
	c.released = true
	c.Labels = nil
	c.Series = nil
}
