package chart

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/forecastchat/internal/models"
)

// Glyphs used on the canvas
const (
	glyphSolid  = '•'
	glyphDashed = '·'
	glyphMarker = '┊'
	glyphAxisY  = '│'
	glyphAxisX  = '─'
	glyphTick   = '┬'
	glyphCorner = '└'
)

// Non-series cell owners
const (
	ownerNone   = -1
	ownerMarker = -2
)

// Layout rows outside the plot: title, annotation, x axis, tick labels, legend
const chromeRows = 5

// Minimum plot dimensions
const (
	minPlotWidth  = 10
	minPlotHeight = 3
)

// Styles configures the non-series parts of the drawing
type Styles struct {
	Title  lipgloss.Style
	Axis   lipgloss.Style
	Label  lipgloss.Style
	Marker lipgloss.Style
	Legend lipgloss.Style
}

// DefaultStyles returns neutral styles suitable for plain terminals
func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true),
		Axis:   lipgloss.NewStyle().Foreground(lipgloss.Color("#7f8c8d")),
		Label:  lipgloss.NewStyle().Foreground(lipgloss.Color("#95a5a6")),
		Marker: lipgloss.NewStyle().Foreground(lipgloss.Color("#4b4b4b")),
		Legend: lipgloss.NewStyle().Foreground(lipgloss.Color("#95a5a6")),
	}
}

type cell struct {
	r     rune
	owner int
}

// canvas is a fixed-size grid of plot cells
type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	cells := make([][]cell, h)
	for y := range cells {
		row := make([]cell, w)
		for x := range row {
			row[x] = cell{r: ' ', owner: ownerNone}
		}
		cells[y] = row
	}
	return &canvas{w: w, h: h, cells: cells}
}

func (cv *canvas) set(x, y int, r rune, owner int) {
	if x < 0 || y < 0 || x >= cv.w || y >= cv.h {
		return
	}
	cv.cells[y][x] = cell{r: r, owner: owner}
}

// line draws from (x0,y0) to (x1,y1); dashed lines leave every other cell
// empty but always keep both end points.
func (cv *canvas) line(x0, y0, x1, y1 int, dashed bool, owner int) {
	dx, dy := x1-x0, y1-y0
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		cv.plot(x0, y0, dashed, owner)
		return
	}
	for k := 0; k <= steps; k++ {
		x := x0 + int(math.Round(float64(dx*k)/float64(steps)))
		y := y0 + int(math.Round(float64(dy*k)/float64(steps)))
		if dashed && k != 0 && k != steps && (x+y)%2 == 1 {
			continue
		}
		cv.plot(x, y, dashed, owner)
	}
}

func (cv *canvas) plot(x, y int, dashed bool, owner int) {
	r := glyphSolid
	if dashed {
		r = glyphDashed
	}
	cv.set(x, y, r, owner)
}

// Draw rasterizes the chart into a width x height block of styled text
func (c *Chart) Draw(width, height int, st Styles) string {
	if c.released {
		return ""
	}

	lo, hi := c.Range()
	loLabel, hiLabel := formatValue(lo), formatValue(hi)
	midLabel := formatValue((lo + hi) / 2)
	gutter := max(len(loLabel), len(hiLabel), len(midLabel), len(c.YTitle)) + 1

	plotW := max(width-gutter-1, minPlotWidth)
	plotH := max(height-chromeRows, minPlotHeight)

	cv := newCanvas(plotW, plotH)
	n := c.Len()

	xOf := func(i int) int {
		if n <= 1 {
			return 0
		}
		return int(math.Round(float64(i) * float64(plotW-1) / float64(n-1)))
	}
	yOf := func(v float64) int {
		if hi == lo {
			return plotH / 2
		}
		return int(math.Round((hi - v) / (hi - lo) * float64(plotH-1)))
	}

	marker := c.MarkerIndex()
	markerX := -1
	if marker >= 0 && n > 0 {
		markerX = xOf(marker)
		for y := 0; y < plotH; y++ {
			cv.set(markerX, y, glyphMarker, ownerMarker)
		}
	}

	for si, s := range c.Series {
		for i := 0; i+1 < len(s.Values); i++ {
			cv.line(xOf(i), yOf(s.Values[i]), xOf(i+1), yOf(s.Values[i+1]), c.Dashed(i), si)
		}
		if len(s.Values) == 1 {
			cv.plot(xOf(0), yOf(s.Values[0]), c.Dashed(0), si)
		}
	}

	var b strings.Builder

	b.WriteString(st.Title.Render(truncate(c.Title, width)))
	b.WriteString("\n")

	// annotation row: axis title and marker label
	annotation := []rune(strings.Repeat(" ", gutter+1+plotW))
	copy(annotation, []rune(c.YTitle))
	if markerX >= 0 {
		label := []rune(models.MarkerLabel)
		start := gutter + 1 + markerX - len(label)/2
		start = min(max(start, gutter+1), len(annotation)-len(label))
		if start >= 0 {
			copy(annotation[start:], label)
		}
	}
	b.WriteString(st.Label.Render(string(annotation)))
	b.WriteString("\n")

	for y := 0; y < plotH; y++ {
		label := ""
		switch y {
		case 0:
			label = hiLabel
		case plotH / 2:
			label = midLabel
		case plotH - 1:
			label = loLabel
		}
		b.WriteString(st.Label.Render(fmt.Sprintf("%*s", gutter, label)))
		b.WriteString(st.Axis.Render(string(glyphAxisY)))
		b.WriteString(c.renderRow(cv.cells[y], st))
		b.WriteString("\n")
	}

	// x axis with tick marks
	ticks := c.TickIndices()
	axis := []rune(strings.Repeat(string(glyphAxisX), plotW))
	for _, i := range ticks {
		axis[xOf(i)] = glyphTick
	}
	b.WriteString(strings.Repeat(" ", gutter))
	b.WriteString(st.Axis.Render(string(glyphCorner) + string(axis)))
	b.WriteString("\n")

	// tick labels, skipped when they would collide
	tickRow := []rune(strings.Repeat(" ", plotW))
	next := 0
	for _, i := range ticks {
		label := []rune(shortDate(c.Labels[i]))
		x := xOf(i)
		if x < next || x+len(label) > plotW {
			continue
		}
		copy(tickRow[x:], label)
		next = x + len(label) + 1
	}
	b.WriteString(strings.Repeat(" ", gutter+1))
	b.WriteString(st.Label.Render(string(tickRow)))
	b.WriteString("\n")

	b.WriteString(c.legend(st))

	return b.String()
}

// renderRow styles runs of cells that share an owner
func (c *Chart) renderRow(row []cell, st Styles) string {
	var b strings.Builder
	var run []rune
	owner := ownerNone

	flush := func() {
		if len(run) == 0 {
			return
		}
		text := string(run)
		switch {
		case owner == ownerMarker:
			b.WriteString(st.Marker.Render(text))
		case owner >= 0 && owner < len(c.Series):
			color := lipgloss.Color(c.Series[owner].Material.Color)
			b.WriteString(lipgloss.NewStyle().Foreground(color).Render(text))
		default:
			b.WriteString(text)
		}
		run = run[:0]
	}

	for _, cl := range row {
		if cl.owner != owner {
			flush()
			owner = cl.owner
		}
		run = append(run, cl.r)
	}
	flush()

	return b.String()
}

func (c *Chart) legend(st Styles) string {
	parts := make([]string, 0, len(c.Series)+3)
	for _, s := range c.Series {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Material.Color)).Render("■")
		parts = append(parts, swatch+" "+st.Legend.Render(s.Material.Label))
	}
	parts = append(parts,
		st.Legend.Render(string(glyphSolid)+" observed"),
		st.Legend.Render(string(glyphDashed)+" forecast"),
	)
	if c.MarkerIndex() >= 0 {
		parts = append(parts, st.Marker.Render(string(glyphMarker))+" "+st.Legend.Render(models.MarkerLabel))
	}
	return strings.Join(parts, "  ")
}

func formatValue(v float64) string {
	if math.Abs(v) >= 100 || v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// shortDate turns ISO dates into MM-DD; other labels are clipped
func shortDate(s string) string {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("01-02")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("01-02")
	}
	return truncate(s, 5)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
