package chart

import (
	"testing"
)

func TestRendererReleasesBeforeRebuild(t *testing.T) {
	r := NewRenderer()

	if r.Live() != 0 || r.Current() != nil {
		t.Fatal("new renderer should have no chart")
	}

	var previous *Chart
	for i := 0; i < 25; i++ {
		c := r.Render(payload(70+i, 30))
		if r.Live() != 1 {
			t.Fatalf("render %d: Live() = %d, want 1", i, r.Live())
		}
		if previous != nil && !previous.released {
			t.Fatalf("render %d: previous chart still live", i)
		}
		if c.released {
			t.Fatalf("render %d: new chart already released", i)
		}
		previous = c
	}

	if r.Builds() != 25 {
		t.Errorf("Builds() = %d, want 25", r.Builds())
	}

	r.Release()
	if r.Live() != 0 || r.Current() != nil || !previous.released {
		t.Error("Release() should free the current chart")
	}

	r.Release()
	if r.Live() != 0 {
		t.Errorf("double Release() Live() = %d", r.Live())
	}
}

func TestRendererOptions(t *testing.T) {
	r := NewRenderer(WithWindow(10), WithMaxTicks(4))
	c := r.Render(payload(70, 30))

	if c.Boundary != 10 {
		t.Errorf("Boundary = %d, want 10", c.Boundary)
	}
	if c.Len() != 40 {
		t.Errorf("Len() = %d, want 40", c.Len())
	}
	if len(c.TickIndices()) != 4 {
		t.Errorf("TickIndices() len = %d, want 4", len(c.TickIndices()))
	}

	ignored := NewRenderer(WithWindow(0), WithMaxTicks(-3))
	if ignored.window != 60 || ignored.maxTicks != 10 {
		t.Errorf("invalid options should keep defaults, got %d/%d", ignored.window, ignored.maxTicks)
	}
}

func TestRendererViewCache(t *testing.T) {
	r := NewRenderer()
	if r.View(80, 20) != "" {
		t.Error("View() without chart should be empty")
	}

	r.Render(payload(70, 30))
	first := r.View(80, 20)
	if first == "" {
		t.Fatal("View() returned empty output")
	}
	if r.View(80, 20) != first {
		t.Error("View() at same size should be cached")
	}
	if r.View(60, 20) == first {
		t.Error("View() at a new size should redraw")
	}

	r.Render(payload(10, 5))
	if r.cache != "" {
		t.Error("Render() should drop the cache")
	}
}
