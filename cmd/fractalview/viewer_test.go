package main

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/gogpu/fractal/viewport"
)

func TestHistoryIndex(t *testing.T) {
	thumb := image.Pt(160, 120)
	const width = 800

	tests := []struct {
		name    string
		x, y    int
		entries int
		want    int
		wantOK  bool
	}{
		{"newest", 700, historyTopMargin, 3, 1, true},
		{"second", 650, historyTopMargin + 120, 3, 2, true},
		{"last pixel of third", 799, historyTopMargin + 3*120 - 1, 3, 3, true},
		{"below the strip", 700, historyTopMargin + 3*120, 3, 0, false},
		{"left of the strip", 639, historyTopMargin + 10, 3, 0, false},
		{"strip left edge", 640, historyTopMargin + 10, 3, 1, true},
		{"above the strip", 700, historyTopMargin - 1, 3, 0, false},
		{"past the canvas", 800, historyTopMargin + 10, 3, 0, false},
		{"beyond shown", 700, historyTopMargin + historyShown*120, 20, 0, false},
		{"last shown", 700, historyTopMargin + (historyShown-1)*120, 20, historyShown, true},
		{"no entries", 700, historyTopMargin, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := historyIndex(tt.x, tt.y, width, thumb, tt.entries)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("historyIndex(%d, %d) = (%d, %v), want (%d, %v)",
					tt.x, tt.y, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if _, ok := historyIndex(700, 30, width, image.Point{}, 3); ok {
		t.Error("historyIndex with empty thumbnail should miss")
	}
}

func TestDebouncer(t *testing.T) {
	start := time.Unix(1000, 0)
	wait := 500 * time.Millisecond
	d := newDebouncer(image.Pt(800, 600), wait)

	steps := []struct {
		name   string
		size   image.Point
		at     time.Duration
		want   image.Point
		wantOK bool
	}{
		{"unchanged", image.Pt(800, 600), 0, image.Point{}, false},
		{"change starts timer", image.Pt(900, 600), 100 * time.Millisecond, image.Point{}, false},
		{"still settling", image.Pt(900, 600), 500 * time.Millisecond, image.Point{}, false},
		{"another change restarts", image.Pt(1000, 700), 550 * time.Millisecond, image.Point{}, false},
		{"old deadline ignored", image.Pt(1000, 700), 700 * time.Millisecond, image.Point{}, false},
		{"settled", image.Pt(1000, 700), 1050 * time.Millisecond, image.Pt(1000, 700), true},
		{"reported once", image.Pt(1000, 700), 2 * time.Second, image.Point{}, false},
	}
	for _, s := range steps {
		got, ok := d.observe(s.size, start.Add(s.at))
		if got != s.want || ok != s.wantOK {
			t.Errorf("%s: observe(%v) = (%v, %v), want (%v, %v)", s.name, s.size, got, ok, s.want, s.wantOK)
		}
	}
	if d.applied != image.Pt(1000, 700) {
		t.Errorf("applied = %v, want (1000,700)", d.applied)
	}
}

func TestDebouncerRevertCancels(t *testing.T) {
	start := time.Unix(1000, 0)
	d := newDebouncer(image.Pt(800, 600), 500*time.Millisecond)

	d.observe(image.Pt(640, 480), start)
	if _, ok := d.observe(image.Pt(800, 600), start.Add(time.Second)); ok {
		t.Error("reverting to the applied size should not trigger a rebuild")
	}
	if _, ok := d.observe(image.Pt(640, 480), start.Add(1100*time.Millisecond)); ok {
		t.Error("a change seen again after a revert should restart the wait")
	}
}

func TestRebuild(t *testing.T) {
	c := viewport.DefaultControls()
	c.Threads = 2

	scene, pool, err := buildScene(40, 30, c)
	if err != nil {
		t.Fatalf("buildScene() error = %v", err)
	}
	v := &viewer{pool: pool, binding: viewport.NewBinding(scene, pool)}
	if err := v.binding.Render(context.Background(), c.Params); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	c.Threads = 3
	if err := v.rebuild(64, 48, c); err != nil {
		t.Fatalf("rebuild() error = %v", err)
	}
	defer v.pool.Close()

	if pool.IsRunning() {
		t.Error("old pool still running after rebuild")
	}
	if v.pool == pool || !v.pool.IsRunning() {
		t.Error("rebuild did not install a running pool")
	}
	if w, h := v.binding.Size(); w != 64 || h != 48 {
		t.Errorf("binding size = %dx%d, want 64x48", w, h)
	}
	if got := v.binding.Scene().Threads(); got != 3 {
		t.Errorf("scene threads = %d, want 3", got)
	}
	if err := v.binding.Render(context.Background(), c.Params); err != nil {
		t.Errorf("Render() after rebuild error = %v", err)
	}
}
