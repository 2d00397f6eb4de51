package viewport

import "testing"

func controlsWithScale(s float64) Controls {
	c := DefaultControls()
	c.Scale = s
	return c
}

func TestHistoryPushPop(t *testing.T) {
	h := NewHistory(4)
	for i := 1; i <= 3; i++ {
		e := h.Push(controlsWithScale(float64(i)), nil)
		if e.Seq != uint64(i) {
			t.Errorf("Push %d Seq = %d, want %d", i, e.Seq, i)
		}
	}
	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}

	if e, _ := h.Peek(); e.Controls.Scale != 3 {
		t.Errorf("Peek() scale = %v, want 3", e.Controls.Scale)
	}
	for want := 3.0; want >= 1; want-- {
		e, ok := h.Pop()
		if !ok || e.Controls.Scale != want {
			t.Errorf("Pop() = (%v, %v), want scale %v", e.Controls.Scale, ok, want)
		}
	}
	if _, ok := h.Pop(); ok {
		t.Error("Pop() on empty history returned an entry")
	}
	if _, ok := h.Peek(); ok {
		t.Error("Peek() on empty history returned an entry")
	}
}

func TestHistoryBounded(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Push(controlsWithScale(float64(i)), nil)
	}
	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}

	recent := h.Recent(0)
	want := []float64{5, 4, 3}
	for i, e := range recent {
		if e.Controls.Scale != want[i] {
			t.Errorf("Recent[%d] scale = %v, want %v", i, e.Controls.Scale, want[i])
		}
	}
}

func TestHistoryRecent(t *testing.T) {
	h := NewHistory(10)
	for i := 1; i <= 8; i++ {
		h.Push(controlsWithScale(float64(i)), nil)
	}
	got := h.Recent(6)
	if len(got) != 6 {
		t.Fatalf("len(Recent(6)) = %d, want 6", len(got))
	}
	if got[0].Controls.Scale != 8 || got[5].Controls.Scale != 3 {
		t.Errorf("Recent(6) spans %v..%v, want 8..3", got[0].Controls.Scale, got[5].Controls.Scale)
	}
	if len(h.Recent(20)) != 8 {
		t.Errorf("Recent(20) should return every entry")
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(0)
	if h.Depth() != DefaultHistoryDepth {
		t.Errorf("Depth() = %d, want %d", h.Depth(), DefaultHistoryDepth)
	}
	h.Push(DefaultControls(), nil)
	h.Clear()
	if h.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", h.Len())
	}

	// Sequence numbers keep increasing across Clear.
	if e := h.Push(DefaultControls(), nil); e.Seq != 2 {
		t.Errorf("Seq after Clear = %d, want 2", e.Seq)
	}
}
