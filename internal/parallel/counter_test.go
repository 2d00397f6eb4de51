package parallel

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// Counter Tests
// =============================================================================

func TestCounter_IdleIsComplete(t *testing.T) {
	c := NewCounter()

	select {
	case <-c.C():
	default:
		t.Error("idle counter channel should be closed")
	}
}

func TestCounter_CompletesAtTarget(t *testing.T) {
	c := NewCounter()
	var hooked atomic.Int64
	c.Reset(3, func() { hooked.Add(1) })

	for i := 0; i < 2; i++ {
		last, err := c.Done(i)
		if err != nil || last {
			t.Fatalf("Done(%d) = (%v, %v), want (false, nil)", i, last, err)
		}
	}

	select {
	case <-c.C():
		t.Fatal("channel closed before target reached")
	default:
	}

	last, err := c.Done(2)
	if err != nil || !last {
		t.Fatalf("Done(2) = (%v, %v), want (true, nil)", last, err)
	}
	if hooked.Load() != 1 {
		t.Errorf("completion hook ran %d times, want 1", hooked.Load())
	}
	if c.Count() != 3 {
		t.Errorf("Count() = %d, want 3", c.Count())
	}
}

func TestCounter_NoLostWakeup(t *testing.T) {
	c := NewCounter()
	c.Reset(4, nil)

	// Every worker finishes before anyone waits.
	for i := 0; i < 4; i++ {
		if _, err := c.Done(i); err != nil {
			t.Fatalf("Done(%d) error = %v", i, err)
		}
	}

	select {
	case <-c.C():
	case <-time.After(time.Second):
		t.Error("channel not closed after completion")
	}
}

func TestCounter_DuplicateSignal(t *testing.T) {
	c := NewCounter()
	c.Reset(2, nil)

	if _, err := c.Done(0); err != nil {
		t.Fatalf("Done(0) error = %v", err)
	}
	if _, err := c.Done(0); !errors.Is(err, ErrDuplicateSignal) {
		t.Errorf("second Done(0) = %v, want ErrDuplicateSignal", err)
	}
	if c.Count() != 1 {
		t.Errorf("Count() = %d, want 1 (duplicate not counted)", c.Count())
	}
}

func TestCounter_ConcurrentOrderIrrelevant(t *testing.T) {
	const n = 64
	c := NewCounter()
	var lasts atomic.Int64
	c.Reset(n, nil)

	var wg sync.WaitGroup
	for i := n - 1; i >= 0; i-- {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if last, _ := c.Done(i); last {
				lasts.Add(1)
			}
		}()
	}
	wg.Wait()

	if lasts.Load() != 1 {
		t.Errorf("%d calls reported completion, want exactly 1", lasts.Load())
	}
	select {
	case <-c.C():
	default:
		t.Error("channel not closed after all stripes reported")
	}
	if c.Count() != n {
		t.Errorf("Count() = %d, want %d", c.Count(), n)
	}
}

func TestCounter_CountDuringSignalling(t *testing.T) {
	c := NewCounter()
	c.Reset(3, nil)

	if c.Count() != 0 {
		t.Errorf("Count() before any Done = %d, want 0", c.Count())
	}
	_, _ = c.Done(2)
	if c.Count() != 1 {
		t.Errorf("Count() after Done(2) = %d, want 1", c.Count())
	}
}

func TestCounter_NegativeTarget(t *testing.T) {
	c := NewCounter()
	c.Reset(-1, nil)

	select {
	case <-c.C():
	default:
		t.Error("channel should be closed for a non-positive target")
	}
	if c.Count() != 0 {
		t.Errorf("Count() = %d, want 0", c.Count())
	}
}

func TestCounter_ResetReopens(t *testing.T) {
	c := NewCounter()
	c.Reset(1, nil)
	_, _ = c.Done(0)

	c.Reset(1, nil)
	select {
	case <-c.C():
		t.Fatal("channel closed right after Reset")
	default:
	}
	if c.Count() != 0 {
		t.Errorf("Count() after Reset = %d, want 0", c.Count())
	}
	if last, err := c.Done(0); err != nil || !last {
		t.Errorf("Done(0) after Reset = (%v, %v), want (true, nil)", last, err)
	}
}

// =============================================================================
// Bitmap Tests
// =============================================================================

func TestBitmap_SetReportsFirst(t *testing.T) {
	b := NewBitmap(130)

	if !b.Set(129) {
		t.Error("first Set(129) = false, want true")
	}
	if b.Set(129) {
		t.Error("second Set(129) = true, want false")
	}
	if b.Set(130) || b.Set(-1) {
		t.Error("out-of-range Set returned true")
	}
	if b.Count() != 1 {
		t.Errorf("Count() = %d, want 1", b.Count())
	}
}

func TestBitmap_CountAcrossWords(t *testing.T) {
	b := NewBitmap(200)
	set := []int{0, 63, 64, 127, 199}
	for _, i := range set {
		b.Set(i)
	}

	if b.Count() != len(set) {
		t.Errorf("Count() = %d, want %d", b.Count(), len(set))
	}
	if NewBitmap(-1) != nil {
		t.Error("NewBitmap(-1) should be nil")
	}
}

func TestBitmap_ConcurrentSet(t *testing.T) {
	b := NewBitmap(1000)
	var firsts atomic.Int64

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				if b.Set(i) {
					firsts.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	if firsts.Load() != 1000 {
		t.Errorf("first-set count = %d, want 1000", firsts.Load())
	}
	if b.Count() != 1000 {
		t.Errorf("Count() = %d, want 1000", b.Count())
	}
}
