package viewport

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/fractal"
)

// ErrAnimating is returned by Animate while an animation is already running.
var ErrAnimating = errors.New("viewport: animation already running")

// RenderHook observes every render a Navigator triggers.
type RenderHook func(c Controls, elapsed time.Duration, err error)

// Option configures a Navigator.
type Option func(*Navigator)

// WithHistoryDepth sets the number of undo entries kept.
func WithHistoryDepth(n int) Option {
	return func(nav *Navigator) {
		nav.history = NewHistory(n)
	}
}

// WithThumbnailFactor sets the downsampling factor of history thumbnails.
func WithThumbnailFactor(f int) Option {
	return func(nav *Navigator) {
		if f > 0 {
			nav.factor = f
		}
	}
}

// WithRenderHook sets a function called after every render.
func WithRenderHook(fn RenderHook) Option {
	return func(nav *Navigator) {
		nav.hook = fn
	}
}

// Navigator owns the navigation state of one view: the current controls,
// the selection box being dragged and the undo history. Every state change
// ends in a render of the new controls.
//
// Thread safety: Navigator methods are safe for concurrent use. State
// updates are serialized; renders are not, so overlapping gestures surface
// the renderer's fractal.ErrRenderInFlight.
type Navigator struct {
	mu       sync.Mutex
	r        Renderer
	controls Controls
	history  *History
	sel      *Box
	factor   int
	hook     RenderHook

	animating atomic.Bool
	stopping  atomic.Bool
}

// NewNavigator creates a navigator rendering through r, starting at c.
// Invalid controls are replaced by DefaultControls.
func NewNavigator(r Renderer, c Controls, opts ...Option) *Navigator {
	if err := c.Validate(); err != nil {
		fractal.Logger().Warn("viewport: invalid initial controls, using defaults", "error", err)
		c = DefaultControls()
	}
	nav := &Navigator{
		r:        r,
		controls: c,
		history:  NewHistory(DefaultHistoryDepth),
		factor:   DefaultThumbnailFactor,
	}
	for _, opt := range opts {
		opt(nav)
	}
	return nav
}

// Controls returns the current controls.
func (n *Navigator) Controls() Controls {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.controls
}

// Render renders the current controls.
func (n *Navigator) Render(ctx context.Context) error {
	return n.render(ctx, n.Controls())
}

// Apply replaces the controls, as the parameter panel does, and renders.
// History is not touched.
func (n *Navigator) Apply(ctx context.Context, c Controls) error {
	if err := c.Validate(); err != nil {
		return err
	}
	n.mu.Lock()
	n.controls = c
	n.mu.Unlock()
	return n.render(ctx, c)
}

// Pan moves the view by (dx, dy) canvas pixels and renders. A pan rejected
// because a render is in flight is undone.
func (n *Navigator) Pan(ctx context.Context, dx, dy float64) error {
	n.mu.Lock()
	prior := n.controls
	n.controls = prior.Pan(dx, dy)
	c := n.controls
	n.mu.Unlock()

	err := n.render(ctx, c)
	if errors.Is(err, fractal.ErrRenderInFlight) {
		n.mu.Lock()
		if n.controls == c {
			n.controls = prior
		}
		n.mu.Unlock()
	}
	return err
}

// BeginSelect starts a selection at (x, y). The box has zero area until
// the pointer moves, so a plain click never zooms. A selection already in
// progress is kept.
func (n *Navigator) BeginSelect(x, y float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sel == nil {
		n.sel = &Box{X0: x, Y0: y, X1: x, Y1: y}
	}
}

// MoveSelect moves the free corner of the selection to (x, y).
func (n *Navigator) MoveSelect(x, y float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sel != nil {
		n.sel.X1, n.sel.Y1 = x, y
	}
}

// Selection returns the selection in progress.
func (n *Navigator) Selection() (Box, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sel == nil {
		return Box{}, false
	}
	return *n.sel, true
}

// CancelSelect drops the selection in progress.
func (n *Navigator) CancelSelect() {
	n.mu.Lock()
	n.sel = nil
	n.mu.Unlock()
}

// EndSelect finishes the selection and zooms into it with Zoom. It
// reports whether a zoom happened.
func (n *Navigator) EndSelect(ctx context.Context) (bool, error) {
	n.mu.Lock()
	sel := n.sel
	n.sel = nil
	n.mu.Unlock()

	if sel == nil {
		return false, nil
	}
	return n.Zoom(ctx, *sel)
}

// Zoom zooms into b. If b is at least MinSelectArea, the current controls
// and a thumbnail of the current frame are pushed to the history, the view
// is fitted to b and rendered. It reports whether a zoom happened.
//
// If the render is rejected because another one is in flight, the history
// entry and the controls are rolled back. Any other render error leaves the
// zoom committed, since the frame has already started to change.
func (n *Navigator) Zoom(ctx context.Context, b Box) (bool, error) {
	n.mu.Lock()
	w, h := n.r.Size()
	zoomed, ok := ZoomBox(n.controls, b, w, h)
	if !ok {
		n.mu.Unlock()
		return false, nil
	}

	prior := n.controls
	frame := n.r.Buffer()
	pushed := n.history.Push(prior, Thumbnail(frame.RGBA(), n.factor))
	n.controls = zoomed
	n.mu.Unlock()

	fractal.Logger().Debug("viewport: zoom",
		"scale", zoomed.Scale,
		"dx", zoomed.OffsetX,
		"dy", zoomed.OffsetY)

	err := n.render(ctx, zoomed)
	if errors.Is(err, fractal.ErrRenderInFlight) {
		n.mu.Lock()
		if n.controls == zoomed {
			n.controls = prior
		}
		if top, ok := n.history.Peek(); ok && top.Seq == pushed.Seq {
			n.history.Pop()
		}
		n.mu.Unlock()
	}
	return true, err
}

// Undo restores the newest history entry and renders it. It reports false
// if the history is empty.
func (n *Navigator) Undo(ctx context.Context) (bool, error) {
	n.mu.Lock()
	e, ok := n.history.Pop()
	if ok {
		n.controls = e.Controls
	}
	n.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, n.render(ctx, e.Controls)
}

// Restore undoes count entries, rendering after each one and pausing for
// delay between steps so that the way back is visible. It stops at the
// first error or when the history runs out.
func (n *Navigator) Restore(ctx context.Context, count int, delay time.Duration) error {
	for i := 0; i < count; i++ {
		if i > 0 && delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		ok, err := n.Undo(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	return nil
}

// History returns the undo entries, newest first.
func (n *Navigator) History() []Entry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.history.Recent(0)
}

// HistoryDepth returns the maximum number of undo entries kept.
func (n *Navigator) HistoryDepth() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.history.Depth()
}

// ClearHistory drops every undo entry.
func (n *Navigator) ClearHistory() {
	n.mu.Lock()
	n.history.Clear()
	n.mu.Unlock()
}

func (n *Navigator) render(ctx context.Context, c Controls) error {
	n.mu.Lock()
	r, hook := n.r, n.hook
	n.mu.Unlock()

	start := time.Now()
	err := r.Render(ctx, c.Params)
	elapsed := time.Since(start)

	if hook != nil {
		hook(c, elapsed, err)
	}
	if err != nil {
		fractal.Logger().Warn("viewport: render failed", "error", err)
	}
	return err
}
