package viewport

import (
	"context"
	"math"
	"time"

	"github.com/gogpu/fractal"
)

// Animation bounds.
const (
	// AnimationMinStep is the smallest scale decrement of one frame.
	AnimationMinStep = 100

	// AnimationStopScale ends the animation once the scale is at or below it.
	AnimationStopScale = 250
)

// AnimationStep returns how much to subtract from scale for the next frame
// of a zoom-out targeting frames frames. globalStep is the step computed at
// the start of the animation; above a scale of 10000 it is added to keep
// the zoom rate roughly geometric. The step never takes the scale below
// AnimationMinStep.
func AnimationStep(scale, globalStep float64, frames int) float64 {
	if frames < 1 {
		frames = 1
	}
	step := math.Max(AnimationMinStep, scale/float64(frames))
	if scale > 10000 {
		step += math.Min(globalStep, scale-step-AnimationMinStep)
	}
	return math.Min(step, scale-AnimationMinStep)
}

// Animate zooms out from the current view, rendering one frame per step
// until the scale reaches AnimationStopScale, StopAnimation is called or
// ctx ends. The history is cleared first. A render error stops the
// animation and is returned; the last rendered frame stays visible.
func (n *Navigator) Animate(ctx context.Context) error {
	if !n.animating.CompareAndSwap(false, true) {
		return ErrAnimating
	}
	defer n.animating.Store(false)
	n.stopping.Store(false)

	n.mu.Lock()
	n.history.Clear()
	n.sel = nil
	frames := n.controls.AnimationFrames
	globalStep := math.Max(AnimationMinStep, n.controls.Scale/float64(max(frames, 1)))
	n.mu.Unlock()

	log := fractal.Logger()
	log.Info("viewport: animation started", "scale", n.Controls().Scale, "frames", frames)

	start := time.Now()
	count := 0
	for !n.stopping.Load() {
		if err := ctx.Err(); err != nil {
			return err
		}

		n.mu.Lock()
		if n.controls.Scale <= AnimationStopScale {
			n.mu.Unlock()
			break
		}
		n.controls.Scale -= AnimationStep(n.controls.Scale, globalStep, frames)
		c := n.controls
		n.mu.Unlock()

		if err := n.render(ctx, c); err != nil {
			log.Warn("viewport: animation stopped by render error", "frame", count, "error", err)
			return err
		}
		count++
	}

	log.Info("viewport: animation finished",
		"frames", count,
		"scale", n.Controls().Scale,
		"elapsed", time.Since(start))
	return nil
}

// StopAnimation ends a running animation before its next frame.
func (n *Navigator) StopAnimation() {
	n.stopping.Store(true)
}

// Animating reports whether an animation is running.
func (n *Navigator) Animating() bool {
	return n.animating.Load()
}
