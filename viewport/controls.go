package viewport

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gogpu/fractal"
)

// Default operator settings.
const (
	DefaultUpdateEvery     = 10 // milliseconds
	DefaultThreads         = 8
	DefaultAnimationFrames = 100
)

// ThreadChoices are the worker counts offered by the parameter panel.
var ThreadChoices = []int{1, 2, 3, 4, 5, 8, 13, 21}

// controlsPrefix marks the encoded form, as in "#controls={...}".
const controlsPrefix = "controls="

// Controls is the full operator state of a view. The embedded Params are
// what a render consumes; the remaining fields configure the display.
type Controls struct {
	fractal.Params

	// UpdateEvery is the progressive preview interval in milliseconds.
	UpdateEvery int `json:"updateEvery"`

	// Threads is the worker count. Changing it rebuilds the pool.
	Threads int `json:"num_threads"`

	// AnimationFrames is the target number of frames of a zoom-out
	// animation.
	AnimationFrames int `json:"animation_num_frames"`
}

// DefaultControls returns the initial operator state.
func DefaultControls() Controls {
	return Controls{
		Params:          fractal.DefaultParams(),
		UpdateEvery:     DefaultUpdateEvery,
		Threads:         DefaultThreads,
		AnimationFrames: DefaultAnimationFrames,
	}
}

// Validate reports whether c can drive a render.
func (c Controls) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	switch {
	case c.UpdateEvery <= 0:
		return fmt.Errorf("%w: updateEvery %d must be positive", fractal.ErrInvalidParams, c.UpdateEvery)
	case c.Threads <= 0:
		return fmt.Errorf("%w: num_threads %d must be positive", fractal.ErrInvalidParams, c.Threads)
	case c.AnimationFrames <= 0:
		return fmt.Errorf("%w: animation_num_frames %d must be positive", fractal.ErrInvalidParams, c.AnimationFrames)
	}
	return nil
}

// PreviewInterval returns UpdateEvery as a duration.
func (c Controls) PreviewInterval() time.Duration {
	return time.Duration(c.UpdateEvery) * time.Millisecond
}

// Pan moves the view by (dx, dy) canvas pixels. Dragging the image right
// reveals the plane to its left.
func (c Controls) Pan(dx, dy float64) Controls {
	c.OffsetX += dx / c.Scale
	c.OffsetY += dy / c.Scale
	return c
}

// EncodeControls returns the persisted form of c: "controls=" followed by
// the path-escaped JSON object.
func EncodeControls(c Controls) string {
	data, err := json.Marshal(c)
	if err != nil {
		// Controls holds only numbers and booleans; Marshal fails only on
		// NaN or Inf, which Validate rejects.
		data, _ = json.Marshal(DefaultControls())
	}
	return controlsPrefix + url.PathEscape(string(data))
}

// ParseControls decodes the form written by EncodeControls. A leading "#"
// and anything before "controls=" are ignored. Fields missing from the
// input keep their default values. An empty string yields the defaults.
func ParseControls(s string) (Controls, error) {
	c := DefaultControls()

	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if s == "" {
		return c, nil
	}
	_, raw, ok := strings.Cut(s, controlsPrefix)
	if !ok {
		return c, fmt.Errorf("%w: missing %q prefix", fractal.ErrInvalidParams, controlsPrefix)
	}

	text, err := url.PathUnescape(raw)
	if err != nil {
		return c, fmt.Errorf("%w: %w", fractal.ErrInvalidParams, err)
	}
	if err := json.Unmarshal([]byte(text), &c); err != nil {
		return DefaultControls(), fmt.Errorf("%w: %w", fractal.ErrInvalidParams, err)
	}
	if err := c.Validate(); err != nil {
		return DefaultControls(), err
	}
	return c, nil
}

// DecodeControls is ParseControls for callers that only need a usable
// value: malformed input yields DefaultControls.
func DecodeControls(s string) Controls {
	c, err := ParseControls(s)
	if err != nil {
		fractal.Logger().Warn("viewport: discarding malformed controls", "error", err)
	}
	return c
}
