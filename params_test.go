package fractal

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.Scale != 305 || p.OffsetX != 1 || p.OffsetY != 0 {
		t.Errorf("view = (%v, %v, %v), want (305, 1, 0)", p.Scale, p.OffsetX, p.OffsetY)
	}
	if p.Iterations != 350 {
		t.Errorf("Iterations = %d, want 350", p.Iterations)
	}
	if p.ColorMode != ColorLight {
		t.Errorf("ColorMode = %v, want %v", p.ColorMode, ColorLight)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{"zero scale", func(p *Params) { p.Scale = 0 }},
		{"negative scale", func(p *Params) { p.Scale = -1 }},
		{"NaN scale", func(p *Params) { p.Scale = math.NaN() }},
		{"infinite scale", func(p *Params) { p.Scale = math.Inf(1) }},
		{"NaN offset x", func(p *Params) { p.OffsetX = math.NaN() }},
		{"infinite offset y", func(p *Params) { p.OffsetY = math.Inf(-1) }},
		{"zero iterations", func(p *Params) { p.Iterations = 0 }},
		{"unknown color mode", func(p *Params) { p.ColorMode = 9 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Validate() error = %v, want ErrInvalidParams", err)
			}
		})
	}
}

func TestPlanePoint(t *testing.T) {
	p := Params{Scale: 100, OffsetX: 0.5, OffsetY: -0.25, Iterations: 1}

	tests := []struct {
		px, py         int
		wantRe, wantIm float64
	}{
		{100, 50, -0.5, 0.25},
		{0, 0, -1.5, -0.25},
		{200, 100, 0.5, 0.75},
	}
	for _, tt := range tests {
		re, im := p.PlanePoint(tt.px, tt.py, 200, 100)
		if math.Abs(re-tt.wantRe) > 1e-12 || math.Abs(im-tt.wantIm) > 1e-12 {
			t.Errorf("PlanePoint(%d, %d) = (%v, %v), want (%v, %v)",
				tt.px, tt.py, re, im, tt.wantRe, tt.wantIm)
		}
	}
}

func TestColorModeString(t *testing.T) {
	tests := []struct {
		mode ColorMode
		want string
	}{
		{GrayLight, "gray-light"},
		{GrayDark, "gray-dark"},
		{ColorLight, "color-light"},
		{Color, "color"},
		{ColorMode(7), "ColorMode(7)"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("ColorMode(%d).String() = %q, want %q", uint8(tt.mode), got, tt.want)
		}
	}
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in   string
		want ColorMode
	}{
		{"gray-light", GrayLight},
		{"GRAY_DARK", GrayDark},
		{" Color_Light ", ColorLight},
		{"color", Color},
	}
	for _, tt := range tests {
		got, err := ParseColorMode(tt.in)
		if err != nil {
			t.Errorf("ParseColorMode(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColorMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseColorMode("sepia"); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("ParseColorMode(sepia) error = %v, want ErrInvalidParams", err)
	}
}

func TestColorModeNext(t *testing.T) {
	m := GrayLight
	for range 4 {
		m = m.Next()
	}
	if m != GrayLight {
		t.Errorf("four Next() calls = %v, want %v", m, GrayLight)
	}
	if Color.Next() != GrayLight {
		t.Errorf("Color.Next() = %v, want %v", Color.Next(), GrayLight)
	}
}

func TestParamsJSONKeys(t *testing.T) {
	data, err := json.Marshal(DefaultParams())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"scale", "dx", "dy", "iterations", "color_mode", "color_threads"} {
		if _, ok := m[key]; !ok {
			t.Errorf("JSON missing key %q: %s", key, data)
		}
	}
	if m["color_mode"] != float64(2) {
		t.Errorf("color_mode = %v, want 2", m["color_mode"])
	}
}
