package programs

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestParametersFromMapDefaults(t *testing.T) {
	got := ParametersFromMap(nil)
	if got != DefaultParameters() {
		t.Errorf("got %+v, want defaults", got)
	}
}

func TestParametersFromMap(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]any
		check func(t *testing.T, p Parameters)
	}{
		{
			name:  "numbers",
			input: map[string]any{"zr": 0.25, "zi": -0.5, "r": 0.5, "g": 2.0, "b": 3},
			check: func(t *testing.T, p Parameters) {
				if p.InitialZ != complex(0.25, -0.5) {
					t.Errorf("initial Z %v", p.InitialZ)
				}
				if p.Colour != (mgl64.Vec3{0.5, 2, 3}) {
					t.Errorf("colour %v", p.Colour)
				}
			},
		},
		{
			name:  "numeric strings",
			input: map[string]any{"cr": " -0.4", "ci": "0.6", "qw": "0.1"},
			check: func(t *testing.T, p Parameters) {
				if p.JuliaC != complex(-0.4, 0.6) {
					t.Errorf("julia constant %v", p.JuliaC)
				}
				if p.QuaternionC.W != 0.1 || p.QuaternionC.V != DefaultQuaternionC.V {
					t.Errorf("quaternion constant %v", p.QuaternionC)
				}
			},
		},
		{
			name:  "non-numeric falls back",
			input: map[string]any{"r": "red", "g": []int{1}, "b": "", "zr": math.NaN(), "cr": math.Inf(1)},
			check: func(t *testing.T, p Parameters) {
				if p.Colour != DefaultColour {
					t.Errorf("colour %v", p.Colour)
				}
				if p.InitialZ != DefaultInitialZ || p.JuliaC != DefaultJuliaC {
					t.Errorf("constants %v %v", p.InitialZ, p.JuliaC)
				}
			},
		},
		{
			name:  "zero multiplier is kept",
			input: map[string]any{"r": 0, "g": "0", "b": 0.0},
			check: func(t *testing.T, p Parameters) {
				if p.Colour != (mgl64.Vec3{}) {
					t.Errorf("colour %v", p.Colour)
				}
			},
		},
		{
			name:  "negative multiplier falls back",
			input: map[string]any{"r": -1.0, "g": 0.5},
			check: func(t *testing.T, p Parameters) {
				if p.Colour != (mgl64.Vec3{1, 0.5, 1}) {
					t.Errorf("colour %v", p.Colour)
				}
			},
		},
		{
			name:  "inside black white",
			input: map[string]any{"insideBW": true},
			check: func(t *testing.T, p Parameters) {
				if p.Inside != InsideBlackWhite {
					t.Errorf("inside %v", p.Inside)
				}
			},
		},
		{
			name:  "inside black white string",
			input: map[string]any{"insideBW": "true"},
			check: func(t *testing.T, p Parameters) {
				if p.Inside != InsideBlackWhite {
					t.Errorf("inside %v", p.Inside)
				}
			},
		},
		{
			name:  "inside garbage is coloured",
			input: map[string]any{"insideBW": "maybe"},
			check: func(t *testing.T, p Parameters) {
				if p.Inside != InsideColoured {
					t.Errorf("inside %v", p.Inside)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ParametersFromMap(tt.input))
		})
	}
}

func TestParametersFromJSON(t *testing.T) {
	got := ParametersFromJSON([]byte(`{"cr": "-0.7", "ci": 0.27015, "r": 1, "g": 0.8, "b": "x", "insideBW": 1}`))
	want := DefaultParameters()
	want.JuliaC = complex(-0.7, 0.27015)
	want.Colour = mgl64.Vec3{1, 0.8, 1}
	want.Inside = InsideBlackWhite
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	for _, raw := range []string{"", "[1,2]", "{", "null", "42"} {
		if got := ParametersFromJSON([]byte(raw)); got != DefaultParameters() {
			t.Errorf("%q: got %+v, want defaults", raw, got)
		}
	}
}

func TestParametersMapRoundTrip(t *testing.T) {
	p := Parameters{
		InitialZ:    complex(0.1, 0.2),
		JuliaC:      complex(-0.3, 0.4),
		QuaternionC: mgl64.Quat{W: 0.5, V: mgl64.Vec3{0.6, 0.7, 0.8}},
		Colour:      mgl64.Vec3{0.9, 0, 2},
		Inside:      InsideBlackWhite,
	}

	raw, err := json.Marshal(p.Map())
	if err != nil {
		t.Fatal(err)
	}
	if got := ParametersFromJSON(raw); got != p {
		t.Errorf("got %+v, want %+v", got, p)
	}
}

func TestSanitize(t *testing.T) {
	p := Parameters{
		InitialZ:    complex(math.NaN(), 0),
		JuliaC:      complex(0, math.Inf(-1)),
		QuaternionC: mgl64.Quat{W: math.NaN()},
		Colour:      mgl64.Vec3{-1, math.Inf(1), 0.5},
		Inside:      InsideMode(7),
	}.Sanitize()

	want := DefaultParameters()
	want.Colour[2] = 0.5
	if p != want {
		t.Errorf("got %+v, want %+v", p, want)
	}
}

func TestLoadParameters(t *testing.T) {
	name := filepath.Join(t.TempDir(), "params.json")
	if err := os.WriteFile(name, []byte(`{"cr": -0.4, "ci": "0.6"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadParameters(name)
	if err != nil {
		t.Fatal(err)
	}
	if p.JuliaC != complex(-0.4, 0.6) {
		t.Errorf("julia constant %v", p.JuliaC)
	}

	p, err = LoadParameters(`{"b": 0}`)
	if err != nil || p.Colour != (mgl64.Vec3{1, 1, 0}) {
		t.Errorf("inline: %+v, %v", p, err)
	}

	p, err = LoadParameters("")
	if err != nil || p != DefaultParameters() {
		t.Errorf("empty argument: %+v, %v", p, err)
	}

	if _, err := LoadParameters(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file accepted")
	}
}
