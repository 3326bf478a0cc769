package main

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stewi1014/fractalexplorer/programs"
	"github.com/stewi1014/fractalexplorer/render"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{
		"-fractal", "julia",
		"-params", `{"cr": -0.7, "ci": 0.27015, "g": 0.5}`,
		"-width", "640", "-height", "480",
		"-workers", "2",
	}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	if opts.fractal != programs.Julia {
		t.Errorf("fractal %v", opts.fractal)
	}
	if opts.params.JuliaC != complex(-0.7, 0.27015) {
		t.Errorf("julia constant %v", opts.params.JuliaC)
	}
	if opts.params.Colour[1] != 0.5 {
		t.Errorf("colour %v", opts.params.Colour)
	}
	if opts.width != 640 || opts.height != 480 || opts.workers != 2 {
		t.Errorf("options %+v", opts)
	}
}

func TestParseOptionsParamsFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "params.json")
	if err := os.WriteFile(name, []byte(`{"insideBW": true}`), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := parseOptions([]string{"-params", name}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if opts.params.Inside != programs.InsideBlackWhite {
		t.Errorf("inside mode %v", opts.params.Inside)
	}
	if opts.fractal != programs.Mandelbrot {
		t.Errorf("default fractal %v", opts.fractal)
	}
}

func TestParseOptionsErrors(t *testing.T) {
	tests := []struct {
		args []string
		want error
	}{
		{[]string{"-fractal", "newton"}, programs.ErrUnknownFractal},
		{[]string{"-width", "0"}, render.ErrEmptySurface},
		{[]string{"-h"}, flag.ErrHelp},
		{[]string{"-params", "missing.json"}, os.ErrNotExist},
	}

	for _, tt := range tests {
		if _, err := parseOptions(tt.args, io.Discard); !errors.Is(err, tt.want) {
			t.Errorf("%q: got %v, want %v", tt.args, err, tt.want)
		}
	}
}
