package programs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/fractalexplorer/internal/logger"
)

// InsideMode chooses how interior points (and misses, for spatial fractals) are coloured.
type InsideMode int

const (
	InsideColoured InsideMode = iota
	InsideBlackWhite
)

// Parameter defaults.
var (
	DefaultInitialZ    = complex(0, 0)
	DefaultJuliaC      = complex(-0.8, 0.156)
	DefaultQuaternionC = mgl64.Quat{W: -0.2, V: mgl64.Vec3{0.6, 0.2, 0.2}}
	DefaultColour      = mgl64.Vec3{1, 1, 1}
)

// Parameters are the user tunable constants of a render. Evaluators only read them.
type Parameters struct {
	InitialZ complex128
	JuliaC   complex128
	// QuaternionC is the Julia constant of the quaternion kernel.
	// W is the real part.
	QuaternionC mgl64.Quat
	// Colour multiplies each channel. Components are in [0, inf).
	Colour mgl64.Vec3
	Inside InsideMode
}

func DefaultParameters() Parameters {
	return Parameters{
		InitialZ:    DefaultInitialZ,
		JuliaC:      DefaultJuliaC,
		QuaternionC: DefaultQuaternionC,
		Colour:      DefaultColour,
		Inside:      InsideColoured,
	}
}

// Sanitize replaces every non-finite or out of range value with its default.
// A zero colour multiplier is valid and kept.
func (p Parameters) Sanitize() Parameters {
	if !finite(real(p.InitialZ)) || !finite(imag(p.InitialZ)) {
		p.InitialZ = DefaultInitialZ
	}
	if !finite(real(p.JuliaC)) || !finite(imag(p.JuliaC)) {
		p.JuliaC = DefaultJuliaC
	}
	if !finite(p.QuaternionC.W) || !finite(p.QuaternionC.V[0]) ||
		!finite(p.QuaternionC.V[1]) || !finite(p.QuaternionC.V[2]) {
		p.QuaternionC = DefaultQuaternionC
	}
	for i := range p.Colour {
		if !finite(p.Colour[i]) || p.Colour[i] < 0 {
			p.Colour[i] = DefaultColour[i]
		}
	}
	if p.Inside != InsideBlackWhite {
		p.Inside = InsideColoured
	}
	return p
}

// ParametersFromJSON reads the parameter object used by the configuration UI.
// Malformed input yields defaults; it is never an error.
func ParametersFromJSON(raw []byte) Parameters {
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		logger.Logger().Warn("parameters are not a JSON object, using defaults", slog.String("error", err.Error()))
		return DefaultParameters()
	}
	return ParametersFromMap(m)
}

// LoadParameters reads arg as inline JSON if it starts with '{', otherwise
// as the name of a JSON file. An empty arg gives the defaults.
func LoadParameters(arg string) (Parameters, error) {
	if arg == "" {
		return DefaultParameters(), nil
	}
	if arg[0] == '{' {
		return ParametersFromJSON([]byte(arg)), nil
	}

	raw, err := os.ReadFile(arg)
	if err != nil {
		return Parameters{}, fmt.Errorf("read parameters: %w", err)
	}
	return ParametersFromJSON(raw), nil
}

// ParametersFromMap reads parameters from loosely typed values. Recognised keys:
//
//	zr, zi          initial Z
//	cr, ci          Julia constant
//	qw, qx, qy, qz  quaternion Julia constant
//	r, g, b         colour multiplier
//	insideBW        black/white inside colouring
//
// Numbers may be given as strings. Missing or non-numeric values fall back to
// their defaults.
func ParametersFromMap(m map[string]any) Parameters {
	p := DefaultParameters()

	p.InitialZ = complex(
		number(m, "zr", real(DefaultInitialZ)),
		number(m, "zi", imag(DefaultInitialZ)),
	)
	p.JuliaC = complex(
		number(m, "cr", real(DefaultJuliaC)),
		number(m, "ci", imag(DefaultJuliaC)),
	)
	p.QuaternionC = mgl64.Quat{
		W: number(m, "qw", DefaultQuaternionC.W),
		V: mgl64.Vec3{
			number(m, "qx", DefaultQuaternionC.V[0]),
			number(m, "qy", DefaultQuaternionC.V[1]),
			number(m, "qz", DefaultQuaternionC.V[2]),
		},
	}
	for i, key := range [3]string{"r", "g", "b"} {
		c := number(m, key, DefaultColour[i])
		if c < 0 {
			logger.Logger().Warn("negative colour multiplier, using default",
				slog.String("key", key), slog.Float64("value", c))
			c = DefaultColour[i]
		}
		p.Colour[i] = c
	}
	if boolean(m, "insideBW") {
		p.Inside = InsideBlackWhite
	}
	return p.Sanitize()
}

// Map is the inverse of ParametersFromMap.
func (p Parameters) Map() map[string]any {
	return map[string]any{
		"zr":       real(p.InitialZ),
		"zi":       imag(p.InitialZ),
		"cr":       real(p.JuliaC),
		"ci":       imag(p.JuliaC),
		"qw":       p.QuaternionC.W,
		"qx":       p.QuaternionC.V[0],
		"qy":       p.QuaternionC.V[1],
		"qz":       p.QuaternionC.V[2],
		"r":        p.Colour[0],
		"g":        p.Colour[1],
		"b":        p.Colour[2],
		"insideBW": p.Inside == InsideBlackWhite,
	}
}

func number(m map[string]any, key string, def float64) float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}

	var f float64
	var err error
	switch v := v.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		f, err = v.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		err = strconv.ErrSyntax
	}

	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		logger.Logger().Warn("non-numeric parameter, using default",
			slog.String("key", key), slog.Any("value", v), slog.Float64("default", def))
		return def
	}
	return f
}

func boolean(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	case float64:
		return v != 0
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	}
	return false
}
