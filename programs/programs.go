// Package programs holds the fractal kernels and the per-pixel evaluators.
//
// Every fractal is a Program: a fixed set of constants plus a Kind that
// selects the recurrence or distance estimator. The set of fractals is
// closed; Get and ParseKind reject anything else.
package programs

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownFractal = errors.New("unknown fractal")

// Kind identifies a fractal family.
type Kind int

const (
	Mandelbrot Kind = iota
	Julia
	BurningShip
	Mandelbulb
	MengerSponge
	QuaternionJulia
	Kleinian

	numKinds
)

// Family groups kernels by how they are evaluated.
type Family int

const (
	// EscapeTime kernels iterate a complex recurrence per pixel.
	EscapeTime Family = iota
	// DistanceField kernels are ray-marched against a distance estimator.
	DistanceField
)

// DefaultIterations is the escape-time iteration cap used by the interactive paths.
// Raising it resolves more boundary detail at proportional cost.
const DefaultIterations = 300

// March limits shared by every distance-field kernel.
const (
	MaxSteps       = 100
	SurfaceEpsilon = 0.001
	NormalEpsilon  = 0.001
	// MinStep is the smallest distance a march advances, used when the
	// estimator returns a non-finite value.
	MinStep = SurfaceEpsilon * 0.5
)

// Program is the constant description of one fractal.
type Program struct {
	Kind   Kind
	Name   string
	Family Family

	// Escape-time constants.
	Iterations int
	// FlipY maps the top row of the surface to the largest imaginary value
	// instead of the smallest.
	FlipY bool

	// Distance-field constants.
	BaseDistance float64
	MaxDistance  float64
	StepScale    float64
	MaxIter      int

	// View and interaction constants.
	DefaultZoom float64
	MinZoom     float64
	MaxZoom     float64
	// WheelDownZoomsIn inverts the usual "scroll down zooms out" rule.
	WheelDownZoomsIn bool
}

// Dimensions reports 2 for plane fractals and 3 for spatial ones.
func (p Program) Dimensions() int {
	if p.Family == DistanceField {
		return 3
	}
	return 2
}

var programs = [numKinds]Program{
	Mandelbrot:      mandelbrotProgram,
	Julia:           juliaProgram,
	BurningShip:     burningShipProgram,
	Mandelbulb:      mandelbulbProgram,
	MengerSponge:    mengerProgram,
	QuaternionJulia: quaternionJuliaProgram,
	Kleinian:        kleinianProgram,
}

// Get returns the Program for k.
func Get(k Kind) (Program, error) {
	if k < 0 || k >= numKinds {
		return Program{}, fmt.Errorf("%w: %d", ErrUnknownFractal, int(k))
	}
	return programs[k], nil
}

// Kinds lists every supported fractal in menu order.
func Kinds() []Kind {
	kinds := make([]Kind, numKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return programs[k].Name
}

// ParseKind accepts a fractal name, case and separator insensitive.
// "burning-ship", "Burning Ship" and "burningship" are all BurningShip.
func ParseKind(s string) (Kind, error) {
	want := normaliseName(s)
	for k, p := range programs {
		if normaliseName(p.Name) == want {
			return Kind(k), nil
		}
	}
	switch want {
	case "menger":
		return MengerSponge, nil
	case "quaternion", "qjulia":
		return QuaternionJulia, nil
	case "bulb":
		return Mandelbulb, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFractal, s)
}

func normaliseName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == ' ' || r == '-' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
