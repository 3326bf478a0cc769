package programs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const quaternionBailout = 2.0

var quaternionJuliaProgram = Program{
	Kind:         QuaternionJulia,
	Name:         "Quaternion Julia",
	Family:       DistanceField,
	BaseDistance: 3,
	MaxDistance:  20,
	StepScale:    0.5,
	MaxIter:      16,

	DefaultZoom: 1,
	MinZoom:     0.05,
	MaxZoom:     1e4,
}

// quaternionJuliaDE slices the 4D Julia set of q <- q^2 + c at w = 0.
// pos supplies the real part and the first two imaginary parts.
func quaternionJuliaDE(pos mgl64.Vec3, c mgl64.Quat, iterations int) float64 {
	z := mgl64.Quat{W: pos[0], V: mgl64.Vec3{pos[1], pos[2], 0}}
	dr := 1.0
	r := 0.0

	for i := 0; i < iterations; i++ {
		r = z.Len()
		if r > quaternionBailout {
			break
		}
		dr = 2 * r * dr
		z = z.Mul(z).Add(c)
	}

	return 0.5 * math.Log(r) * r / dr
}
