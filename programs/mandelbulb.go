package programs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	mandelbulbPower   = 8.0
	mandelbulbBailout = 2.0
)

var mandelbulbLight = mgl64.Vec3{1, 1, -1}.Normalize()

var mandelbulbProgram = Program{
	Kind:         Mandelbulb,
	Name:         "Mandelbulb",
	Family:       DistanceField,
	BaseDistance: 3,
	MaxDistance:  10,
	StepScale:    1,
	MaxIter:      8,

	DefaultZoom:      1,
	MinZoom:          0.05,
	MaxZoom:          1e4,
	WheelDownZoomsIn: true,
}

// mandelbulbDE iterates z <- z^8 + pos in spherical form and returns
// 0.5 ln(r) r / dr.
func mandelbulbDE(pos mgl64.Vec3, iterations int) float64 {
	z := pos
	dr := 1.0
	r := 0.0

	for i := 0; i < iterations; i++ {
		r = z.Len()
		if r > mandelbulbBailout {
			break
		}

		theta := math.Acos(z[2]/r) * mandelbulbPower
		phi := math.Atan2(z[1], z[0]) * mandelbulbPower
		dr = math.Pow(r, mandelbulbPower-1)*mandelbulbPower*dr + 1

		zr := math.Pow(r, mandelbulbPower)
		sinTheta := math.Sin(theta)
		z = mgl64.Vec3{
			sinTheta * math.Cos(phi),
			sinTheta * math.Sin(phi),
			math.Cos(theta),
		}.Mul(zr).Add(pos)
	}

	return 0.5 * math.Log(r) * r / dr
}
