package programs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var mengerProgram = Program{
	Kind:         MengerSponge,
	Name:         "Menger Sponge",
	Family:       DistanceField,
	BaseDistance: 3,
	MaxDistance:  100,
	StepScale:    1,
	MaxIter:      4,

	DefaultZoom: 1,
	MinZoom:     0.05,
	MaxZoom:     1e4,
}

// mengerDE is the exact distance to a Menger sponge of half size 1 carved
// iterations times. Each pass folds space into a 3x3x3 repetition and
// subtracts the cross that removes the centre and face cubes.
func mengerDE(p mgl64.Vec3, iterations int) float64 {
	d := boxDE(p, mgl64.Vec3{1, 1, 1})
	s := 1.0

	for i := 0; i < iterations; i++ {
		var a mgl64.Vec3
		for j := range a {
			a[j] = glslMod(p[j]*s, 2) - 1
		}
		s *= 3

		var r mgl64.Vec3
		for j := range r {
			r[j] = math.Abs(1 - 3*math.Abs(a[j]))
		}
		da := math.Max(r[0], r[1])
		db := math.Max(r[1], r[2])
		dc := math.Max(r[2], r[0])
		c := (math.Min(da, math.Min(db, dc)) - 1) / s

		d = math.Max(d, c)
	}

	return d
}

func boxDE(p, b mgl64.Vec3) float64 {
	var d, outside mgl64.Vec3
	for i := range d {
		d[i] = math.Abs(p[i]) - b[i]
		outside[i] = math.Max(d[i], 0)
	}
	return math.Min(math.Max(d[0], math.Max(d[1], d[2])), 0) + outside.Len()
}

// glslMod is x - y*floor(x/y); unlike math.Mod the result takes the sign of y.
func glslMod(x, y float64) float64 {
	return x - y*math.Floor(x/y)
}
