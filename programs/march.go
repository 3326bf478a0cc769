package programs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MarchSample is the outcome of marching one ray.
type MarchSample struct {
	Hit bool
	// Distance travelled along the ray.
	Distance float64
	Steps    int
	Point    mgl64.Vec3
	// Degenerate counts estimator values that were NaN or infinite.
	Degenerate int
}

// Distance evaluates the distance estimator of p at pos. Plane fractals have
// no field and report +Inf.
func (p Program) Distance(pos mgl64.Vec3, params Parameters) float64 {
	switch p.Kind {
	case Mandelbulb:
		return mandelbulbDE(pos, p.MaxIter)
	case MengerSponge:
		return mengerDE(pos, p.MaxIter)
	case QuaternionJulia:
		return quaternionJuliaDE(pos, params.QuaternionC, p.MaxIter)
	case Kleinian:
		return kleinianDE(pos, p.MaxIter)
	}
	return math.Inf(1)
}

// March advances from origin along dir by the estimated distance until the
// surface is closer than SurfaceEpsilon, the ray passes MaxDistance, or
// MaxSteps evaluations were made.
//
// Every step moves forward by at least MinStep, so the march always ends.
// A ray that stops short of MaxDistance is a hit unless it never converged
// and saw a degenerate estimate on the way.
func (p Program) March(origin, dir mgl64.Vec3, params Parameters) MarchSample {
	var s MarchSample
	converged := false

	for i := 0; i < MaxSteps; i++ {
		s.Steps = i
		d := p.Distance(origin.Add(dir.Mul(s.Distance)), params)

		if math.IsNaN(d) || math.IsInf(d, 0) {
			s.Degenerate++
			s.Distance += MinStep
		} else {
			s.Distance += math.Max(d*p.StepScale, MinStep)
			if d < SurfaceEpsilon {
				converged = true
				break
			}
		}

		if s.Distance > p.MaxDistance {
			break
		}
	}

	s.Hit = s.Distance < p.MaxDistance && (converged || s.Degenerate == 0)
	s.Point = origin.Add(dir.Mul(s.Distance))
	return s
}

// Normal estimates the surface normal at pos by central differences.
// If the gradient vanishes the normal faces back along dir.
func (p Program) Normal(pos, dir mgl64.Vec3, params Parameters) mgl64.Vec3 {
	const e = NormalEpsilon
	n := mgl64.Vec3{
		p.Distance(pos.Add(mgl64.Vec3{e, 0, 0}), params) - p.Distance(pos.Sub(mgl64.Vec3{e, 0, 0}), params),
		p.Distance(pos.Add(mgl64.Vec3{0, e, 0}), params) - p.Distance(pos.Sub(mgl64.Vec3{0, e, 0}), params),
		p.Distance(pos.Add(mgl64.Vec3{0, 0, e}), params) - p.Distance(pos.Sub(mgl64.Vec3{0, 0, e}), params),
	}

	l := n.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return dir.Mul(-1)
	}
	return n.Mul(1 / l)
}

// marchPixel evaluates a spatial fractal at the surface position (x, y).
func (p Program) marchPixel(u Uniforms, params Parameters, x, y float64, width, height int) mgl64.Vec3 {
	cam := u.Camera(p)
	dir := cam.Ray(x, y, width, height)

	s := p.March(cam.Origin, dir, params)
	if !s.Hit {
		if params.Inside == InsideBlackWhite {
			return mgl64.Vec3{1, 1, 1}
		}
		return mgl64.Vec3{}
	}

	normal := p.Normal(s.Point, dir, params)
	return clampColour(p.shade(s, normal, params))
}

// shade lights a hit. Each kernel keeps its own look.
func (p Program) shade(s MarchSample, normal mgl64.Vec3, params Parameters) mgl64.Vec3 {
	base := params.Colour
	if params.Inside == InsideBlackWhite {
		base = mgl64.Vec3{1, 1, 1}
	}

	switch p.Kind {
	case Mandelbulb:
		diff := math.Max(normal.Dot(mandelbulbLight), 0)
		t := float64(s.Steps) / float64(MaxSteps)
		return params.Colour.Mul(t * diff)

	case QuaternionJulia:
		lighting := lambert(normal, defaultLight, 0.3, 0.7)
		mix := math.Sin(s.Point[0]*2)*0.5 + 0.5
		c := base
		if params.Inside != InsideBlackWhite {
			c = lerp(base, base.Mul(0.5), mix)
		}
		return c.Mul(lighting)

	case Kleinian:
		lighting := lambert(normal, defaultLight, 0.2, 0.8)
		glow := 1 - smoothstep(0, p.MaxDistance, s.Distance)
		c := lerp(base, base.Mul(1.5), glow*0.3)
		return c.Mul(lighting)

	default:
		return base.Mul(lambert(normal, defaultLight, 0.3, 0.7))
	}
}

var defaultLight = mgl64.Vec3{1, 1, 1}.Normalize()

func lambert(normal, light mgl64.Vec3, ambient, diffuse float64) float64 {
	return ambient + math.Max(normal.Dot(light), 0)*diffuse
}

func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func smoothstep(edge0, edge1, x float64) float64 {
	t := mgl64.Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}
