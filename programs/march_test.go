package programs

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

var spatialKinds = []Kind{Mandelbulb, MengerSponge, QuaternionJulia, Kleinian}

func TestMarchIdempotent(t *testing.T) {
	params := DefaultParameters()
	for _, k := range spatialKinds {
		p, _ := Get(k)
		u := DefaultUniforms(p)
		u.Yaw, u.Pitch = 30, -20
		cam := u.Camera(p)

		for _, px := range [][2]float64{{10.5, 10.5}, {32.5, 20.5}, {60.5, 5.5}} {
			dir := cam.Ray(px[0], px[1], 64, 40)
			a := p.March(cam.Origin, dir, params)
			b := p.March(cam.Origin, dir, params)
			if a.Hit != b.Hit || a.Steps != b.Steps {
				t.Errorf("%v %v: %+v then %+v", k, px, a, b)
			}
			if math.Abs(a.Distance-b.Distance) > 1e-6*math.Max(1, math.Abs(a.Distance)) {
				t.Errorf("%v %v: distance %v then %v", k, px, a.Distance, b.Distance)
			}
		}
	}
}

func TestMarchMissesAwayFromField(t *testing.T) {
	params := DefaultParameters()
	for _, k := range spatialKinds {
		p, _ := Get(k)

		// Outside every kernel's bounding region, looking further away.
		s := p.March(mgl64.Vec3{0, 0, 25}, mgl64.Vec3{0, 0, 1}, params)
		if s.Hit {
			t.Errorf("%v: ray away from the field hit at %v", k, s.Distance)
		}
		if s.Distance <= p.MaxDistance {
			t.Errorf("%v: stopped at %v before MAX_DIST %v", k, s.Distance, p.MaxDistance)
		}
		if s.Steps >= MaxSteps-1 {
			t.Errorf("%v: used %d steps", k, s.Steps)
		}
	}
}

func TestMarchHitsMengerFace(t *testing.T) {
	// x = y = 0.95 is solid at every carving level, so the ray meets the z = 1 face.
	origin := mgl64.Vec3{0.95, 0.95, 5}
	s := mengerProgram.March(origin, mgl64.Vec3{0, 0, -1}, DefaultParameters())
	if !s.Hit {
		t.Fatalf("missed: %+v", s)
	}
	if math.Abs(s.Distance-4) > 0.01 {
		t.Errorf("hit at distance %v, want 4", s.Distance)
	}
}

func TestMarchHitsMandelbulbFromDefaultView(t *testing.T) {
	p := mandelbulbProgram
	cam := DefaultUniforms(p).Camera(p)
	dir := cam.Ray(50, 50, 100, 100)

	s := p.March(cam.Origin, dir, DefaultParameters())
	if !s.Hit {
		t.Fatalf("centre ray missed: %+v", s)
	}
	if s.Distance < 1 || s.Distance > 3 {
		t.Errorf("centre ray hit at %v", s.Distance)
	}
}

func TestMarchDegenerateEstimatorTerminates(t *testing.T) {
	// With no iterations r stays 0 and the estimate is NaN everywhere.
	p := mandelbulbProgram
	p.MaxIter = 0

	s := p.March(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, DefaultParameters())
	if s.Hit {
		t.Errorf("degenerate march reported a hit: %+v", s)
	}
	if s.Degenerate != MaxSteps {
		t.Errorf("counted %d degenerate steps, want %d", s.Degenerate, MaxSteps)
	}
	if s.Distance <= 0 {
		t.Errorf("march did not advance: %v", s.Distance)
	}
}

func TestDistanceEstimatorsOutsideBounds(t *testing.T) {
	params := DefaultParameters()
	far := mgl64.Vec3{0, 0, 8}
	for _, k := range spatialKinds {
		p, _ := Get(k)
		d := p.Distance(far, params)
		if math.IsNaN(d) || d <= 0 {
			t.Errorf("%v: distance at %v is %v", k, far, d)
		}
	}
}

func TestMengerDistanceIsBoxDistanceOnSolidFace(t *testing.T) {
	d := mengerDE(mgl64.Vec3{0.95, 0.95, 3}, 4)
	if math.Abs(d-2) > 1e-9 {
		t.Errorf("got %v, want 2", d)
	}
}

func TestFolds(t *testing.T) {
	if got := boxFold(mgl64.Vec3{1.5, -0.5, -3}, 1); !got.ApproxEqual(mgl64.Vec3{0.5, -0.5, 1}) {
		t.Errorf("boxFold = %v", got)
	}
	if got := sphereFold(mgl64.Vec3{0.1, 0, 0}, 0.5, 1); !got.ApproxEqual(mgl64.Vec3{0.2, 0, 0}) {
		t.Errorf("sphereFold inner = %v", got)
	}
	if got := sphereFold(mgl64.Vec3{0.8, 0, 0}, 0.5, 1); !got.ApproxEqual(mgl64.Vec3{1.25, 0, 0}) {
		t.Errorf("sphereFold shell = %v", got)
	}
	if got := sphereFold(mgl64.Vec3{2, 0, 0}, 0.5, 1); !got.ApproxEqual(mgl64.Vec3{2, 0, 0}) {
		t.Errorf("sphereFold outer = %v", got)
	}
}

func TestGLSLMod(t *testing.T) {
	tests := []struct{ x, y, want float64 }{
		{3, 2, 1},
		{-0.5, 2, 1.5},
		{-3, 2, 1},
		{4, 2, 0},
	}
	for _, tt := range tests {
		if got := glslMod(tt.x, tt.y); got != tt.want {
			t.Errorf("glslMod(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestCamera(t *testing.T) {
	p := mengerProgram

	cam := DefaultUniforms(p).Camera(p)
	if !cam.Origin.ApproxEqual(mgl64.Vec3{0, 0, 3}) {
		t.Errorf("origin %v", cam.Origin)
	}
	if dir := cam.Ray(50, 50, 100, 100); !dir.ApproxEqual(mgl64.Vec3{0, 0, -1}) {
		t.Errorf("centre ray %v", dir)
	}

	u := DefaultUniforms(p)
	u.Zoom = 2
	if cam := u.Camera(p); !cam.Origin.ApproxEqual(mgl64.Vec3{0, 0, 1.5}) {
		t.Errorf("zoomed origin %v", cam.Origin)
	}

	for _, pitch := range []float64{MinPitch, MaxPitch} {
		u := DefaultUniforms(p)
		u.Pitch = pitch
		cam := u.Camera(p)

		dir := cam.Ray(10, 10, 100, 100)
		for i := range dir {
			if math.IsNaN(dir[i]) {
				t.Fatalf("pitch %v: ray %v", pitch, dir)
			}
		}
		// Looking along the vertical axis at the centre.
		centre := cam.Ray(50, 50, 100, 100)
		if !centre.ApproxEqualThreshold(cam.Origin.Mul(-1).Normalize(), 1e-9) {
			t.Errorf("pitch %v: centre ray %v from %v", pitch, centre, cam.Origin)
		}
	}
}

func TestCameraOrbitDirection(t *testing.T) {
	p := mengerProgram
	s, c := math.Sincos(mgl64.DegToRad(10))

	tests := []struct {
		name string
		u    Uniforms
		want mgl64.Vec3
	}{
		{"yaw -10", Uniforms{Zoom: 1, Yaw: -10}, mgl64.Vec3{3 * s, 0, 3 * c}},
		{"yaw 10", Uniforms{Zoom: 1, Yaw: 10}, mgl64.Vec3{-3 * s, 0, 3 * c}},
		{"pitch 10", Uniforms{Zoom: 1, Pitch: 10}, mgl64.Vec3{0, 3 * s, 3 * c}},
		{"pitch -10", Uniforms{Zoom: 1, Pitch: -10}, mgl64.Vec3{0, -3 * s, 3 * c}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := tt.u.Camera(p)
			if !cam.Origin.ApproxEqualThreshold(tt.want, 1e-12) {
				t.Errorf("origin %v, want %v", cam.Origin, tt.want)
			}
			centre := cam.Ray(50, 50, 100, 100)
			if !centre.ApproxEqualThreshold(tt.want.Mul(-1).Normalize(), 1e-12) {
				t.Errorf("centre ray %v does not face the centre", centre)
			}
		})
	}
}

func TestMarchPixelMissColour(t *testing.T) {
	p := mengerProgram
	u := DefaultUniforms(p)
	u.Zoom = p.MinZoom // camera 60 units out, corner rays leave the field

	params := DefaultParameters()
	if got := p.Pixel(u, params, 0.5, 0.5, 100, 100); got != (mgl64.Vec3{}) {
		t.Errorf("coloured miss = %v", got)
	}
	params.Inside = InsideBlackWhite
	if got := p.Pixel(u, params, 0.5, 0.5, 100, 100); got != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("black/white miss = %v", got)
	}
}

func BenchmarkMandelbulbPixel(b *testing.B) {
	u := DefaultUniforms(mandelbulbProgram)
	params := DefaultParameters()
	for i := 0; i < b.N; i++ {
		mandelbulbProgram.Pixel(u, params, float64(i%64)+0.5, 32.5, 64, 64)
	}
}
