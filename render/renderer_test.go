package render

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gg"
	"github.com/stewi1014/fractalexplorer/programs"
)

func testFrame(t *testing.T, k programs.Kind, w, h int) Frame {
	t.Helper()
	p, err := programs.Get(k)
	if err != nil {
		t.Fatal(err)
	}
	return Frame{
		Program:    p,
		Uniforms:   programs.DefaultUniforms(p),
		Parameters: programs.DefaultParameters(),
		Width:      w,
		Height:     h,
	}
}

func TestRenderMatchesPixel(t *testing.T) {
	for _, k := range []programs.Kind{programs.Mandelbrot, programs.BurningShip, programs.MengerSponge} {
		t.Run(k.String(), func(t *testing.T) {
			f := testFrame(t, k, 24, 10)

			want := gg.NewPixmap(f.Width, f.Height)
			for y := 0; y < f.Height; y++ {
				for x := 0; x < f.Width; x++ {
					c := f.Program.Pixel(f.Uniforms, f.Parameters, float64(x)+0.5, float64(y)+0.5, f.Width, f.Height)
					want.SetPixel(x, y, gg.RGB(c[0], c[1], c[2]))
				}
			}

			for _, workers := range []int{1, 3, 16} {
				r, err := NewRenderer(WithWorkers(workers), WithRowsPerTask(3))
				if err != nil {
					t.Fatal(err)
				}
				got := gg.NewPixmap(f.Width, f.Height)
				if err := r.Render(context.Background(), f, got, nil); err != nil {
					t.Fatal(err)
				}
				if !bytes.Equal(got.Data(), want.Data()) {
					t.Errorf("%d workers: rendered pixels differ from Pixel", workers)
				}
			}
		})
	}
}

func TestNewRendererNoWorkers(t *testing.T) {
	for _, n := range []int{0, -2} {
		if _, err := NewRenderer(WithWorkers(n)); !errors.Is(err, ErrNoWorkers) {
			t.Errorf("%d workers: error %v, want ErrNoWorkers", n, err)
		}
	}
}

func TestRenderRejectsBadSurface(t *testing.T) {
	r, err := NewRenderer(WithWorkers(2))
	if err != nil {
		t.Fatal(err)
	}

	f := testFrame(t, programs.Julia, 0, 10)
	if err := r.Render(context.Background(), f, gg.NewPixmap(0, 10), nil); !errors.Is(err, ErrEmptySurface) {
		t.Errorf("empty frame: error %v", err)
	}

	f = testFrame(t, programs.Julia, 10, 10)
	if err := r.Render(context.Background(), f, gg.NewPixmap(10, 11), nil); err == nil {
		t.Error("size mismatch not reported")
	}
}

func TestRenderCancelled(t *testing.T) {
	r, err := NewRenderer(WithWorkers(2))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := testFrame(t, programs.Mandelbulb, 32, 32)
	if err := r.Render(ctx, f, gg.NewPixmap(32, 32), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("error %v, want context.Canceled", err)
	}
}

func TestRenderProgress(t *testing.T) {
	r, err := NewRenderer(WithWorkers(4), WithRowsPerTask(1))
	if err != nil {
		t.Fatal(err)
	}

	var progress Progress
	if progress.Fraction() != 0 {
		t.Errorf("fresh progress %v", progress.Fraction())
	}

	f := testFrame(t, programs.Julia, 8, 13)
	if err := r.Render(context.Background(), f, gg.NewPixmap(8, 13), &progress); err != nil {
		t.Fatal(err)
	}
	if progress.Fraction() != 1 {
		t.Errorf("progress %v after render, want 1", progress.Fraction())
	}

	var nilProgress *Progress
	if nilProgress.Fraction() != 0 {
		t.Error("nil progress is not zero")
	}
}

func TestAntiAlias9x(t *testing.T) {
	ramp := func(u programs.Uniforms, params programs.Parameters, x, y float64, width, height int) mgl64.Vec3 {
		return mgl64.Vec3{x, y, 1}
	}

	got := AntiAlias9x(ramp, 0.25)(programs.Uniforms{}, programs.Parameters{}, 3, 5, 10, 10)
	if !got.ApproxEqual(mgl64.Vec3{3, 5, 1}) {
		t.Errorf("linear ramp averaged to %v", got)
	}

	step := func(u programs.Uniforms, params programs.Parameters, x, y float64, width, height int) mgl64.Vec3 {
		if x < 0 {
			return mgl64.Vec3{}
		}
		return mgl64.Vec3{1, 1, 1}
	}
	got = AntiAlias9x(step, 0.5)(programs.Uniforms{}, programs.Parameters{}, 0, 0, 10, 10)
	if math.Abs(got[0]-6.0/9) > 1e-12 {
		t.Errorf("edge averaged to %v, want 2/3", got[0])
	}

	same := AntiAlias9x(ramp, 0)(programs.Uniforms{}, programs.Parameters{}, 1.5, 2.5, 10, 10)
	if same != (mgl64.Vec3{1.5, 2.5, 1}) {
		t.Errorf("zero offset changed the result: %v", same)
	}
}

func BenchmarkRenderMandelbrot(b *testing.B) {
	p, _ := programs.Get(programs.Mandelbrot)
	f := Frame{
		Program:    p,
		Uniforms:   programs.DefaultUniforms(p),
		Parameters: programs.DefaultParameters(),
		Width:      320,
		Height:     200,
	}
	r, err := NewRenderer()
	if err != nil {
		b.Fatal(err)
	}
	pix := gg.NewPixmap(f.Width, f.Height)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := r.Render(context.Background(), f, pix, nil); err != nil {
			b.Fatal(err)
		}
	}
}
