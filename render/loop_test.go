package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogpu/gg"
	"github.com/stewi1014/fractalexplorer/programs"
)

func TestLoopPresentsRequestedFrames(t *testing.T) {
	r, err := NewRenderer(WithWorkers(2))
	if err != nil {
		t.Fatal(err)
	}
	s := newSession(t, programs.Mandelbrot)

	frames := make(chan Frame, 8)
	loop := NewLoop(r, s, func(f Frame, pix *gg.Pixmap) {
		if pix.Width() != f.Width || pix.Height() != f.Height {
			t.Errorf("pixmap %dx%d for frame %dx%d", pix.Width(), pix.Height(), f.Width, f.Height)
		}
		frames <- f
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	// Nothing is presented while the surface is empty.
	loop.Request()

	s.Resize(16, 8)
	loop.Request()
	select {
	case f := <-frames:
		if f.Width != 16 || f.Height != 8 {
			t.Errorf("frame %dx%d", f.Width, f.Height)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("no frame presented")
	}

	s.Wheel(1)
	want := s.Generation()
	loop.Supersede()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case f := <-frames:
			if f.Generation < want {
				continue
			}
		case <-deadline:
			t.Fatal("no frame for the latest generation")
		}
		break
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not stop")
	}
}
