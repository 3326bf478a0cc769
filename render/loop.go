package render

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gogpu/gg"
)

// PresentFunc receives each completed frame. The pixmap is not reused by
// the Loop, so it may be kept.
type PresentFunc func(f Frame, pix *gg.Pixmap)

// Loop renders a Session on demand. It has no clock of its own: frames are
// rendered when Request or Supersede is called, by input handlers or by an
// external ticker.
type Loop struct {
	renderer *Renderer
	session  *Session
	present  PresentFunc
	wake     chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewLoop(r *Renderer, s *Session, present PresentFunc) *Loop {
	return &Loop{
		renderer: r,
		session:  s,
		present:  present,
		wake:     make(chan struct{}, 1),
	}
}

// Request schedules a frame. Requests made while a frame renders are merged
// into one frame started after it.
func (l *Loop) Request() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Supersede abandons the frame in flight, if any, and schedules a new one.
func (l *Loop) Supersede() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()
	l.Request()
}

// Run renders requested frames until ctx ends.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}

		f := l.session.Snapshot()
		if f.Width <= 0 || f.Height <= 0 {
			continue
		}

		frameCtx, cancel := context.WithCancel(ctx)
		l.mu.Lock()
		l.cancel = cancel
		l.mu.Unlock()

		start := time.Now()
		pix := gg.NewPixmap(f.Width, f.Height)
		err := l.renderer.Render(frameCtx, f, pix, nil)

		l.mu.Lock()
		l.cancel = nil
		l.mu.Unlock()
		cancel()

		switch {
		case err == nil:
			Logger().Debug("frame rendered",
				"generation", f.Generation,
				"fractal", f.Program.Name,
				"size", [2]int{f.Width, f.Height},
				"duration", time.Since(start),
			)
			l.present(f, pix)

		case ctx.Err() != nil:
			return ctx.Err()

		case errors.Is(err, context.Canceled):
			Logger().Debug("frame superseded", "generation", f.Generation, "after", time.Since(start))

		default:
			return err
		}
	}
}
