// Package controller turns pointer and wheel input into view changes.
package controller

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/fractalexplorer/programs"
)

// Mode is the drag state of a Controller.
type Mode int

const (
	Idle Mode = iota
	Panning
	Rotating
	ZTranslating
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Panning:
		return "panning"
	case Rotating:
		return "rotating"
	case ZTranslating:
		return "z-translating"
	}
	return "unknown"
}

// Modifiers are the keyboard modifiers held during a pointer event.
type Modifiers uint8

const (
	// ModShift switches a 3D drag from rotation to translation along z.
	ModShift Modifiers = 1 << iota
)

type Config struct {
	// ZoomFactor is applied once per wheel event.
	ZoomFactor float64
	// RotationSensitivity is degrees per pixel of drag.
	RotationSensitivity float64
}

func DefaultConfig() Config {
	return Config{
		ZoomFactor:          1.1,
		RotationSensitivity: 0.5,
	}
}

// Controller is not safe for concurrent use; callers serialise input events.
type Controller struct {
	cfg  Config
	mode Mode
	last mgl64.Vec2
}

func New(cfg Config) *Controller {
	def := DefaultConfig()
	if !(cfg.ZoomFactor > 1) || math.IsInf(cfg.ZoomFactor, 0) {
		cfg.ZoomFactor = def.ZoomFactor
	}
	if !(cfg.RotationSensitivity > 0) || math.IsInf(cfg.RotationSensitivity, 0) {
		cfg.RotationSensitivity = def.RotationSensitivity
	}
	return &Controller{cfg: cfg}
}

func (c *Controller) Mode() Mode {
	return c.mode
}

// Reset drops any drag in progress.
func (c *Controller) Reset() {
	c.mode = Idle
}

// Wheel zooms the view by one step. deltaY > 0 is a scroll down.
// It reports whether u changed.
func (c *Controller) Wheel(u *programs.Uniforms, p programs.Program, deltaY float64) bool {
	if deltaY == 0 || math.IsNaN(deltaY) {
		return false
	}
	down := deltaY > 0

	// Plane fractals: Zoom is the visible width, so zooming out grows it.
	// Spatial fractals: Zoom divides the camera distance, so zooming out shrinks it.
	grow := down
	if p.Dimensions() == 3 {
		grow = !down
	}
	if p.WheelDownZoomsIn {
		grow = !grow
	}

	before := u.Zoom
	if grow {
		u.Zoom *= c.cfg.ZoomFactor
	} else {
		u.Zoom /= c.cfg.ZoomFactor
	}
	u.Clamp(p)
	return u.Zoom != before
}

// PointerDown starts a drag at pos.
func (c *Controller) PointerDown(p programs.Program, pos mgl64.Vec2, mods Modifiers) {
	c.last = pos
	switch {
	case p.Dimensions() == 2:
		c.mode = Panning
	case mods&ModShift != 0:
		c.mode = ZTranslating
	default:
		c.mode = Rotating
	}
}

// PointerMove applies the drag from the previous position to pos. viewport
// is the size of the input surface in the same units as pos. It reports
// whether u changed; every change warrants one re-render.
func (c *Controller) PointerMove(u *programs.Uniforms, p programs.Program, pos mgl64.Vec2, mods Modifiers, viewport mgl64.Vec2) bool {
	if c.mode == Idle {
		return false
	}
	if viewport[0] <= 0 || viewport[1] <= 0 {
		c.last = pos
		return false
	}

	delta := pos.Sub(c.last)
	c.last = pos
	if delta[0] == 0 && delta[1] == 0 {
		return false
	}

	if p.Dimensions() == 3 {
		// The modifier is read per move, so Shift can be pressed mid drag.
		if mods&ModShift != 0 {
			c.mode = ZTranslating
		} else {
			c.mode = Rotating
		}
	}

	switch c.mode {
	case Panning:
		// Dragging down raises the centre for every plane fractal, flipped
		// axis or not.
		u.Center[0] -= delta[0] / viewport[0] * u.Zoom
		u.Center[1] += delta[1] / viewport[1] * u.Zoom

	case Rotating:
		u.Yaw -= delta[0] * c.cfg.RotationSensitivity
		u.Pitch -= delta[1] * c.cfg.RotationSensitivity

	case ZTranslating:
		u.Center[2] += delta[1] / viewport[1] * u.Zoom
	}

	u.Clamp(p)
	return true
}

// PointerUp ends a drag.
func (c *Controller) PointerUp() {
	c.mode = Idle
}

// PointerLeave ends a drag exactly like PointerUp, so a drag released outside
// the surface does not stay active.
func (c *Controller) PointerLeave() {
	c.PointerUp()
}
