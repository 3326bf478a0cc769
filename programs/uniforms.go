package programs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pitch limits in degrees.
const (
	MinPitch = -90.0
	MaxPitch = 90.0
)

// Uniforms is the view state read by the evaluators every frame.
//
// For plane fractals Zoom is the width of the visible region and only
// Center.X and Center.Y are used. For spatial fractals the camera sits at
// BaseDistance/Zoom from Center, rotated by Yaw then Pitch (degrees).
type Uniforms struct {
	Zoom   float64
	Center mgl64.Vec3
	Yaw    float64
	Pitch  float64
}

// DefaultUniforms is the view a fractal starts with.
func DefaultUniforms(p Program) Uniforms {
	return Uniforms{Zoom: p.DefaultZoom}
}

// DefaultValues resets u to the starting view of p.
func (u *Uniforms) DefaultValues(p Program) {
	*u = DefaultUniforms(p)
}

// Clamp forces u into the ranges p allows. Non-finite fields are reset.
func (u *Uniforms) Clamp(p Program) {
	if math.IsNaN(u.Zoom) || u.Zoom <= 0 {
		u.Zoom = p.DefaultZoom
	}
	u.Zoom = mgl64.Clamp(u.Zoom, p.MinZoom, p.MaxZoom)

	for i := range u.Center {
		if !finite(u.Center[i]) {
			u.Center[i] = 0
		}
	}
	if !finite(u.Yaw) {
		u.Yaw = 0
	}
	if !finite(u.Pitch) {
		u.Pitch = 0
	}
	u.Pitch = mgl64.Clamp(u.Pitch, MinPitch, MaxPitch)
}

// PlanePoint maps the surface position (x, y), measured in pixels from the
// top-left corner, to the complex plane.
func (u Uniforms) PlanePoint(p Program, x, y float64, width, height int) complex128 {
	w, h := float64(width), float64(height)
	re := (x/w-0.5)*u.Zoom + u.Center[0]

	// Plane space has y pointing up; surface rows count down.
	fy := (h - y) / h
	im := (fy-0.5)*u.Zoom + u.Center[1]
	if p.FlipY {
		im = -(fy-0.5)*u.Zoom + u.Center[1]
	}
	return complex(re, im)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
