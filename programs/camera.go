package programs

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Camera is an orbit camera looking at the view centre.
type Camera struct {
	Origin mgl64.Vec3
	// Basis holds the camera right, up and back axes as columns.
	Basis mgl64.Mat3
}

// Camera builds the camera for p from the view. The rotation basis is used
// directly rather than a look-at, so straight up and down views stay defined.
// Positive yaw and pitch turn the camera clockwise about y and x, so a
// negative yaw moves it towards +x.
func (u Uniforms) Camera(p Program) Camera {
	rot := mgl64.Rotate3DY(mgl64.DegToRad(-u.Yaw)).Mul3(mgl64.Rotate3DX(mgl64.DegToRad(-u.Pitch)))

	zoom := u.Zoom
	if zoom <= 0 {
		zoom = p.DefaultZoom
	}

	return Camera{
		Origin: u.Center.Add(rot.Mul3x1(mgl64.Vec3{0, 0, p.BaseDistance / zoom})),
		Basis:  rot,
	}
}

// Ray returns the normalised direction through the surface position (x, y),
// measured in pixels from the top-left corner. The vertical field of view
// spans one unit at unit distance; the horizontal one follows the aspect.
func (c Camera) Ray(x, y float64, width, height int) mgl64.Vec3 {
	w, h := float64(width), float64(height)
	uv := mgl64.Vec3{
		(x - 0.5*w) / h,
		((h - y) - 0.5*h) / h,
		-1,
	}
	return c.Basis.Mul3x1(uv).Normalize()
}
