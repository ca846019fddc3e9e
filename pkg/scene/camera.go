package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a perspective camera. FOV is the vertical field of view in
// degrees; Aspect is width over height.
type Camera struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	FOV      float64
	Aspect   float64
	Near     float64
	Far      float64
}

// NewCamera returns a camera at the origin looking along +Z.
func NewCamera(fov, aspect, near, far float64) Camera {
	return Camera{
		Rotation: mgl64.QuatIdent(),
		FOV:      fov,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
	}
}

// Forward returns the camera's viewing direction in world space.
func (c Camera) Forward() mgl64.Vec3 { return c.Rotation.Rotate(AxisForward) }

// Right returns the camera's right axis in world space.
func (c Camera) Right() mgl64.Vec3 { return c.Rotation.Rotate(AxisRight) }

// Up returns the camera's up axis in world space.
func (c Camera) Up() mgl64.Vec3 { return c.Rotation.Rotate(AxisUp) }

// ViewMatrix maps world space to an OpenGL-style eye space (looking down -Z).
func (c Camera) ViewMatrix() mgl64.Mat4 {
	flip := mgl64.Scale3D(1, 1, -1)
	rot := c.Rotation.Inverse().Mat4()
	tr := mgl64.Translate3D(-c.Position.X(), -c.Position.Y(), -c.Position.Z())
	return flip.Mul4(rot).Mul4(tr)
}

// ProjectionMatrix returns the perspective projection for the camera's intrinsics.
func (c Camera) ProjectionMatrix() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// WorldToViewport projects p into viewport space. X and Y are normalized with
// (0,0) at the bottom-left and (1,1) at the top-right; Z is the depth of p in
// world units along the camera's forward axis. Points on or behind the camera
// plane have Z <= 0 and meaningless X and Y.
func (c Camera) WorldToViewport(p mgl64.Vec3) mgl64.Vec3 {
	clip := c.ProjectionMatrix().Mul4(c.ViewMatrix()).Mul4x1(p.Vec4(1))
	w := clip.W()
	if w == 0 {
		return mgl64.Vec3{}
	}
	ndc := clip.Vec3().Mul(1 / w)
	return mgl64.Vec3{(ndc.X() + 1) / 2, (ndc.Y() + 1) / 2, w}
}
