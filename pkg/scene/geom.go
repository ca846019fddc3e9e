package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Axis vectors in the scene's left-handed, Y-up frame: +X right, +Y up,
// +Z forward. The table lies in the XZ plane.
var (
	AxisRight   = mgl64.Vec3{1, 0, 0}
	AxisUp      = mgl64.Vec3{0, 1, 0}
	AxisForward = mgl64.Vec3{0, 0, 1}
)

const parallelEpsilon = 1e-9

// AngleAxis returns a rotation of deg degrees about axis.
func AngleAxis(deg float64, axis mgl64.Vec3) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), axis.Normalize())
}

// Euler returns the rotation that applies z, then x, then y (degrees).
func Euler(x, y, z float64) mgl64.Quat {
	qx := AngleAxis(x, AxisRight)
	qy := AngleAxis(y, AxisUp)
	qz := AngleAxis(z, AxisForward)
	return qy.Mul(qx).Mul(qz)
}

// LookRotation returns the rotation whose forward axis points along dir and
// whose up axis is as close to up as possible. A zero dir yields identity.
// When dir is parallel to up, AxisRight stands in for the missing side axis.
func LookRotation(dir, up mgl64.Vec3) mgl64.Quat {
	if dir.Len() < parallelEpsilon {
		return mgl64.QuatIdent()
	}
	f := dir.Normalize()
	r := up.Cross(f)
	if r.Len() < parallelEpsilon {
		r = AxisRight
		// Keep r orthogonal to f when f is not exactly vertical.
		r = r.Sub(f.Mul(r.Dot(f)))
	}
	r = r.Normalize()
	u := f.Cross(r)

	m := mgl64.Mat4FromCols(r.Vec4(0), u.Vec4(0), f.Vec4(0), mgl64.Vec4{0, 0, 0, 1})
	return mgl64.Mat4ToQuat(m).Normalize()
}

// LookAt returns the rotation that points forward from `from` toward `to`.
func LookAt(from, to mgl64.Vec3) mgl64.Quat {
	return LookRotation(to.Sub(from), AxisUp)
}

// Polar returns the point at angle deg and distance d around the origin in
// the XZ plane, at height y.
func Polar(deg, d, y float64) mgl64.Vec3 {
	rad := mgl64.DegToRad(deg)
	return mgl64.Vec3{math.Cos(rad) * d, y, math.Sin(rad) * d}
}
