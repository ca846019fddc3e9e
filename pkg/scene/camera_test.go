package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func assertVec(t *testing.T, want, got mgl64.Vec3, delta float64) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], delta, "component %d of %v", i, got)
	}
}

func TestIdentityAxes(t *testing.T) {
	c := NewCamera(60, 1, 0.01, 100)
	assertVec(t, AxisForward, c.Forward(), eps)
	assertVec(t, AxisRight, c.Right(), eps)
	assertVec(t, AxisUp, c.Up(), eps)
}

func TestLookRotation(t *testing.T) {
	tests := []struct {
		name string
		dir  mgl64.Vec3
	}{
		{"along x", mgl64.Vec3{1, 0, 0}},
		{"down and back", mgl64.Vec3{0, -1, -1}},
		{"oblique", mgl64.Vec3{0.3, -0.8, 0.5}},
		{"straight down", mgl64.Vec3{0, -1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := LookRotation(tt.dir, AxisUp)
			f := q.Rotate(AxisForward)
			assertVec(t, tt.dir.Normalize(), f, 1e-9)

			r := q.Rotate(AxisRight)
			assert.InDelta(t, 0, r.Y(), 1e-9, "right axis should stay horizontal")
			assert.InDelta(t, 0, r.Dot(f), 1e-9)
		})
	}

	assert.Equal(t, mgl64.QuatIdent(), LookRotation(mgl64.Vec3{}, AxisUp))
}

func TestEulerPitchLooksDown(t *testing.T) {
	f := Euler(30, 0, 0).Rotate(AxisForward)
	assert.Less(t, f.Y(), 0.0, "positive pitch should look down")
	assert.InDelta(t, -0.5, f.Y(), 1e-9)

	// Yaw only turns within the horizontal plane.
	f = Euler(0, 90, 0).Rotate(AxisForward)
	assertVec(t, AxisRight, f, 1e-9)
}

func TestWorldToViewportCenter(t *testing.T) {
	target := mgl64.Vec3{0, 0.805, 0}
	c := NewCamera(61.33, 1, 0.01, 1000)
	c.Position = mgl64.Vec3{0.6, 1.4, -0.4}
	c.Rotation = LookAt(c.Position, target)

	vp := c.WorldToViewport(target)
	assert.InDelta(t, 0.5, vp.X(), 1e-9)
	assert.InDelta(t, 0.5, vp.Y(), 1e-9)
	assert.InDelta(t, target.Sub(c.Position).Len(), vp.Z(), 1e-9)
}

func TestWorldToViewportOrientation(t *testing.T) {
	c := NewCamera(90, 1, 0.01, 1000)

	right := c.WorldToViewport(mgl64.Vec3{0.5, 0, 2})
	assert.Greater(t, right.X(), 0.5, "points to the right map to larger x")

	up := c.WorldToViewport(mgl64.Vec3{0, 0.5, 2})
	assert.Greater(t, up.Y(), 0.5, "points above map to larger viewport y")

	// At 90 degrees FOV the frustum edge sits at x == z.
	edge := c.WorldToViewport(mgl64.Vec3{2, 0, 2})
	assert.InDelta(t, 1.0, edge.X(), 1e-9)

	behind := c.WorldToViewport(mgl64.Vec3{0, 0, -2})
	assert.Less(t, behind.Z(), 0.0)
}

func TestCueTip(t *testing.T) {
	cue := Cue{Position: mgl64.Vec3{1, 0, 0}, Rotation: mgl64.QuatIdent(), TipOffset: -1}
	assertVec(t, mgl64.Vec3{0, 0, 0}, cue.Tip(), eps)

	cue.Rotation = AngleAxis(90, AxisUp)
	assertVec(t, mgl64.Vec3{1, 0, 1}, cue.Tip(), 1e-12)
}

func TestPolar(t *testing.T) {
	assertVec(t, mgl64.Vec3{2, 1, 0}, Polar(0, 2, 1), eps)
	assertVec(t, mgl64.Vec3{0, 1, 2}, Polar(90, 2, 1), 1e-12)
}
