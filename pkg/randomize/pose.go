package randomize

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/poolsynth/pkg/config"
	"github.com/matzehuels/poolsynth/pkg/scene"
)

// Pose is a position and orientation.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// CameraSample is a sampled camera pose plus the draws that produced it.
type CameraSample struct {
	Pose
	Height   float64
	Angle    float64
	Distance float64
	Pitch    float64
}

// CameraPose samples a viewpoint around target. The camera stands at a
// random height, at a random angle and distance from the table center, looks
// at target and then pitches by a random offset.
func CameraPose(rng *rand.Rand, cc config.CameraConfig, target mgl64.Vec3) CameraSample {
	s := CameraSample{
		Height:   Uniform(rng, cc.Height),
		Angle:    Uniform(rng, cc.Angle),
		Distance: Uniform(rng, cc.Distance),
		Pitch:    Uniform(rng, cc.Pitch),
	}
	s.Position = scene.Polar(s.Angle, s.Distance, s.Height)
	s.Rotation = scene.LookRotation(target.Sub(s.Position), scene.AxisUp).Mul(scene.Euler(s.Pitch, 0, 0))
	return s
}

// CueSample is a sampled cue stick pose.
type CueSample struct {
	Pose
	TipOffset float64
	Yaw       float64
	Tilt      float64
}

// CuePose places the stick at the cue ball, slides it back along its axis by
// a random offset, and orients it with a random yaw about the vertical
// composed with a random tilt.
func CuePose(rng *rand.Rand, cc config.CueConfig, cueBall mgl64.Vec3) CueSample {
	s := CueSample{
		TipOffset: Uniform(rng, cc.TipOffset),
		Yaw:       Uniform(rng, cc.Yaw),
		Tilt:      Uniform(rng, cc.Tilt),
	}
	s.Position = cueBall
	s.Rotation = scene.AngleAxis(s.Yaw, scene.AxisUp).Mul(scene.AngleAxis(s.Tilt, scene.AxisForward))
	return s
}

// LightAim picks a random point on the floor within radius of the origin
// and returns the rotation that points a light at from toward it.
func LightAim(rng *rand.Rand, from mgl64.Vec3, radius float64) (mgl64.Quat, mgl64.Vec3) {
	angle := rng.Float64() * 360
	dist := rng.Float64() * radius
	target := scene.Polar(angle, dist, 0)
	return scene.LookAt(from, target), target
}
