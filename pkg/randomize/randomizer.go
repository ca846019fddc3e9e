// Package randomize implements the per-frame domain randomization of a pool
// scene: table appearance, skybox, ball placement, cue and camera poses,
// lighting, post-processing and an optional motion impulse.
//
// Every sampler takes an explicit *rand.Rand. Use [FrameRand] to get the
// generator of a given frame so each frame can be regenerated on its own.
package randomize

import (
	"io"
	"math"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/poolsynth/pkg/config"
	"github.com/matzehuels/poolsynth/pkg/scene"
)

// Step names, in the order Randomize runs them.
const (
	StepTable     = "table"
	StepSkybox    = "skybox"
	StepPlacement = "placement"
	StepCue       = "cue"
	StepCamera    = "camera"
	StepLighting  = "lighting"
	StepPost      = "post"
	StepMotion    = "motion"
)

// Steps lists every step in execution order.
var Steps = []string{StepTable, StepSkybox, StepPlacement, StepCue, StepCamera, StepLighting, StepPost, StepMotion}

// AmbientSkybox is the ambient mode set on every frame.
const AmbientSkybox = "skybox"

// Report describes what one Randomize call did.
type Report struct {
	Placement PlaceResult
	Camera    CameraSample
	Cue       CueSample
	Motion    bool
	// Skipped lists steps that had nothing to act on.
	Skipped []string
}

// Randomizer applies all randomization steps to a scene.
type Randomizer struct {
	cfg    config.Config
	logger *log.Logger
	warned map[string]bool
}

// New returns a Randomizer for cfg. A nil logger discards output.
func New(cfg config.Config, logger *log.Logger) *Randomizer {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Randomizer{cfg: cfg, logger: logger, warned: make(map[string]bool)}
}

// Prepare makes sure the scene carries every standard post effect.
func (r *Randomizer) Prepare(s *scene.State) {
	if s.Post == nil {
		s.Post = scene.NewPostStack()
	}
	s.Post.EnsureAll(scene.StandardEffects...)
}

// Randomize runs every step on s in a fixed order. Placement runs before
// the cue (which follows the cue ball) and the camera runs before anything
// downstream projects through it. A step with nothing to act on is skipped
// with a one-time warning; only placement can fail.
func (r *Randomizer) Randomize(rng *rand.Rand, s *scene.State) (Report, error) {
	var rep Report

	if !r.Table(rng, s) {
		r.skip(&rep, StepTable, "no table textures configured")
	}
	if !r.Skybox(rng, s) {
		r.skip(&rep, StepSkybox, "no skyboxes configured")
	}

	if len(s.Balls) == 0 {
		r.skip(&rep, StepPlacement, "scene has no balls")
		r.skip(&rep, StepCue, "scene has no cue ball")
	} else {
		res, err := r.Placement(rng, s)
		rep.Placement = res
		if err != nil {
			return rep, err
		}
		if len(res.Stale) > 0 {
			r.logger.Debug("placement kept stale positions", "balls", res.Stale)
		}
		rep.Cue = r.Cue(rng, s)
	}

	rep.Camera = r.Camera(rng, s)

	if !r.Lighting(rng, s) {
		r.skip(&rep, StepLighting, "scene has no lights")
	}
	r.Post(rng, s)
	rep.Motion = r.Motion(rng, s)
	return rep, nil
}

func (r *Randomizer) skip(rep *Report, step, reason string) {
	rep.Skipped = append(rep.Skipped, step)
	if !r.warned[step] {
		r.warned[step] = true
		r.logger.Warn("skipping randomization step", "step", step, "reason", reason)
	}
}

// Table picks a felt texture and resamples roughness and normal intensity.
// It does nothing and returns false when no textures are configured.
func (r *Randomizer) Table(rng *rand.Rand, s *scene.State) bool {
	tex, ok := pick(rng, r.cfg.Table.Textures)
	if !ok {
		return false
	}
	s.Table.Texture = tex
	s.Table.Roughness = Uniform(rng, r.cfg.Table.Roughness)
	s.Table.Smoothness = 1 - s.Table.Roughness
	s.Table.NormalIntensity = Uniform(rng, r.cfg.Table.NormalIntensity)
	return true
}

// Skybox picks a skybox. It returns false when none are configured.
func (r *Randomizer) Skybox(rng *rand.Rand, s *scene.State) bool {
	sky, ok := pick(rng, r.cfg.Scene.Skyboxes)
	if !ok {
		return false
	}
	s.Environment.Skybox = sky
	return true
}

// Placement scatters the balls over the table surface.
func (r *Randomizer) Placement(rng *rand.Rand, s *scene.State) (PlaceResult, error) {
	return Place(rng, s.Balls, PlaceOptions{
		HalfX:       s.Table.Length / 2,
		HalfZ:       s.Table.Width / 2,
		Height:      s.Table.Height,
		Radius:      r.cfg.Ball.Radius,
		MaxAttempts: r.cfg.Placement.MaxAttempts,
		Policy:      r.cfg.Placement.Policy,
	})
}

// Cue poses the cue stick behind the cue ball.
func (r *Randomizer) Cue(rng *rand.Rand, s *scene.State) CueSample {
	cs := CuePose(rng, r.cfg.Cue, s.CueBall().Position)
	s.Cue = scene.Cue{Position: cs.Position, Rotation: cs.Rotation, TipOffset: cs.TipOffset}
	return cs
}

// Camera moves the camera and pins its intrinsics to the configured values.
func (r *Randomizer) Camera(rng *rand.Rand, s *scene.State) CameraSample {
	cs := CameraPose(rng, r.cfg.Camera, s.Table.Center())
	s.Camera.Position = cs.Position
	s.Camera.Rotation = cs.Rotation
	s.Camera.FOV = r.cfg.Camera.FOV
	s.Camera.Aspect = r.cfg.Camera.Aspect
	return cs
}

// Lighting resets the ambient and shadow pipeline settings, then resamples
// every light. It returns false when the scene has no lights.
func (r *Randomizer) Lighting(rng *rand.Rand, s *scene.State) bool {
	lc := r.cfg.Lighting
	s.Environment.AmbientMode = AmbientSkybox
	s.Environment.AmbientIntensity = lc.AmbientIntensity
	s.Environment.ShadowDistance = lc.ShadowDistance
	s.Environment.ShadowCascades = lc.ShadowCascades
	s.Environment.ShadowDepthBias = lc.PipelineDepthBias
	s.Environment.ShadowNormalBias = lc.PipelineNormalBias

	for i := range s.Lights {
		l := &s.Lights[i]
		l.Intensity = Uniform(rng, lc.Intensity)
		l.SoftShadows = true
		l.ShadowStrength = Uniform(rng, lc.ShadowStrength)
		l.ShadowBias = lc.ShadowBias
		l.ShadowNormalBias = lc.ShadowNormalBias
		l.ShadowNearPlane = lc.ShadowNearPlane
		l.Temperature = Uniform(rng, lc.Temperature)
		l.Color = Kelvin(l.Temperature)
		if l.Kind == scene.LightSpot {
			l.Range = Uniform(rng, lc.SpotRange)
			l.SpotAngle = Uniform(rng, lc.SpotAngle)
		}
		l.Rotation, _ = LightAim(rng, l.Position, lc.AimRadius)
	}
	return len(s.Lights) > 0
}

// Post resamples color adjustments and film grain, creating them if absent.
func (r *Randomizer) Post(rng *rand.Rand, s *scene.State) {
	if s.Post == nil {
		s.Post = scene.NewPostStack()
	}
	pc := r.cfg.Post

	ca := s.Post.ColorAdjustments()
	ca.Exposure = Uniform(rng, pc.Exposure)
	ca.Contrast = Uniform(rng, pc.Contrast)
	ca.HueShift = Uniform(rng, pc.HueShift)
	ca.Saturation = Uniform(rng, pc.Saturation)

	fg := s.Post.FilmGrain()
	fg.Intensity = Uniform(rng, pc.GrainIntensity)
	fg.Type = rng.IntN(max(pc.GrainTypes, 1))
}

// Motion rolls the motion event and, when it fires, gives every ball an
// impulse in a random horizontal direction. It reports whether it fired.
// The roll is always drawn so the random stream does not depend on the
// outcome.
func (r *Randomizer) Motion(rng *rand.Rand, s *scene.State) bool {
	if rng.Float64() >= r.cfg.MotionEventProbability {
		return false
	}
	mass := r.cfg.Motion.Mass
	for i := range s.Balls {
		force := Uniform(rng, r.cfg.Motion.Force)
		rad := rng.Float64() * 2 * math.Pi
		dir := mgl64.Vec3{math.Cos(rad), 0, math.Sin(rad)}
		s.Balls[i].Velocity = s.Balls[i].Velocity.Add(dir.Mul(force / mass))
	}
	return true
}
