package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/poolsynth/pkg/errors"
)

// Validate checks every range and setting. All problems are reported
// together in a single INVALID_CONFIG error.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.TotalImages < 0 {
		add("total_images must be >= 0, got %d", c.TotalImages)
	}
	if c.TrainRatio < 0 || c.TrainRatio > 1 {
		add("train_ratio must be in [0,1], got %v", c.TrainRatio)
	}
	if c.ValidRatio < 0 || c.ValidRatio > 1 {
		add("valid_ratio must be in [0,1], got %v", c.ValidRatio)
	}
	if c.TrainRatio+c.ValidRatio > 1 {
		add("train_ratio + valid_ratio must be <= 1, got %v", c.TrainRatio+c.ValidRatio)
	}
	if c.SplitThreshold < 0 {
		add("split_threshold must be >= 0, got %d", c.SplitThreshold)
	}
	if c.ImageWidth <= 0 || c.ImageHeight <= 0 {
		add("image size must be positive, got %dx%d", c.ImageWidth, c.ImageHeight)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		add("jpeg_quality must be in [1,100], got %d", c.JPEGQuality)
	}
	if c.BackgroundFramePeriod < 0 {
		add("background_frame_period must be >= 0, got %d", c.BackgroundFramePeriod)
	}
	if c.MotionEventProbability < 0 || c.MotionEventProbability > 1 {
		add("motion_event_probability must be in [0,1], got %v", c.MotionEventProbability)
	}
	if c.PocketBoxSize < 0 || c.PocketBoxSize > 1 {
		add("pocket_box_size must be in [0,1], got %v", c.PocketBoxSize)
	}

	if c.Table.Width <= 0 || c.Table.Length <= 0 {
		add("table size must be positive, got %vx%v", c.Table.Length, c.Table.Width)
	}
	if c.Ball.Radius <= 0 {
		add("ball.radius must be positive, got %v", c.Ball.Radius)
	} else if 2*c.Ball.Radius > c.Table.Width || 2*c.Ball.Radius > c.Table.Length {
		add("ball.radius %v does not fit on a %vx%v table", c.Ball.Radius, c.Table.Length, c.Table.Width)
	}
	if c.Ball.Count < 0 {
		add("ball.count must be >= 0, got %d", c.Ball.Count)
	}

	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		add("camera.fov must be in (0,180), got %v", c.Camera.FOV)
	}
	if c.Camera.Aspect <= 0 {
		add("camera.aspect must be positive, got %v", c.Camera.Aspect)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		add("camera clip planes must satisfy 0 < near < far, got %v..%v", c.Camera.Near, c.Camera.Far)
	}

	if c.Lighting.AimRadius < 0 {
		add("lighting.aim_radius must be >= 0, got %v", c.Lighting.AimRadius)
	}
	if c.Post.GrainTypes < 1 {
		add("post.grain_types must be >= 1, got %d", c.Post.GrainTypes)
	}
	if c.Motion.Mass <= 0 {
		add("motion.mass must be positive, got %v", c.Motion.Mass)
	}
	if c.Placement.MaxAttempts < 1 {
		add("placement.max_attempts must be >= 1, got %d", c.Placement.MaxAttempts)
	}
	if c.Placement.Policy != PolicyFail && c.Placement.Policy != PolicyKeep {
		add("placement.policy must be %q or %q, got %q", PolicyFail, PolicyKeep, c.Placement.Policy)
	}

	ranges := c.ranges()
	for _, name := range slices.Sorted(maps.Keys(ranges)) {
		if r := ranges[name]; !r.Valid() {
			add("%s: min %v > max %v", name, r.Min, r.Max)
		}
	}

	for _, l := range c.Scene.Lights {
		switch l.Kind {
		case "directional", "point", "spot":
		default:
			add("scene.lights %q: unknown kind %q", l.Name, l.Kind)
		}
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "%s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) ranges() map[string]Range {
	return map[string]Range{
		"table.roughness":          c.Table.Roughness,
		"table.normal_intensity":   c.Table.NormalIntensity,
		"cue.tip_offset":           c.Cue.TipOffset,
		"cue.yaw":                  c.Cue.Yaw,
		"cue.tilt":                 c.Cue.Tilt,
		"camera.height":            c.Camera.Height,
		"camera.distance":          c.Camera.Distance,
		"camera.angle":             c.Camera.Angle,
		"camera.pitch":             c.Camera.Pitch,
		"lighting.intensity":       c.Lighting.Intensity,
		"lighting.temperature":     c.Lighting.Temperature,
		"lighting.shadow_strength": c.Lighting.ShadowStrength,
		"lighting.spot_range":      c.Lighting.SpotRange,
		"lighting.spot_angle":      c.Lighting.SpotAngle,
		"post.exposure":            c.Post.Exposure,
		"post.contrast":            c.Post.Contrast,
		"post.hue_shift":           c.Post.HueShift,
		"post.saturation":          c.Post.Saturation,
		"post.grain_intensity":     c.Post.GrainIntensity,
		"motion.force":             c.Motion.Force,
	}
}
