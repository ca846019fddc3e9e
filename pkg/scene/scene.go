// Package scene models the per-frame state of a pool-table scene.
//
// A [State] is the single context object threaded through randomization,
// rendering and annotation. It holds the table, the discovered balls and
// pockets, the camera, the lights, the cue stick, global environment
// settings and the post-processing stack. Nothing in this package draws
// random numbers; samplers in the randomize package mutate a State and the
// annotate package reads it.
//
// Coordinates are meters in a left-handed, Y-up frame. The table surface is
// centered on the origin in the XZ plane with its long side along X.
package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/poolsynth/pkg/config"
)

// Ball is a pool ball. ID is its discovery index and doubles as its class
// id; ball 0 is the cue ball.
type Ball struct {
	ID              int
	Name            string
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	Radius          float64
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Visible         bool
}

// Pocket is a static table pocket.
type Pocket struct {
	ID       int
	Name     string
	Position mgl64.Vec3
}

// Table is the playing surface and its felt material.
type Table struct {
	Width           float64
	Length          float64
	Height          float64
	Roughness       float64
	Smoothness      float64
	NormalIntensity float64
	Texture         string
	MeshVisible     bool
}

// Bounds returns the half extents of the region where a ball of radius r
// can rest fully on the table.
func (t Table) Bounds(r float64) (halfX, halfZ float64) {
	return t.Length/2 - r, t.Width/2 - r
}

// Center returns the center of the table surface.
func (t Table) Center() mgl64.Vec3 { return mgl64.Vec3{0, t.Height, 0} }

// LightKind identifies how a light emits.
type LightKind string

const (
	LightDirectional LightKind = "directional"
	LightPoint       LightKind = "point"
	LightSpot        LightKind = "spot"
)

// Light is a scene light. Range and SpotAngle only apply to spot lights.
type Light struct {
	Name             string
	Kind             LightKind
	Position         mgl64.Vec3
	Rotation         mgl64.Quat
	Intensity        float64
	Temperature      float64
	Color            mgl64.Vec3
	SoftShadows      bool
	ShadowStrength   float64
	ShadowBias       float64
	ShadowNormalBias float64
	ShadowNearPlane  float64
	Range            float64
	SpotAngle        float64
}

// Direction returns the light's forward axis.
func (l Light) Direction() mgl64.Vec3 { return l.Rotation.Rotate(AxisForward) }

// Environment holds global ambient and shadow pipeline settings.
type Environment struct {
	Skybox           string
	AmbientMode      string
	AmbientIntensity float64
	ShadowDistance   float64
	ShadowCascades   int
	ShadowDepthBias  float64
	ShadowNormalBias float64
}

// Cue is the cue stick. The stick's long axis is its local +X; TipOffset
// slides the stick along that axis away from Position (negative values
// pull it back from the cue ball).
type Cue struct {
	Position  mgl64.Vec3
	Rotation  mgl64.Quat
	TipOffset float64
}

// Axis returns the stick's long axis in world space.
func (c Cue) Axis() mgl64.Vec3 { return c.Rotation.Rotate(AxisRight) }

// Tip returns the world position of the cue tip.
func (c Cue) Tip() mgl64.Vec3 {
	return c.Position.Add(c.Axis().Mul(c.TipOffset))
}

// State is the full mutable scene for one frame.
type State struct {
	Table       Table
	Balls       []Ball
	Pockets     []Pocket
	Camera      Camera
	Lights      []Light
	Cue         Cue
	Environment Environment
	Post        *PostStack
}

// NewState builds the initial scene from cfg and the discovered children.
// Balls take the shared radius from cfg; lights come from cfg.Scene.Lights.
func NewState(cfg config.Config, children []Child) *State {
	reg := NewRegistry(children)

	s := &State{
		Table: Table{
			Width:       cfg.Table.Width,
			Length:      cfg.Table.Length,
			Height:      cfg.Table.Height,
			MeshVisible: true,
		},
		Pockets: reg.Pockets,
		Camera:  NewCamera(cfg.Camera.FOV, cfg.Camera.Aspect, cfg.Camera.Near, cfg.Camera.Far),
		Cue:     Cue{Rotation: mgl64.QuatIdent()},
		Post:    NewPostStack(),
	}

	s.Balls = make([]Ball, len(reg.Balls))
	for i, b := range reg.Balls {
		b.Radius = cfg.Ball.Radius
		s.Balls[i] = b
	}

	for _, lc := range cfg.Scene.Lights {
		s.Lights = append(s.Lights, Light{
			Name:     lc.Name,
			Kind:     LightKind(lc.Kind),
			Position: mgl64.Vec3(lc.Position),
			Rotation: mgl64.QuatIdent(),
		})
	}
	return s
}

// CueBall returns the cue ball, or nil when the scene has no balls.
func (s *State) CueBall() *Ball {
	if len(s.Balls) == 0 {
		return nil
	}
	return &s.Balls[0]
}

// SetEntitiesVisible shows or hides every ball and the table mesh.
func (s *State) SetEntitiesVisible(visible bool) {
	for i := range s.Balls {
		s.Balls[i].Visible = visible
	}
	s.Table.MeshVisible = visible
}

// EntitiesVisible reports whether the table mesh or any ball is visible.
func (s *State) EntitiesVisible() bool {
	if s.Table.MeshVisible {
		return true
	}
	for _, b := range s.Balls {
		if b.Visible {
			return true
		}
	}
	return false
}

// ResetMotion zeroes all ball velocities.
func (s *State) ResetMotion() {
	for i := range s.Balls {
		s.Balls[i].Velocity = mgl64.Vec3{}
		s.Balls[i].AngularVelocity = mgl64.Vec3{}
	}
}

// Frame identifies one generated sample.
type Frame struct {
	Split        string
	Index        int
	HideEntities bool
}

// NewFrame returns the frame for index in split. Background frames fall on
// every period-th index starting at 0; a period <= 0 disables them.
func NewFrame(split string, index, period int) Frame {
	return Frame{
		Split:        split,
		Index:        index,
		HideEntities: IsBackground(index, period),
	}
}

// IsBackground reports whether index is a background frame for period.
func IsBackground(index, period int) bool {
	return period > 0 && index%period == 0
}

// Label is one normalized bounding box.
type Label struct {
	ClassID int
	XCenter float64
	YCenter float64
	Width   float64
	Height  float64
}
