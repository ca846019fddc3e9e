// Package config holds the parameter ranges and generation settings for poolsynth.
//
// Everything the randomizer samples is described here as an inert [Range]
// or a fixed value; nothing in this package draws random numbers. A [Config]
// is built from [Default], optionally overlaid with a TOML or YAML file
// ([Load]), dotted key=value overrides ([ApplyOverrides]) and POOLSYNTH_*
// environment variables ([ApplyEnv]), then checked with [Config.Validate].
//
// # File format
//
//	total_images = 500
//	train_ratio = 0.7
//	valid_ratio = 0.2
//
//	[camera]
//	height = { min = 1.0, max = 1.6 }
//	pitch = { min = -15.0, max = 5.0 }
//
//	[table]
//	textures = ["forestgreen", "#2e4a7d"]
package config

// Range is a closed interval [Min, Max] sampled uniformly by the randomizer.
type Range struct {
	Min float64 `toml:"min" yaml:"min" json:"min"`
	Max float64 `toml:"max" yaml:"max" json:"max"`
}

// R is shorthand for constructing a Range.
func R(lo, hi float64) Range { return Range{Min: lo, Max: hi} }

// Contains reports whether v lies in the closed interval.
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Valid reports whether Min <= Max.
func (r Range) Valid() bool { return r.Min <= r.Max }

// Placement exhaustion policies.
const (
	// PolicyFail aborts the frame with an error when a ball cannot be placed.
	PolicyFail = "fail"
	// PolicyKeep leaves the ball at its previous position, which may overlap.
	PolicyKeep = "keep"
)

// Split names in generation order.
const (
	SplitTrain = "train"
	SplitValid = "valid"
	SplitTest  = "test"
)

// Splits lists every split directory created under the output root.
var Splits = []string{SplitTrain, SplitValid, SplitTest}

// Config is the full generation configuration.
type Config struct {
	Output                 string  `toml:"output" yaml:"output"`
	Seed                   uint64  `toml:"seed" yaml:"seed"`
	TotalImages            int     `toml:"total_images" yaml:"total_images"`
	TrainRatio             float64 `toml:"train_ratio" yaml:"train_ratio"`
	ValidRatio             float64 `toml:"valid_ratio" yaml:"valid_ratio"`
	SplitThreshold         int     `toml:"split_threshold" yaml:"split_threshold"`
	ImageWidth             int     `toml:"image_width" yaml:"image_width"`
	ImageHeight            int     `toml:"image_height" yaml:"image_height"`
	JPEGQuality            int     `toml:"jpeg_quality" yaml:"jpeg_quality"`
	BackgroundFramePeriod  int     `toml:"background_frame_period" yaml:"background_frame_period"`
	MotionEventProbability float64 `toml:"motion_event_probability" yaml:"motion_event_probability"`
	PocketBoxSize          float64 `toml:"pocket_box_size" yaml:"pocket_box_size"`

	Table     TableConfig     `toml:"table" yaml:"table"`
	Ball      BallConfig      `toml:"ball" yaml:"ball"`
	Cue       CueConfig       `toml:"cue" yaml:"cue"`
	Camera    CameraConfig    `toml:"camera" yaml:"camera"`
	Lighting  LightingConfig  `toml:"lighting" yaml:"lighting"`
	Post      PostConfig      `toml:"post" yaml:"post"`
	Motion    MotionConfig    `toml:"motion" yaml:"motion"`
	Placement PlacementConfig `toml:"placement" yaml:"placement"`
	Scene     SceneConfig     `toml:"scene" yaml:"scene"`
}

// TableConfig describes table geometry and felt appearance ranges.
type TableConfig struct {
	Width           float64  `toml:"width" yaml:"width"`
	Length          float64  `toml:"length" yaml:"length"`
	Height          float64  `toml:"height" yaml:"height"`
	Roughness       Range    `toml:"roughness" yaml:"roughness"`
	NormalIntensity Range    `toml:"normal_intensity" yaml:"normal_intensity"`
	Textures        []string `toml:"textures" yaml:"textures"`
}

// BallConfig holds the shared ball radius and the standard rack size.
type BallConfig struct {
	Radius float64 `toml:"radius" yaml:"radius"`
	Count  int     `toml:"count" yaml:"count"`
}

// CueConfig holds the cue stick pose ranges, in meters and degrees.
type CueConfig struct {
	TipOffset Range `toml:"tip_offset" yaml:"tip_offset"`
	Yaw       Range `toml:"yaw" yaml:"yaw"`
	Tilt      Range `toml:"tilt" yaml:"tilt"`
}

// CameraConfig holds camera pose ranges and the fixed intrinsics.
type CameraConfig struct {
	Height   Range   `toml:"height" yaml:"height"`
	Distance Range   `toml:"distance" yaml:"distance"`
	Angle    Range   `toml:"angle" yaml:"angle"`
	Pitch    Range   `toml:"pitch" yaml:"pitch"`
	FOV      float64 `toml:"fov" yaml:"fov"`
	Aspect   float64 `toml:"aspect" yaml:"aspect"`
	Near     float64 `toml:"near" yaml:"near"`
	Far      float64 `toml:"far" yaml:"far"`
}

// LightingConfig holds per-light ranges and the global ambient/shadow settings.
type LightingConfig struct {
	Intensity        Range   `toml:"intensity" yaml:"intensity"`
	Temperature      Range   `toml:"temperature" yaml:"temperature"`
	ShadowStrength   Range   `toml:"shadow_strength" yaml:"shadow_strength"`
	ShadowBias       float64 `toml:"shadow_bias" yaml:"shadow_bias"`
	ShadowNormalBias float64 `toml:"shadow_normal_bias" yaml:"shadow_normal_bias"`
	ShadowNearPlane  float64 `toml:"shadow_near_plane" yaml:"shadow_near_plane"`
	SpotRange        Range   `toml:"spot_range" yaml:"spot_range"`
	SpotAngle        Range   `toml:"spot_angle" yaml:"spot_angle"`
	AimRadius        float64 `toml:"aim_radius" yaml:"aim_radius"`

	AmbientIntensity   float64 `toml:"ambient_intensity" yaml:"ambient_intensity"`
	ShadowDistance     float64 `toml:"shadow_distance" yaml:"shadow_distance"`
	ShadowCascades     int     `toml:"shadow_cascades" yaml:"shadow_cascades"`
	PipelineDepthBias  float64 `toml:"pipeline_depth_bias" yaml:"pipeline_depth_bias"`
	PipelineNormalBias float64 `toml:"pipeline_normal_bias" yaml:"pipeline_normal_bias"`
}

// PostConfig holds post-processing ranges. GrainTypes is the number of
// discrete film grain variants to choose from.
type PostConfig struct {
	Exposure       Range `toml:"exposure" yaml:"exposure"`
	Contrast       Range `toml:"contrast" yaml:"contrast"`
	HueShift       Range `toml:"hue_shift" yaml:"hue_shift"`
	Saturation     Range `toml:"saturation" yaml:"saturation"`
	GrainIntensity Range `toml:"grain_intensity" yaml:"grain_intensity"`
	GrainTypes     int   `toml:"grain_types" yaml:"grain_types"`
}

// MotionConfig holds the impulse applied by the motion event.
type MotionConfig struct {
	Force Range   `toml:"force" yaml:"force"`
	Mass  float64 `toml:"mass" yaml:"mass"`
}

// PlacementConfig controls the rejection sampler.
type PlacementConfig struct {
	MaxAttempts int    `toml:"max_attempts" yaml:"max_attempts"`
	Policy      string `toml:"policy" yaml:"policy"`
}

// SceneConfig describes the scene contents. When Children is empty the
// standard 16-ball, 6-pocket layout is used.
type SceneConfig struct {
	Children []ChildConfig `toml:"children" yaml:"children"`
	Lights   []LightConfig `toml:"lights" yaml:"lights"`
	Skyboxes []string      `toml:"skyboxes" yaml:"skyboxes"`
}

// ChildConfig is one named scene object.
type ChildConfig struct {
	Name     string     `toml:"name" yaml:"name"`
	Position [3]float64 `toml:"position" yaml:"position"`
}

// LightConfig is one scene light. Kind is "directional", "point" or "spot".
type LightConfig struct {
	Name     string     `toml:"name" yaml:"name"`
	Kind     string     `toml:"kind" yaml:"kind"`
	Position [3]float64 `toml:"position" yaml:"position"`
}

// Default returns the reference configuration: a standard 9-foot table, a
// 512x512 square camera with 61.33 degree FOV and 20 images.
func Default() Config {
	return Config{
		Output:                 "SyntheticPoolData",
		Seed:                   42,
		TotalImages:            20,
		TrainRatio:             0.7,
		ValidRatio:             0.2,
		SplitThreshold:         100,
		ImageWidth:             512,
		ImageHeight:            512,
		JPEGQuality:            90,
		BackgroundFramePeriod:  30,
		MotionEventProbability: 0,
		PocketBoxSize:          0.05,
		Table: TableConfig{
			Width:           1.27,
			Length:          2.54,
			Height:          0.805,
			Roughness:       R(0.3, 0.7),
			NormalIntensity: R(0.8, 1.2),
			Textures:        []string{"forestgreen", "darkgreen", "steelblue", "firebrick", "#2e4a7d", "#5b3a29"},
		},
		Ball: BallConfig{
			Radius: 0.028575,
			Count:  16,
		},
		Cue: CueConfig{
			TipOffset: R(-1.25, -0.75),
			Yaw:       R(-60, 60),
			Tilt:      R(-25, -5),
		},
		Camera: CameraConfig{
			Height:   R(1.0, 1.6),
			Distance: R(0.0, 1.0),
			Angle:    R(-180, 180),
			Pitch:    R(-15, 5),
			FOV:      61.33,
			Aspect:   1.0,
			Near:     0.01,
			Far:      1000,
		},
		Lighting: LightingConfig{
			Intensity:          R(1.0, 3.0),
			Temperature:        R(3000, 5500),
			ShadowStrength:     R(0.6, 0.8),
			ShadowBias:         0.02,
			ShadowNormalBias:   0.2,
			ShadowNearPlane:    0.1,
			SpotRange:          R(8, 12),
			SpotAngle:          R(40, 80),
			AimRadius:          5,
			AmbientIntensity:   1.0,
			ShadowDistance:     2.0,
			ShadowCascades:     4,
			PipelineDepthBias:  1.0,
			PipelineNormalBias: 1.0,
		},
		Post: PostConfig{
			Exposure:       R(0, 0.5),
			Contrast:       R(-5, 25),
			HueShift:       R(-2, 2),
			Saturation:     R(-5, 5),
			GrainIntensity: R(0, 0.6),
			GrainTypes:     3,
		},
		Motion: MotionConfig{
			Force: R(10, 15),
			Mass:  0.17,
		},
		Placement: PlacementConfig{
			MaxAttempts: 100,
			Policy:      PolicyFail,
		},
		Scene: SceneConfig{
			Lights: []LightConfig{
				{Name: "sun", Kind: "directional", Position: [3]float64{0, 4, 0}},
				{Name: "spot_left", Kind: "spot", Position: [3]float64{-1.2, 2.5, 0}},
				{Name: "spot_right", Kind: "spot", Position: [3]float64{1.2, 2.5, 0}},
			},
			Skyboxes: []string{"studio", "dusk", "overcast", "warehouse", "lounge"},
		},
	}
}
