package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/poolsynth/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Camera.FOV != 61.33 || cfg.Camera.Aspect != 1.0 {
		t.Errorf("camera intrinsics = %v/%v, want 61.33/1.0", cfg.Camera.FOV, cfg.Camera.Aspect)
	}
	if cfg.BackgroundFramePeriod != 30 {
		t.Errorf("BackgroundFramePeriod = %d, want 30", cfg.BackgroundFramePeriod)
	}
	if cfg.MotionEventProbability != 0 {
		t.Errorf("MotionEventProbability = %v, want 0", cfg.MotionEventProbability)
	}
}

func TestRange(t *testing.T) {
	r := R(0.3, 0.7)
	if !r.Valid() {
		t.Error("R(0.3, 0.7) should be valid")
	}
	for _, v := range []float64{0.3, 0.5, 0.7} {
		if !r.Contains(v) {
			t.Errorf("Contains(%v) = false, want true", v)
		}
	}
	if r.Contains(0.71) || r.Contains(0.29) {
		t.Error("Contains should reject values outside the interval")
	}
	if R(1, 0).Valid() {
		t.Error("R(1, 0) should be invalid")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"ratio sum", func(c *Config) { c.TrainRatio, c.ValidRatio = 0.8, 0.3 }, "train_ratio + valid_ratio"},
		{"inverted range", func(c *Config) { c.Table.Roughness = R(0.9, 0.1) }, "table.roughness"},
		{"policy", func(c *Config) { c.Placement.Policy = "retry" }, "placement.policy"},
		{"attempts", func(c *Config) { c.Placement.MaxAttempts = 0 }, "max_attempts"},
		{"image size", func(c *Config) { c.ImageWidth = 0 }, "image size"},
		{"light kind", func(c *Config) { c.Scene.Lights[0].Kind = "area" }, "unknown kind"},
		{"ball too big", func(c *Config) { c.Ball.Radius = 1 }, "does not fit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("code = %v, want INVALID_CONFIG", errors.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poolsynth.toml")
	data := `
total_images = 250
seed = 7

[camera]
height = { min = 1.2, max = 1.4 }

[table]
textures = ["navy"]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TotalImages != 250 || cfg.Seed != 7 {
		t.Errorf("TotalImages/Seed = %d/%d, want 250/7", cfg.TotalImages, cfg.Seed)
	}
	if cfg.Camera.Height != R(1.2, 1.4) {
		t.Errorf("Camera.Height = %+v", cfg.Camera.Height)
	}
	// Untouched keys keep defaults.
	if cfg.Camera.Pitch != Default().Camera.Pitch {
		t.Errorf("Camera.Pitch = %+v, want default", cfg.Camera.Pitch)
	}
	if len(cfg.Table.Textures) != 1 || cfg.Table.Textures[0] != "navy" {
		t.Errorf("Table.Textures = %v", cfg.Table.Textures)
	}
}

func TestLoadTOMLUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poolsynth.toml")
	if err := os.WriteFile(path, []byte("totl_images = 5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poolsynth.yaml")
	data := "total_images: 120\npost:\n  grain_types: 2\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TotalImages != 120 || cfg.Post.GrainTypes != 2 {
		t.Errorf("TotalImages/GrainTypes = %d/%d", cfg.TotalImages, cfg.Post.GrainTypes)
	}
	if cfg.Post.Exposure != Default().Post.Exposure {
		t.Errorf("Post.Exposure = %+v, want default", cfg.Post.Exposure)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poolsynth.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for .json config")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.TotalImages != Default().TotalImages {
		t.Errorf("TotalImages = %d, want default", cfg.TotalImages)
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	err := ApplyOverrides(&cfg, []string{
		"total_images=300",
		"camera.fov=70",
		"table.roughness.min=0.4",
		"placement.policy=keep",
		"table.textures=navy,olive",
		"seed=99",
	})
	if err != nil {
		t.Fatalf("ApplyOverrides() error = %v", err)
	}
	if cfg.TotalImages != 300 {
		t.Errorf("TotalImages = %d, want 300", cfg.TotalImages)
	}
	if cfg.Camera.FOV != 70 {
		t.Errorf("Camera.FOV = %v, want 70", cfg.Camera.FOV)
	}
	if cfg.Table.Roughness.Min != 0.4 || cfg.Table.Roughness.Max != 0.7 {
		t.Errorf("Table.Roughness = %+v, want {0.4 0.7}", cfg.Table.Roughness)
	}
	if cfg.Placement.Policy != PolicyKeep {
		t.Errorf("Placement.Policy = %q", cfg.Placement.Policy)
	}
	if len(cfg.Table.Textures) != 2 || cfg.Table.Textures[1] != "olive" {
		t.Errorf("Table.Textures = %v", cfg.Table.Textures)
	}
	if cfg.Seed != 99 {
		t.Errorf("Seed = %d, want 99", cfg.Seed)
	}
	// Sibling keys are untouched.
	if cfg.Camera.Aspect != 1.0 {
		t.Errorf("Camera.Aspect = %v, want 1.0", cfg.Camera.Aspect)
	}
}

func TestApplyOverridesErrors(t *testing.T) {
	tests := []string{
		"no-equals-sign",
		"=5",
		"camera..fov=1",
		"unknown_key=1",
		"camera.fov=wide",
	}
	for _, pair := range tests {
		t.Run(pair, func(t *testing.T) {
			cfg := Default()
			if err := ApplyOverrides(&cfg, []string{pair}); err == nil {
				t.Errorf("ApplyOverrides(%q) should fail", pair)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	environ := []string{
		"HOME=/home/test",
		"POOLSYNTH_TOTAL_IMAGES=500",
		"POOLSYNTH_CAMERA__HEIGHT__MAX=1.8",
		"POOLSYNTH_OUTPUT=/tmp/pool",
	}
	if err := ApplyEnv(&cfg, environ); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.TotalImages != 500 {
		t.Errorf("TotalImages = %d, want 500", cfg.TotalImages)
	}
	if cfg.Camera.Height.Max != 1.8 {
		t.Errorf("Camera.Height.Max = %v, want 1.8", cfg.Camera.Height.Max)
	}
	if cfg.Output != "/tmp/pool" {
		t.Errorf("Output = %q", cfg.Output)
	}
}

func TestLoadDotEnvMissing(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("LoadDotEnv on missing file = %v, want nil", err)
	}
}

func TestTOMLRoundTrip(t *testing.T) {
	cfg := Default()
	data, err := cfg.TOML()
	if err != nil {
		t.Fatalf("TOML() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "effective.toml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	again, err := loaded.TOML()
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != string(data) {
		t.Error("TOML encoding should be stable across a load")
	}
}
