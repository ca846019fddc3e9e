package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/poolsynth/pkg/errors"
)

// EnvPrefix is the prefix of environment variables read by ApplyEnv.
// A double underscore separates nested keys: POOLSYNTH_CAMERA__FOV=70.
const EnvPrefix = "POOLSYNTH_"

// Load reads a TOML or YAML file over the defaults. The format is chosen by
// extension; keys absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %v", path, undecoded)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q (want .toml, .yaml or .yml)", ext)
	}
	return cfg, nil
}

// ApplyOverrides decodes dotted key=value pairs (e.g. "camera.fov=70",
// "table.roughness.min=0.4") onto cfg. Values are weakly typed; a value
// containing commas becomes a list.
func ApplyOverrides(cfg *Config, pairs []string) error {
	if len(pairs) == 0 {
		return nil
	}

	tree := map[string]any{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return errors.New(errors.ErrCodeInvalidInput, "override %q must have the form key=value", pair)
		}
		if err := insert(tree, strings.Split(key, "."), parseValue(value)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "override %q", pair)
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "toml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "build override decoder")
	}
	if err := dec.Decode(tree); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "apply overrides")
	}
	return nil
}

// LoadDotEnv loads a .env file into the process environment if one exists.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", path)
	}
	return nil
}

// ApplyEnv applies POOLSYNTH_* variables from environ (typically
// os.Environ()) as overrides: POOLSYNTH_TOTAL_IMAGES=500 sets total_images,
// POOLSYNTH_CAMERA__HEIGHT__MIN=1.2 sets camera.height.min.
func ApplyEnv(cfg *Config, environ []string) error {
	var pairs []string
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		if key == "" {
			continue
		}
		pairs = append(pairs, key+"="+value)
	}
	sort.Strings(pairs)
	return ApplyOverrides(cfg, pairs)
}

// WriteTOML encodes cfg as TOML.
func (c Config) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// TOML returns cfg encoded as TOML. Encoding is deterministic, so the bytes
// double as a stable fingerprint of the effective configuration.
func (c Config) TOML() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.WriteTOML(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func insert(tree map[string]any, path []string, value any) error {
	for i, part := range path {
		part = strings.TrimSpace(part)
		if part == "" {
			return fmt.Errorf("empty key segment")
		}
		if i == len(path)-1 {
			tree[part] = value
			return nil
		}
		next, ok := tree[part]
		if !ok {
			child := map[string]any{}
			tree[part] = child
			tree = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("key %q is both a value and a table", part)
		}
		tree = child
	}
	return nil
}

func parseValue(s string) any {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ",") {
		return s
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
