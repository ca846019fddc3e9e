package export

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/poolsynth/pkg/buildinfo"
	"github.com/matzehuels/poolsynth/pkg/config"
	"github.com/matzehuels/poolsynth/pkg/errors"
)

// Manifest file names written at the dataset root.
const (
	DataYAMLFile   = "data.yaml"
	GenerationFile = "generation.json"
)

// DataYAML is the dataset descriptor read by YOLO trainers.
type DataYAML struct {
	Path  string   `yaml:"path"`
	Train string   `yaml:"train"`
	Val   string   `yaml:"val"`
	Test  string   `yaml:"test"`
	NC    int      `yaml:"nc"`
	Names []string `yaml:"names"`
}

// NewDataYAML describes a dataset rooted at root with the given class names.
func NewDataYAML(root string, names []string) DataYAML {
	return DataYAML{
		Path:  root,
		Train: filepath.Join(config.SplitTrain, "images"),
		Val:   filepath.Join(config.SplitValid, "images"),
		Test:  filepath.Join(config.SplitTest, "images"),
		NC:    len(names),
		Names: names,
	}
}

// WriteDataYAML writes d to <root>/data.yaml.
func WriteDataYAML(root string, d DataYAML) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "encode %s", DataYAMLFile)
	}
	path := filepath.Join(root, DataYAMLFile)
	if err := writeFileAtomic(path, data); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "write %s", path)
	}
	return nil
}

// SplitStats counts the frames of one split.
type SplitStats struct {
	Planned    int `json:"planned"`
	Generated  int `json:"generated"`
	Resumed    int `json:"resumed"`
	Background int `json:"background"`
	Labels     int `json:"labels"`
}

// Generation records how a dataset was produced.
type Generation struct {
	RunID      string                `json:"run_id"`
	ConfigHash string                `json:"config_hash"`
	Seed       uint64                `json:"seed"`
	Build      buildinfo.Info        `json:"build"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Splits     map[string]SplitStats `json:"splits"`
}

// NewGeneration starts a record with a fresh run id.
func NewGeneration(configHash string, seed uint64, started time.Time) *Generation {
	return &Generation{
		RunID:      uuid.NewString(),
		ConfigHash: configHash,
		Seed:       seed,
		Build:      buildinfo.Current(),
		StartedAt:  started.UTC(),
		Splits:     make(map[string]SplitStats),
	}
}

// Total returns the number of frames present in the dataset.
func (g *Generation) Total() int {
	n := 0
	for _, s := range g.Splits {
		n += s.Generated + s.Resumed
	}
	return n
}

// WriteGeneration writes g to <root>/generation.json.
func WriteGeneration(root string, g *Generation) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "encode %s", GenerationFile)
	}
	path := filepath.Join(root, GenerationFile)
	if err := writeFileAtomic(path, append(data, '\n')); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "write %s", path)
	}
	return nil
}
