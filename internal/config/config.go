package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"synapsis/internal/model"
)

// Tune configures an optional post-training weight hill climb.
type Tune struct {
	Attempts          int     `json:"attempts" yaml:"attempts"`
	Steps             int     `json:"steps" yaml:"steps"`
	StepSize          float64 `json:"step_size" yaml:"step_size"`
	PerturbationRange float64 `json:"perturbation_range" yaml:"perturbation_range"`
	AnnealingFactor   float64 `json:"annealing_factor" yaml:"annealing_factor"`
	MinImprovement    float64 `json:"min_improvement" yaml:"min_improvement"`
	GoalAccuracy      float64 `json:"goal_accuracy" yaml:"goal_accuracy"`
}

// Condition names one experiment arm and the network configuration it
// trains under. A non-nil Tune adds hill climbing to this arm only.
type Condition struct {
	Name    string       `json:"name" yaml:"name"`
	Network model.Config `json:"network" yaml:"network"`
	Tune    *Tune        `json:"tune,omitempty" yaml:"tune"`
}

// File is the on-disk run description consumed by the CLI. YAML and JSON
// are both accepted, chosen by file extension.
type File struct {
	Name         string       `json:"name" yaml:"name"`
	Network      model.Config `json:"network" yaml:"network"`
	Episodes     int          `json:"episodes" yaml:"episodes"`
	Seeds        []int64      `json:"seeds" yaml:"seeds"`
	Workers      int          `json:"workers" yaml:"workers"`
	EvalWindow   int          `json:"eval_window" yaml:"eval_window"`
	SmoothWindow int          `json:"smooth_window" yaml:"smooth_window"`
	StoreBackend string       `json:"store_backend" yaml:"store_backend"`
	SQLitePath   string       `json:"sqlite_path" yaml:"sqlite_path"`
	OutputDir    string       `json:"output_dir" yaml:"output_dir"`
	Conditions   []Condition  `json:"conditions" yaml:"conditions"`
}

// Load reads and validates a run description. Missing run-level fields
// get defaults; the network configuration itself is normalized later by
// the topology builder.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}

	var file File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return File{}, fmt.Errorf("parse yaml config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return File{}, fmt.Errorf("parse json config: %w", err)
		}
	default:
		return File{}, fmt.Errorf("unsupported config extension: %s", filepath.Ext(path))
	}

	file.applyDefaults()
	if err := file.Validate(); err != nil {
		return File{}, err
	}
	return file, nil
}

func (f *File) applyDefaults() {
	if f.Episodes == 0 {
		f.Episodes = 1000
	}
	if len(f.Seeds) == 0 {
		f.Seeds = []int64{1}
	}
	if f.Workers == 0 {
		f.Workers = 1
	}
	if f.OutputDir == "" {
		f.OutputDir = "artifacts"
	}
}

func (f File) Validate() error {
	if f.Episodes <= 0 {
		return fmt.Errorf("episodes must be > 0")
	}
	if f.Workers <= 0 {
		return fmt.Errorf("workers must be > 0")
	}
	seen := make(map[string]bool, len(f.Conditions))
	for _, condition := range f.Conditions {
		if condition.Name == "" {
			return fmt.Errorf("condition name is required")
		}
		if seen[condition.Name] {
			return fmt.Errorf("duplicate condition name: %s", condition.Name)
		}
		seen[condition.Name] = true
	}
	return nil
}
