// Package config loads the YAML hyperparameter overrides accepted by
// cmd/fjssp's -config flag: the Simulated Annealing cooling schedule, the
// Carlier branch-and-bound depth cap, and the run's seed. Grounded on
// beadwork's pkg/config: a defaulted struct unmarshaled over with
// gopkg.in/yaml.v3, tolerant of a missing file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arborix/fjssp/anneal"
	"github.com/arborix/fjssp/carlier"
)

// Config is the full set of tunable parameters for one engine run.
type Config struct {
	Seed int64 `yaml:"seed,omitempty"`

	Alpha   float64 `yaml:"alpha,omitempty"`
	Beta    float64 `yaml:"beta,omitempty"`
	K       int     `yaml:"k,omitempty"`
	T0Param float64 `yaml:"t0,omitempty"`
	TFinal  float64 `yaml:"t_final,omitempty"`

	CarlierMaxDepth int `yaml:"carlier_max_depth,omitempty"`

	// GRASPAlpha is the restricted-candidate-list threshold of the initial
	// GRASP construction in cmd/fjssp (spec §4.2). SA's diversification
	// rebuilds use their own alpha values and ignore it.
	GRASPAlpha float64 `yaml:"grasp_alpha,omitempty"`
}

// Default returns the spec §4.8/§4.4 default parameterization.
func Default() Config {
	return Config{
		Seed:            42,
		Alpha:           anneal.DefaultAlpha,
		Beta:            anneal.DefaultBeta,
		K:               anneal.DefaultK,
		T0Param:         anneal.DefaultT0Param,
		TFinal:          anneal.DefaultTFinal,
		CarlierMaxDepth: carlier.DefaultMaxDepth,
		GRASPAlpha:      0.3,
	}
}

// Load reads YAML overrides from path and merges them over Default.
// A missing file is not an error: it yields the pure default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// AnnealOptions projects Config onto anneal.Options, leaving Logger/Clock
// to the caller.
func (c Config) AnnealOptions() anneal.Options {
	opts := anneal.DefaultOptions()
	opts.Alpha = c.Alpha
	opts.Beta = c.Beta
	opts.K = c.K
	opts.T0Param = c.T0Param
	opts.TFinal = c.TFinal
	return opts
}
