package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr         string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir    string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	DefaultModel string `json:"default_model" yaml:"default_model" toml:"default_model"`

	// Memory policy thresholds, in GB. These are policy, not physics; see
	// the strategy package for how they are applied.
	LargeLoadMinFreeGB  float64 `json:"large_load_min_free_gb" yaml:"large_load_min_free_gb" toml:"large_load_min_free_gb"`
	OffloadBelowFreeGB  float64 `json:"offload_below_free_gb" yaml:"offload_below_free_gb" toml:"offload_below_free_gb"`
	TurboAccelMinFreeGB float64 `json:"turbo_accel_min_free_gb" yaml:"turbo_accel_min_free_gb" toml:"turbo_accel_min_free_gb"`
	SystemMinFreeGB     float64 `json:"system_min_free_gb" yaml:"system_min_free_gb" toml:"system_min_free_gb"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
