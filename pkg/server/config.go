package server

import (
	"fmt"
	"os"

	"github.com/asegale/ashlar/pkg/clash"
	"github.com/asegale/ashlar/pkg/plan"
	"gopkg.in/yaml.v3"
)

// Config holds the service configuration. Zero values are filled in by
// applyDefaults, so a partial YAML file (or none at all) is fine.
type Config struct {
	// Listen is the HTTP bind address, e.g. ":8080".
	Listen string `yaml:"listen"`

	// SceneDir is the directory scene scripts are resolved against.
	// Requests name models by file; path traversal outside the
	// directory is rejected.
	SceneDir string `yaml:"scene_dir"`

	// MeshCells controls the marching-cubes resolution of the exact
	// geometry kernel.
	MeshCells int `yaml:"mesh_cells"`

	// ClashTypes is the IFC type restriction for the 3D clash sweep
	// when a request does not name its own.
	ClashTypes []string `yaml:"clash_types"`

	// ZTolerance is the default vertical slack for the plan scanner.
	// A pointer so that an explicit zero in the file means a strict
	// scan rather than "use the default".
	ZTolerance *float64 `yaml:"z_tolerance"`

	// AreaTolerance is the default minimum overlap area reported by
	// the plan scanner. Pointer for the same reason as ZTolerance.
	AreaTolerance *float64 `yaml:"area_tolerance"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads a YAML config file and fills in defaults for any
// omitted field.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.SceneDir == "" {
		c.SceneDir = "."
	}
	if c.MeshCells <= 0 {
		c.MeshCells = 128
	}
	if len(c.ClashTypes) == 0 {
		c.ClashTypes = append([]string(nil), clash.DefaultStructuralTypes...)
	}
	if c.ZTolerance == nil {
		z := plan.DefaultZTolerance
		c.ZTolerance = &z
	}
	if c.AreaTolerance == nil {
		a := plan.DefaultAreaTolerance
		c.AreaTolerance = &a
	}
}
