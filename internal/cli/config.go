package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/roach88/convene/internal/ir"
)

// DefaultConfigFiles are looked up in the working directory, in order, when
// no --config flag is given.
var DefaultConfigFiles = []string{"convene.yaml", "convene.yml", "convene.toml"}

// ProjectConfig holds project defaults. Command-line flags take precedence.
type ProjectConfig struct {
	// Host is the default host type for order.
	Host string `yaml:"host" toml:"host"`

	// Categories is the default category filter for order.
	Categories []string `yaml:"categories" toml:"categories"`

	// Database is the default resolution store for order and trace.
	Database string `yaml:"db" toml:"db"`
}

// LoadProjectConfig reads the project config at path. With an empty path the
// default files are tried in the working directory, and finding none is not
// an error.
//
// Returns the config and the path it was read from ("" if none).
func LoadProjectConfig(path string) (ProjectConfig, string, error) {
	if path == "" {
		for _, name := range DefaultConfigFiles {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
		if path == "" {
			return ProjectConfig{}, "", nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ProjectConfig{}, "", fmt.Errorf("reading config file: %w", err)
	}

	var cfg ProjectConfig
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return ProjectConfig{}, "", fmt.Errorf("parsing config %s: %w", path, err)
		}
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return ProjectConfig{}, "", fmt.Errorf("parsing config %s: %w", path, err)
		}
	default:
		return ProjectConfig{}, "", fmt.Errorf("unsupported config format %q: use .yaml or .toml", filepath.Ext(path))
	}

	if _, err := ir.ParseHostType(cfg.Host); err != nil {
		return ProjectConfig{}, "", fmt.Errorf("config %s: host: %w", path, err)
	}

	return cfg, path, nil
}
