// Package config loads erasmus.toml: the default protocol, an optional
// debounce override, and an optional editor override, layered global
// (XDG) under project-local.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/hydra-dynamix/erasmus/internal/core/entities"
)

// Loader reads config.toml from the global XDG config location and
// erasmus.toml from a project root, project-local settings overriding global
// ones.
type Loader struct {
	xdg XDGPaths
}

// NewLoader creates a Loader resolving the global config path via XDG
// Base Directory rules.
func NewLoader() *Loader {
	return &Loader{xdg: ResolveXDGPaths()}
}

// tomlConfig mirrors entities.Config's on-disk shape.
type tomlConfig struct {
	DefaultProtocol string `toml:"default_protocol"`
	Debounce        string `toml:"debounce"`
	Editor          string `toml:"editor"`
}

// Load reads the global config (if present) then the project-local
// erasmus.toml under projectRoot (if present), the latter overriding the
// former field by field, and returns the merged entities.Config.
func (l *Loader) Load(projectRoot string) (entities.Config, error) {
	cfg := entities.DefaultConfig()

	if path := l.xdg.ConfigFile(); path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := applyFile(path, &cfg); err != nil {
				return cfg, fmt.Errorf("loading global config: %w", err)
			}
		}
	}

	projectPath := filepath.Join(projectRoot, "erasmus.toml")
	if _, err := os.Stat(projectPath); err == nil {
		if err := applyFile(projectPath, &cfg); err != nil {
			return cfg, fmt.Errorf("loading project config: %w", err)
		}
	}

	return cfg, nil
}

func applyFile(path string, cfg *entities.Config) error {
	var tc tomlConfig
	if _, err := toml.DecodeFile(path, &tc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if tc.DefaultProtocol != "" {
		cfg.DefaultProtocol = tc.DefaultProtocol
	}
	if tc.Debounce != "" {
		d, err := time.ParseDuration(tc.Debounce)
		if err != nil {
			return fmt.Errorf("%s: invalid debounce %q: %w", path, tc.Debounce, err)
		}
		cfg.DebounceOverride = d
	}
	if tc.Editor != "" {
		if e, ok := entities.DetectEditorFromEnv(tc.Editor); ok {
			cfg.Editor = e
		} else {
			return fmt.Errorf("%s: unrecognized editor %q", path, tc.Editor)
		}
	}
	return nil
}

// Save writes cfg to <projectRoot>/erasmus.toml.
func (l *Loader) Save(projectRoot string, cfg entities.Config) error {
	if err := os.MkdirAll(projectRoot, 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}

	tc := tomlConfig{DefaultProtocol: cfg.DefaultProtocol}
	if cfg.DebounceOverride > 0 {
		tc.Debounce = cfg.DebounceOverride.String()
	}
	if cfg.Editor != "" {
		tc.Editor = string(cfg.Editor)
	}

	path := filepath.Join(projectRoot, "erasmus.toml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	f.WriteString("# erasmus project configuration\n\n")
	if err := toml.NewEncoder(f).Encode(tc); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
