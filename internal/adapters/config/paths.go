package config

import (
	"os"
	"path/filepath"
)

const appName = "erasmus"

// XDGPaths resolves the global, machine-wide locations config.toml may
// live in, honoring XDG_CONFIG_HOME and an erasmus-specific override
// before falling back to ~/.config/erasmus.
type XDGPaths struct {
	ConfigHome string
}

// ResolveXDGPaths resolves XDGPaths for the current user.
func ResolveXDGPaths() XDGPaths {
	home, _ := os.UserHomeDir()
	return XDGPaths{
		ConfigHome: resolveDir(
			os.Getenv("ERASMUS_CONFIG_HOME"),
			envWithSuffix("XDG_CONFIG_HOME", appName),
			filepath.Join(home, ".config", appName),
		),
	}
}

// ConfigFile returns <ConfigHome>/config.toml.
func (p XDGPaths) ConfigFile() string {
	if p.ConfigHome == "" {
		return ""
	}
	return filepath.Join(p.ConfigHome, "config.toml")
}

// resolveDir returns the first non-empty path from the candidates.
func resolveDir(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// envWithSuffix returns the env var value with appName appended, or empty
// string if not set.
func envWithSuffix(envVar, suffix string) string {
	val := os.Getenv(envVar)
	if val == "" {
		return ""
	}
	return filepath.Join(val, suffix)
}
