package entities

import "time"

// Config holds the settings resolved by config.Loader: built-in defaults,
// then the global XDG config file, then a project-local erasmus.toml.
// ERASMUS_* environment variables and flags are not consulted.
type Config struct {
	// DefaultProtocol is the protocol name selected on a fresh setup, used
	// to seed the Selection Record before the user has chosen one.
	DefaultProtocol string `mapstructure:"default_protocol"`

	// DebounceOverride replaces the Watcher's built-in debounce window when
	// non-zero.
	DebounceOverride time.Duration `mapstructure:"debounce"`

	// Editor is used when set and neither IDE_ENV in the environment nor
	// the project .env names an editor; IDE_ENV takes precedence over it.
	Editor Editor `mapstructure:"editor"`
}

// DefaultConfig returns the zero-override configuration: no default
// protocol, no debounce override, no editor override (IDE_ENV decides).
func DefaultConfig() Config {
	return Config{}
}
