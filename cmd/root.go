// Package cmd implements the erasmus CLI commands using Cobra.
package cmd

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hydra-dynamix/erasmus/internal/adapters/config"
)

// Build-time version information, set via SetVersionInfo from main.go.
var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
	appBuiltBy = "unknown"
)

// Persistent flag values accessible to all subcommands.
var (
	cfgFile     string
	ProjectRoot string
	Verbose     bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "erasmus",
	Short: "Keep an editor's rules file synchronized with your planning documents",
	Long: `erasmus is a workstation daemon that merges a project's planning
documents (architecture, progress, tasks) and a selected protocol into the
rules file your AI coding assistant reads, rewriting it atomically whenever
a planning document changes.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd.Root())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (env: ERASMUS_CONFIG_HOME)")
	rootCmd.PersistentFlags().StringVarP(&ProjectRoot, "project", "p", ".", "project root directory")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "enable verbose output (env: ERASMUS_VERBOSE)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "setup", Title: "Setup"},
		&cobra.Group{ID: "planning", Title: "Planning"},
		&cobra.Group{ID: "daemon", Title: "Daemon"},
	)
}

// Execute runs the root command. This is the main entry point called from main.go.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets build-time version information from ldflags.
// Call this from main.go before Execute().
func SetVersionInfo(version, commit, date, builtBy string) {
	appVersion = version
	appCommit = commit
	appDate = date
	appBuiltBy = builtBy

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(
		fmt.Sprintf("erasmus %s (commit: %s, built: %s by %s)\n", version, commit, date, builtBy),
	)
}

// initConfig sets up Viper configuration with the full hierarchy:
// CLI flags > ERASMUS_* env vars > project erasmus.toml > global XDG
// config.toml > defaults.
func initConfig(root *cobra.Command) error {
	viper.SetConfigType("toml")

	viper.SetDefault("default_protocol", "")
	viper.SetDefault("debounce", "100ms")
	viper.SetDefault("editor", "")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	} else {
		xdg := config.ResolveXDGPaths()
		if path := xdg.ConfigFile(); path != "" {
			viper.SetConfigFile(path)
			_ = viper.ReadInConfig() // silent: global config is optional
		}
	}

	viper.SetConfigFile("erasmus.toml")
	_ = viper.MergeInConfig() // silent: project config is optional

	viper.SetEnvPrefix("ERASMUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	applyCustomAliases(root)

	return nil
}

// applyCustomAliases reads the [aliases] section from config and appends
// custom aliases to matching top-level commands. A value may be a single
// string or an array of strings; mapstructure.Decode normalizes both into
// aliasConfig.Names. Invalid entries are silently skipped.
func applyCustomAliases(root *cobra.Command) {
	aliasMap := viper.GetStringMap("aliases")
	if len(aliasMap) == 0 {
		return
	}

	commands := root.Commands()
	cmdByName := make(map[string]*cobra.Command, len(commands))
	for _, cmd := range commands {
		cmdByName[cmd.Name()] = cmd
	}

	for name, value := range aliasMap {
		cmd, ok := cmdByName[name]
		if !ok {
			continue
		}

		names, ok := decodeAliasNames(value)
		if !ok {
			continue
		}
		cmd.Aliases = append(cmd.Aliases, names...)
	}
}

// decodeAliasNames normalizes a single string or []any of strings into a
// []string via mapstructure, so config authors can write either
// `aliases.watch = "w"` or `aliases.watch = ["w", "run"]`.
func decodeAliasNames(value any) ([]string, bool) {
	switch v := value.(type) {
	case string:
		return []string{v}, true
	case []any:
		var names []string
		if err := mapstructure.Decode(v, &names); err != nil {
			return nil, false
		}
		return names, true
	default:
		return nil, false
	}
}
