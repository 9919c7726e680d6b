package cmd

import (
	"bufio"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/hydra-dynamix/erasmus/internal/adapters/atomicfile"
	"github.com/hydra-dynamix/erasmus/internal/adapters/cli"
	"github.com/hydra-dynamix/erasmus/internal/adapters/config"
	"github.com/hydra-dynamix/erasmus/internal/adapters/contextstore"
	"github.com/hydra-dynamix/erasmus/internal/adapters/logging"
	"github.com/hydra-dynamix/erasmus/internal/adapters/merge"
	"github.com/hydra-dynamix/erasmus/internal/adapters/paths"
	"github.com/hydra-dynamix/erasmus/internal/adapters/protocolstore"
	"github.com/hydra-dynamix/erasmus/internal/adapters/selection"
	"github.com/hydra-dynamix/erasmus/internal/core/entities"
	"github.com/hydra-dynamix/erasmus/internal/core/usecases"
)

// deps bundles every adapter a subcommand needs, wired once from the
// resolved project root and configuration.
type deps struct {
	resolver  *paths.Resolver
	contexts  usecases.ContextStore
	protocols usecases.ProtocolStore
	selection usecases.SelectionStore
	engine    usecases.MergeEngine
	prompter  usecases.UserPrompter
	report    usecases.ReportFormatter
	logger    usecases.Logger
	debounce  time.Duration
}

// buildDeps resolves the editor (from IDE_ENV, the project .env, or the
// resolved config's editor setting, in that order of precedence for
// IDE_ENV-style detection; the config setting only applies if neither
// source names an editor) and wires every adapter against root.
func buildDeps(root string) (*deps, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	level := logging.LevelInfo
	if Verbose || viper.GetBool("verbose") {
		level = logging.LevelDebug
	}
	logger := logging.New(level)

	loader := config.NewLoader()
	cfg, err := loader.Load(root)
	if err != nil {
		logger.Warn("failed to load configuration, continuing with defaults", "error", err)
		cfg = entities.DefaultConfig()
	}

	editor, ok := paths.DetectEditor(root)
	if !ok && cfg.Editor != "" {
		editor = cfg.Editor
	}
	descriptor, ok := entities.LookupEditorDescriptor(editor)
	if !ok {
		descriptor, _ = entities.LookupEditorDescriptor(entities.EditorClaude)
	}

	resolver := paths.New(root, descriptor)
	if err := resolver.EnsureFiles(); err != nil {
		return nil, err
	}

	writer := atomicfile.New()
	selectionStore := selection.New(resolver.ErasmusDir(), writer)
	protocolStore := protocolstore.New(resolver.ProtocolDir(), filepath.Join(resolver.TemplateDir(), "protocols"), writer)
	engine := merge.New(resolver, protocolStore, selectionStore, writer, logger)
	contextStore := contextstore.New(resolver.ContextDir(), resolver.TemplateDir(), resolver, engine, writer, logger)

	if cfg.DefaultProtocol != "" {
		if _, set, _ := selectionStore.Get(); !set {
			_ = selectionStore.Set(cfg.DefaultProtocol)
		}
	}

	return &deps{
		resolver:  resolver,
		contexts:  contextStore,
		protocols: protocolStore,
		selection: selectionStore,
		engine:    engine,
		prompter:  cli.NewPrompter(stdinReader()),
		report:    cli.NewReportFormatter(),
		logger:    logger,
		debounce:  cfg.DebounceOverride,
	}, nil
}

func stdinReader() *bufio.Reader {
	return bufio.NewReader(os.Stdin)
}

// backupRulesFileIfPresent copies the rules file to a ".old" sibling
// before it's overwritten. The merge engine's atomic write already
// guarantees the rules file itself is never left half-written, so this is
// an opt-in convenience for recovering a prior hand-edited version, not a
// correctness requirement.
func backupRulesFileIfPresent(d *deps) error {
	path := d.resolver.RulesFile()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return os.WriteFile(path+".old", data, 0o644)
}
