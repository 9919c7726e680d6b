// Package merge implements the MergeEngine port: composing the live
// planning fragments and the active protocol into the rules document the
// editor reads.
package merge

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/hydra-dynamix/erasmus/internal/core/entities"
	"github.com/hydra-dynamix/erasmus/internal/core/usecases"
)

// markerPattern returns the non-greedy, multiline region for a template
// marker, e.g. <!--ARCHITECTURE-->...<!--/ARCHITECTURE-->, inclusive of
// the comment delimiters.
func markerPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)<!--` + name + `-->.*?<!--/` + name + `-->`)
}

var (
	archPattern     = markerPattern("ARCHITECTURE")
	progressPattern = markerPattern("PROGRESS")
	tasksPattern    = markerPattern("TASKS")
	protocolPattern = markerPattern("PROTOCOL")

	// existingProtocolElement captures a <Protocol>...</Protocol> element
	// (or a self-closing <Protocol/>) already present in a rules file, so
	// the fallback rule can preserve it when no protocol is selected.
	existingProtocolElement = regexp.MustCompile(`(?s)<Protocol\b[^>]*?(?:/>|>.*?</Protocol>)`)
)

// Engine implements usecases.MergeEngine. A single Engine instance is
// shared by the watcher and every explicit CLI invocation; Merge serializes
// under mu so concurrent callers never interleave writes.
type Engine struct {
	resolver  usecases.PathResolver
	protocols usecases.ProtocolStore
	selection usecases.SelectionStore
	writer    usecases.AtomicWriter
	logger    usecases.Logger

	mu sync.Mutex
}

var _ usecases.MergeEngine = (*Engine)(nil)

// New constructs an Engine wired to the given ports.
func New(resolver usecases.PathResolver, protocols usecases.ProtocolStore, selection usecases.SelectionStore, writer usecases.AtomicWriter, logger usecases.Logger) *Engine {
	return &Engine{
		resolver:  resolver,
		protocols: protocols,
		selection: selection,
		writer:    writer,
		logger:    logger,
	}
}

// Merge reads the template and every input fresh from disk, substitutes
// into the four markers, and writes the result atomically to the rules
// file. If the template is missing it falls back to concatenating the
// three planning bodies with a blank-line separator, with no protocol
// substitution, to keep the system live during initial setup.
func (e *Engine) Merge(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	templatePath := filepath.Join(e.resolver.TemplateDir(), "meta_rules.xml")
	template, err := os.ReadFile(templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return e.fallbackMerge()
		}
		return &entities.FileSystemError{Op: "read", Path: templatePath, Cause: err}
	}

	arch := e.readLive(entities.KindArchitecture)
	progress := e.readLive(entities.KindProgress)
	tasks := e.readLive(entities.KindTasks)

	content := string(template)
	content = archPattern.ReplaceAllLiteralString(content, entities.SanitizeXMLContent(arch))
	content = progressPattern.ReplaceAllLiteralString(content, entities.SanitizeXMLContent(progress))
	content = tasksPattern.ReplaceAllLiteralString(content, entities.SanitizeXMLContent(tasks))

	protocolBody, ok := e.resolveProtocol(ctx)
	if !ok {
		e.logger.Warn("no protocol resolvable for merge, leaving rules file unchanged")
		return nil
	}
	content = protocolPattern.ReplaceAllLiteralString(content, protocolBody)

	rulesPath := e.resolver.RulesFile()
	if err := e.writer.WriteAtomic(rulesPath, []byte(content)); err != nil {
		return &entities.FileSystemError{Op: "write", Path: rulesPath, Cause: err}
	}
	return nil
}

func (e *Engine) readLive(kind entities.Kind) string {
	data, err := os.ReadFile(e.resolver.LiveFile(kind))
	if err != nil {
		return ""
	}
	return string(data)
}

// resolveProtocol implements the PROTOCOL field selection rule: a selected
// protocol's body if resolvable, else the existing rules file's <Protocol>
// element, else ok=false (caller logs a warning and leaves the file alone).
func (e *Engine) resolveProtocol(ctx context.Context) (string, bool) {
	if name, ok, err := e.selection.Get(); err == nil && ok {
		if protocol, found, err := e.protocols.Get(ctx, name); err == nil && found {
			return protocol.Body, true
		}
	}

	existing, err := os.ReadFile(e.resolver.RulesFile())
	if err != nil {
		return "", false
	}
	match := existingProtocolElement.FindString(string(existing))
	if match == "" {
		return "", false
	}
	return match, true
}

// fallbackMerge concatenates the three planning bodies with a blank-line
// separator and writes that with no protocol substitution. Used only when
// meta_rules.xml is missing, to keep the system live during setup.
func (e *Engine) fallbackMerge() error {
	arch := e.readLive(entities.KindArchitecture)
	progress := e.readLive(entities.KindProgress)
	tasks := e.readLive(entities.KindTasks)

	content := strings.Join([]string{arch, progress, tasks}, "\n\n")
	rulesPath := e.resolver.RulesFile()
	if err := e.writer.WriteAtomic(rulesPath, []byte(content)); err != nil {
		return &entities.FileSystemError{Op: "write", Path: rulesPath, Cause: err}
	}
	e.logger.Warn("meta_rules.xml template missing, wrote concatenated fallback", "path", rulesPath)
	return nil
}
