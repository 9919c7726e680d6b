// Package usecases defines the ports the core depends on: interfaces
// implemented by the packages under internal/adapters, which also hold the
// merge, watch and CRUD logic, and consumed by those adapters and the cmd
// wiring.
package usecases

import (
	"context"

	"github.com/hydra-dynamix/erasmus/internal/core/entities"
)

// PathResolver locates per-editor rules paths, the .erasmus/ data root, and
// the three live planning-document paths, all relative to a single project
// root fixed at construction time.
//
// Implementations MUST be safe to call repeatedly and MUST NOT hit the
// filesystem beyond what EnsureDirs/EnsureFiles explicitly perform.
type PathResolver interface {
	// ProjectRoot returns the root directory this resolver was constructed
	// against.
	ProjectRoot() string

	// ErasmusDir returns <root>/.erasmus.
	ErasmusDir() string

	// ContextDir returns the root of the Context Store.
	ContextDir() string

	// ProtocolDir returns the user-overlay protocol root.
	ProtocolDir() string

	// TemplateDir returns the packaged template root, materialized on
	// first EnsureFiles call.
	TemplateDir() string

	// LiveFile returns <root>/.ctx.<kind>.xml.
	LiveFile(kind entities.Kind) string

	// RulesFile returns <root>/<editor.RulesFile> for the resolved editor.
	RulesFile() string

	// Editor returns the editor descriptor this resolver was constructed
	// with.
	Editor() entities.EditorDescriptor

	// EnsureDirs idempotently creates every directory this resolver names.
	EnsureDirs() error

	// EnsureFiles idempotently touches the live planning files and
	// materializes packaged templates into TemplateDir() if absent. On
	// windsurf, also creates a <root>/.cursorrules symlink to the rules
	// file if one does not already exist.
	EnsureFiles() error
}

// ContextStore provides CRUD over named triples of planning fragments
// persisted under ContextDir()/<name>/.
type ContextStore interface {
	// List returns the sorted names of stored contexts.
	List(ctx context.Context) ([]string, error)

	// Create sanitizes name and writes a new context directory. fragments
	// may be a partial map; missing kinds fall back to the packaged
	// template for that kind, else a minimal root element. Fails with
	// *entities.DuplicateError if the directory already exists.
	Create(ctx context.Context, name string, fragments map[entities.Kind]string) (entities.ContextRecord, error)

	// Delete removes a context directory and its three files. Fails with
	// *entities.NotFoundError if absent.
	Delete(ctx context.Context, name string) error

	// Read returns one fragment's content, or ok=false if the file is
	// missing.
	Read(ctx context.Context, name string, kind entities.Kind) (content string, ok bool, err error)

	// Update writes one fragment. Fails with *entities.NotFoundError if
	// the context directory does not exist.
	Update(ctx context.Context, name string, kind entities.Kind, body string) error

	// Load copies the three files of the named context onto the live
	// planning files, then triggers a merge. A failure to copy one kind is
	// logged but does not prevent the others from loading or the merge
	// from running on what succeeded.
	Load(ctx context.Context, name string) error

	// Store is the inverse of Load: it reads the three live files, extracts
	// the first <Title> element of the architecture fragment, sanitizes it
	// into a name, and creates a context of that name from the live files.
	// Fails if the title is missing or empty.
	Store(ctx context.Context) (entities.ContextRecord, error)
}

// ProtocolStore is a read-only+overlay registry of named protocol
// fragments: a packaged, read-only template root and a read-write user
// root. The user root always shadows the template root for a given name.
type ProtocolStore interface {
	// List returns the sorted, deduplicated union of protocol names across
	// both roots.
	List(ctx context.Context) ([]string, error)

	// Get returns the first match, checking the user root before the
	// template root. ok is false if name exists in neither.
	Get(ctx context.Context, name string) (protocol entities.Protocol, ok bool, err error)

	// Create writes a new protocol to the user root only. Fails with
	// *entities.DuplicateError if a user-root file of that name exists. A
	// body that is empty or whose first non-whitespace character is not
	// "<" falls back to the packaged protocol template, then to
	// entities.MinimalProtocolBody; other bodies are stored as given,
	// without a well-formedness check.
	Create(ctx context.Context, name, body string) (entities.Protocol, error)

	// Update overwrites a user-root protocol. Fails with
	// *entities.NotFoundError if absent there.
	Update(ctx context.Context, name, body string) (entities.Protocol, error)

	// Delete removes a user-root protocol. Fails with
	// *entities.PermissionDeniedError if name resolves only to the
	// template root.
	Delete(ctx context.Context, name string) error
}

// SelectionStore is the single-name persistent record of the currently
// active protocol, consulted by the Merge Engine on every run.
type SelectionStore interface {
	// Get returns the stored protocol name, or ok=false if unset.
	Get() (name string, ok bool, err error)

	// Set persists name as the active protocol.
	Set(name string) error

	// Clear removes the selection record, if any.
	Clear() error
}

// AtomicWriter writes bytes to path such that a successful return means
// either the new content is visible or nothing on disk has changed.
//
// Implementations MUST write to a temporary file in the same directory as
// path, fsync it, and rename it onto path; the temporary file MUST be
// removed on any error.
type AtomicWriter interface {
	WriteAtomic(path string, data []byte) error
}

// MergeEngine produces the rules document from the template, the three
// live planning files, and the active protocol, and writes it atomically.
// A single process-wide instance serializes Merge calls under a mutex; the
// watcher and explicit CLI invocations share the same instance.
type MergeEngine interface {
	// Merge reads all inputs fresh from disk, substitutes them into the
	// template, and writes the result to the rules file. Errors from this
	// call are the caller's to log or surface; the watcher never lets a
	// Merge error stop it.
	Merge(ctx context.Context) error
}

// FileChangeEvent describes a change detected by the Watcher.
type FileChangeEvent struct {
	// Path is the absolute path of the changed file.
	Path string
	// Op is one of: create, write, remove, rename, chmod.
	Op string
}

// Watcher is a debounced filesystem observer on the three live planning
// files. On an accepted event it invokes the MergeEngine; it never
// propagates merge errors.
//
// Implementations MUST collapse bursts of events on the same path
// separated by less than the debounce window into a single merge, and
// MUST process events for distinct paths independently.
type Watcher interface {
	// Start begins watching and dispatches merges until ctx is canceled or
	// Stop is called. A reentrant Start on an already-running watcher is a
	// no-op, logged as a warning.
	Start(ctx context.Context) error

	// Stop halts dispatch and releases the OS watcher, draining any
	// in-flight merge first.
	Stop() error
}

// Logger is the structured logging interface threaded through every
// adapter. Implementations emit JSON to stderr.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, err error, keysAndValues ...any)

	// WithContext returns a logger that includes a correlation ID derived
	// from ctx (or a freshly generated one if ctx carries none).
	WithContext(ctx context.Context) Logger

	// WithFields returns a logger with additional structured fields merged
	// into every subsequent call.
	WithFields(keysAndValues ...any) Logger
}

// UserPrompter is the CLI-only interactive surface used by setup and the
// select, load and watch subcommands. The core never prompts directly; the watcher's merge
// path treats an unresolved protocol selection as a logged warning, not a
// prompt (see MergeEngine).
type UserPrompter interface {
	// PromptString displays prompt and returns the user's input, or
	// defaultValue if the input is empty.
	PromptString(prompt, defaultValue string) (string, error)

	// PromptChoice displays prompt with the given options and returns the
	// option the user selected.
	PromptChoice(prompt string, options []string) (string, error)

	// PromptYesNo displays prompt and returns the user's yes/no answer,
	// defaulting to defaultYes if the input is empty.
	PromptYesNo(prompt string, defaultYes bool) (bool, error)
}

// ReportFormatter formats CLI-facing success, error, and informational
// messages for human display.
type ReportFormatter interface {
	PrintSuccess(msg string, keysAndValues ...any)
	PrintError(err error)
	PrintInfo(msg string)
}
