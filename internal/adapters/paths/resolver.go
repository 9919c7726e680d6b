// Package paths implements the PathResolver port: a single value,
// constructed once per project root, that knows where every erasmus file
// lives.
package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hydra-dynamix/erasmus/internal/core/entities"
	"github.com/hydra-dynamix/erasmus/internal/core/usecases"
)

// Resolver implements usecases.PathResolver for a single project root,
// resolved lazily and cached for the lifetime of the process.
type Resolver struct {
	root   string
	editor entities.EditorDescriptor
}

var _ usecases.PathResolver = (*Resolver)(nil)

// New constructs a Resolver for root against the given editor descriptor.
// Callers that don't yet know the editor should use DetectEditor first.
func New(root string, editor entities.EditorDescriptor) *Resolver {
	return &Resolver{root: root, editor: editor}
}

// DetectEditor resolves an Editor for root from IDE_ENV, checked in the
// process environment first and then the project .env file. Returns
// ok=false if neither source names a recognized editor — callers are
// expected to prompt and persist the choice with PersistEditorChoice.
func DetectEditor(root string) (entities.Editor, bool) {
	if value := os.Getenv("IDE_ENV"); value != "" {
		if e, ok := entities.DetectEditorFromEnv(value); ok {
			return e, true
		}
	}
	if value, ok := readDotEnv(root)["IDE_ENV"]; ok {
		if e, ok := entities.DetectEditorFromEnv(value); ok {
			return e, true
		}
	}
	return "", false
}

// PersistEditorChoice writes IDE_ENV=<name> into <root>/.env, creating the
// file if needed. An existing file is rewritten from its parsed KEY=value
// entries with IDE_ENV set; lines without "=" are not kept.
func PersistEditorChoice(root string, editor entities.Editor) error {
	vars := readDotEnv(root)
	vars["IDE_ENV"] = string(editor)
	return writeDotEnv(root, vars)
}

func (r *Resolver) ProjectRoot() string { return r.root }

func (r *Resolver) ErasmusDir() string { return filepath.Join(r.root, ".erasmus") }

func (r *Resolver) ContextDir() string { return filepath.Join(r.ErasmusDir(), "context") }

func (r *Resolver) ProtocolDir() string { return filepath.Join(r.ErasmusDir(), "protocol") }

func (r *Resolver) TemplateDir() string { return filepath.Join(r.ErasmusDir(), "templates") }

func (r *Resolver) LiveFile(kind entities.Kind) string {
	return filepath.Join(r.root, kind.LiveFilename())
}

func (r *Resolver) RulesFile() string {
	return filepath.Join(r.root, r.editor.RulesFile)
}

func (r *Resolver) Editor() entities.EditorDescriptor { return r.editor }

// EnsureDirs idempotently creates .erasmus, its context/protocol/templates
// subdirectories, and templates/protocols.
func (r *Resolver) EnsureDirs() error {
	dirs := []string{
		r.ErasmusDir(),
		r.ContextDir(),
		r.ProtocolDir(),
		r.TemplateDir(),
		filepath.Join(r.TemplateDir(), "protocols"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return &entities.FileSystemError{Op: "mkdir", Path: d, Cause: err}
		}
	}
	return nil
}

// EnsureFiles creates the three live planning files if absent, materializes
// the packaged templates into TemplateDir() if absent, and, on windsurf,
// symlinks .cursorrules to the rules file if the rules file exists and
// .cursorrules does not. It does not touch the global rules file, which
// lives outside the project and is not this daemon's to create.
func (r *Resolver) EnsureFiles() error {
	if err := r.EnsureDirs(); err != nil {
		return err
	}
	for _, k := range entities.Kinds {
		if err := touch(r.LiveFile(k)); err != nil {
			return err
		}
	}
	if err := r.materializeTemplates(); err != nil {
		return err
	}

	if r.editor.Editor == entities.EditorWindsurf {
		rulesFile := r.RulesFile()
		cursorRules := filepath.Join(r.root, ".cursorrules")
		if _, err := os.Stat(rulesFile); err == nil {
			if _, err := os.Lstat(cursorRules); os.IsNotExist(err) {
				_ = os.Symlink(rulesFile, cursorRules)
			}
		}
	}

	return nil
}

// templateFiles maps an embedded asset path to its destination under
// TemplateDir().
var templateFiles = map[string]string{
	"assets/meta_rules.xml":          "meta_rules.xml",
	"assets/architecture.xml":        "architecture.xml",
	"assets/progress.xml":            "progress.xml",
	"assets/tasks.xml":               "tasks.xml",
	"assets/protocol.xml":            "protocol.xml",
	"assets/protocols/standard.xml":  "protocols/standard.xml",
}

// materializeTemplates copies every packaged asset into TemplateDir() if
// the destination does not already exist, so a user's edits to the
// materialized copy survive future runs.
func (r *Resolver) materializeTemplates() error {
	for src, rel := range templateFiles {
		dst := filepath.Join(r.TemplateDir(), rel)
		if _, err := os.Stat(dst); err == nil {
			continue
		}
		data, err := assets.ReadFile(src)
		if err != nil {
			return fmt.Errorf("reading packaged template %s: %w", src, err)
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return &entities.FileSystemError{Op: "mkdir", Path: filepath.Dir(dst), Cause: err}
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return &entities.FileSystemError{Op: "write", Path: dst, Cause: err}
		}
	}
	return nil
}

func touch(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return &entities.FileSystemError{Op: "touch", Path: path, Cause: err}
	}
	return f.Close()
}

// readDotEnv parses <root>/.env into a flat key=value map. A missing file
// yields an empty map, not an error — .env is optional until an editor
// choice needs persisting.
func readDotEnv(root string) map[string]string {
	vars := make(map[string]string)
	data, err := os.ReadFile(filepath.Join(root, ".env"))
	if err != nil {
		return vars
	}
	for _, line := range splitLines(string(data)) {
		key, value, ok := splitKV(line)
		if ok {
			vars[key] = value
		}
	}
	return vars
}

// writeDotEnv rewrites <root>/.env from vars, one KEY=value line per entry.
func writeDotEnv(root string, vars map[string]string) error {
	path := filepath.Join(root, ".env")
	var out string
	for k, v := range vars {
		out += fmt.Sprintf("%s=%s\n", k, v)
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return &entities.FileSystemError{Op: "write", Path: path, Cause: err}
	}
	return nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func splitKV(line string) (key, value string, ok bool) {
	for i := 0; i < len(line); i++ {
		if line[i] == '=' {
			return line[:i], line[i+1:], true
		}
	}
	return "", "", false
}
