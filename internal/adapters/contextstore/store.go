// Package contextstore implements the ContextStore port: CRUD and
// load/store over named triples of planning fragments persisted under
// context_dir()/<name>/.
package contextstore

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/hydra-dynamix/erasmus/internal/core/entities"
	"github.com/hydra-dynamix/erasmus/internal/core/usecases"
)

// titlePattern extracts the text of the first <Title> element in an
// architecture fragment, non-greedy, tolerant of attributes, and matching
// at any nesting depth. Store gates extraction on entities.WellFormedXML
// first, so by the time this runs the fragment is already a valid XML
// document; the regex only needs to locate the element within it.
var titlePattern = regexp.MustCompile(`(?s)<Title\b[^>]*>(.*?)</Title>`)

const metaFilename = "meta.toml"

// contextMeta is a sidecar recording facts not part of the three planning
// fragments themselves: when a context was first created, and the title
// it was created or last stored under.
type contextMeta struct {
	CreatedAt time.Time `toml:"created_at"`
	Title     string    `toml:"title"`
}

func writeMeta(dir, title string) error {
	path := filepath.Join(dir, metaFilename)
	meta := contextMeta{Title: title}
	if existing, err := os.ReadFile(path); err == nil {
		var prior contextMeta
		if decodeErr := toml.Unmarshal(existing, &prior); decodeErr == nil && !prior.CreatedAt.IsZero() {
			meta.CreatedAt = prior.CreatedAt
		}
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	data, err := toml.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Store implements usecases.ContextStore over a directory of
// <name>/ctx.<kind>.xml files, falling back to the packaged per-kind
// templates and then to a minimal root element when content is absent.
type Store struct {
	contextDir  string
	templateDir string
	resolver    usecases.PathResolver
	engine      usecases.MergeEngine
	writer      usecases.AtomicWriter
	logger      usecases.Logger
}

var _ usecases.ContextStore = (*Store)(nil)

// New constructs a Store rooted at contextDir, using templateDir for
// per-kind fallback bodies, resolver for the live planning file paths that
// Load/Store operate on, engine to trigger a merge after Load, and writer
// for atomic single-file writes.
func New(contextDir, templateDir string, resolver usecases.PathResolver, engine usecases.MergeEngine, writer usecases.AtomicWriter, logger usecases.Logger) *Store {
	return &Store{
		contextDir:  contextDir,
		templateDir: templateDir,
		resolver:    resolver,
		engine:      engine,
		writer:      writer,
		logger:      logger,
	}
}

// List returns the sorted names of stored contexts.
func (s *Store) List(context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.contextDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &entities.FileSystemError{Op: "readdir", Path: s.contextDir, Cause: err}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Create sanitizes name and writes a new context directory. fragments may
// be a partial map; missing kinds fall back to the packaged template for
// that kind, else a minimal root element.
func (s *Store) Create(_ context.Context, name string, fragments map[entities.Kind]string) (entities.ContextRecord, error) {
	sanitized, ok := entities.SanitizeName(name)
	if !ok {
		return entities.ContextRecord{}, &entities.InvalidNameError{Raw: name}
	}

	dir := filepath.Join(s.contextDir, sanitized)
	if _, err := os.Stat(dir); err == nil {
		return entities.ContextRecord{}, &entities.DuplicateError{Kind: "context", Name: sanitized}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return entities.ContextRecord{}, &entities.FileSystemError{Op: "mkdir", Path: dir, Cause: err}
	}

	record := entities.ContextRecord{Name: sanitized, Fragments: make(map[entities.Kind]string, len(entities.Kinds))}
	for _, k := range entities.Kinds {
		body := s.resolveBody(k, fragments[k])
		record.Fragments[k] = body
		path := filepath.Join(dir, k.ContextFilename())
		if err := s.writer.WriteAtomic(path, []byte(body)); err != nil {
			return entities.ContextRecord{}, &entities.FileSystemError{Op: "write", Path: path, Cause: err}
		}
	}
	if err := writeMeta(dir, sanitized); err != nil {
		s.logger.Warn("context create: failed to write metadata sidecar", "context", sanitized, "error", err)
	}
	return record, nil
}

// resolveBody applies the priority order from the Context Store spec:
// caller-supplied body (sanitized), else the packaged template for kind,
// else a minimal root element.
func (s *Store) resolveBody(k entities.Kind, supplied string) string {
	if supplied != "" {
		return entities.SanitizeXMLContent(supplied)
	}
	templatePath := filepath.Join(s.templateDir, k.TemplateFilename())
	if data, err := os.ReadFile(templatePath); err == nil {
		return string(data)
	}
	return "<" + k.RootTag() + "></" + k.RootTag() + ">"
}

// Delete removes a context directory and its three files.
func (s *Store) Delete(_ context.Context, name string) error {
	dir := filepath.Join(s.contextDir, name)
	if _, err := os.Stat(dir); err != nil {
		return &entities.NotFoundError{Kind: "context", Name: name}
	}
	if err := os.RemoveAll(dir); err != nil {
		return &entities.FileSystemError{Op: "remove", Path: dir, Cause: err}
	}
	return nil
}

// Read returns one fragment's content, or ok=false if the file is missing.
func (s *Store) Read(_ context.Context, name string, kind entities.Kind) (string, bool, error) {
	path := filepath.Join(s.contextDir, name, kind.ContextFilename())
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, &entities.FileSystemError{Op: "read", Path: path, Cause: err}
	}
	return string(data), true, nil
}

// Update writes one fragment. Fails with *entities.NotFoundError if the
// context directory does not exist.
func (s *Store) Update(_ context.Context, name string, kind entities.Kind, body string) error {
	dir := filepath.Join(s.contextDir, name)
	if _, err := os.Stat(dir); err != nil {
		return &entities.NotFoundError{Kind: "context", Name: name}
	}
	path := filepath.Join(dir, kind.ContextFilename())
	if err := s.writer.WriteAtomic(path, []byte(entities.SanitizeXMLContent(body))); err != nil {
		return &entities.FileSystemError{Op: "write", Path: path, Cause: err}
	}
	return nil
}

// Load copies the three files of the named context onto the live planning
// files, then triggers a merge. A failure to copy one kind is logged but
// does not prevent the others from loading or the merge from running on
// what succeeded.
func (s *Store) Load(ctx context.Context, name string) error {
	dir := filepath.Join(s.contextDir, name)
	if _, err := os.Stat(dir); err != nil {
		return &entities.NotFoundError{Kind: "context", Name: name}
	}

	for _, k := range entities.Kinds {
		src := filepath.Join(dir, k.ContextFilename())
		data, err := os.ReadFile(src)
		if err != nil {
			s.logger.Warn("context load: failed to read fragment", "context", name, "kind", string(k), "error", err)
			continue
		}
		dst := s.resolver.LiveFile(k)
		if err := s.writer.WriteAtomic(dst, data); err != nil {
			s.logger.Warn("context load: failed to write live file", "context", name, "kind", string(k), "error", err)
		}
	}

	return s.engine.Merge(ctx)
}

// Store is the inverse of Load: it reads the three live files, fails with
// *entities.MalformedContentError if the architecture fragment isn't
// well-formed XML, otherwise extracts its first <Title> element, sanitizes
// the result into a name, and creates a context of that name from the live
// files.
func (s *Store) Store(ctx context.Context) (entities.ContextRecord, error) {
	archPath := s.resolver.LiveFile(entities.KindArchitecture)
	archData, err := os.ReadFile(archPath)
	if err != nil {
		return entities.ContextRecord{}, &entities.MalformedContentError{Path: archPath, Detail: "architecture live file is unreadable"}
	}

	if !entities.WellFormedXML(string(archData)) {
		return entities.ContextRecord{}, &entities.MalformedContentError{Path: archPath, Detail: "architecture live file is not well-formed XML"}
	}

	match := titlePattern.FindStringSubmatch(string(archData))
	if match == nil {
		return entities.ContextRecord{}, &entities.MalformedContentError{Path: archPath, Detail: "no <Title> element found"}
	}
	title := strings.TrimSpace(match[1])
	if title == "" {
		return entities.ContextRecord{}, &entities.MalformedContentError{Path: archPath, Detail: "<Title> element is empty"}
	}

	fragments := make(map[entities.Kind]string, len(entities.Kinds))
	for _, k := range entities.Kinds {
		data, err := os.ReadFile(s.resolver.LiveFile(k))
		if err != nil {
			continue
		}
		fragments[k] = string(data)
	}

	return s.Create(ctx, title, fragments)
}
