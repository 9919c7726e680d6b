// Package protocolstore implements the ProtocolStore port: a read-only
// packaged template root overlaid by a read-write user root under
// protocol_dir(), with the user root always shadowing the template root.
package protocolstore

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hydra-dynamix/erasmus/internal/core/entities"
	"github.com/hydra-dynamix/erasmus/internal/core/usecases"
)

const frontmatterDelim = "---"

// splitFrontmatter separates an optional leading YAML frontmatter block
// (delimited by lines of exactly "---") from the rest of raw. A user-overlay
// protocol may be authored as:
//
//	---
//	description: release checklist
//	---
//	<Protocol>...</Protocol>
//
// Built-in protocols and bodies with no frontmatter pass through untouched.
func splitFrontmatter(raw string) (metadata map[string]string, body string) {
	lines := strings.Split(raw, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != frontmatterDelim {
		return nil, raw
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != frontmatterDelim {
			continue
		}
		var meta map[string]string
		if err := yaml.Unmarshal([]byte(strings.Join(lines[1:i], "\n")), &meta); err != nil {
			return nil, raw
		}
		return meta, strings.Join(lines[i+1:], "\n")
	}
	return nil, raw
}

// Store implements usecases.ProtocolStore over two directories of
// <name>.xml files: a packaged, read-only template root and a read-write
// user root.
type Store struct {
	userRoot     string
	templateRoot string
	writer       usecases.AtomicWriter
}

var _ usecases.ProtocolStore = (*Store)(nil)

// New constructs a Store. userRoot is protocol_dir(); templateRoot is
// template_dir()/protocols, materialized by the paths adapter before first
// use.
func New(userRoot, templateRoot string, writer usecases.AtomicWriter) *Store {
	return &Store{userRoot: userRoot, templateRoot: templateRoot, writer: writer}
}

// List returns the sorted, deduplicated union of protocol names across
// both roots.
func (s *Store) List(context.Context) ([]string, error) {
	seen := make(map[string]bool)
	for _, root := range []string{s.userRoot, s.templateRoot} {
		entries, err := os.ReadDir(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, &entities.FileSystemError{Op: "readdir", Path: root, Cause: err}
		}
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".xml" {
				continue
			}
			seen[trimXML(e.Name())] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Get returns the first match, checking the user root before the template
// root.
func (s *Store) Get(_ context.Context, name string) (entities.Protocol, bool, error) {
	if raw, ok, err := readIfExists(filepath.Join(s.userRoot, name+".xml")); err != nil {
		return entities.Protocol{}, false, err
	} else if ok {
		meta, body := splitFrontmatter(raw)
		return entities.Protocol{Name: name, Body: body, Origin: entities.OriginUser, Metadata: meta}, true, nil
	}
	if body, ok, err := readIfExists(filepath.Join(s.templateRoot, name+".xml")); err != nil {
		return entities.Protocol{}, false, err
	} else if ok {
		return entities.Protocol{Name: name, Body: body, Origin: entities.OriginBuiltIn}, true, nil
	}
	return entities.Protocol{}, false, nil
}

// Create writes a new protocol to the user root only. Fails with
// *entities.DuplicateError if a user-root file of that name exists. An
// empty or non-well-formed body falls back to the packaged protocol
// template, then to entities.MinimalProtocolBody.
func (s *Store) Create(ctx context.Context, name, body string) (entities.Protocol, error) {
	sanitized, ok := entities.SanitizeName(name)
	if !ok {
		return entities.Protocol{}, &entities.InvalidNameError{Raw: name}
	}

	path := filepath.Join(s.userRoot, sanitized+".xml")
	if _, err := os.Stat(path); err == nil {
		return entities.Protocol{}, &entities.DuplicateError{Kind: "protocol", Name: sanitized}
	}

	resolved := body
	if !looksLikeXML(resolved) {
		if fallback, ok, err := readIfExists(filepath.Join(s.templateRoot, "..", "protocol.xml")); err == nil && ok {
			resolved = fallback
		} else {
			resolved = entities.MinimalProtocolBody
		}
	}

	if err := os.MkdirAll(s.userRoot, 0o755); err != nil {
		return entities.Protocol{}, &entities.FileSystemError{Op: "mkdir", Path: s.userRoot, Cause: err}
	}
	if err := s.writer.WriteAtomic(path, []byte(resolved)); err != nil {
		return entities.Protocol{}, &entities.FileSystemError{Op: "write", Path: path, Cause: err}
	}
	return entities.Protocol{Name: sanitized, Body: resolved, Origin: entities.OriginUser}, nil
}

// Update overwrites a user-root protocol. Fails with *entities.NotFoundError
// if absent there.
func (s *Store) Update(_ context.Context, name, body string) (entities.Protocol, error) {
	path := filepath.Join(s.userRoot, name+".xml")
	if _, err := os.Stat(path); err != nil {
		return entities.Protocol{}, &entities.NotFoundError{Kind: "protocol", Name: name}
	}
	if err := s.writer.WriteAtomic(path, []byte(body)); err != nil {
		return entities.Protocol{}, &entities.FileSystemError{Op: "write", Path: path, Cause: err}
	}
	return entities.Protocol{Name: name, Body: body, Origin: entities.OriginUser}, nil
}

// Delete removes a user-root protocol. Fails with
// *entities.PermissionDeniedError if name resolves only to the template
// root.
func (s *Store) Delete(_ context.Context, name string) error {
	path := filepath.Join(s.userRoot, name+".xml")
	if _, err := os.Stat(path); err != nil {
		if _, tErr := os.Stat(filepath.Join(s.templateRoot, name+".xml")); tErr == nil {
			return &entities.PermissionDeniedError{Reason: "protocol \"" + name + "\" is built-in and cannot be deleted"}
		}
		return &entities.NotFoundError{Kind: "protocol", Name: name}
	}
	if err := os.Remove(path); err != nil {
		return &entities.FileSystemError{Op: "remove", Path: path, Cause: err}
	}
	return nil
}

func readIfExists(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, &entities.FileSystemError{Op: "read", Path: path, Cause: err}
	}
	return string(data), true, nil
}

func trimXML(name string) string {
	return name[:len(name)-len(".xml")]
}

func looksLikeXML(s string) bool {
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return r == '<'
	}
	return false
}
