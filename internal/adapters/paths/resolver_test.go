package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hydra-dynamix/erasmus/internal/core/entities"
)

func TestResolver_Paths(t *testing.T) {
	root := t.TempDir()
	d, _ := entities.LookupEditorDescriptor(entities.EditorClaude)
	r := New(root, d)

	if r.ErasmusDir() != filepath.Join(root, ".erasmus") {
		t.Errorf("ErasmusDir = %q", r.ErasmusDir())
	}
	if r.ContextDir() != filepath.Join(root, ".erasmus", "context") {
		t.Errorf("ContextDir = %q", r.ContextDir())
	}
	if r.LiveFile(entities.KindArchitecture) != filepath.Join(root, ".ctx.architecture.xml") {
		t.Errorf("LiveFile = %q", r.LiveFile(entities.KindArchitecture))
	}
	if r.RulesFile() != filepath.Join(root, "CLAUDE.md") {
		t.Errorf("RulesFile = %q", r.RulesFile())
	}
}

func TestResolver_EnsureDirsAndFiles(t *testing.T) {
	root := t.TempDir()
	d, _ := entities.LookupEditorDescriptor(entities.EditorCodex)
	r := New(root, d)

	if err := r.EnsureFiles(); err != nil {
		t.Fatalf("EnsureFiles: %v", err)
	}

	for _, dir := range []string{r.ContextDir(), r.ProtocolDir(), r.TemplateDir()} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist", dir)
		}
	}
	for _, k := range entities.Kinds {
		if _, err := os.Stat(r.LiveFile(k)); err != nil {
			t.Errorf("expected live file for %s to exist: %v", k, err)
		}
	}
}

func TestResolver_EnsureFiles_MaterializesTemplates(t *testing.T) {
	root := t.TempDir()
	d, _ := entities.LookupEditorDescriptor(entities.EditorClaude)
	r := New(root, d)

	if err := r.EnsureFiles(); err != nil {
		t.Fatalf("EnsureFiles: %v", err)
	}

	for _, name := range []string{"meta_rules.xml", "architecture.xml", "progress.xml", "tasks.xml", "protocol.xml", filepath.Join("protocols", "standard.xml")} {
		path := filepath.Join(r.TemplateDir(), name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected template %s to be materialized: %v", name, err)
		}
	}
}

func TestResolver_EnsureFiles_DoesNotOverwriteEditedTemplate(t *testing.T) {
	root := t.TempDir()
	d, _ := entities.LookupEditorDescriptor(entities.EditorClaude)
	r := New(root, d)

	if err := r.EnsureFiles(); err != nil {
		t.Fatalf("EnsureFiles: %v", err)
	}
	customPath := filepath.Join(r.TemplateDir(), "meta_rules.xml")
	if err := os.WriteFile(customPath, []byte("custom"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.EnsureFiles(); err != nil {
		t.Fatalf("EnsureFiles (second pass): %v", err)
	}
	got, _ := os.ReadFile(customPath)
	if string(got) != "custom" {
		t.Error("expected user edits to the materialized template to be preserved")
	}
}

func TestResolver_WindsurfSymlinkFallback(t *testing.T) {
	root := t.TempDir()
	d, _ := entities.LookupEditorDescriptor(entities.EditorWindsurf)
	r := New(root, d)

	if err := r.EnsureFiles(); err != nil {
		t.Fatalf("EnsureFiles: %v", err)
	}
	if err := os.WriteFile(r.RulesFile(), []byte("rules"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.EnsureFiles(); err != nil {
		t.Fatalf("EnsureFiles (second pass): %v", err)
	}

	cursorRules := filepath.Join(root, ".cursorrules")
	info, err := os.Lstat(cursorRules)
	if err != nil {
		t.Fatalf("expected .cursorrules symlink to exist: %v", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Error("expected .cursorrules to be a symlink")
	}
}

func TestPersistEditorChoiceAndDetectEditor(t *testing.T) {
	root := t.TempDir()

	if err := PersistEditorChoice(root, entities.EditorCursor); err != nil {
		t.Fatalf("PersistEditorChoice: %v", err)
	}

	got, ok := DetectEditor(root)
	if !ok {
		t.Fatal("expected DetectEditor to find the persisted choice")
	}
	if got != entities.EditorCursor {
		t.Errorf("DetectEditor = %q, want cursor", got)
	}
}

func TestDetectEditor_NoneConfigured(t *testing.T) {
	root := t.TempDir()
	if _, ok := DetectEditor(root); ok {
		t.Error("expected DetectEditor to report not-found for an empty project")
	}
}
