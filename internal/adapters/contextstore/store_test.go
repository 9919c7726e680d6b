package contextstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hydra-dynamix/erasmus/internal/adapters/atomicfile"
	"github.com/hydra-dynamix/erasmus/internal/adapters/paths"
	"github.com/hydra-dynamix/erasmus/internal/core/entities"
	"github.com/hydra-dynamix/erasmus/internal/core/usecases"
)

type countingEngine struct{ calls int }

func (e *countingEngine) Merge(context.Context) error { e.calls++; return nil }

type noopLogger struct{}

func (noopLogger) Debug(string, ...any)                        {}
func (noopLogger) Info(string, ...any)                         {}
func (noopLogger) Warn(string, ...any)                         {}
func (noopLogger) Error(string, error, ...any)                 {}
func (noopLogger) WithContext(context.Context) usecases.Logger { return noopLogger{} }
func (noopLogger) WithFields(...any) usecases.Logger           { return noopLogger{} }

func newTestStore(t *testing.T) (*Store, *paths.Resolver, *countingEngine) {
	t.Helper()
	root := t.TempDir()
	d, _ := entities.LookupEditorDescriptor(entities.EditorClaude)
	resolver := paths.New(root, d)
	if err := resolver.EnsureFiles(); err != nil {
		t.Fatalf("EnsureFiles: %v", err)
	}
	engine := &countingEngine{}
	store := New(resolver.ContextDir(), resolver.TemplateDir(), resolver, engine, atomicfile.New(), noopLogger{})
	return store, resolver, engine
}

func TestStore_CreateWritesAllThreeKinds(t *testing.T) {
	store, _, _ := newTestStore(t)

	record, err := store.Create(context.Background(), "My Feature", map[entities.Kind]string{
		entities.KindArchitecture: "<Architecture><Title>My Feature</Title></Architecture>",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if record.Name != "My_Feature" {
		t.Errorf("Name = %q, want sanitized My_Feature", record.Name)
	}
	for _, k := range entities.Kinds {
		if record.Fragments[k] == "" {
			t.Errorf("Fragments[%s] is empty", k)
		}
	}
}

func TestStore_CreateDuplicateFails(t *testing.T) {
	store, _, _ := newTestStore(t)
	if _, err := store.Create(context.Background(), "demo", nil); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := store.Create(context.Background(), "demo", nil); err == nil {
		t.Fatal("expected DuplicateError")
	} else if _, ok := err.(*entities.DuplicateError); !ok {
		t.Errorf("got %T, want *entities.DuplicateError", err)
	}
}

func TestStore_CreateWritesMetaSidecar(t *testing.T) {
	store, resolver, _ := newTestStore(t)
	if _, err := store.Create(context.Background(), "demo", nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	metaPath := filepath.Join(resolver.ContextDir(), "demo", "meta.toml")
	if _, err := os.Stat(metaPath); err != nil {
		t.Errorf("expected meta.toml sidecar to exist: %v", err)
	}
}

func TestStore_DeleteNotFound(t *testing.T) {
	store, _, _ := newTestStore(t)
	err := store.Delete(context.Background(), "missing")
	if _, ok := err.(*entities.NotFoundError); !ok {
		t.Errorf("got %T (%v), want *entities.NotFoundError", err, err)
	}
}

func TestStore_ReadMissingIsNotError(t *testing.T) {
	store, _, _ := newTestStore(t)
	_, ok, err := store.Read(context.Background(), "nope", entities.KindArchitecture)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a missing context")
	}
}

func TestStore_LoadCopiesAndMerges(t *testing.T) {
	store, resolver, engine := newTestStore(t)

	record, err := store.Create(context.Background(), "demo", map[entities.Kind]string{
		entities.KindArchitecture: "<Architecture>A</Architecture>",
		entities.KindProgress:     "<Progress>P</Progress>",
		entities.KindTasks:        "<Tasks>T</Tasks>",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Load(context.Background(), record.Name); err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, k := range entities.Kinds {
		data, err := os.ReadFile(resolver.LiveFile(k))
		if err != nil {
			t.Fatalf("reading live file %s: %v", k, err)
		}
		if string(data) != record.Fragments[k] {
			t.Errorf("live file %s = %q, want %q", k, data, record.Fragments[k])
		}
	}
	if engine.calls != 1 {
		t.Errorf("merge calls = %d, want 1", engine.calls)
	}
}

func TestStore_StoreExtractsSanitizedTitle(t *testing.T) {
	store, resolver, _ := newTestStore(t)

	if err := os.WriteFile(resolver.LiveFile(entities.KindArchitecture), []byte("<Architecture><Title>Demo Feature</Title></Architecture>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(resolver.LiveFile(entities.KindProgress), []byte("<Progress></Progress>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(resolver.LiveFile(entities.KindTasks), []byte("<Tasks></Tasks>"), 0o644); err != nil {
		t.Fatal(err)
	}

	record, err := store.Store(context.Background())
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if record.Name != "Demo_Feature" {
		t.Errorf("Name = %q, want Demo_Feature", record.Name)
	}

	if _, err := os.Stat(filepath.Join(resolver.ContextDir(), "Demo_Feature", entities.KindArchitecture.ContextFilename())); err != nil {
		t.Errorf("expected stored context directory to exist: %v", err)
	}
}

func TestStore_StoreFailsWithoutTitle(t *testing.T) {
	store, resolver, _ := newTestStore(t)
	if err := os.WriteFile(resolver.LiveFile(entities.KindArchitecture), []byte("<Architecture></Architecture>"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := store.Store(context.Background())
	if _, ok := err.(*entities.MalformedContentError); !ok {
		t.Errorf("got %T (%v), want *entities.MalformedContentError", err, err)
	}
}

func TestStore_StoreFailsOnMalformedXML(t *testing.T) {
	store, resolver, _ := newTestStore(t)
	if err := os.WriteFile(resolver.LiveFile(entities.KindArchitecture), []byte("<Architecture><Title>Demo</Architecture>"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := store.Store(context.Background())
	if _, ok := err.(*entities.MalformedContentError); !ok {
		t.Errorf("got %T (%v), want *entities.MalformedContentError", err, err)
	}
}
