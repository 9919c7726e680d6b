package protocolstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hydra-dynamix/erasmus/internal/adapters/atomicfile"
	"github.com/hydra-dynamix/erasmus/internal/core/entities"
)

func newTestStore(t *testing.T) (*Store, string, string) {
	t.Helper()
	root := t.TempDir()
	userRoot := filepath.Join(root, "protocol")
	templateRoot := filepath.Join(root, "templates", "protocols")
	if err := os.MkdirAll(userRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(templateRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	return New(userRoot, templateRoot, atomicfile.New()), userRoot, templateRoot
}

func TestStore_UserShadowsBuiltIn(t *testing.T) {
	store, userRoot, templateRoot := newTestStore(t)

	if err := os.WriteFile(filepath.Join(templateRoot, "std.xml"), []byte("<Protocol>builtin</Protocol>"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, ok, err := store.Get(context.Background(), "std")
	if err != nil || !ok || p.Origin != entities.OriginBuiltIn {
		t.Fatalf("Get before overlay = %+v, %v, %v", p, ok, err)
	}

	if err := os.WriteFile(filepath.Join(userRoot, "std.xml"), []byte("<Protocol>user</Protocol>"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, ok, err = store.Get(context.Background(), "std")
	if err != nil || !ok || p.Origin != entities.OriginUser || p.Body != "<Protocol>user</Protocol>" {
		t.Fatalf("Get after overlay = %+v, %v, %v, want user-root shadow", p, ok, err)
	}
}

func TestStore_Get_ParsesYAMLFrontmatter(t *testing.T) {
	store, userRoot, _ := newTestStore(t)
	raw := "---\ndescription: release checklist\n---\n<Protocol>body</Protocol>"
	if err := os.WriteFile(filepath.Join(userRoot, "release.xml"), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	p, ok, err := store.Get(context.Background(), "release")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v, %v", p, ok, err)
	}
	if p.Body != "<Protocol>body</Protocol>" {
		t.Errorf("Body = %q, want frontmatter stripped", p.Body)
	}
	if p.Metadata["description"] != "release checklist" {
		t.Errorf("Metadata[description] = %q, want %q", p.Metadata["description"], "release checklist")
	}
}

func TestStore_Create_DuplicateFails(t *testing.T) {
	store, _, _ := newTestStore(t)

	if _, err := store.Create(context.Background(), "demo", "<Protocol>x</Protocol>"); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := store.Create(context.Background(), "demo", "<Protocol>y</Protocol>"); err == nil {
		t.Fatal("expected DuplicateError on second Create of the same name")
	} else if _, ok := err.(*entities.DuplicateError); !ok {
		t.Errorf("got %T, want *entities.DuplicateError", err)
	}
}

func TestStore_Create_NonXMLFallsBackToMinimal(t *testing.T) {
	store, userRoot, _ := newTestStore(t)

	p, err := store.Create(context.Background(), "blank", "not xml at all")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Body != entities.MinimalProtocolBody {
		t.Errorf("Body = %q, want minimal fallback", p.Body)
	}
	if _, err := os.Stat(filepath.Join(userRoot, "blank.xml")); err != nil {
		t.Errorf("expected file to be written: %v", err)
	}
}

func TestStore_Update_NotFoundInUserRoot(t *testing.T) {
	store, _, templateRoot := newTestStore(t)
	if err := os.WriteFile(filepath.Join(templateRoot, "std.xml"), []byte("<Protocol>x</Protocol>"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := store.Update(context.Background(), "std", "<Protocol>y</Protocol>")
	if _, ok := err.(*entities.NotFoundError); !ok {
		t.Errorf("got %T (%v), want *entities.NotFoundError", err, err)
	}
}

func TestStore_Delete_BuiltInIsPermissionDenied(t *testing.T) {
	store, _, templateRoot := newTestStore(t)
	if err := os.WriteFile(filepath.Join(templateRoot, "std.xml"), []byte("<Protocol>x</Protocol>"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := store.Delete(context.Background(), "std")
	if _, ok := err.(*entities.PermissionDeniedError); !ok {
		t.Errorf("got %T (%v), want *entities.PermissionDeniedError", err, err)
	}
}

func TestStore_Delete_UserOverlayRemoved(t *testing.T) {
	store, userRoot, _ := newTestStore(t)
	if _, err := store.Create(context.Background(), "demo", "<Protocol>x</Protocol>"); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(context.Background(), "demo"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(userRoot, "demo.xml")); !os.IsNotExist(err) {
		t.Error("expected user-overlay file to be removed")
	}
}

func TestStore_List_UnionDeduplicatedSorted(t *testing.T) {
	store, userRoot, templateRoot := newTestStore(t)
	if err := os.WriteFile(filepath.Join(templateRoot, "std.xml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(templateRoot, "zeta.xml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(userRoot, "std.xml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(userRoot, "alpha.xml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	names, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"alpha", "std", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("List = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
