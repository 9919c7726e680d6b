package entities

import "testing"

func TestDetectEditorFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  Editor
		ok    bool
	}{
		{"windsurf", EditorWindsurf, true},
		{"Windsurf", EditorWindsurf, true},
		{"cursor", EditorCursor, true},
		{"codex", EditorCodex, true},
		{"claude", EditorClaude, true},
		{"CL", EditorClaude, true},
		{"", "", false},
		{"vscode", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := DetectEditorFromEnv(tt.value)
			if ok != tt.ok || got != tt.want {
				t.Errorf("DetectEditorFromEnv(%q) = (%q, %v), want (%q, %v)", tt.value, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestLookupEditorDescriptor(t *testing.T) {
	d, ok := LookupEditorDescriptor(EditorCursor)
	if !ok {
		t.Fatal("expected cursor descriptor to be found")
	}
	if d.RulesFile != ".cursorrules" {
		t.Errorf("RulesFile = %q, want .cursorrules", d.RulesFile)
	}

	if _, ok := LookupEditorDescriptor(Editor("vscode")); ok {
		t.Error("expected unknown editor to not be found")
	}
}
