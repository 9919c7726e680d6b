package entities

import "strings"

// Editor identifies which AI coding assistant's rules file the daemon
// keeps synchronized. It is resolved once per process and cached.
type Editor string

const (
	EditorWindsurf Editor = "windsurf"
	EditorCursor   Editor = "cursor"
	EditorCodex    Editor = "codex"
	EditorClaude   Editor = "claude"
)

// EditorDescriptor is the static mapping from an Editor to the paths it
// reads. RulesFile is relative to the project root; GlobalRulesPath may
// contain a "$HOME" or "<root>" placeholder, which is stored as literal
// text and is not expanded by the resolver.
type EditorDescriptor struct {
	Editor          Editor
	RulesFile       string
	GlobalRulesPath string
}

// editorDescriptors is the fixed four-entry table of recognized editors.
// Values match the rules-file conventions each assistant actually reads.
var editorDescriptors = map[Editor]EditorDescriptor{
	EditorWindsurf: {
		Editor:          EditorWindsurf,
		RulesFile:       ".windsurfrules",
		GlobalRulesPath: "$HOME/.codeium/windsurf/memories/global_rules.md",
	},
	EditorCursor: {
		Editor:          EditorCursor,
		RulesFile:       ".cursorrules",
		GlobalRulesPath: "<root>/.cursor/global_rules.md",
	},
	EditorCodex: {
		Editor:          EditorCodex,
		RulesFile:       ".codex.md",
		GlobalRulesPath: "$HOME/.codex/instructions.md",
	},
	EditorClaude: {
		Editor:          EditorClaude,
		RulesFile:       "CLAUDE.md",
		GlobalRulesPath: "$HOME/.claude/CLAUDE.md",
	},
}

// LookupEditorDescriptor returns the descriptor for e, or false if e is not
// one of the four recognized editors.
func LookupEditorDescriptor(e Editor) (EditorDescriptor, bool) {
	d, ok := editorDescriptors[e]
	return d, ok
}

// DetectEditorFromEnv maps an IDE_ENV value to an Editor using the
// first-letter prefix rule: case-insensitively, "w*" -> windsurf,
// "cu*" -> cursor, "co*" -> codex, "cl*" -> claude. Returns false if value
// is empty or matches none of the prefixes.
func DetectEditorFromEnv(value string) (Editor, bool) {
	lower := strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.HasPrefix(lower, "w"):
		return EditorWindsurf, true
	case strings.HasPrefix(lower, "cu"):
		return EditorCursor, true
	case strings.HasPrefix(lower, "co"):
		return EditorCodex, true
	case strings.HasPrefix(lower, "cl"):
		return EditorClaude, true
	default:
		return "", false
	}
}
