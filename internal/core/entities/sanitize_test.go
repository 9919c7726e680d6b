package entities

import "testing"

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantOK  bool
	}{
		{"plain", "release", "release", true},
		{"spaces become underscores", "release notes", "release_notes", true},
		{"collapses runs", "release   notes", "release_notes", true},
		{"leading digit gets prefixed", "3rd-party", "p_3rd-party", true},
		{"allowed punctuation kept", "release-notes_v2.final!", "release-notes_v2.final!", true},
		{"emoji stripped", "release 🚀 notes", "release_notes", true},
		{"trailing underscore trimmed", "release@@@", "release", true},
		{"disallowed chars collapse then get prefixed", "@@@", "p", true},
		{"empty input sanitizes to empty", "", "", false},
		{"emoji-only input sanitizes to empty", "🚀🚀🚀", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SanitizeName(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("SanitizeName(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeXMLContent(t *testing.T) {
	wrap := func(body string) string {
		return xmlDeclaration + "<root>" + body + "</root>"
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"well-formed fragment unchanged", "<Task>build it</Task>", "<Task>build it</Task>"},
		{"well-formed fragment with escaped ampersand unchanged", "<Task>Q&amp;A</Task>", "<Task>Q&amp;A</Task>"},
		{"bare text has no root element, gets wrapped", "Q&A", wrap("Q&amp;A")},
		{"bare text with already-escaped entity gets wrapped", "Q&amp;A", wrap("Q&amp;A")},
		{"bare numeric reference gets wrapped", "&#65;", wrap("&#65;")},
		{"bare hex reference gets wrapped", "&#x41;", wrap("&#x41;")},
		{"control characters stripped before validation", "<Task>line1\x00line2\x07</Task>", "<Task>line1line2</Task>"},
		{"tabs and newlines preserved inside a well-formed fragment", "<Task>line1\tline2\n</Task>", "<Task>line1\tline2\n</Task>"},
		{"unclosed tag cannot be rescued by wrapping, falls back to known-empty document", "<Task>build it", knownEmptyDocument},
		{"mismatched end tag falls back to known-empty document", "<Task>build it</Oops>", knownEmptyDocument},
		{"multiple root elements rescued by wrapping", "<A/><B/>", wrap("<A/><B/>")},
		{"empty input falls back to known-empty document", "", knownEmptyDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeXMLContent(tt.input); got != tt.want {
				t.Errorf("SanitizeXMLContent(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWellFormedXML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"single root element", "<root></root>", true},
		{"self-closing root", "<root/>", true},
		{"nested elements", "<a><b>text</b></a>", true},
		{"declaration plus root", xmlDeclaration + "<root></root>", true},
		{"bare text, no root", "just text", false},
		{"unclosed tag", "<a>", false},
		{"mismatched tags", "<a></b>", false},
		{"two root elements", "<a/><b/>", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WellFormedXML(tt.input); got != tt.want {
				t.Errorf("WellFormedXML(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
