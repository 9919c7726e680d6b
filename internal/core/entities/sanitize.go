package entities

import (
	"encoding/xml"
	"io"
	"regexp"
	"strings"
	"unicode"
)

// emojiPattern strips the block of codepoints the original tooling treated
// as decorative noise in protocol and context names.
var emojiPattern = regexp.MustCompile(`[\x{1F300}-\x{1F9FF}]`)

// allowedSpecial mirrors the small set of punctuation the original CLI let
// through unescaped: markdown-ish and path-ish characters that show up in
// protocol and context names without needing a rename.
var allowedSpecial = regexp.MustCompile(`[#*_\-` + "`" + `~\[\](){}|<>.!]`)

var collapseUnderscores = regexp.MustCompile(`_+`)

// SanitizeName reduces raw into a name safe to use as a file or directory
// component: emoji and other non-ASCII characters are dropped, disallowed
// ASCII characters become underscores, runs of underscores collapse to one,
// a leading non-letter is prefixed with "p_", and trailing underscores are
// trimmed.
//
// Returns ("", false) when the result would be empty — callers should treat
// that as an InvalidNameError.
func SanitizeName(raw string) (string, bool) {
	noEmoji := emojiPattern.ReplaceAllString(raw, "")

	var b strings.Builder
	for _, r := range noEmoji {
		if r > unicode.MaxASCII {
			continue
		}
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case allowedSpecial.MatchString(string(r)):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	sanitized := collapseUnderscores.ReplaceAllString(b.String(), "_")
	if sanitized == "" {
		return "", false
	}
	if !unicode.IsLetter(rune(sanitized[0])) {
		sanitized = "p_" + sanitized
	}
	sanitized = strings.TrimRight(sanitized, "_")
	if sanitized == "" {
		return "", false
	}
	return sanitized, true
}

// controlChars matches the C0 control range (minus tab/newline/CR, which
// XML tolerates) plus DEL — bytes that have no business inside XML text.
var controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

// unpairedAmpersand matches "&" that does not already begin a recognized
// entity or numeric character reference.
var unpairedAmpersand = regexp.MustCompile(`&(amp|lt|gt|quot|apos|#[0-9]+|#x[0-9a-fA-F]+);|&`)

// xmlDeclaration is prefixed onto content that fails its first parse
// attempt, the same recovery step the original tooling took before giving
// up on a fragment entirely.
const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// knownEmptyDocument is the last-resort fallback: a minimal well-formed
// document returned when neither the raw content nor the wrapped content
// parses as XML.
const knownEmptyDocument = xmlDeclaration + "<root></root>"

// WellFormedXML reports whether s is a single well-formed XML document: one
// root element, every start tag closed by a matching end tag, and no
// non-whitespace content outside that root.
func WellFormedXML(s string) bool {
	dec := xml.NewDecoder(strings.NewReader(s))
	dec.Strict = true

	depth := 0
	sawRoot := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				if sawRoot {
					return false
				}
				sawRoot = true
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(strings.TrimSpace(string(t))) > 0 {
				return false
			}
		}
	}
	return sawRoot && depth == 0
}

// SanitizeXMLContent strips control characters, escapes any "&" that isn't
// already part of a well-formed entity or numeric reference, and then
// validates the result as XML. Content that fails to parse is wrapped in a
// default <root> element and re-validated; content that still fails to
// parse after wrapping is replaced with a known-empty document. Every
// caller therefore gets well-formed output back regardless of what was
// supplied, per spec.
func SanitizeXMLContent(content string) string {
	stripped := controlChars.ReplaceAllString(content, "")
	escaped := unpairedAmpersand.ReplaceAllStringFunc(stripped, func(match string) string {
		if match == "&" {
			return "&amp;"
		}
		return match
	})
	if WellFormedXML(escaped) {
		return escaped
	}

	wrapped := xmlDeclaration + "<root>" + escaped + "</root>"
	if WellFormedXML(wrapped) {
		return wrapped
	}
	return knownEmptyDocument
}
