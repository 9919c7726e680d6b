package entities

// Origin records which protocol search root a Protocol was resolved from.
type Origin string

const (
	OriginUser    Origin = "user"
	OriginBuiltIn Origin = "built_in"
)

// Protocol is a named text blob representing a workflow description. A
// user-overlay protocol of a given name shadows a built-in of the same
// name; built-ins are read-only.
type Protocol struct {
	Name     string
	Body     string
	Origin   Origin
	// Metadata holds fields from an optional YAML frontmatter block
	// (`---`-delimited) a user-overlay protocol may be authored with,
	// e.g. a human-readable description. Built-ins never carry it.
	Metadata map[string]string
}

// MinimalProtocolBody is the document a Protocol falls back to when no
// caller-supplied body, user overlay, or built-in template can supply one.
const MinimalProtocolBody = `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + `<Protocol></Protocol>`
