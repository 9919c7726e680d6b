package paths

import "embed"

// assets holds the packaged templates materialized into a project's
// .erasmus/templates/ directory on first EnsureFiles call: meta_rules.xml,
// the per-kind fallback documents, the protocol fallback document, and the
// built-in protocols under templates/protocols/.
//
//go:embed assets/meta_rules.xml assets/architecture.xml assets/progress.xml assets/tasks.xml assets/protocol.xml assets/protocols/*.xml
var assets embed.FS
