package entities

// ContextRecord is a named, stored triple of planning fragments persisted
// under .erasmus/context/<name>/. The three files always exist once the
// context directory exists, even if empty.
type ContextRecord struct {
	Name      string
	Fragments map[Kind]string
}

// NewContextRecord builds a ContextRecord with all three kinds present,
// defaulting any kind missing from fragments to its minimal root document.
func NewContextRecord(name string, fragments map[Kind]string) ContextRecord {
	full := make(map[Kind]string, len(Kinds))
	for _, k := range Kinds {
		if body, ok := fragments[k]; ok && body != "" {
			full[k] = body
			continue
		}
		full[k] = "<" + k.RootTag() + "></" + k.RootTag() + ">"
	}
	return ContextRecord{Name: name, Fragments: full}
}
