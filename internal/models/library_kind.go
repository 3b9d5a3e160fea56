package models

// LibraryKind identifies the kind of client library content.
type LibraryKind int

const (
	KindUnknown LibraryKind = iota
	KindCSS
	KindJS
)

// kindByName maps the wire names of library kinds to their enum values.
// Initialized once at package load and never mutated.
var kindByName = map[string]LibraryKind{
	"css": KindCSS,
	"js":  KindJS,
}

// KindFromName resolves a kind name ("css" or "js") to its LibraryKind.
// The second return value is false for unsupported names.
func KindFromName(name string) (LibraryKind, bool) {
	k, ok := kindByName[name]
	return k, ok
}

// Name returns the wire name of the kind.
func (k LibraryKind) Name() string {
	switch k {
	case KindCSS:
		return "css"
	case KindJS:
		return "js"
	}
	return ""
}

// ContentType returns the HTTP content type served for the kind.
func (k LibraryKind) ContentType() string {
	switch k {
	case KindCSS:
		return "text/css; charset=utf-8"
	case KindJS:
		return "application/javascript; charset=utf-8"
	}
	return "application/octet-stream"
}
