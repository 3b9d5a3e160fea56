package models

import (
	"time"

	"github.com/google/uuid"
)

// AMP rendering modes. A page's effective mode decides whether requests
// are forwarded to the .amp rendering variant.
const (
	AmpModeOnly   = "ampOnly"
	AmpModePaired = "pairedAmp"
	AmpModeNone   = "noAmp"
)

// Property names read from resource value maps.
const (
	PropAmpOnly    = "ampOnly"
	PropAmpMode    = "ampMode"
	PropCategories = "categories"
	PropTitle      = "jcr:title"
)

// Resource is an addressable content node: a path plus a flat property map.
type Resource struct {
	Path       string         `db:"path" json:"path"`
	Properties map[string]any `db:"properties" json:"properties"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updatedAt"`
}

// String returns the named property as a string, or "" when absent or
// of another type.
func (r *Resource) String(key string) string {
	if r == nil || r.Properties == nil {
		return ""
	}
	if s, ok := r.Properties[key].(string); ok {
		return s
	}
	return ""
}

// Bool returns the named property as a bool. String values "true"/"false"
// are accepted because JSON-roundtripped property maps store them that way.
func (r *Resource) Bool(key string) bool {
	if r == nil || r.Properties == nil {
		return false
	}
	switch v := r.Properties[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// StringSlice returns the named property as a string slice. Property maps
// decoded from JSON columns carry []any, so both forms are handled.
func (r *Resource) StringSlice(key string) []string {
	if r == nil || r.Properties == nil {
		return nil
	}
	switch v := r.Properties[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

// Page is a renderable resource. Title and AMP settings are plain
// properties on the underlying resource.
type Page struct {
	Resource
}

// Title returns the page title property.
func (p *Page) Title() string {
	return p.String(PropTitle)
}

// IsAmpOnly reports the page's boolean AMP-only flag.
func (p *Page) IsAmpOnly() bool {
	return p.Bool(PropAmpOnly)
}

// AmpMode returns the page's explicit AMP mode property, or "" when the
// page defers to the site default.
func (p *Page) AmpMode() string {
	return p.String(PropAmpMode)
}

// ClientLibrary is a named, categorized bundle of CSS and/or JS assets.
// Dependencies and Embeds name categories, not library paths.
type ClientLibrary struct {
	Path         string    `db:"path" json:"path"`
	Categories   []string  `db:"categories" json:"categories"`
	Kinds        []string  `db:"kinds" json:"kinds"`
	Dependencies []string  `db:"dependencies" json:"dependencies,omitempty"`
	Embeds       []string  `db:"embeds" json:"embeds,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// HasKind reports whether the library ships content of the given kind.
func (l *ClientLibrary) HasKind(kind LibraryKind) bool {
	for _, k := range l.Kinds {
		if k == kind.Name() {
			return true
		}
	}
	return false
}

// BackgroundJob records an enqueued background task for auditing.
type BackgroundJob struct {
	ID        int64     `db:"id" json:"id"`
	JobID     uuid.UUID `db:"job_id" json:"job_id"`
	TaskType  string    `db:"task_type" json:"task_type"`
	Payload   []byte    `db:"payload" json:"payload,omitempty"`
	Queue     string    `db:"queue" json:"queue"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
