// Package clientlibs manages named, categorized bundles of CSS and JS
// assets. The Manager is the host-platform boundary the aggregator talks
// to: it resolves categories to ordered library sets and serves each
// library's (optionally minified) payload.
package clientlibs

import (
	"context"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
)

// HtmlLibrary is one resolvable library payload of a single kind.
type HtmlLibrary interface {
	Path() string
	Reader(ctx context.Context, minified bool) (io.Reader, error)
}

// LibraryManager resolves categories to libraries and libraries to content.
type LibraryManager interface {
	// Libraries returns the dependency-expanded, de-duplicated library set
	// for the given categories and kind, in stable order: a library's
	// dependency categories come before it, its embeds after it, and
	// within a category libraries keep registration order.
	Libraries(ctx context.Context, categories []string, kind models.LibraryKind) ([]*models.ClientLibrary, error)
	// Library returns the payload handle for one library, or
	// store.ErrNotFound when the path is not registered for the kind.
	Library(ctx context.Context, kind models.LibraryKind, path string) (HtmlLibrary, error)
	MinifyEnabled() bool
}

// Manager is the repository-backed LibraryManager.
type Manager struct {
	store  store.LibraryStore
	minify bool
	cache  *contentCache
}

var _ LibraryManager = (*Manager)(nil)

type ManagerDeps struct {
	Store        store.LibraryStore
	Minify       bool
	CacheEnabled bool
}

func NewManager(deps ManagerDeps) *Manager {
	m := &Manager{
		store:  deps.Store,
		minify: deps.Minify,
	}
	if deps.CacheEnabled {
		m.cache = newContentCache()
	}
	return m
}

func (m *Manager) MinifyEnabled() bool {
	return m.minify
}

func (m *Manager) Libraries(ctx context.Context, categories []string, kind models.LibraryKind) ([]*models.ClientLibrary, error) {
	var out []*models.ClientLibrary
	seenPaths := make(map[string]bool)
	visiting := make(map[string]bool)

	var walk func(category string) error
	walk = func(category string) error {
		category = strings.TrimSpace(category)
		if category == "" {
			return nil
		}
		if visiting[category] {
			log.Warnf("Client library category cycle detected at '%s', skipping.", category)
			return nil
		}
		visiting[category] = true
		defer delete(visiting, category)

		libs, err := m.store.LibrariesByCategory(ctx, category, kind)
		if err != nil {
			return err
		}
		for _, lib := range libs {
			for _, dep := range lib.Dependencies {
				if err := walk(dep); err != nil {
					return err
				}
			}
			if !seenPaths[lib.Path] {
				seenPaths[lib.Path] = true
				out = append(out, lib)
			}
			for _, embed := range lib.Embeds {
				if err := walk(embed); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, category := range categories {
		if err := walk(category); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (m *Manager) Library(ctx context.Context, kind models.LibraryKind, path string) (HtmlLibrary, error) {
	lib, err := m.store.GetLibrary(ctx, path)
	if err != nil {
		return nil, err
	}
	if !lib.HasKind(kind) {
		return nil, store.ErrNotFound
	}
	return &htmlLibrary{path: path, kind: kind, manager: m}, nil
}

// content serves a library payload, consulting the cache first. A missing
// minified variant falls back to the raw payload.
func (m *Manager) content(ctx context.Context, path string, kind models.LibraryKind, minified bool) (string, error) {
	key := contentKey{path: path, kind: kind, minified: minified}
	if m.cache != nil {
		if content, ok := m.cache.get(key); ok {
			return content, nil
		}
	}

	content, err := m.store.LibraryContent(ctx, path, kind, minified)
	if err == store.ErrNotFound && minified {
		content, err = m.store.LibraryContent(ctx, path, kind, false)
	}
	if err != nil {
		return "", err
	}

	if m.cache != nil {
		m.cache.put(key, content)
	}
	return content, nil
}

// Invalidate drops cached payloads. With no arguments the whole cache is
// cleared; with categories, only libraries registered under them.
func (m *Manager) Invalidate(ctx context.Context, categories ...string) {
	if m.cache == nil {
		return
	}
	if len(categories) == 0 {
		m.cache.clear()
		return
	}
	for _, category := range categories {
		for _, kind := range []models.LibraryKind{models.KindCSS, models.KindJS} {
			libs, err := m.store.LibrariesByCategory(ctx, category, kind)
			if err != nil {
				log.Errorf("Invalidate: listing category '%s': %v. Clearing whole cache.", category, err)
				m.cache.clear()
				return
			}
			for _, lib := range libs {
				m.cache.drop(lib.Path)
			}
		}
	}
}

type htmlLibrary struct {
	path    string
	kind    models.LibraryKind
	manager *Manager
}

func (l *htmlLibrary) Path() string {
	return l.path
}

func (l *htmlLibrary) Reader(ctx context.Context, minified bool) (io.Reader, error) {
	content, err := l.manager.content(ctx, l.path, l.kind, minified)
	if err != nil {
		return nil, err
	}
	return strings.NewReader(content), nil
}
