package clientlibs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
	"gopkg.in/yaml.v3"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
)

// ManifestName is the file name the provider scans for.
const ManifestName = "clientlib.yaml"

// Manifest describes one client library on disk. Asset paths are relative
// to the manifest's directory and concatenated in listed order.
type Manifest struct {
	Path         string   `yaml:"path"`
	Categories   []string `yaml:"categories"`
	Dependencies []string `yaml:"dependencies"`
	Embeds       []string `yaml:"embeds"`
	CSS          []string `yaml:"css"`
	JS           []string `yaml:"js"`
}

// FSProvider loads client library definitions from clientlib.yaml
// manifests under the configured search paths and registers them with the
// library store. A pre-minified sibling (name.min.ext) is used when
// present; otherwise the payload is minified on load.
type FSProvider struct {
	store       store.LibraryStore
	searchPaths []string
	minifier    *minify.M
	onReload    func()

	mu         sync.Mutex
	registered map[string]bool // library paths owned by the previous scan
}

func NewFSProvider(libStore store.LibraryStore, searchPaths []string, onReload func()) *FSProvider {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	return &FSProvider{
		store:       libStore,
		searchPaths: searchPaths,
		minifier:    m,
		onReload:    onReload,
	}
}

// LoadAll scans every search path and registers each manifest found.
// A broken manifest is logged and skipped; the rest still load.
// Libraries registered by an earlier scan whose manifests have since
// disappeared are unregistered, so a deleted clientlib stops being served.
func (p *FSProvider) LoadAll(ctx context.Context) error {
	current := make(map[string]bool)
	for _, root := range p.searchPaths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || d.Name() != ManifestName {
				return nil
			}
			libPath, err := p.loadManifest(ctx, path)
			if err != nil {
				log.Errorf("Skipping client library manifest '%s': %v", path, err)
				return nil
			}
			current[libPath] = true
			return nil
		})
		if err != nil {
			return fmt.Errorf("scan clientlib search path '%s': %w", root, err)
		}
	}

	p.mu.Lock()
	previous := p.registered
	p.registered = current
	p.mu.Unlock()

	for libPath := range previous {
		if current[libPath] {
			continue
		}
		if err := p.store.UnregisterLibrary(ctx, libPath); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Errorf("Could not unregister removed client library '%s': %v", libPath, err)
			continue
		}
		log.Infof("Unregistered client library '%s', its manifest is gone.", libPath)
	}

	log.Infof("Loaded %d client library manifest(s) from %d search path(s).", len(current), len(p.searchPaths))
	return nil
}

func (p *FSProvider) loadManifest(ctx context.Context, manifestPath string) (string, error) {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return "", err
	}
	var manifest Manifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return "", fmt.Errorf("parse manifest: %w", err)
	}
	if manifest.Path == "" {
		return "", fmt.Errorf("manifest is missing a library path")
	}
	if len(manifest.Categories) == 0 {
		return "", fmt.Errorf("manifest for '%s' declares no categories", manifest.Path)
	}

	dir := filepath.Dir(manifestPath)
	content := make(map[models.LibraryKind]store.LibraryContent)
	var kinds []string

	if len(manifest.CSS) > 0 {
		c, err := p.assemble(dir, manifest.CSS, "text/css")
		if err != nil {
			return "", err
		}
		content[models.KindCSS] = c
		kinds = append(kinds, models.KindCSS.Name())
	}
	if len(manifest.JS) > 0 {
		c, err := p.assemble(dir, manifest.JS, "application/javascript")
		if err != nil {
			return "", err
		}
		content[models.KindJS] = c
		kinds = append(kinds, models.KindJS.Name())
	}
	if len(content) == 0 {
		return "", fmt.Errorf("manifest for '%s' lists no css or js files", manifest.Path)
	}

	lib := &models.ClientLibrary{
		Path:         manifest.Path,
		Categories:   manifest.Categories,
		Kinds:        kinds,
		Dependencies: manifest.Dependencies,
		Embeds:       manifest.Embeds,
	}
	if err := p.store.RegisterLibrary(ctx, lib, content); err != nil {
		return "", err
	}
	return lib.Path, nil
}

// assemble concatenates the listed files and produces the minified
// variant, preferring pre-minified siblings over on-the-fly minification.
func (p *FSProvider) assemble(dir string, files []string, mediaType string) (store.LibraryContent, error) {
	var raw, minified strings.Builder
	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(dir, rel))
		if err != nil {
			return store.LibraryContent{}, fmt.Errorf("read asset '%s': %w", rel, err)
		}
		raw.Write(data)
		raw.WriteString("\n")

		if min, ok := p.readPreMinified(dir, rel); ok {
			minified.WriteString(min)
			continue
		}
		min, err := p.minifier.String(mediaType, string(data))
		if err != nil {
			log.Warnf("Could not minify '%s', using raw content: %v", rel, err)
			min = string(data)
		}
		minified.WriteString(min)
	}
	return store.LibraryContent{Raw: raw.String(), Minified: minified.String()}, nil
}

func (p *FSProvider) readPreMinified(dir, rel string) (string, bool) {
	ext := filepath.Ext(rel)
	minPath := filepath.Join(dir, strings.TrimSuffix(rel, ext)+".min"+ext)
	data, err := os.ReadFile(minPath)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Watch reloads all manifests when anything under the search paths
// changes, then runs the onReload hook (cache invalidation). It blocks
// until the context is cancelled. Events are debounced because editors
// produce bursts of writes.
func (p *FSProvider) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create clientlib watcher: %w", err)
	}
	defer watcher.Close()

	for _, root := range p.searchPaths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("watch clientlib search path '%s': %w", root, err)
		}
	}

	const debounce = 250 * time.Millisecond
	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("Client library watcher error: %v", err)
		case <-reload:
			log.Info("Client library search paths changed, reloading manifests.")
			if err := p.LoadAll(ctx); err != nil {
				log.Errorf("Reload of client library manifests failed: %v", err)
				continue
			}
			if p.onReload != nil {
				p.onReload()
			}
		}
	}
}
