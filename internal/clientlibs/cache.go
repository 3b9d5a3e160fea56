package clientlibs

import (
	"sync"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
)

type contentKey struct {
	path     string
	kind     models.LibraryKind
	minified bool
}

// contentCache holds rendered library payloads. Reads dominate; entries
// only change when a library is re-registered or a rebuild job runs.
type contentCache struct {
	mu      sync.RWMutex
	entries map[contentKey]string
}

func newContentCache() *contentCache {
	return &contentCache{entries: make(map[contentKey]string)}
}

func (c *contentCache) get(key contentKey) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	content, ok := c.entries[key]
	return content, ok
}

func (c *contentCache) put(key contentKey, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = content
}

// drop removes all variants of one library path.
func (c *contentCache) drop(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.path == path {
			delete(c.entries, key)
		}
	}
}

func (c *contentCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[contentKey]string)
}
