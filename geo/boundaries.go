package geo

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// LoaderFunc supplies the city → neighborhood-names map backing a
// BoundaryCache. Loaders are expected to be slow (file read, blob fetch) and
// are called at most once per cache generation.
type LoaderFunc func() (map[string][]string, error)

// BoundaryCache lazily holds per-city neighborhood boundary data behind an
// injectable loader, so tests can substitute fixtures instead of reaching for
// process-global state.
type BoundaryCache struct {
	mu     sync.RWMutex
	loader LoaderFunc
	data   map[string][]string
	loaded bool
}

// NewBoundaryCache returns an empty cache over the given loader. Nothing is
// loaded until the first read.
func NewBoundaryCache(loader LoaderFunc) *BoundaryCache {
	return &BoundaryCache{loader: loader}
}

// Neighborhoods returns the known neighborhood names for a city slug, loading
// the boundary data on first use. An unknown city returns an empty slice, not
// an error; callers treat it as "no geo restriction available".
func (c *BoundaryCache) Neighborhoods(city string) ([]string, error) {
	c.mu.RLock()
	if c.loaded {
		defer c.mu.RUnlock()
		return c.data[city], nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have loaded while we waited for the write lock.
	if !c.loaded {
		data, err := c.loader()
		if err != nil {
			return nil, errors.Wrap(err, "load boundary data")
		}
		c.data = data
		c.loaded = true
	}
	return c.data[city], nil
}

// Invalidate drops the loaded data so the next read reloads. Used by tests
// and by admin tooling after a boundary data push.
func (c *BoundaryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
	c.loaded = false
}

// FileLoader reads the boundary map from a JSON file shaped as
// {"city": ["neighborhood", ...], ...}.
func FileLoader(path string) LoaderFunc {
	return func() (map[string][]string, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var data map[string][]string
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, err
		}
		return data, nil
	}
}
