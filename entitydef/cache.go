package entitydef

import (
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/reallyoldfogie/wows-replay-go/internal/metrics"
)

// LoadFunc loads the catalog of one version. LoadCatalog is the default.
type LoadFunc func(version Version, root string) ([]EntitySpec, error)

// Cache keeps loaded catalogs per definitions root and version. It is safe
// for concurrent use: concurrent first requests for the same version share a
// single load, and later requests are served from memory. Failed loads are
// not remembered.
type Cache struct {
	load LoadFunc

	mu       sync.RWMutex
	catalogs map[string][]EntitySpec
	group    singleflight.Group
}

// NewCache returns an empty cache backed by LoadCatalog.
func NewCache() *Cache {
	return NewCacheWith(LoadCatalog)
}

// NewCacheWith returns an empty cache backed by load.
func NewCacheWith(load LoadFunc) *Cache {
	return &Cache{
		load:     load,
		catalogs: make(map[string][]EntitySpec),
	}
}

func cacheKey(version Version, root string) string {
	return filepath.Clean(root) + "|" + version.DirName()
}

// Get returns the catalog of version below root, loading it on first use.
// The returned slice is shared and must not be modified.
func (c *Cache) Get(version Version, root string) ([]EntitySpec, error) {
	key := cacheKey(version, root)

	c.mu.RLock()
	specs, ok := c.catalogs[key]
	c.mu.RUnlock()
	if ok {
		return specs, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// another caller may have finished the load between the read above
		// and entering Do
		c.mu.RLock()
		specs, ok := c.catalogs[key]
		c.mu.RUnlock()
		if ok {
			return specs, nil
		}

		specs, err := c.load(version, root)
		metrics.CatalogLoads.WithLabelValues(metrics.Result(err)).Inc()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.catalogs[key] = specs
		c.mu.Unlock()
		return specs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]EntitySpec), nil
}

// Len returns the number of cached catalogs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.catalogs)
}
