package medium

import (
	"context"
	"fmt"
	"sync"

	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
)

// Cache memoizes an Estimator. Entries are keyed by model ID, environment
// fingerprint, growth threshold, interacting flag and estimation method, and are
// only dropped through Invalidate.
type Cache struct {
	estimator Estimator
	method    string

	mu      sync.Mutex
	entries map[string]models.Medium
	misses  int
}

// NewCache wraps est. When est exposes a Method() string it becomes part of the key.
func NewCache(est Estimator) *Cache {
	c := &Cache{
		estimator: est,
		entries:   make(map[string]models.Medium),
	}
	if named, ok := est.(interface{ Method() string }); ok {
		c.method = named.Method()
	}
	return c
}

func (c *Cache) key(modelID string, req Request) string {
	return fmt.Sprintf("%s|%s|%g|%t|%s",
		modelID, req.Environment.Fingerprint(), req.MinGrowth, req.Interacting, c.method)
}

// MinimalMedium returns the cached medium or computes and stores it. The caller
// receives a copy and may modify it freely.
func (c *Cache) MinimalMedium(ctx context.Context, m *models.Model, req Request) (models.Medium, error) {
	key := c.key(m.ID, req)

	c.mu.Lock()
	if cached, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return cached.Clone(), nil
	}
	c.mu.Unlock()

	medium, err := c.estimator.MinimalMedium(ctx, m, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.misses++
	c.entries[key] = medium.Clone()
	c.mu.Unlock()
	return medium, nil
}

// Put seeds the cache with a precomputed medium
func (c *Cache) Put(modelID string, req Request, medium models.Medium) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.key(modelID, req)] = medium.Clone()
}

// Invalidate drops every cached medium
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]models.Medium)
}

// Len returns the number of cached media
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Misses returns how many media were computed by the wrapped estimator
func (c *Cache) Misses() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.misses
}
