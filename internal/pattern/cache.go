// Package pattern caches compiled per-column search expressions so repeated
// requests with the same terms skip recompilation.
package pattern

import (
	"regexp"

	"github.com/puzpuzpuz/xsync/v3"
)

// DefaultLimit bounds the number of cached expressions.
const DefaultLimit = 1024

// Cache is a concurrent cache of compiled regular expressions.
// It is safe for use by multiple goroutines.
type Cache struct {
	patterns *xsync.MapOf[string, *regexp.Regexp]
	limit    int
}

// NewCache creates a cache holding at most limit expressions.
// A limit <= 0 selects DefaultLimit.
func NewCache(limit int) *Cache {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Cache{
		patterns: xsync.NewMapOf[string, *regexp.Regexp](),
		limit:    limit,
	}
}

// Compile returns the compiled form of expr, compiling it on first use.
// Invalid expressions are never cached.
func (c *Cache) Compile(expr string) (*regexp.Regexp, error) {
	if re, ok := c.patterns.Load(expr); ok {
		return re, nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	// Once full, start over rather than track recency.
	if c.patterns.Size() >= c.limit {
		c.patterns.Clear()
	}
	actual, _ := c.patterns.LoadOrStore(expr, re)
	return actual, nil
}

// Len returns the number of cached expressions.
func (c *Cache) Len() int {
	return c.patterns.Size()
}
