package locator

import "sync"

// Cache memoizes pure string-to-string translations keyed by the exact
// input. It is safe for concurrent use; two goroutines missing on the same
// key both compute and store the same value. A nil *Cache is valid and
// caches nothing.
type Cache struct {
	m sync.Map
}

// NewCache creates an empty cache.
func NewCache() *Cache { return &Cache{} }

// Get returns the cached output for in.
func (c *Cache) Get(in string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.m.Load(in)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Put stores out as the translation of in.
func (c *Cache) Put(in, out string) {
	if c == nil {
		return
	}
	c.m.Store(in, out)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.m.Clear()
}

// Len counts the entries. It walks the map, so keep it out of hot paths.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	c.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Memo returns fn's result for in, consulting and filling the cache.
// Errors are never cached.
func (c *Cache) Memo(in string, fn func(string) (string, error)) (string, error) {
	if out, ok := c.Get(in); ok {
		return out, nil
	}
	out, err := fn(in)
	if err != nil {
		return "", err
	}
	c.Put(in, out)
	return out, nil
}
