// Package regexcache compiles and memoizes user-supplied regular
// expressions. Suppression rule sets routinely repeat the same
// patterns across sections and across files; the cache makes the
// second sight of a pattern free.
package regexcache

import (
	"regexp"
	"sync"
)

// Cache memoizes compiled regular expressions by source string.
// Failed compiles are memoized too, so a bad pattern is only ever
// analyzed once. A Cache is safe for concurrent use; the *regexp.Regexp
// values it hands out are themselves safe for concurrent matching.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	re  *regexp.Regexp
	err error
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// Compile returns the compiled form of pattern, compiling it on first
// sight and serving the memoized result afterwards.
func (c *Cache) Compile(pattern string) (*regexp.Regexp, error) {
	c.mu.RLock()
	e, ok := c.entries[pattern]
	c.mu.RUnlock()
	if ok {
		return e.re, e.err
	}

	re, err := regexp.Compile(pattern)
	c.mu.Lock()
	c.entries[pattern] = entry{re: re, err: err}
	c.mu.Unlock()
	return re, err
}

// Len reports how many distinct patterns the cache has seen.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var defaultCache = New()

// Compile compiles pattern through the process-wide cache.
func Compile(pattern string) (*regexp.Regexp, error) {
	return defaultCache.Compile(pattern)
}
