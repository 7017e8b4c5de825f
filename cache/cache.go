package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/clipper/models"
)

const (
	sweepInterval = 5 * time.Minute
	maxEntryAge   = time.Hour
)

// entry holds a cached article with its creation timestamp.
type entry struct {
	article      *models.ArticleResult
	methodsTried []string
	createdAt    time.Time
}

// Cache is an in-memory cache of successful extractions.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

// New creates a Cache holding at most maxEntries articles. A background
// goroutine evicts entries older than one hour every five minutes until
// Close is called.
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		now:        time.Now,
		stop:       make(chan struct{}),
	}

	go c.cleanupLoop()
	return c
}

// Key derives a cache key from the URL and the options that change which
// strategies may run. Strategy order does not matter.
func Key(url string, strategies []string, forceBrowser *bool) string {
	names := slices.Clone(strategies)
	for i, n := range names {
		names[i] = strings.ToLower(strings.TrimSpace(n))
	}
	slices.Sort(names)

	browser := "default"
	if forceBrowser != nil {
		browser = "off"
		if *forceBrowser {
			browser = "on"
		}
	}

	h := sha256.New()
	h.Write([]byte(strings.TrimSpace(url)))
	h.Write([]byte("|"))
	h.Write([]byte(strings.Join(names, ",")))
	h.Write([]byte("|"))
	h.Write([]byte(browser))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a copy of the cached article if one exists and is younger
// than maxAgeMs milliseconds. maxAgeMs <= 0 disables the lookup.
func (c *Cache) Get(key string, maxAgeMs int) (*models.ArticleResult, []string, bool) {
	if maxAgeMs <= 0 {
		return nil, nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, nil, false
	}

	maxAge := time.Duration(maxAgeMs) * time.Millisecond
	if c.now().Sub(e.createdAt) > maxAge {
		return nil, nil, false
	}

	return e.article.Clone(), slices.Clone(e.methodsTried), true
}

// Set stores a copy of article. At capacity the oldest entry is evicted.
func (c *Cache) Set(key string, article *models.ArticleResult, methodsTried []string) {
	if article == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.store {
			if oldestKey == "" || e.createdAt.Before(oldest) {
				oldestKey, oldest = k, e.createdAt
			}
		}
		delete(c.store, oldestKey)
	}

	c.store[key] = &entry{
		article:      article.Clone(),
		methodsTried: slices.Clone(methodsTried),
		createdAt:    c.now(),
	}
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Close stops the background sweep.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep evicts entries older than maxEntryAge.
func (c *Cache) sweep() {
	cutoff := c.now().Add(-maxEntryAge)
	c.mu.Lock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
	c.mu.Unlock()
}
