package layout

import (
	"fmt"
	"os"
	"sync"

	"github.com/a3tai/mcp-timetable-reader/internal/timetable"
)

// FragmentCache is a thread-safe LRU cache of merged page fragments
type FragmentCache struct {
	mutex    sync.Mutex
	capacity int
	items    map[string]*cacheNode
	head     *cacheNode // Most recently used
	tail     *cacheNode // Least recently used
	hits     int64
	misses   int64
}

type cacheNode struct {
	key       string
	fragments []timetable.TextFragment
	prev      *cacheNode
	next      *cacheNode
}

// CacheStats provides statistics about cache performance
type CacheStats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hit_rate_percent"`
	Size     int     `json:"current_size"`
	Capacity int     `json:"max_capacity"`
}

// NewFragmentCache creates a cache holding up to capacity pages
func NewFragmentCache(capacity int) *FragmentCache {
	if capacity <= 0 {
		capacity = 100
	}

	cache := &FragmentCache{
		capacity: capacity,
		items:    make(map[string]*cacheNode),
		head:     &cacheNode{},
		tail:     &cacheNode{},
	}
	cache.head.next = cache.tail
	cache.tail.prev = cache.head
	return cache
}

// Get returns the fragments stored under key and marks them recently used
func (c *FragmentCache) Get(key string) ([]timetable.TextFragment, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if node, exists := c.items[key]; exists {
		c.moveToFront(node)
		c.hits++
		return node.fragments, true
	}

	c.misses++
	return nil, false
}

// Put stores fragments under key, evicting the least recently used page
// when the cache is full.
func (c *FragmentCache) Put(key string, fragments []timetable.TextFragment) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if node, exists := c.items[key]; exists {
		node.fragments = fragments
		c.moveToFront(node)
		return
	}

	node := &cacheNode{key: key, fragments: fragments}
	c.addToFront(node)
	c.items[key] = node

	if len(c.items) > c.capacity {
		c.evictLRU()
	}
}

// Len returns the number of cached pages
func (c *FragmentCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}

// Stats returns cache statistics
func (c *FragmentCache) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	total := c.hits + c.misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(c.hits) / float64(total) * 100
	}

	return CacheStats{
		Hits:     c.hits,
		Misses:   c.misses,
		HitRate:  hitRate,
		Size:     len(c.items),
		Capacity: c.capacity,
	}
}

func (c *FragmentCache) moveToFront(node *cacheNode) {
	c.removeNode(node)
	c.addToFront(node)
}

func (c *FragmentCache) addToFront(node *cacheNode) {
	node.prev = c.head
	node.next = c.head.next
	c.head.next.prev = node
	c.head.next = node
}

func (c *FragmentCache) removeNode(node *cacheNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}

func (c *FragmentCache) evictLRU() {
	lru := c.tail.prev
	if lru != c.head {
		c.removeNode(lru)
		delete(c.items, lru.key)
	}
}

// DocumentKey identifies one version of a file. A rewritten file gets a new
// key, so stale pages are never served.
func DocumentKey(path string, info os.FileInfo) string {
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
}

// CachedSource serves pages of a document from a FragmentCache, reading
// through to the wrapped source on a miss. Pages that fail to read are not
// cached.
type CachedSource struct {
	source      timetable.FragmentSource
	cache       *FragmentCache
	documentKey string
}

// NewCachedSource wraps source so its pages are cached under documentKey
func NewCachedSource(source timetable.FragmentSource, cache *FragmentCache, documentKey string) *CachedSource {
	return &CachedSource{
		source:      source,
		cache:       cache,
		documentKey: documentKey,
	}
}

// PageCount returns the page count of the wrapped source
func (s *CachedSource) PageCount() int {
	return s.source.PageCount()
}

// Fragments returns the fragments of a page, from the cache when present
func (s *CachedSource) Fragments(page int) ([]timetable.TextFragment, error) {
	key := fmt.Sprintf("%s#%d", s.documentKey, page)
	if fragments, ok := s.cache.Get(key); ok {
		return fragments, nil
	}

	fragments, err := s.source.Fragments(page)
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, fragments)
	return fragments, nil
}
