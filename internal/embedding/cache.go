package embedding

import (
	"container/list"
	"sync"
)

// Cache is a thread-safe LRU cache mapping text to its embedding.
type Cache struct {
	mu    sync.Mutex
	max   int
	items map[string]*list.Element
	order *list.List // front = most recently used
}

type cached struct {
	text string
	vec  []float32
}

// NewCache creates a cache holding at most capacity embeddings.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		max:   capacity,
		items: make(map[string]*list.Element),
		order: list.New(),
	}
}

// Get returns the embedding for text and marks it recently used.
func (c *Cache) Get(text string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[text]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cached).vec, true
}

// Set stores the embedding for text, evicting the least recently used
// entry when the cache is full.
func (c *Cache) Set(text string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[text]; ok {
		elem.Value.(*cached).vec = vec
		c.order.MoveToFront(elem)
		return
	}
	c.items[text] = c.order.PushFront(&cached{text: text, vec: vec})
	if c.order.Len() > c.max {
		c.evictOldest()
	}
}

// Len returns the number of cached embeddings.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) evictOldest() {
	back := c.order.Back()
	if back == nil {
		return
	}
	c.order.Remove(back)
	delete(c.items, back.Value.(*cached).text)
}
