// Package dedupe remembers recently seen submission ids so a replayed
// request returns the original outcome instead of appending twice.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// Cache records ids with the result produced the first time they were seen.
type Cache[V any] interface {
	// Lookup returns the result stored for id, if any.
	Lookup(ctx context.Context, id string) (V, bool)
	// Record stores v for id. Recording an existing id replaces its value.
	Record(ctx context.Context, id string, v V)
	// Forget removes id so it can be retried.
	Forget(ctx context.Context, id string)
	Size() int
}

type entry[V any] struct {
	id    string
	value V
}

// inMemoryCache is a bounded FIFO cache: once full, the oldest id is evicted.
// maxSize <= 0 means unbounded.
type inMemoryCache[V any] struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List // front = newest
	maxSize int
}

// NewInMemory creates an in-memory cache.
func NewInMemory[V any](opts ...Option) Cache[V] {
	cfg := config{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &inMemoryCache[V]{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: cfg.maxSize,
	}
}

func (c *inMemoryCache[V]) Lookup(_ context.Context, id string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[id]; ok {
		return el.Value.(*entry[V]).value, true
	}
	var zero V
	return zero, false
}

func (c *inMemoryCache[V]) Record(_ context.Context, id string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[id]; ok {
		el.Value.(*entry[V]).value = v
		return
	}
	if c.maxSize > 0 && c.order.Len() >= c.maxSize {
		c.evictOldest()
	}
	c.items[id] = c.order.PushFront(&entry[V]{id: id, value: v})
}

func (c *inMemoryCache[V]) Forget(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[id]; ok {
		c.order.Remove(el)
		delete(c.items, id)
	}
}

// evictOldest must be called with c.mu held.
func (c *inMemoryCache[V]) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry[V]).id)
}

func (c *inMemoryCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
