// Package querycache memoizes list query results by filter key.
package querycache

import (
	"context"
	"sync"
	"time"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "idle"
}

type Entry[T any] struct {
	Data      T
	FetchedAt time.Time
	Status    Status
	Err       error
	stale     bool
}

// Cache maps a serialized filter key to its last result. Entries older than
// the TTL, or dropped by Invalidate, are fetched again on next use. A TTL of
// zero keeps entries until invalidated.
type Cache[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	gen     uint64
	entries map[string]*Entry[T]
}

func New[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*Entry[T]),
	}
}

// Peek returns a copy of the entry for key.
func (c *Cache[T]) Peek(key string) (Entry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Entry[T]{}, false
	}
	return *e, true
}

// Fresh returns cached data for key when it is successful and inside the TTL.
func (c *Cache[T]) Fresh(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.freshLocked(key)
}

func (c *Cache[T]) freshLocked(key string) (T, bool) {
	var zero T
	e, ok := c.entries[key]
	if !ok || e.Status != StatusSuccess || e.stale {
		return zero, false
	}
	if c.ttl > 0 && c.now().Sub(e.FetchedAt) > c.ttl {
		return zero, false
	}
	return e.Data, true
}

// Fetch serves key from cache when fresh, otherwise runs fn and records its
// outcome. force skips the cache. A result that lands after an invalidation
// is stored as stale so the next read fetches again.
func (c *Cache[T]) Fetch(ctx context.Context, key string, force bool, fn func(context.Context) (T, error)) (T, bool, error) {
	c.mu.Lock()
	if !force {
		if data, ok := c.freshLocked(key); ok {
			c.mu.Unlock()
			return data, true, nil
		}
	}
	gen := c.gen
	e := c.entry(key)
	e.Status = StatusLoading
	e.Err = nil
	c.mu.Unlock()

	data, err := fn(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	e = c.entry(key)
	if err != nil {
		e.Status = StatusError
		e.Err = err
		var zero T
		return zero, false, err
	}
	e.Data = data
	e.Status = StatusSuccess
	e.FetchedAt = c.now()
	e.stale = gen != c.gen
	return data, false, nil
}

func (c *Cache[T]) entry(key string) *Entry[T] {
	e, ok := c.entries[key]
	if !ok {
		e = &Entry[T]{}
		c.entries[key] = e
	}
	return e
}

// Invalidate drops one key.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.gen++
}

// InvalidateAll drops every key.
func (c *Cache[T]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry[T])
	c.gen++
}

// Generation counts invalidations since creation.
func (c *Cache[T]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
