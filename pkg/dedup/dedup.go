// Package dedup tracks already-forwarded message identities so a
// redelivered source message is not forwarded twice. State is held in
// memory only and resets on restart.
package dedup

import "sync"

// Key identifies a unique source message.
type Key struct {
	ChatID    int64
	MessageID int
}

const (
	// DefaultMaxEntries bounds the guard size.
	DefaultMaxEntries = 500
	// DefaultEvictBatch is how many of the oldest keys are dropped
	// when an insert would exceed the bound.
	DefaultEvictBatch = 100
)

// Guard is a bounded set of Keys with insertion-order batch eviction.
// It is not an LRU: lookup does not refresh a key's position.
type Guard struct {
	mu         sync.Mutex
	seen       map[Key]struct{}
	order      []Key
	maxEntries int
	evictBatch int
}

// NewGuard creates a guard bounded at maxEntries, evicting the oldest
// evictBatch keys when full. Non-positive arguments take the defaults.
func NewGuard(maxEntries, evictBatch int) *Guard {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if evictBatch <= 0 {
		evictBatch = DefaultEvictBatch
	}
	if evictBatch > maxEntries {
		evictBatch = maxEntries
	}
	return &Guard{
		seen:       make(map[Key]struct{}, maxEntries),
		maxEntries: maxEntries,
		evictBatch: evictBatch,
	}
}

// Seen reports whether the key is currently marked.
func (g *Guard) Seen(key Key) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.seen[key]
	return ok
}

// Mark records the key, evicting the oldest batch first when the
// guard is full. Marking an already-marked key is a no-op.
func (g *Guard) Mark(key Key) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[key]; ok {
		return
	}

	if len(g.seen) >= g.maxEntries {
		evict := g.order[:g.evictBatch]
		for _, old := range evict {
			delete(g.seen, old)
		}
		g.order = append(g.order[:0], g.order[g.evictBatch:]...)
	}

	g.seen[key] = struct{}{}
	g.order = append(g.order, key)
}

// Unmark removes the key so a redelivery can be reprocessed. Called
// when a send fails irrecoverably.
func (g *Guard) Unmark(key Key) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[key]; !ok {
		return
	}
	delete(g.seen, key)
	for i, k := range g.order {
		if k == key {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of marked keys.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}
