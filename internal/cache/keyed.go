// Package cache provides the keyed, full-replace store the controllers use
// for per-trip collections.
//
// Every load is stamped with a Ticket before its request is issued. When the
// response arrives, Commit applies it only if nothing newer has been applied
// to that key in the meantime, so overlapping requests can never leave an
// older server snapshot on top of a newer one.
package cache

import (
	"sort"
	"sync"
)

// Ticket identifies one in-flight load for a key.
type Ticket[K comparable] struct {
	Key K
	seq uint64
}

type entry[V any] struct {
	value   V
	applied uint64
}

// Keyed maps keys to wholesale-replaced values. The zero value is not
// usable; construct with NewKeyed. Safe for concurrent use.
type Keyed[K comparable, V any] struct {
	mu      sync.Mutex
	next    uint64
	entries map[K]*entry[V]
}

// NewKeyed returns an empty store.
func NewKeyed[K comparable, V any]() *Keyed[K, V] {
	return &Keyed[K, V]{entries: make(map[K]*entry[V])}
}

// Begin stamps a load for key. Tickets are ordered by issue time across the
// whole store.
func (c *Keyed[K, V]) Begin(key K) Ticket[K] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	return Ticket[K]{Key: key, seq: c.next}
}

// Commit replaces the value for the ticket's key unless a ticket issued
// later, or a Put, has already been applied. It reports whether v was applied.
func (c *Keyed[K, V]) Commit(t Ticket[K], v V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[t.Key]
	if ok && e.applied > t.seq {
		return false
	}
	c.entries[t.Key] = &entry[V]{value: v, applied: t.seq}
	return true
}

// Put replaces the value for key immediately. Loads begun before the Put
// will be discarded when they commit.
func (c *Keyed[K, V]) Put(key K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	c.entries[key] = &entry[V]{value: v, applied: c.next}
}

// Get returns the current value for key.
func (c *Keyed[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Delete drops key. In-flight loads for it may still commit afterwards.
func (c *Keyed[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports the number of keys held.
func (c *Keyed[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the keys held, sorted by less.
func (c *Keyed[K, V]) Keys(less func(a, b K) bool) []K {
	c.mu.Lock()
	keys := make([]K, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.Unlock()
	sort.Slice(keys, func(i, j int) bool { return less(keys[i], keys[j]) })
	return keys
}
