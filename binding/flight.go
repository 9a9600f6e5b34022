package binding

import (
	"sync"
)

// source where a cached lookup got its value
type source int

const (
	sourceCache  source = iota // already stored
	sourceShared               // waited on another caller's construction
	sourceBuilt                // constructed by this call
)

// flight one in-progress construction
type flight[V any] struct {
	done chan struct{}
	val  V
	err  error
}

// flightCache memoizes values per key with exactly one construction per key.
//
// Lookups take the read lock. A miss re-checks under the write lock and either
// joins the pending construction for that key or registers a new one; the
// construction itself runs with no lock held. Failures are handed to the
// waiters of that flight and are not stored.
type flightCache[K comparable, V any] struct {
	mu     sync.RWMutex
	values map[K]V
	calls  map[K]*flight[V]
}

func newFlightCache[K comparable, V any]() *flightCache[K, V] {
	return &flightCache[K, V]{
		values: make(map[K]V),
		calls:  make(map[K]*flight[V]),
	}
}

func (c *flightCache[K, V]) do(key K, fn func() (V, error)) (V, source, error) {
	c.mu.RLock()
	if v, ok := c.values[key]; ok {
		c.mu.RUnlock()
		return v, sourceCache, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	if v, ok := c.values[key]; ok {
		c.mu.Unlock()
		return v, sourceCache, nil
	}
	if f, ok := c.calls[key]; ok {
		c.mu.Unlock()
		<-f.done
		return f.val, sourceShared, f.err
	}
	f := &flight[V]{done: make(chan struct{})}
	c.calls[key] = f
	c.mu.Unlock()

	f.val, f.err = invoke(fn)

	c.mu.Lock()
	delete(c.calls, key)
	if f.err == nil {
		c.values[key] = f.val
	}
	c.mu.Unlock()
	close(f.done)

	return f.val, sourceBuilt, f.err
}

func (c *flightCache[K, V]) delete(key K) {
	c.mu.Lock()
	delete(c.values, key)
	c.mu.Unlock()
}

func (c *flightCache[K, V]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}
