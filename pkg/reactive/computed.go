package reactive

import (
	"sync"
	"sync/atomic"
)

// Computed is a cached derivation over signals and other computeds.
// It is lazy: invalidation only clears the cache, recomputation happens on
// the next read. The dependency set is rebuilt on every evaluation, so a
// dependency only read on an untaken branch is dropped rather than
// accumulating as a stale edge.
type Computed[T any] struct {
	base cellBase

	// compute is the derivation function.
	compute func() T

	// value is the cached computed value.
	value T

	// valueMu protects value access.
	valueMu sync.RWMutex

	// valid reports whether the cached value is current.
	valid atomic.Bool

	// sources are the cells this computed currently depends on.
	sources   []*cellBase
	sourcesMu sync.Mutex

	// equal is the equality function for value-change detection.
	equal func(T, T) bool

	// computing breaks self-referential cycles: a recompute that re-enters
	// itself returns the stale value instead of recursing forever.
	computing atomic.Bool
}

// NewComputed creates a computed with the given derivation function.
// The derivation does not run until the first Get.
func NewComputed[T any](compute func() T) *Computed[T] {
	return &Computed[T]{
		base: cellBase{
			id: nextID(),
		},
		compute: compute,
	}
}

// Get returns the computed value, recomputing if a dependency changed since
// the last evaluation. Subscribes the current listener, if any.
func (c *Computed[T]) Get() T {
	c.base.track()

	if !c.valid.Load() {
		c.recompute()
	}

	c.valueMu.RLock()
	value := c.value
	c.valueMu.RUnlock()
	return value
}

// Peek returns the value without subscribing. Still recomputes when stale.
func (c *Computed[T]) Peek() T {
	if !c.valid.Load() {
		c.recompute()
	}
	c.valueMu.RLock()
	value := c.value
	c.valueMu.RUnlock()
	return value
}

// MarkDirty invalidates the cache and propagates dirtiness downstream.
// Implements Listener. Idempotent within one invalidation cycle, so diamond
// dependency graphs notify each subscriber once. With an equality function
// set, the derivation re-runs here and propagation stops when the new value
// equals the cached one.
func (c *Computed[T]) MarkDirty() {
	if !c.valid.CompareAndSwap(true, false) {
		return
	}
	if c.equal != nil {
		c.valueMu.RLock()
		prev := c.value
		c.valueMu.RUnlock()

		c.recompute()

		c.valueMu.RLock()
		next := c.value
		c.valueMu.RUnlock()
		if c.equal(prev, next) {
			return
		}
	}
	c.base.notifySubscribers()
}

// ID returns the unique identifier for this computed.
// Implements Listener.
func (c *Computed[T]) ID() uint64 {
	return c.base.id
}

// Version returns the computed's change counter.
func (c *Computed[T]) Version() uint64 {
	return c.base.Version()
}

// Value implements Source.
func (c *Computed[T]) Value() any {
	return c.Get()
}

// PeekValue implements Source.
func (c *Computed[T]) PeekValue() any {
	return c.Peek()
}

// WithEquals configures a custom equality function for change detection.
// The trade-off is eagerness: the derivation re-runs at invalidation time
// instead of on the next read, so equal results never wake subscribers.
func (c *Computed[T]) WithEquals(fn func(T, T) bool) *Computed[T] {
	c.equal = fn
	return c
}

// addSource records an incoming edge. Implements sourceTracker.
func (c *Computed[T]) addSource(source *cellBase) {
	c.sourcesMu.Lock()
	defer c.sourcesMu.Unlock()

	for _, s := range c.sources {
		if s == source {
			return
		}
	}
	c.sources = append(c.sources, source)
}

// recompute runs the derivation and refreshes the cached value.
func (c *Computed[T]) recompute() {
	if c.computing.Swap(true) {
		// Already computing: circular dependency, keep the stale value.
		return
	}
	defer c.computing.Store(false)

	// Drop all previous outgoing edges before re-tracking. A conditional
	// branch may have stopped reading a dependency.
	c.sourcesMu.Lock()
	for _, source := range c.sources {
		source.unsubscribe(c)
	}
	c.sources = c.sources[:0]
	c.sourcesMu.Unlock()

	old := setCurrentListener(c)
	newValue := c.compute()
	setCurrentListener(old)

	c.valueMu.Lock()
	c.value = newValue
	c.valueMu.Unlock()

	c.valid.Store(true)
}

var _ sourceTracker = (*Computed[int])(nil)
var _ Source = (*Computed[int])(nil)
var _ Source = (*Signal[int])(nil)
