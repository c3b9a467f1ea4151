package reactive

import (
	"reflect"
	"sync"
)

// cellBase provides type-erased subscriber management.
// It is embedded in Signal[T] and Computed[T] to share subscription logic.
type cellBase struct {
	id uint64

	// version advances once per observable change.
	version uint64

	// subs are the listeners subscribed to this cell.
	subs []Listener

	// subMu protects subs and version.
	subMu sync.RWMutex
}

// subscribe adds a listener to this cell's subscribers.
// Deduplicates by listener ID to prevent double-subscription.
func (c *cellBase) subscribe(l Listener) {
	if l == nil {
		return
	}

	c.subMu.Lock()
	defer c.subMu.Unlock()

	lid := l.ID()
	for _, existing := range c.subs {
		if existing.ID() == lid {
			return
		}
	}

	c.subs = append(c.subs, l)
}

// unsubscribe removes a listener from this cell's subscribers.
// Pruning dead edges here is what keeps disposed effects collectable.
func (c *cellBase) unsubscribe(l Listener) {
	if l == nil {
		return
	}

	c.subMu.Lock()
	defer c.subMu.Unlock()

	lid := l.ID()
	for i, existing := range c.subs {
		if existing.ID() == lid {
			// Order does not matter, swap with last.
			c.subs[i] = c.subs[len(c.subs)-1]
			c.subs = c.subs[:len(c.subs)-1]
			return
		}
	}
}

// notifySubscribers bumps the version and marks every subscriber dirty.
// Uses copy-before-notify to avoid holding the lock during delivery.
// Inside a batch, delivery is deferred to the end of the outermost batch.
func (c *cellBase) notifySubscribers() {
	c.subMu.Lock()
	c.version++
	subs := make([]Listener, len(c.subs))
	copy(subs, c.subs)
	c.subMu.Unlock()

	if getTrackingContext().batchDepth > 0 {
		ctx := getTrackingContext()
		ctx.pendingNotifies = append(ctx.pendingNotifies, subs...)
		return
	}

	for _, sub := range subs {
		sub.MarkDirty()
	}
}

// Version returns the cell's change counter.
func (c *cellBase) Version() uint64 {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return c.version
}

// track registers the current listener, if any, as a subscriber of c and
// records the reverse edge on the listener so it can be cleared before the
// listener's next evaluation.
func (c *cellBase) track() {
	listener := getCurrentListener()
	if listener == nil {
		return
	}

	c.subscribe(listener)

	if t, ok := listener.(sourceTracker); ok {
		t.addSource(c)
	}
}

// sourceTracker is implemented by evaluators (effects, computeds) that keep
// a set of incoming edges so stale edges can be dropped on re-evaluation.
type sourceTracker interface {
	Listener
	addSource(source *cellBase)
}

// Signal is a reactive mutable cell. Reading it during a tracked evaluation
// (computed recomputation or effect run) subscribes the evaluator; writing a
// different value marks every subscriber dirty without running anything.
type Signal[T any] struct {
	base cellBase

	// value is the current signal value.
	value T

	// mu protects the value.
	mu sync.RWMutex

	// equal decides whether a write is an observable change.
	// If nil, defaultEquals is used.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		base: cellBase{
			id: nextID(),
		},
		value: initial,
	}
}

// Get returns the current value and subscribes the current listener, if any.
// A read outside any evaluation is legal and simply returns the value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	// Track after releasing the value lock to prevent deadlock.
	s.base.track()

	return value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the value and notifies subscribers if it changed.
// Writing an equal value is a complete no-op: no version bump, no dirty
// marking.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.base.notifySubscribers()
	}
}

// Update atomically reads and updates the value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	oldValue := s.value
	newValue := fn(oldValue)
	changed := !s.equals(oldValue, newValue)
	if changed {
		s.value = newValue
	}
	s.mu.Unlock()

	if changed {
		s.base.notifySubscribers()
	}
}

// WithEquals configures a custom equality function and returns the signal
// for chaining. Useful when reflect.DeepEqual is too expensive or has the
// wrong semantics for T.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.base.id
}

// Version returns the signal's change counter.
func (s *Signal[T]) Version() uint64 {
	return s.base.Version()
}

// Value implements Source.
func (s *Signal[T]) Value() any {
	return s.Get()
}

// PeekValue implements Source.
func (s *Signal[T]) PeekValue() any {
	return s.Peek()
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals provides type-appropriate equality checking: == for the
// common comparable kinds, reflect.DeepEqual for everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case float32:
		return av == any(b).(float32)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}
