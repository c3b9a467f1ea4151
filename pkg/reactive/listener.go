package reactive

// Listener is anything that can be notified when a dependency changes.
// Computeds invalidate their cached value, effects schedule a re-run.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies changed.
	// It must not re-evaluate anything itself: dirtiness is pushed, work is
	// pulled later by a read or a flush.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication in the pending queue and subscriber sets.
	ID() uint64
}

// Cleanup is a function returned by an effect body to release resources.
// It runs before the effect's next run and when the effect is disposed.
type Cleanup func()

// Source is a readable reactive cell whose value can be observed without
// static typing. Signal[T] and Computed[T] both implement it. It is the
// currency of explicit effect dependency lists and of the reconciler's
// prop/child bindings.
type Source interface {
	// Value returns the current value, tracking a dependency if a listener
	// is evaluating.
	Value() any

	// PeekValue returns the current value without tracking.
	PeekValue() any
}
