package reactive

import (
	"sync"
	"sync/atomic"
)

// depMode selects how an effect decides when to re-run.
type depMode uint8

const (
	// depDynamic re-runs whenever any cell read during the body changes.
	depDynamic depMode = iota
	// depOnce runs the body exactly once and never re-runs.
	depOnce
	// depListed re-runs only when a listed source's value changes by
	// equality. Body reads are untracked in this mode.
	depListed
)

// Effect is a reactive side effect. By default its dependencies are
// discovered dynamically on every run; the Deps option switches it to an
// explicit dependency list. The body may return a Cleanup which runs before
// the next run and on disposal; a new run never starts before the prior
// cleanup completes.
type Effect struct {
	id uint64

	// fn is the effect body.
	fn func() Cleanup

	// cleanup is the cleanup function from the last run.
	cleanup Cleanup

	// sources are the cells this effect depends on (dynamic mode).
	sources   []*cellBase
	sourcesMu sync.Mutex

	// mode and listed dependency state.
	mode     depMode
	deps     []Source
	lastDeps []any

	// owner is the Owner that disposes this effect, if any.
	owner *Owner

	// pending reports the effect is queued for re-run.
	pending atomic.Bool

	// disposed reports the effect has been disposed.
	disposed atomic.Bool
}

// EffectOption configures a new effect.
type EffectOption func(*Effect)

// Deps scopes the effect to an explicit dependency list. With no arguments
// the effect runs once and never again; with arguments it re-runs only when
// a listed source's value changes by equality since the previous run.
func Deps(sources ...Source) EffectOption {
	return func(e *Effect) {
		if len(sources) == 0 {
			e.mode = depOnce
			return
		}
		e.mode = depListed
		e.deps = sources
	}
}

// NewEffect creates an effect and runs it immediately. The effect re-runs
// through the scheduler whenever its dependencies change, and is disposed
// with the current owner if one is installed.
func NewEffect(fn func() Cleanup, opts ...EffectOption) *Effect {
	e := &Effect{
		id:    nextID(),
		fn:    fn,
		owner: getCurrentOwner(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.owner != nil {
		e.owner.registerEffect(e)
	}

	e.run()

	return e
}

// OnMount runs fn exactly once, with cleanup on owner disposal.
func OnMount(fn func() Cleanup) *Effect {
	return NewEffect(fn, Deps())
}

// MarkDirty schedules the effect to re-run. Implements Listener.
// CAS on pending ensures the effect is queued at most once per flush.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() {
		return
	}

	if e.pending.CompareAndSwap(false, true) {
		schedule(e)
	}
}

// ID returns the unique identifier for this effect. Implements Listener.
func (e *Effect) ID() uint64 {
	return e.id
}

// Disposed reports whether the effect has been disposed.
func (e *Effect) Disposed() bool {
	return e.disposed.Load()
}

// run executes the effect body: cleanup first, then clear old edges, then
// re-track during execution.
func (e *Effect) run() {
	if e.disposed.Load() {
		return
	}

	e.pending.Store(false)

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	switch e.mode {
	case depOnce:
		// Body reads are untracked: nothing can re-trigger the effect.
		old := setCurrentListener(nil)
		e.cleanup = e.fn()
		setCurrentListener(old)

	case depListed:
		// Subscribe to the listed sources, snapshot their values, and run
		// the body untracked.
		e.clearSources()

		old := setCurrentListener(e)
		values := make([]any, len(e.deps))
		for i, dep := range e.deps {
			values[i] = dep.Value()
		}
		setCurrentListener(old)
		e.lastDeps = values

		old = setCurrentListener(nil)
		e.cleanup = e.fn()
		setCurrentListener(old)

	default:
		e.clearSources()

		old := setCurrentListener(e)
		e.cleanup = e.fn()
		setCurrentListener(old)
	}
}

// depsChanged reports whether any listed dependency's value differs from the
// snapshot taken at the previous run.
func (e *Effect) depsChanged() bool {
	if len(e.lastDeps) != len(e.deps) {
		return true
	}
	for i, dep := range e.deps {
		if !defaultEquals(e.lastDeps[i], dep.PeekValue()) {
			return true
		}
	}
	return false
}

// flushRun is called by the scheduler when draining the pending queue.
// Listed-mode effects re-check their dependency snapshot so a dirty mark
// from an equal-valued write does not cause a run.
func (e *Effect) flushRun() {
	if e.disposed.Load() {
		return
	}

	if e.mode == depListed && !e.depsChanged() {
		e.pending.Store(false)
		return
	}

	e.run()
}

// clearSources unsubscribes from all current sources.
func (e *Effect) clearSources() {
	e.sourcesMu.Lock()
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = e.sources[:0]
	e.sourcesMu.Unlock()
}

// addSource records an incoming edge. Implements sourceTracker.
func (e *Effect) addSource(source *cellBase) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	for _, s := range e.sources {
		if s == source {
			return
		}
	}
	e.sources = append(e.sources, source)
}

// Dispose runs the pending cleanup and unsubscribes from all sources.
// Safe to call more than once.
func (e *Effect) Dispose() {
	if e.disposed.Swap(true) {
		return
	}

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.sourcesMu.Lock()
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = nil
	e.sourcesMu.Unlock()
}

var _ sourceTracker = (*Effect)(nil)
