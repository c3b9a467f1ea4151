package reactive

import (
	"fmt"
	"sync"
)

// MaxFlushPasses bounds the fixed-point loop inside a single Flush. Running
// an effect may dirty further cells, so the queue is re-drained until empty;
// a graph that never settles within this many passes is a dependency cycle
// or a runaway effect and is surfaced as a fatal condition instead of a
// silent infinite loop.
var MaxFlushPasses = 100

// scheduler is the process-wide pending-effect queue. Writes push dirty
// effects here; nothing re-runs until the queue is drained, either by an
// explicit Flush or by whatever the schedule hook arranges.
type scheduler struct {
	mu        sync.Mutex
	queue     []*Effect
	scheduled bool
	flushing  bool

	// onSchedule, when set, is invoked once each time the queue goes from
	// empty to non-empty outside of a flush. It is the Go stand-in for
	// queueing a microtask: runtimes (the live server, a test harness)
	// install a hook that eventually calls Flush.
	onSchedule func()
}

var defaultScheduler = &scheduler{}

// schedule enqueues a dirty effect. Effects guard with a pending CAS, so a
// given effect appears at most once per drain.
func schedule(e *Effect) {
	defaultScheduler.mu.Lock()
	defaultScheduler.queue = append(defaultScheduler.queue, e)
	hook := defaultScheduler.onSchedule
	fire := hook != nil && !defaultScheduler.scheduled && !defaultScheduler.flushing
	if fire {
		defaultScheduler.scheduled = true
	}
	defaultScheduler.mu.Unlock()

	if fire {
		hook()
	}
}

// SetScheduleHook installs fn to be called once whenever dirty effects
// become pending outside a flush. Pass nil to restore fully manual flushing.
// The hook must not call Flush synchronously from a signal write path that
// holds application locks; the usual pattern defers to the end of the
// current event.
func SetScheduleHook(fn func()) {
	defaultScheduler.mu.Lock()
	defaultScheduler.onSchedule = fn
	defaultScheduler.scheduled = false
	defaultScheduler.mu.Unlock()
}

// HasPending reports whether any effects are queued.
func HasPending() bool {
	defaultScheduler.mu.Lock()
	defer defaultScheduler.mu.Unlock()
	return len(defaultScheduler.queue) > 0
}

// Flush synchronously drains the pending queue. Each drained effect runs at
// most once per pass; computeds it reads resolve lazily during the run, so a
// dependency's dirty state is always settled before a dependent effect
// observes it. Effects that dirty further cells extend the drain into
// another pass. Panics with ErrFlushOverflow when the graph does not settle
// within MaxFlushPasses. Callers treating this as recoverable can recover
// at an error-boundary layer.
//
// Calling Flush while a flush is already draining on this scheduler is a
// no-op; the outer drain picks up any newly queued work.
func Flush() {
	defaultScheduler.mu.Lock()
	if defaultScheduler.flushing {
		defaultScheduler.mu.Unlock()
		return
	}
	defaultScheduler.flushing = true
	defaultScheduler.scheduled = false
	defaultScheduler.mu.Unlock()

	defer func() {
		defaultScheduler.mu.Lock()
		defaultScheduler.flushing = false
		defaultScheduler.mu.Unlock()
	}()

	for pass := 0; ; pass++ {
		defaultScheduler.mu.Lock()
		batch := defaultScheduler.queue
		defaultScheduler.queue = nil
		defaultScheduler.mu.Unlock()

		if len(batch) == 0 {
			return
		}

		if pass >= MaxFlushPasses {
			panic(fmt.Errorf("%w: %d passes without settling", ErrFlushOverflow, pass))
		}

		for _, e := range batch {
			if e.pending.Load() {
				e.flushRun()
			}
		}
	}
}

// Batch groups multiple signal writes into a single notification phase.
// Subscribers are collected, deduplicated and marked dirty once when the
// outermost batch completes; equal intermediate writes collapse so effects
// observe only the final value. Batches nest.
func Batch(fn func()) {
	ctx := getTrackingContext()
	ctx.batchDepth++

	defer func() {
		ctx.batchDepth--
		if ctx.batchDepth == 0 {
			deliverPendingNotifies(ctx)
		}
	}()

	fn()
}

// deliverPendingNotifies dedupes queued notifications by listener ID and
// delivers them.
func deliverPendingNotifies(ctx *trackingContext) {
	updates := ctx.pendingNotifies
	ctx.pendingNotifies = nil
	if len(updates) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(updates))
	for _, listener := range updates {
		id := listener.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		listener.MarkDirty()
	}
}
