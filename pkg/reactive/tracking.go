package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state for a goroutine.
// Each goroutine has its own context so independent sessions can render
// concurrently without sharing evaluator state.
type trackingContext struct {
	// currentListener is what is currently evaluating. When a cell is read,
	// it subscribes this listener. nil means reads are untracked.
	currentListener Listener

	// currentOwner receives ownership of newly created effects.
	currentOwner *Owner

	// batchDepth tracks nested Batch() calls. When > 0, notifications are
	// queued instead of delivered immediately.
	batchDepth int

	// pendingNotifies accumulates listeners to notify when the outermost
	// batch completes. Deduplicated by ID before delivery.
	pendingNotifies []Listener
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// getGoroutineID extracts the current goroutine's ID from the runtime stack.
// Implementation detail; never exposed.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack header is "goroutine <id> ".
	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// getTrackingContext returns the tracking context for the current goroutine,
// creating one if needed.
func getTrackingContext() *trackingContext {
	gid := getGoroutineID()

	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}

	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// getCurrentListener returns the listener currently evaluating, or nil.
func getCurrentListener() Listener {
	return getTrackingContext().currentListener
}

// setCurrentListener installs l as the current listener and returns the
// previous one so it can be restored. This save/restore pair is the
// evaluator stack: nested evaluations push by saving and pop by restoring.
func setCurrentListener(l Listener) Listener {
	ctx := getTrackingContext()
	old := ctx.currentListener
	ctx.currentListener = l
	return old
}

// getCurrentOwner returns the owner for newly created effects, or nil.
func getCurrentOwner() *Owner {
	return getTrackingContext().currentOwner
}

// setCurrentOwner installs o as the current owner and returns the previous.
func setCurrentOwner(o *Owner) *Owner {
	ctx := getTrackingContext()
	old := ctx.currentOwner
	ctx.currentOwner = o
	return old
}

// WithOwner runs fn with owner installed as the current owner.
// Effects created inside fn are disposed when owner is disposed.
func WithOwner(owner *Owner, fn func()) {
	old := setCurrentOwner(owner)
	defer setCurrentOwner(old)
	fn()
}

// WithListener runs fn with l installed as the current listener.
// Every tracked read inside fn subscribes l. Used internally to set up
// dependency tracking and by tests that need a synthetic subscriber.
func WithListener(l Listener, fn func()) {
	old := setCurrentListener(l)
	defer setCurrentListener(old)
	fn()
}

// Untracked runs fn without tracking reads as dependencies.
// For single reads prefer Peek, which is clearer in intent.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}
