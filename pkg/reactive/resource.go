package reactive

import "sync/atomic"

// ResourceState is the explicit state machine of an async resource:
// Loading transitions to Ready or Error; Refetch re-enters Loading.
type ResourceState uint8

const (
	Loading ResourceState = iota
	Ready
	Error
)

// String returns a human-readable name for the state.
func (s ResourceState) String() string {
	switch s {
	case Loading:
		return "Loading"
	case Ready:
		return "Ready"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// resourceSnapshot is the atomically-published view of a resource.
type resourceSnapshot[T any] struct {
	state ResourceState
	data  T
	err   error
}

// Resource manages asynchronous data loading as reactive state. The fetcher
// runs off the reactive thread; its completion is an ordinary signal write,
// observed through the normal batching pipeline. There is no cancellation:
// the generation counter makes stale completions lose the race instead.
type Resource[T any] struct {
	fetcher func() (T, error)
	cell    *Signal[resourceSnapshot[T]]

	// generation guards against out-of-order completions: only the result
	// of the newest fetch is committed.
	generation atomic.Uint64
}

// NewResource creates a resource and starts its first fetch immediately.
func NewResource[T any](fetcher func() (T, error)) *Resource[T] {
	r := &Resource[T]{
		fetcher: fetcher,
		cell:    NewSignal(resourceSnapshot[T]{state: Loading}),
	}
	r.start()
	return r
}

// State returns the current state, tracking a dependency.
func (r *Resource[T]) State() ResourceState {
	return r.cell.Get().state
}

// PeekState returns the current state without tracking.
func (r *Resource[T]) PeekState() ResourceState {
	return r.cell.Peek().state
}

// Data returns the last loaded value. Zero value until the first Ready.
func (r *Resource[T]) Data() T {
	return r.cell.Get().data
}

// Err returns the fetch error, or nil outside the Error state.
func (r *Resource[T]) Err() error {
	return r.cell.Get().err
}

// Refetch re-enters Loading and starts a new fetch. A completion from a
// superseded fetch is discarded.
func (r *Resource[T]) Refetch() {
	r.cell.Update(func(s resourceSnapshot[T]) resourceSnapshot[T] {
		s.state = Loading
		s.err = nil
		return s
	})
	r.start()
}

func (r *Resource[T]) start() {
	gen := r.generation.Add(1)

	go func() {
		data, err := r.fetcher()
		if r.generation.Load() != gen {
			// A newer fetch superseded this one.
			return
		}

		if err != nil {
			r.cell.Set(resourceSnapshot[T]{state: Error, err: err})
			return
		}
		r.cell.Set(resourceSnapshot[T]{state: Ready, data: data})
	}()
}
