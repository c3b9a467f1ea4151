package reactive

import (
	"fmt"
	"strings"
	"sync"
)

// keyedRegistry is the process-wide store behind KeyedSignal. Cells live
// for the life of the process and are never silently evicted; ResetKeyed
// exists for test isolation.
type keyedRegistry struct {
	mu    sync.Mutex
	cells map[string]any
}

var globalKeyed = &keyedRegistry{cells: make(map[string]any)}

// keyedKey normalizes an arbitrary key tuple to a map key. Type names are
// included so ("1") and (1) address different cells.
func keyedKey(key []any) string {
	var b strings.Builder
	for i, part := range key {
		if i > 0 {
			b.WriteByte('/')
		}
		fmt.Fprintf(&b, "%T=%v", part, part)
	}
	return b.String()
}

// KeyedSignal returns the process-wide signal registered under the given
// key tuple, creating it with the initial value on first request. Two
// otherwise-independent callers requesting the same key observe the same
// cell: a write from either is visible to both after one flush.
//
// The initial value only matters on the creating call; later calls for the
// same key receive the existing cell regardless of their initial argument.
// Requesting an existing key with a different value type panics with
// ErrKeyedTypeMismatch.
func KeyedSignal[T any](initial T, key ...any) *Signal[T] {
	k := keyedKey(key)

	globalKeyed.mu.Lock()
	defer globalKeyed.mu.Unlock()

	if cell, ok := globalKeyed.cells[k]; ok {
		sig, ok := cell.(*Signal[T])
		if !ok {
			panic(fmt.Errorf("%w: key %q holds %T", ErrKeyedTypeMismatch, k, cell))
		}
		return sig
	}

	sig := NewSignal(initial)
	globalKeyed.cells[k] = sig
	return sig
}

// DeleteKeyed removes the cell registered under the given key tuple.
// Existing references to the signal keep working; the next KeyedSignal call
// for the key creates a fresh cell.
func DeleteKeyed(key ...any) {
	k := keyedKey(key)

	globalKeyed.mu.Lock()
	defer globalKeyed.mu.Unlock()
	delete(globalKeyed.cells, k)
}

// ResetKeyed drops every keyed cell. Intended for test isolation.
func ResetKeyed() {
	globalKeyed.mu.Lock()
	defer globalKeyed.mu.Unlock()
	globalKeyed.cells = make(map[string]any)
}
