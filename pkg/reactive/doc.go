// Package reactive implements the dependency-tracking value graph at the
// heart of glint: signals (mutable cells), computeds (lazy memoized
// derivations) and effects (side-effecting subscribers), plus the scheduler
// that batches writes into flushes.
//
// Tracking is dynamic: reading a cell while a computed or effect is
// evaluating records a dependency edge, and every re-evaluation rebuilds its
// edge set from scratch so dependencies dropped by a conditional branch do
// not linger. Writes push dirtiness through the graph without running
// anything; work happens lazily on the next read (computeds) or on the next
// Flush (effects).
//
// Computeds are expected to be pure. A write performed inside a computed's
// derivation is not actively rejected, but it voids the memoization
// contract and can force extra recomputation; self-referential cycles are
// broken by returning the stale value rather than recursing.
package reactive
