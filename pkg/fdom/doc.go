// Package fdom defines the declarative node model: the immutable FNode tree
// a component renders to, before the reconciler turns it into live DOM
// mutations. It is pure data with no dependency on the reactive graph or
// the live tree; reactive prop and child values are recognized structurally
// and carried opaquely for the renderer to bind.
package fdom
