package fdom

import "fmt"

// Text creates a static text node.
func Text(content string) *FNode {
	return &FNode{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *FNode {
	return Text(fmt.Sprintf(format, args...))
}

// Dynamic creates a text node bound to a reactive value: the renderer keeps
// the text content in sync through an effect.
func Dynamic(v any) *FNode {
	if !IsReactive(v) {
		return leafNode(v)
	}
	return &FNode{Kind: KindText, Bind: v}
}

// Fragment groups children without a wrapper element; they mount directly
// into the parent. Children flatten with the same semantics as N.
func Fragment(children ...any) *FNode {
	return N(FragmentTag, nil, children...)
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *FNode) *FNode {
	if condition {
		return node
	}
	return nil
}

// IfElse returns the first node if condition is true, the second otherwise.
func IfElse(condition bool, ifTrue, ifFalse *FNode) *FNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is like If with lazy evaluation: fn only runs when condition holds.
func When(condition bool, fn func() *FNode) *FNode {
	if condition {
		return fn()
	}
	return nil
}

// Range maps a slice to child nodes.
func Range[T any](items []T, fn func(item T, index int) *FNode) []*FNode {
	out := make([]*FNode, 0, len(items))
	for i, item := range items {
		if node := fn(item, i); node != nil {
			out = append(out, node)
		}
	}
	return out
}
