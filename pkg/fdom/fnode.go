package fdom

import (
	"fmt"
	"strings"
)

// Kind is the node type discriminator. The type of a node is decided once,
// at construction; consumers switch on this tag instead of re-inspecting
// the raw type value.
type Kind uint8

const (
	KindElement   Kind = iota // <div>, <button>, etc.
	KindText                  // Plain text (static or reactive)
	KindFragment              // Grouping without a wrapper element
	KindComponent             // Function component
	KindNone                  // Renders nothing (nil type)
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindNone:
		return "None"
	default:
		return "Unknown"
	}
}

// Props holds attributes and event handlers. Event handler entries are
// lowercase "on"-prefixed keys ("onclick", "oninput"); everything else is
// an attribute. Attribute values may be reactive (see IsReactive).
type Props map[string]any

// Component is a function component: invoked with its props, it returns the
// tree it renders to. Components introduce no extra DOM layer of their own.
type Component func(Props) *FNode

// fragmentMarker is the sentinel type tag for fragments.
type fragmentMarker struct{}

// FragmentTag is the type value that makes N construct a fragment.
var FragmentTag = fragmentMarker{}

// FNode is the immutable declarative description of a node to render.
type FNode struct {
	Kind     Kind
	Tag      string   // Element tag name, lowercase
	Props    Props    // Attributes and event handlers (key already removed)
	Children []*FNode // Child nodes
	Key      string   // Reconciliation identity token, "" if unkeyed
	Text     string   // Static text for KindText
	Bind     any      // Reactive text binding for KindText (Source or func() any)
	Render   Component
}

// N constructs an FNode. typ is one of: a tag-name string, a Component,
// FragmentTag, or nil (which renders nothing). "key" is extracted from
// props and removed before storage. Children are flattened recursively:
// arrays at any depth are inlined, nil and bool values are filtered out,
// strings and numbers become text nodes, reactive values become bound text
// nodes.
func N(typ any, props Props, children ...any) *FNode {
	node := &FNode{Props: make(Props, len(props))}

	switch v := typ.(type) {
	case nil:
		node.Kind = KindNone
	case string:
		node.Kind = KindElement
		node.Tag = strings.ToLower(v)
	case fragmentMarker:
		node.Kind = KindFragment
	case Component:
		node.Kind = KindComponent
		node.Render = v
	case func(Props) *FNode:
		node.Kind = KindComponent
		node.Render = v
	default:
		panic(fmt.Sprintf("fdom: unsupported node type %T", typ))
	}

	for k, val := range props {
		if k == "key" {
			node.Key = propKey(val)
			continue
		}
		node.Props[normalizeProp(k)] = val
	}

	node.Children = appendFlattened(nil, children)

	return node
}

// NFlat is the lightweight variant of N for callers that guarantee an
// already-flat children list: it filters nil and bool at the top level only
// and does not descend into nested arrays. Falsy-filtering semantics agree
// with N.
func NFlat(typ any, props Props, children ...any) *FNode {
	node := N(typ, props)

	for _, child := range children {
		switch v := child.(type) {
		case nil, bool:
			// Same falsy semantics as the deep flatten.
		case *FNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*FNode:
			// One pre-built slice is appended wholesale; no recursion.
			node.Children = append(node.Children, v...)
		default:
			if leaf := leafNode(child); leaf != nil {
				node.Children = append(node.Children, leaf)
			}
		}
	}

	return node
}

// appendFlattened recursively flattens a children argument list into out.
// Order is preserved; nil, true and false disappear.
func appendFlattened(out []*FNode, children []any) []*FNode {
	for _, child := range children {
		switch v := child.(type) {
		case nil, bool:
			continue
		case *FNode:
			if v != nil {
				out = append(out, v)
			}
		case []*FNode:
			for _, c := range v {
				if c != nil {
					out = append(out, c)
				}
			}
		case []any:
			out = append(out, appendFlattened(nil, v)...)
		default:
			if leaf := leafNode(child); leaf != nil {
				out = append(out, leaf)
			}
		}
	}
	return out
}

// leafNode converts a non-node child value into a text leaf. Reactive
// values become bound text nodes; everything else is formatted.
func leafNode(v any) *FNode {
	if IsReactive(v) {
		return &FNode{Kind: KindText, Bind: v}
	}
	switch val := v.(type) {
	case string:
		return &FNode{Kind: KindText, Text: val}
	default:
		return &FNode{Kind: KindText, Text: fmt.Sprintf("%v", val)}
	}
}

// propKey formats a key prop value. Non-string keys are formatted so
// integer keys work naturally.
func propKey(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// normalizeProp lowercases event handler keys; attribute keys pass through.
func normalizeProp(k string) string {
	if IsEventProp(k) {
		return strings.ToLower(k)
	}
	return k
}

// IsEventProp reports whether the prop key names an event handler.
// Case-insensitive: onclick, onClick and ONCLICK all qualify.
func IsEventProp(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}

// Reactive is the structural shape of a reactive cell the renderer can
// bind: pkg/reactive's Signal and Computed both satisfy it.
type Reactive interface {
	Value() any
	PeekValue() any
}

// IsReactive reports whether a prop or child value should be bound as a
// live effect rather than resolved once: a reactive cell or a derive-on-
// demand function.
func IsReactive(v any) bool {
	switch v.(type) {
	case Reactive:
		return true
	case func() any:
		return true
	case func() string:
		return true
	default:
		return false
	}
}

// ReadReactive resolves a reactive prop/child value, tracking dependencies
// if a listener is evaluating.
func ReadReactive(v any) any {
	switch r := v.(type) {
	case Reactive:
		return r.Value()
	case func() any:
		return r()
	case func() string:
		return r()
	default:
		return v
	}
}
