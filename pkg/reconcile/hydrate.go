package reconcile

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/glint-ui/glint/pkg/dom"
	"github.com/glint-ui/glint/pkg/fdom"
	"github.com/glint-ui/glint/pkg/metrics"
	"github.com/glint-ui/glint/pkg/reactive"
)

// HydrateOptions controls mismatch handling during hydration. The zero
// value repairs mismatches silently.
type HydrateOptions struct {
	// OnMismatch is invoked once per detected divergence between the
	// declarative tree and the server markup. reason is a human-readable
	// description prefixed with the mismatch class ("Text mismatch",
	// "Tag mismatch", "Node type mismatch", "Attribute mismatch",
	// "Missing node"). node is the live node involved, nil when the
	// markup is missing a node entirely.
	OnMismatch func(reason string, node *html.Node, expected *fdom.FNode)

	// KeepMismatched leaves divergent markup as found instead of
	// repairing it. Bindings are still installed where identity matched.
	KeepMismatched bool
}

// Hydrate adopts server-rendered markup already present in container as the
// live tree for f: it walks both in lockstep, installs bindings, attaches
// event handlers and reactive effects, and repairs any node where the
// markup diverges from what f would render. Extra markup past the end of
// f's children is left untouched.
func (r *Reconciler) Hydrate(f *fdom.FNode, container *html.Node, opts *HydrateOptions) {
	if container == nil {
		r.logger.Warn("hydrate target missing")
		return
	}
	if opts == nil {
		opts = &HydrateOptions{}
	}
	r.hydrateChildren(container, normalizeOne(f), opts)
}

func (r *Reconciler) hydrateChildren(parent *html.Node, next []*fdom.FNode, opts *HydrateOptions) {
	kids := dom.Children(parent)
	for i, f := range next {
		var node *html.Node
		if i < len(kids) {
			node = kids[i]
		}
		r.hydrateNode(parent, node, f, opts)
	}
}

func (r *Reconciler) hydrateNode(parent, node *html.Node, f *fdom.FNode, opts *HydrateOptions) {
	if node == nil {
		r.mismatch(opts, "missing", fmt.Sprintf("Missing node: expected %s", describe(f)), nil, f)
		if !opts.KeepMismatched {
			dom.InsertBefore(parent, r.createNode(f), nil)
		}
		return
	}

	switch f.Kind {
	case fdom.KindText:
		if !dom.IsText(node) {
			r.mismatch(opts, "tag", fmt.Sprintf("Node type mismatch: expected text, found <%s>", dom.TagName(node)), node, f)
			if !opts.KeepMismatched {
				r.replaceNode(parent, node, f)
			}
			return
		}
		expected := f.Text
		if f.Bind != nil {
			expected = fmt.Sprint(peekReactive(f.Bind))
		}
		if node.Data != expected {
			r.mismatch(opts, "text", fmt.Sprintf("Text mismatch: server %q, client %q", node.Data, expected), node, f)
			if !opts.KeepMismatched {
				dom.SetText(node, expected)
			}
		}
		b := r.register(node, f)
		if f.Bind != nil {
			r.bindText(node, b, f.Bind)
		}

	case fdom.KindElement:
		if !dom.IsElement(node) {
			r.mismatch(opts, "tag", fmt.Sprintf("Node type mismatch: expected <%s>, found text", f.Tag), node, f)
			if !opts.KeepMismatched {
				r.replaceNode(parent, node, f)
			}
			return
		}
		if dom.TagName(node) != f.Tag {
			r.mismatch(opts, "tag", fmt.Sprintf("Tag mismatch: server <%s>, client <%s>", dom.TagName(node), f.Tag), node, f)
			if !opts.KeepMismatched {
				r.replaceNode(parent, node, f)
			}
			return
		}
		b := r.register(node, f)
		r.hydrateProps(node, b, f, opts)
		r.hydrateChildren(node, normalize(f.Children), opts)

	default:
		r.logger.Warn("hydrate reached non-concrete node", "kind", f.Kind.String())
	}
}

// hydrateProps attaches handlers and effects and verifies static
// attributes against the markup.
func (r *Reconciler) hydrateProps(n *html.Node, b *binding, f *fdom.FNode, opts *HydrateOptions) {
	for k, v := range f.Props {
		if fdom.IsEventProp(k) || fdom.IsReactive(v) {
			// Handlers never render to markup; reactive attributes are
			// written by their own effect the moment it is installed.
			r.applyProp(n, b, k, v)
			continue
		}
		expected, present := expectedAttr(v)
		got, has := dom.GetAttr(n, k)
		if present == has && (!present || got == expected) {
			continue
		}
		r.mismatch(opts, "attribute", fmt.Sprintf("Attribute mismatch: %s server %q, client %q", k, got, expected), n, f)
		if !opts.KeepMismatched {
			applyAttrValue(n, k, v)
		}
	}
}

// expectedAttr resolves the attribute string a static prop value renders
// to, and whether it renders at all.
func expectedAttr(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case bool:
		return "", val
	case string:
		return val, true
	default:
		return fmt.Sprint(val), true
	}
}

// replaceNode swaps a mismatched node for a freshly created subtree.
func (r *Reconciler) replaceNode(parent, node *html.Node, f *fdom.FNode) {
	dom.InsertBefore(parent, r.createNode(f), node)
	r.unmountNode(node)
}

func (r *Reconciler) mismatch(opts *HydrateOptions, class, reason string, node *html.Node, f *fdom.FNode) {
	r.logger.Debug("hydration mismatch", "class", class, "reason", reason)
	metrics.Default().RecordHydrationMismatch(class)
	if opts.OnMismatch != nil {
		opts.OnMismatch(reason, node, f)
	}
}

// peekReactive resolves a binding source without recording a dependency.
func peekReactive(v any) any {
	if rv, ok := v.(fdom.Reactive); ok {
		return rv.PeekValue()
	}
	var out any
	reactive.Untracked(func() {
		out = fdom.ReadReactive(v)
	})
	return out
}

func describe(f *fdom.FNode) string {
	switch f.Kind {
	case fdom.KindText:
		return fmt.Sprintf("text %q", f.Text)
	case fdom.KindElement:
		return "<" + f.Tag + ">"
	default:
		return f.Kind.String()
	}
}
