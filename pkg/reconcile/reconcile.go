// Package reconcile mounts declarative fdom trees onto a live DOM and keeps
// the two in sync with the minimum set of mutations. Node identity is
// preserved across patches: a child keeps its backing DOM node when its
// kind, tag and key all match, so reorders become moves rather than
// destroy-and-recreate.
//
// A Reconciler is not safe for concurrent use. All mutation of one tree is
// expected to happen from the goroutine driving the render loop.
package reconcile

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/glint-ui/glint/pkg/dom"
	"github.com/glint-ui/glint/pkg/fdom"
	"github.com/glint-ui/glint/pkg/reactive"
)

// binding ties a live DOM node to the declarative node it renders and to
// the reactive effects keeping it current. Effects are registered under the
// owner so disposing the owner detaches every subscription at once.
type binding struct {
	fnode *fdom.FNode
	owner *reactive.Owner

	// textEffect keeps a bound text node's data current.
	textEffect *reactive.Effect

	// propEffects keeps one effect per reactive attribute, keyed by the
	// attribute name, so a changed prop can be rebound without touching
	// the others.
	propEffects map[string]*reactive.Effect

	// events lists the event names registered with the delegator for this
	// node.
	events []string
}

// Reconciler owns the binding table for one mounted tree.
type Reconciler struct {
	delegator *dom.Delegator
	logger    *slog.Logger
	bindings  map[*html.Node]*binding
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithDelegator routes event handler registration through d instead of the
// process-wide delegator.
func WithDelegator(d *dom.Delegator) Option {
	return func(r *Reconciler) { r.delegator = d }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) { r.logger = l }
}

// New creates a Reconciler with an empty binding table.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{
		delegator: dom.Default(),
		logger:    slog.Default(),
		bindings:  make(map[*html.Node]*binding),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mount renders f into container, replacing any existing content, and
// returns the first mounted DOM node (nil when f renders nothing).
// Reactive props and text bindings run as effects immediately, so the
// mounted tree reflects current signal values. A nil container degrades to
// a logged no-op.
func (r *Reconciler) Mount(f *fdom.FNode, container *html.Node) *html.Node {
	if container == nil {
		r.logger.Warn("mount target missing")
		return nil
	}
	r.Unmount(container)
	r.Reconcile(container, normalizeOne(f))
	return container.FirstChild
}

// Patch diffs f against the tree currently mounted in container and applies
// the difference in place.
func (r *Reconciler) Patch(f *fdom.FNode, container *html.Node) {
	if container == nil {
		r.logger.Warn("patch target missing")
		return
	}
	r.Reconcile(container, normalizeOne(f))
}

// Unmount removes every child of container, disposing bindings and event
// handlers for the whole subtree.
func (r *Reconciler) Unmount(container *html.Node) {
	for _, child := range dom.Children(container) {
		r.unmountNode(child)
	}
}

// Binding reports whether n is tracked by this reconciler. Mainly useful in
// tests asserting identity preservation.
func (r *Reconciler) Binding(n *html.Node) (*fdom.FNode, bool) {
	b, ok := r.bindings[n]
	if !ok {
		return nil, false
	}
	return b.fnode, true
}

// Reconcile syncs parent's children to next. Leading and trailing runs of
// matching nodes are patched in place; the remaining middle span is matched
// by key (kind, tag and key together form identity), with unkeyed nodes
// falling back to positional reuse. When the same key appears twice in
// next, the first occurrence claims the existing node.
func (r *Reconciler) Reconcile(parent *html.Node, next []*fdom.FNode) {
	old := dom.Children(parent)
	oldStart, oldEnd := 0, len(old)-1
	newStart, newEnd := 0, len(next)-1

	for oldStart <= oldEnd && newStart <= newEnd && r.sameNode(old[oldStart], next[newStart]) {
		r.patchNode(old[oldStart], next[newStart])
		oldStart++
		newStart++
	}
	for oldStart <= oldEnd && newStart <= newEnd && r.sameNode(old[oldEnd], next[newEnd]) {
		r.patchNode(old[oldEnd], next[newEnd])
		oldEnd--
		newEnd--
	}

	// Everything after the matched suffix stays put; new middle nodes are
	// placed immediately before it.
	var anchor *html.Node
	if oldEnd+1 < len(old) {
		anchor = old[oldEnd+1]
	}

	if oldStart > oldEnd {
		for i := newStart; i <= newEnd; i++ {
			dom.InsertBefore(parent, r.createNode(next[i]), anchor)
		}
		return
	}
	if newStart > newEnd {
		for i := oldStart; i <= oldEnd; i++ {
			r.unmountNode(old[i])
		}
		return
	}

	keyed := make(map[string]*html.Node)
	var unkeyed []*html.Node
	for i := oldStart; i <= oldEnd; i++ {
		n := old[i]
		b := r.bindings[n]
		if b != nil && b.fnode.Key != "" {
			id := identityKey(b.fnode)
			if _, dup := keyed[id]; !dup {
				keyed[id] = n
				continue
			}
		}
		unkeyed = append(unkeyed, n)
	}

	used := make(map[*html.Node]bool)
	cursor := 0
	for i := newStart; i <= newEnd; i++ {
		f := next[i]
		var node *html.Node
		if f.Key != "" {
			if cand, ok := keyed[identityKey(f)]; ok && !used[cand] {
				node = cand
			}
		} else {
			for cursor < len(unkeyed) {
				cand := unkeyed[cursor]
				cursor++
				if !used[cand] && r.sameNode(cand, f) {
					node = cand
					break
				}
			}
		}
		if node != nil {
			used[node] = true
			r.patchNode(node, f)
			dom.InsertBefore(parent, node, anchor)
		} else {
			dom.InsertBefore(parent, r.createNode(f), anchor)
		}
	}

	for i := oldStart; i <= oldEnd; i++ {
		if !used[old[i]] {
			r.unmountNode(old[i])
		}
	}
}

// identityKey joins kind, tag and key so a <li key="a"> never matches a
// <div key="a">.
func identityKey(f *fdom.FNode) string {
	return fmt.Sprintf("%d/%s/%s", f.Kind, f.Tag, f.Key)
}

// sameNode reports whether the DOM node n can be patched in place to render
// f. Bound nodes compare declarative identity; unbound nodes (server markup
// that was never hydrated) compare structurally and only when unkeyed.
func (r *Reconciler) sameNode(n *html.Node, f *fdom.FNode) bool {
	if b := r.bindings[n]; b != nil {
		old := b.fnode
		if old.Kind != f.Kind || old.Key != f.Key {
			return false
		}
		if f.Kind == fdom.KindElement && old.Tag != f.Tag {
			return false
		}
		return true
	}
	if f.Key != "" {
		return false
	}
	switch f.Kind {
	case fdom.KindText:
		return dom.IsText(n)
	case fdom.KindElement:
		return dom.IsElement(n) && dom.TagName(n) == f.Tag
	default:
		return false
	}
}

// createNode materializes f as a fresh DOM subtree with bindings and
// effects installed.
func (r *Reconciler) createNode(f *fdom.FNode) *html.Node {
	switch f.Kind {
	case fdom.KindText:
		n := dom.CreateText(f.Text)
		b := r.register(n, f)
		if f.Bind != nil {
			r.bindText(n, b, f.Bind)
		}
		return n
	case fdom.KindElement:
		n := dom.CreateElement(f.Tag)
		b := r.register(n, f)
		for k, v := range f.Props {
			r.applyProp(n, b, k, v)
		}
		for _, child := range normalize(f.Children) {
			dom.InsertBefore(n, r.createNode(child), nil)
		}
		return n
	default:
		// Fragments, components and none-nodes are expanded by normalize
		// before reaching here.
		r.logger.Warn("createNode called with non-concrete node", "kind", f.Kind.String())
		return dom.CreateText("")
	}
}

// patchNode updates the DOM node n in place to render f. Caller guarantees
// sameNode(n, f).
func (r *Reconciler) patchNode(n *html.Node, f *fdom.FNode) {
	b := r.bindings[n]
	var old *fdom.FNode
	if b == nil {
		// Adopting a node with no binding yet, from markup this
		// reconciler did not create. Nothing is installed, so diff
		// against nothing.
		b = r.register(n, f)
	} else {
		old = b.fnode
	}
	b.fnode = f

	if f.Kind == fdom.KindText {
		r.patchText(n, b, old, f)
		return
	}

	var oldProps fdom.Props
	if old != nil {
		oldProps = old.Props
	}
	r.patchProps(n, b, oldProps, f.Props)
	r.Reconcile(n, normalize(f.Children))
}

// patchText syncs a text node's data and rebinds its reactive source when
// the source changed.
func (r *Reconciler) patchText(n *html.Node, b *binding, old, next *fdom.FNode) {
	if next.Bind == nil {
		if b.textEffect != nil {
			b.textEffect.Dispose()
			b.textEffect = nil
		}
		if n.Data != next.Text {
			dom.SetText(n, next.Text)
		}
		return
	}
	if old != nil && b.textEffect != nil && sameReactive(old.Bind, next.Bind) {
		return
	}
	if b.textEffect != nil {
		b.textEffect.Dispose()
	}
	r.bindText(n, b, next.Bind)
}

// sameReactive reports whether two binding sources are the same cell.
// Function-valued sources are never comparable and always rebind.
func sameReactive(a, b any) bool {
	ra, okA := a.(fdom.Reactive)
	rb, okB := b.(fdom.Reactive)
	return okA && okB && ra == rb
}

// bindText installs the effect that keeps a text node current with its
// reactive source.
func (r *Reconciler) bindText(n *html.Node, b *binding, src any) {
	reactive.WithOwner(b.owner, func() {
		b.textEffect = reactive.NewEffect(func() reactive.Cleanup {
			dom.SetText(n, fmt.Sprint(fdom.ReadReactive(src)))
			return nil
		})
	})
}

// patchProps applies the difference between two prop maps.
func (r *Reconciler) patchProps(n *html.Node, b *binding, old, next fdom.Props) {
	for k := range old {
		if _, ok := next[k]; ok {
			continue
		}
		if fdom.IsEventProp(k) {
			r.delegator.Off(n, strings.TrimPrefix(k, "on"))
			continue
		}
		if eff, ok := b.propEffects[k]; ok {
			eff.Dispose()
			delete(b.propEffects, k)
		}
		dom.RemoveAttr(n, k)
	}
	for k, v := range next {
		if !fdom.IsEventProp(k) && fdom.IsReactive(v) && sameReactive(old[k], v) && b.propEffects[k] != nil {
			// Same cell already driving this attribute.
			continue
		}
		r.applyProp(n, b, k, v)
	}
}

// applyProp installs one prop on n: event handlers go to the delegator,
// reactive values get a keep-current effect, everything else is written as
// a static attribute.
func (r *Reconciler) applyProp(n *html.Node, b *binding, key string, v any) {
	if fdom.IsEventProp(key) {
		event := strings.TrimPrefix(key, "on")
		r.delegator.On(n, event, v)
		b.addEvent(event)
		return
	}
	if eff, ok := b.propEffects[key]; ok {
		eff.Dispose()
		delete(b.propEffects, key)
	}
	if fdom.IsReactive(v) {
		reactive.WithOwner(b.owner, func() {
			b.propEffects[key] = reactive.NewEffect(func() reactive.Cleanup {
				applyAttrValue(n, key, fdom.ReadReactive(v))
				return nil
			})
		})
		return
	}
	applyAttrValue(n, key, v)
}

// applyAttrValue writes a resolved attribute value. nil and false remove
// the attribute, true writes a bare boolean attribute.
func applyAttrValue(n *html.Node, key string, v any) {
	switch val := v.(type) {
	case nil:
		dom.RemoveAttr(n, key)
	case bool:
		if val {
			dom.SetAttr(n, key, "")
		} else {
			dom.RemoveAttr(n, key)
		}
	case string:
		dom.SetAttr(n, key, val)
	default:
		dom.SetAttr(n, key, fmt.Sprint(val))
	}
}

// register creates the binding for a node.
func (r *Reconciler) register(n *html.Node, f *fdom.FNode) *binding {
	b := &binding{
		fnode:       f,
		owner:       reactive.NewOwner(nil),
		propEffects: make(map[string]*reactive.Effect),
	}
	r.bindings[n] = b
	return b
}

func (b *binding) addEvent(event string) {
	for _, e := range b.events {
		if e == event {
			return
		}
	}
	b.events = append(b.events, event)
}

// unmountNode removes n from the tree and disposes bindings and event
// handlers for n and every descendant.
func (r *Reconciler) unmountNode(n *html.Node) {
	r.disposeSubtree(n)
	dom.Remove(n)
}

func (r *Reconciler) disposeSubtree(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.disposeSubtree(c)
	}
	if b, ok := r.bindings[n]; ok {
		b.owner.Dispose()
		delete(r.bindings, n)
	}
	r.delegator.RemoveNode(n)
}

// normalizeOne expands a root node into the concrete child list it renders.
func normalizeOne(f *fdom.FNode) []*fdom.FNode {
	return appendNormalized(nil, f)
}

// normalize expands fragments, invokes components and drops none-nodes,
// leaving only concrete element and text nodes for reconciliation.
func normalize(list []*fdom.FNode) []*fdom.FNode {
	out := make([]*fdom.FNode, 0, len(list))
	for _, f := range list {
		out = appendNormalized(out, f)
	}
	return out
}

func appendNormalized(out []*fdom.FNode, f *fdom.FNode) []*fdom.FNode {
	if f == nil {
		return out
	}
	switch f.Kind {
	case fdom.KindNone:
		return out
	case fdom.KindFragment:
		for _, c := range f.Children {
			out = appendNormalized(out, c)
		}
		return out
	case fdom.KindComponent:
		rendered := f.Render(f.Props)
		if rendered == nil {
			return out
		}
		if f.Key != "" && rendered.Key == "" {
			// The component's key carries over to its rendered root so
			// keyed component lists reconcile by identity.
			clone := *rendered
			clone.Key = f.Key
			rendered = &clone
		}
		return appendNormalized(out, rendered)
	default:
		return append(out, f)
	}
}
