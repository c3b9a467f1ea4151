package reconcile

import (
	"fmt"
	"testing"

	"golang.org/x/net/html"

	"github.com/glint-ui/glint/pkg/dom"
	"github.com/glint-ui/glint/pkg/fdom"
	"github.com/glint-ui/glint/pkg/reactive"
)

func renderOf(t *testing.T, container *html.Node) string {
	t.Helper()
	out, err := dom.RenderChildren(container)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestMountStaticTree(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()

	r.Mount(fdom.Div(fdom.Props{"class": "card"},
		fdom.H1(nil, "Title"),
		fdom.P(nil, "Body text"),
	), container)

	want := `<div class="card"><h1>Title</h1><p>Body text</p></div>`
	if got := renderOf(t, container); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestMountReturnsFirstNode(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()

	got := r.Mount(fdom.Span(nil, "x"), container)
	if got == nil || dom.TagName(got) != "span" {
		t.Errorf("Mount returned %v", got)
	}
	if r.Mount(fdom.Fragment(), dom.NewContainer()) != nil {
		t.Error("empty tree should mount to nil")
	}
}

func TestNilMountTargetIsNoOp(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	if got := r.Mount(fdom.Div(nil), nil); got != nil {
		t.Errorf("got %v", got)
	}
	r.Patch(fdom.Div(nil), nil)
	r.Hydrate(fdom.Div(nil), nil, nil)
}

func TestMountReplacesExistingContent(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()
	if err := dom.SetInnerHTML(container, "<p>stale</p>"); err != nil {
		t.Fatal(err)
	}

	r.Mount(fdom.Span(nil, "fresh"), container)

	if got := renderOf(t, container); got != "<span>fresh</span>" {
		t.Errorf("got %s", got)
	}
}

func TestReactiveTextBinding(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()
	count := reactive.NewSignal(0)

	r.Mount(fdom.Div(nil, "Count: ", count), container)

	if got := renderOf(t, container); got != "<div>Count: 0</div>" {
		t.Fatalf("initial render wrong: %s", got)
	}

	count.Set(5)
	reactive.Flush()

	if got := renderOf(t, container); got != "<div>Count: 5</div>" {
		t.Errorf("after update: %s", got)
	}
}

func TestReactiveTextUpdatesInPlace(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()
	name := reactive.NewSignal("ada")

	r.Mount(fdom.Span(nil, name), container)

	span := dom.Children(container)[0]
	textNode := span.FirstChild

	name.Set("grace")
	reactive.Flush()

	if span.FirstChild != textNode {
		t.Error("text node was replaced instead of updated")
	}
	if textNode.Data != "grace" {
		t.Errorf("text data %q", textNode.Data)
	}
}

func TestReactiveAttribute(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()
	cls := reactive.NewSignal("off")

	r.Mount(fdom.Div(fdom.Props{"class": cls}), container)

	div := dom.Children(container)[0]
	if got, _ := dom.GetAttr(div, "class"); got != "off" {
		t.Fatalf("initial attr %q", got)
	}

	cls.Set("on")
	reactive.Flush()

	if got, _ := dom.GetAttr(div, "class"); got != "on" {
		t.Errorf("attr after update %q", got)
	}
}

func TestPatchAdoptsUnboundMarkup(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()
	if err := dom.SetInnerHTML(container, `<div class="stale"></div>`); err != nil {
		t.Fatal(err)
	}
	cls := reactive.NewSignal("fresh")

	r.Patch(fdom.Div(fdom.Props{"class": cls}), container)

	div := dom.Children(container)[0]
	if got, _ := dom.GetAttr(div, "class"); got != "fresh" {
		t.Fatalf("attr after adoption %q, want %q", got, "fresh")
	}

	cls.Set("updated")
	reactive.Flush()

	if got, _ := dom.GetAttr(div, "class"); got != "updated" {
		t.Errorf("attr after update %q, want %q", got, "updated")
	}
}

func TestFunctionAttribute(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()
	done := reactive.NewSignal(false)

	r.Mount(fdom.Div(fdom.Props{"class": func() any {
		if done.Get() {
			return "done"
		}
		return "pending"
	}}), container)

	div := dom.Children(container)[0]
	if got, _ := dom.GetAttr(div, "class"); got != "pending" {
		t.Fatalf("got %q", got)
	}

	done.Set(true)
	reactive.Flush()

	if got, _ := dom.GetAttr(div, "class"); got != "done" {
		t.Errorf("got %q", got)
	}
}

func TestPatchUpdatesAttrsInPlace(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()

	r.Mount(fdom.Div(fdom.Props{"class": "a", "id": "x"}), container)
	div := dom.Children(container)[0]

	r.Patch(fdom.Div(fdom.Props{"class": "b"}), container)

	if dom.Children(container)[0] != div {
		t.Fatal("element was recreated")
	}
	if got, _ := dom.GetAttr(div, "class"); got != "b" {
		t.Errorf("class %q", got)
	}
	if _, ok := dom.GetAttr(div, "id"); ok {
		t.Error("removed prop still present as attribute")
	}
}

func TestBooleanAttrs(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()

	r.Mount(fdom.Input(fdom.Props{"type": "checkbox", "checked": true, "disabled": false}), container)

	input := dom.Children(container)[0]
	if _, ok := dom.GetAttr(input, "checked"); !ok {
		t.Error("true boolean attr missing")
	}
	if _, ok := dom.GetAttr(input, "disabled"); ok {
		t.Error("false boolean attr present")
	}
}

func TestEventHandlerWiring(t *testing.T) {
	d := dom.NewDelegator()
	r := New(WithDelegator(d))
	container := dom.NewContainer()

	clicks := 0
	r.Mount(fdom.Button(fdom.On("click", func() { clicks++ }), "go"), container)

	btn := dom.Children(container)[0]
	d.Dispatch(btn, "click", nil)
	if clicks != 1 {
		t.Errorf("clicks = %d", clicks)
	}
}

func TestUnmountRemovesHandlersAndBindings(t *testing.T) {
	d := dom.NewDelegator()
	r := New(WithDelegator(d))
	container := dom.NewContainer()

	clicks := 0
	r.Mount(fdom.Button(fdom.On("click", func() { clicks++ }), "go"), container)
	btn := dom.Children(container)[0]

	r.Unmount(container)

	if dom.ChildCount(container) != 0 {
		t.Error("container not emptied")
	}
	if _, ok := r.Binding(btn); ok {
		t.Error("binding survived unmount")
	}
	d.Dispatch(btn, "click", nil)
	if clicks != 0 {
		t.Error("handler survived unmount")
	}
}

func TestUnmountStopsEffects(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()
	sig := reactive.NewSignal(0)
	runs := 0

	r.Mount(fdom.Span(nil, func() any {
		runs++
		return sig.Get()
	}), container)

	if runs != 1 {
		t.Fatalf("initial runs = %d", runs)
	}

	r.Unmount(container)
	sig.Set(1)
	reactive.Flush()

	if runs != 1 {
		t.Errorf("effect ran after unmount, runs = %d", runs)
	}
}

func TestFragmentExpansion(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()

	r.Mount(fdom.Fragment(
		fdom.Span(nil, "a"),
		fdom.Fragment(fdom.Span(nil, "b"), fdom.Span(nil, "c")),
	), container)

	if got := renderOf(t, container); got != "<span>a</span><span>b</span><span>c</span>" {
		t.Errorf("got %s", got)
	}
}

func TestComponentRendering(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()

	greeting := func(p fdom.Props) *fdom.FNode {
		return fdom.P(nil, fmt.Sprintf("Hello, %v", p["name"]))
	}
	r.Mount(fdom.N(fdom.Component(greeting), fdom.Props{"name": "ada"}), container)

	if got := renderOf(t, container); got != "<p>Hello, ada</p>" {
		t.Errorf("got %s", got)
	}
}

func TestConditionalRendering(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()

	r.Mount(fdom.Div(nil,
		fdom.If(false, fdom.Span(nil, "hidden")),
		fdom.If(true, fdom.Span(nil, "shown")),
	), container)

	if got := renderOf(t, container); got != "<div><span>shown</span></div>" {
		t.Errorf("got %s", got)
	}
}

func list(items ...string) *fdom.FNode {
	children := make([]any, 0, len(items))
	for _, it := range items {
		children = append(children, fdom.Li(fdom.Props{"key": it}, it))
	}
	return fdom.Ul(nil, children...)
}

func TestKeyedReorderPreservesNodes(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()

	r.Mount(list("a", "b", "c"), container)
	ul := dom.Children(container)[0]

	before := map[string]*html.Node{}
	for _, li := range dom.Children(ul) {
		before[dom.TextContent(li)] = li
	}

	r.Patch(list("c", "a", "b"), container)

	got := dom.Children(ul)
	if len(got) != 3 {
		t.Fatalf("child count %d", len(got))
	}
	for i, want := range []string{"c", "a", "b"} {
		if dom.TextContent(got[i]) != want {
			t.Errorf("position %d = %q, want %q", i, dom.TextContent(got[i]), want)
		}
		if got[i] != before[want] {
			t.Errorf("node %q was recreated instead of moved", want)
		}
	}
}

func TestKeyedInsertAndRemove(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()

	r.Mount(list("a", "b", "c"), container)
	ul := dom.Children(container)[0]
	keepA := dom.Children(ul)[0]
	keepC := dom.Children(ul)[2]

	r.Patch(list("a", "x", "c"), container)

	got := dom.Children(ul)
	if len(got) != 3 {
		t.Fatalf("child count %d", len(got))
	}
	if got[0] != keepA || got[2] != keepC {
		t.Error("stable keys lost their nodes")
	}
	if dom.TextContent(got[1]) != "x" {
		t.Errorf("middle = %q", dom.TextContent(got[1]))
	}
}

func TestTypeAndKeyFormJointIdentity(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()

	r.Mount(fdom.Div(nil, fdom.Span(fdom.Props{"key": "a"}, "one")), container)
	div := dom.Children(container)[0]
	spanNode := dom.Children(div)[0]

	// Same key, different tag: must be a fresh node.
	r.Patch(fdom.Div(nil, fdom.P(fdom.Props{"key": "a"}, "one")), container)

	got := dom.Children(div)[0]
	if got == spanNode {
		t.Error("key alone must not carry identity across tags")
	}
	if dom.TagName(got) != "p" {
		t.Errorf("tag = %s", dom.TagName(got))
	}
}

func TestDuplicateKeysFirstOccurrenceWins(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()

	r.Mount(list("a", "b"), container)
	ul := dom.Children(container)[0]
	origA := dom.Children(ul)[0]

	r.Patch(fdom.Ul(nil,
		fdom.Li(fdom.Props{"key": "a"}, "first"),
		fdom.Li(fdom.Props{"key": "a"}, "second"),
	), container)

	got := dom.Children(ul)
	if len(got) != 2 {
		t.Fatalf("child count %d", len(got))
	}
	if got[0] != origA {
		t.Error("first duplicate should claim the existing node")
	}
	if got[1] == origA {
		t.Error("second duplicate must be a fresh node")
	}
	if dom.TextContent(got[0]) != "first" || dom.TextContent(got[1]) != "second" {
		t.Errorf("contents %q %q", dom.TextContent(got[0]), dom.TextContent(got[1]))
	}
}

func TestUnkeyedPositionalReuse(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()

	r.Mount(fdom.Div(nil, fdom.Span(nil, "one"), fdom.Span(nil, "two")), container)
	div := dom.Children(container)[0]
	first := dom.Children(div)[0]

	r.Patch(fdom.Div(nil, fdom.Span(nil, "uno"), fdom.Span(nil, "dos")), container)

	if dom.Children(div)[0] != first {
		t.Error("unkeyed same-position same-tag node should be reused")
	}
	if got := renderOf(t, container); got != "<div><span>uno</span><span>dos</span></div>" {
		t.Errorf("got %s", got)
	}
}

func TestPatchGrowAndShrinkList(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()

	r.Mount(list("a"), container)
	ul := dom.Children(container)[0]

	r.Patch(list("a", "b", "c", "d"), container)
	if dom.ChildCount(ul) != 4 {
		t.Fatalf("after grow: %d", dom.ChildCount(ul))
	}

	r.Patch(list("b", "d"), container)
	got := dom.Children(ul)
	if len(got) != 2 || dom.TextContent(got[0]) != "b" || dom.TextContent(got[1]) != "d" {
		t.Errorf("after shrink: %s", renderOf(t, container))
	}
}

func TestRangeHelperWithKeys(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()

	items := []string{"alpha", "beta"}
	r.Mount(fdom.Ul(nil, fdom.Range(items, func(it string, i int) *fdom.FNode {
		return fdom.Li(fdom.Props{"key": it}, it)
	})), container)

	if got := renderOf(t, container); got != "<ul><li>alpha</li><li>beta</li></ul>" {
		t.Errorf("got %s", got)
	}
}
