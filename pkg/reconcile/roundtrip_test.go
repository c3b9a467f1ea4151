package reconcile

import (
	"testing"

	"golang.org/x/net/html"

	"github.com/glint-ui/glint/pkg/dom"
	"github.com/glint-ui/glint/pkg/fdom"
	"github.com/glint-ui/glint/pkg/reactive"
	"github.com/glint-ui/glint/pkg/render"
)

// Server-render a tree, parse the markup back, hydrate against it, then
// drive the hydrated tree through signal updates. This is the path a page
// actually takes from SSR to live updates.
func TestServerRenderThenHydrate(t *testing.T) {
	count := reactive.NewSignal(3)
	// Adjacent text nodes merge when markup is parsed back, so the bound
	// value gets an element of its own.
	view := func() *fdom.FNode {
		return fdom.Div(fdom.Props{"class": "counter"},
			fdom.Span(nil, count),
			fdom.Button(fdom.On("click", func() { count.Update(func(n int) int { return n + 1 }) }), "+"),
		)
	}

	markup, err := render.ToString(view())
	if err != nil {
		t.Fatal(err)
	}

	container := dom.NewContainer()
	if err := dom.SetInnerHTML(container, markup); err != nil {
		t.Fatal(err)
	}

	d := dom.NewDelegator()
	r := New(WithDelegator(d))
	var mismatches []string
	r.Hydrate(view(), container, &HydrateOptions{
		OnMismatch: func(reason string, node *html.Node, expected *fdom.FNode) {
			mismatches = append(mismatches, reason)
		},
	})

	if len(mismatches) != 0 {
		t.Fatalf("server and client markup should agree: %v", mismatches)
	}

	div := dom.Children(container)[0]
	btn := dom.Children(div)[1]
	d.Dispatch(btn, "click", nil)
	reactive.Flush()

	span := dom.Children(div)[0]
	if got := dom.TextContent(span); got != "4" {
		t.Errorf("after click: %q", got)
	}
}
