package reconcile

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/html"

	"github.com/glint-ui/glint/pkg/dom"
	"github.com/glint-ui/glint/pkg/fdom"
	"github.com/glint-ui/glint/pkg/reactive"
)

type mismatchRecorder struct {
	reasons []string
}

func (m *mismatchRecorder) opts() *HydrateOptions {
	return &HydrateOptions{
		OnMismatch: func(reason string, node *html.Node, expected *fdom.FNode) {
			m.reasons = append(m.reasons, reason)
		},
	}
}

func TestHydrateMatchingMarkup(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()
	if err := dom.SetInnerHTML(container, `<div class="card"><h1>Title</h1></div>`); err != nil {
		t.Fatal(err)
	}

	var rec mismatchRecorder
	r.Hydrate(fdom.Div(fdom.Props{"class": "card"}, fdom.H1(nil, "Title")), container, rec.opts())

	if len(rec.reasons) != 0 {
		t.Errorf("unexpected mismatches: %v", rec.reasons)
	}

	div := dom.Children(container)[0]
	if _, ok := r.Binding(div); !ok {
		t.Error("hydrated element has no binding")
	}
}

func TestHydrateAttachesEventHandlers(t *testing.T) {
	d := dom.NewDelegator()
	r := New(WithDelegator(d))
	container := dom.NewContainer()
	if err := dom.SetInnerHTML(container, `<button>go</button>`); err != nil {
		t.Fatal(err)
	}

	clicks := 0
	r.Hydrate(fdom.Button(fdom.On("click", func() { clicks++ }), "go"), container, nil)

	d.Dispatch(dom.Children(container)[0], "click", nil)
	if clicks != 1 {
		t.Errorf("clicks = %d", clicks)
	}
}

func TestHydrateBindsReactiveText(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()
	if err := dom.SetInnerHTML(container, `<span>0</span>`); err != nil {
		t.Fatal(err)
	}

	count := reactive.NewSignal(0)
	var rec mismatchRecorder
	r.Hydrate(fdom.Span(nil, count), container, rec.opts())

	if len(rec.reasons) != 0 {
		t.Fatalf("matching binding reported mismatch: %v", rec.reasons)
	}

	span := dom.Children(container)[0]
	textNode := span.FirstChild

	count.Set(7)
	reactive.Flush()

	if span.FirstChild != textNode {
		t.Error("hydrated text node was replaced on update")
	}
	if textNode.Data != "7" {
		t.Errorf("data %q", textNode.Data)
	}
}

func TestHydrateTextMismatchRepaired(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()
	if err := dom.SetInnerHTML(container, `<span>stale</span>`); err != nil {
		t.Fatal(err)
	}

	var rec mismatchRecorder
	r.Hydrate(fdom.Span(nil, "fresh"), container, rec.opts())

	if len(rec.reasons) != 1 {
		t.Fatalf("want exactly one mismatch, got %v", rec.reasons)
	}
	if !strings.Contains(rec.reasons[0], "Text mismatch") {
		t.Errorf("reason %q should name the mismatch class", rec.reasons[0])
	}
	if got := renderOf(t, container); got != "<span>fresh</span>" {
		t.Errorf("not repaired: %s", got)
	}
}

func TestHydrateTextMismatchKept(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()
	if err := dom.SetInnerHTML(container, `<span>stale</span>`); err != nil {
		t.Fatal(err)
	}

	opts := &HydrateOptions{KeepMismatched: true}
	r.Hydrate(fdom.Span(nil, "fresh"), container, opts)

	if got := renderOf(t, container); got != "<span>stale</span>" {
		t.Errorf("markup should be left as found: %s", got)
	}
}

func TestHydrateTagMismatchReplaced(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()
	if err := dom.SetInnerHTML(container, `<div><b>x</b></div>`); err != nil {
		t.Fatal(err)
	}

	var rec mismatchRecorder
	r.Hydrate(fdom.Div(nil, fdom.Span(nil, "x")), container, rec.opts())

	if len(rec.reasons) != 1 || !strings.Contains(rec.reasons[0], "Tag mismatch") {
		t.Fatalf("got %v", rec.reasons)
	}
	if got := renderOf(t, container); got != "<div><span>x</span></div>" {
		t.Errorf("not repaired: %s", got)
	}
}

func TestHydrateMissingNodeCreated(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()
	if err := dom.SetInnerHTML(container, `<ul><li>one</li></ul>`); err != nil {
		t.Fatal(err)
	}

	var rec mismatchRecorder
	r.Hydrate(fdom.Ul(nil, fdom.Li(nil, "one"), fdom.Li(nil, "two")), container, rec.opts())

	if len(rec.reasons) != 1 || !strings.Contains(rec.reasons[0], "Missing node") {
		t.Fatalf("got %v", rec.reasons)
	}
	if got := renderOf(t, container); got != "<ul><li>one</li><li>two</li></ul>" {
		t.Errorf("missing node not created: %s", got)
	}
}

func TestHydrateLeavesExtraMarkup(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()
	if err := dom.SetInnerHTML(container, `<div><span>a</span><aside>server extra</aside></div>`); err != nil {
		t.Fatal(err)
	}

	var rec mismatchRecorder
	r.Hydrate(fdom.Div(nil, fdom.Span(nil, "a")), container, rec.opts())

	if len(rec.reasons) != 0 {
		t.Errorf("extra markup is not a mismatch: %v", rec.reasons)
	}
	if got := renderOf(t, container); !strings.Contains(got, "server extra") {
		t.Errorf("extra markup removed: %s", got)
	}
}

func TestHydrateAttributeMismatchRepaired(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()
	if err := dom.SetInnerHTML(container, `<a href="/old">link</a>`); err != nil {
		t.Fatal(err)
	}

	var rec mismatchRecorder
	r.Hydrate(fdom.A(fdom.Props{"href": "/new"}, "link"), container, rec.opts())

	if len(rec.reasons) != 1 || !strings.Contains(rec.reasons[0], "Attribute mismatch") {
		t.Fatalf("got %v", rec.reasons)
	}
	a := dom.Children(container)[0]
	if got, _ := dom.GetAttr(a, "href"); got != "/new" {
		t.Errorf("href %q", got)
	}
}

func TestHydratedTreeAcceptsPatches(t *testing.T) {
	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()
	if err := dom.SetInnerHTML(container, `<ul><li>a</li><li>b</li></ul>`); err != nil {
		t.Fatal(err)
	}

	r.Hydrate(list("a", "b"), container, nil)

	ul := dom.Children(container)[0]
	origA := dom.Children(ul)[0]
	origB := dom.Children(ul)[1]

	r.Patch(list("b", "a"), container)

	got := dom.Children(ul)
	if got[0] != origB || got[1] != origA {
		t.Error("hydrated nodes lost identity across patch")
	}
}

// mismatchCount reads the process-wide hydration mismatch counter for one
// mismatch class from the default registry.
func mismatchCount(t *testing.T, class string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != "glint_hydration_mismatches_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "class" && l.GetValue() == class {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestHydrateMismatchCountedByClass(t *testing.T) {
	before := mismatchCount(t, "text")

	r := New(WithDelegator(dom.NewDelegator()))
	container := dom.NewContainer()
	if err := dom.SetInnerHTML(container, `<p>server copy</p>`); err != nil {
		t.Fatal(err)
	}
	r.Hydrate(fdom.P(nil, "client copy"), container, nil)

	if got := mismatchCount(t, "text"); got != before+1 {
		t.Errorf("text mismatch count = %v, want %v", got, before+1)
	}
}
