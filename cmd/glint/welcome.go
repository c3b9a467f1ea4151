package main

import (
	"fmt"

	"github.com/glint-ui/glint/pkg/fdom"
	"github.com/glint-ui/glint/pkg/reactive"
	"github.com/glint-ui/glint/pkg/render"
)

// welcomePage is the built-in demo: a counter whose text updates through a
// signal binding rather than a re-render.
func welcomePage() *fdom.FNode {
	count := reactive.NewSignal(0)
	doubled := reactive.NewComputed(func() string {
		return fmt.Sprintf("doubled: %d", count.Get()*2)
	})

	return fdom.Main(fdom.Props{"class": "welcome"},
		fdom.H1(nil, "Glint"),
		fdom.P(nil, "Fine-grained reactive rendering for Go."),
		fdom.Section(fdom.Props{"class": "demo"},
			fdom.Span(fdom.Props{"class": "count"}, count),
			fdom.Span(fdom.Props{"class": "doubled"}, doubled),
			fdom.Button(fdom.On("click", func() {
				count.Update(func(n int) int { return n + 1 })
			}), "increment"),
		),
	)
}

// demoPages lists the pages published by the deploy command.
func demoPages() map[string]render.PageData {
	return map[string]render.PageData{
		"/": {
			Title: "Glint",
			Body:  welcomePage(),
		},
	}
}
