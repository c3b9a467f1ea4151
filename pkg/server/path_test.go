package server

import (
	"testing"

	"github.com/glint-ui/glint/pkg/dom"
)

func TestNodePathRoundTrip(t *testing.T) {
	container := dom.NewContainer()
	if err := dom.SetInnerHTML(container, `<div><span>a</span><ul><li>x</li><li>y</li></ul></div>`); err != nil {
		t.Fatal(err)
	}

	div := dom.Children(container)[0]
	ul := dom.Children(div)[1]
	liY := dom.Children(ul)[1]

	path, ok := nodePath(container, liY)
	if !ok {
		t.Fatal("node should be addressable")
	}
	if path != "0.1.1" {
		t.Errorf("path %q", path)
	}
	if resolvePath(container, path) != liY {
		t.Error("path does not resolve back to the node")
	}
}

func TestNodePathRoot(t *testing.T) {
	container := dom.NewContainer()
	path, ok := nodePath(container, container)
	if !ok || path != "" {
		t.Errorf("root path = %q, ok = %v", path, ok)
	}
	if resolvePath(container, "") != container {
		t.Error("empty path should resolve to root")
	}
}

func TestNodePathDetachedNode(t *testing.T) {
	container := dom.NewContainer()
	stranger := dom.CreateElement("div")
	if _, ok := nodePath(container, stranger); ok {
		t.Error("detached node must not be addressable")
	}
}

func TestResolvePathInvalid(t *testing.T) {
	container := dom.NewContainer()
	if err := dom.SetInnerHTML(container, "<div></div>"); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{"5", "0.9", "x", "-1", "0..1"} {
		if got := resolvePath(container, path); got != nil {
			t.Errorf("path %q resolved to %v", path, got)
		}
	}
}
