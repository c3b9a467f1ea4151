package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// The live tree is golang.org/x/net/html's node type: a real parser for
// server-rendered markup on the way in, InsertBefore/AppendChild/RemoveChild
// mutation primitives in the middle, and html.Render for assertions on the
// way out. This file holds the small helpers the renderer needs on top.

// CreateElement returns a detached element node with the given tag.
func CreateElement(tag string) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// CreateText returns a detached text node.
func CreateText(data string) *html.Node {
	return &html.Node{
		Type: html.TextNode,
		Data: data,
	}
}

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// IsText reports whether n is a text node.
func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// TagName returns the lowercase tag name of an element node, "" otherwise.
func TagName(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	return strings.ToLower(n.Data)
}

// SetText replaces a text node's data in place, preserving node identity.
func SetText(n *html.Node, data string) {
	n.Data = data
}

// GetAttr returns the attribute value and whether it is present.
func GetAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or updates an attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr removes an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// Children returns the child nodes of n as a slice.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ChildCount returns the number of child nodes.
func ChildCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// InsertBefore inserts child into parent before anchor. A nil anchor
// appends. If child is currently attached elsewhere it is detached first,
// which is what makes this the move primitive.
func InsertBefore(parent, child, anchor *html.Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	if anchor == nil {
		parent.AppendChild(child)
		return
	}
	parent.InsertBefore(child, anchor)
}

// Remove detaches n from its parent. Detached nodes are left alone.
func Remove(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// TextContent returns the concatenated text of n's subtree.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// NewContainer returns a detached <div> suitable as a mount container.
func NewContainer() *html.Node {
	return CreateElement("div")
}

// SetInnerHTML replaces container's children with the parse of markup,
// the test-side stand-in for assigning innerHTML to a server-rendered
// container.
func SetInnerHTML(container *html.Node, markup string) error {
	for container.FirstChild != nil {
		container.RemoveChild(container.FirstChild)
	}

	nodes, err := ParseFragment(markup)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return nil
}

// ParseFragment parses markup in a body context and returns the detached
// top-level nodes.
func ParseFragment(markup string) ([]*html.Node, error) {
	ctx := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		n.Parent = nil
		n.PrevSibling = nil
		n.NextSibling = nil
	}
	return nodes, nil
}

// RenderString serializes n's subtree to HTML.
func RenderString(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderChildren serializes only n's children, the innerHTML view.
func RenderChildren(n *html.Node) (string, error) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
