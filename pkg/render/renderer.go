package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/glint-ui/glint/pkg/fdom"
	"github.com/glint-ui/glint/pkg/reactive"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables pretty-printed HTML output with indentation.
	// Should only be used in development as it increases output size.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string
}

// Renderer serializes fdom trees to HTML. Reactive props and text bindings
// are resolved once, untracked, to their current value, so rendering never
// subscribes the output to the graph. Output attribute order is sorted for
// deterministic markup, which hydration on the client relies on only
// loosely (it compares by name, not position).
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders a tree to a complete HTML string.
func (r *Renderer) RenderToString(node *fdom.FNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *fdom.FNode) error {
	return r.renderNode(w, node, 0)
}

// ToString renders node with the default configuration.
func ToString(node *fdom.FNode) (string, error) {
	return NewRenderer(RendererConfig{}).RenderToString(node)
}

func (r *Renderer) renderNode(w io.Writer, node *fdom.FNode, depth int) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case fdom.KindElement:
		return r.renderElement(w, node, depth)
	case fdom.KindText:
		return r.renderText(w, node)
	case fdom.KindFragment:
		for _, child := range node.Children {
			if err := r.renderNode(w, child, depth); err != nil {
				return err
			}
		}
		return nil
	case fdom.KindComponent:
		if node.Render == nil {
			return nil
		}
		return r.renderNode(w, node.Render(node.Props), depth)
	case fdom.KindNone:
		return nil
	default:
		return fmt.Errorf("unknown node kind: %d", node.Kind)
	}
}

func (r *Renderer) renderElement(w io.Writer, node *fdom.FNode, depth int) error {
	tag := node.Tag

	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := fmt.Fprintf(w, "<%s", tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, node); err != nil {
		return err
	}

	if fdom.IsVoidElement(tag) {
		if _, err := w.Write([]byte{'>'}); err != nil {
			return err
		}
		if r.config.Pretty {
			w.Write([]byte{'\n'})
		}
		return nil
	}

	if _, err := w.Write([]byte{'>'}); err != nil {
		return err
	}

	hasBlockChildren := len(node.Children) > 0 && !isInlineElement(tag)
	if r.config.Pretty && hasBlockChildren {
		w.Write([]byte{'\n'})
	}

	for _, child := range node.Children {
		if err := r.renderNode(w, child, depth+1); err != nil {
			return err
		}
	}

	if r.config.Pretty && hasBlockChildren {
		r.writeIndent(w, depth)
	}

	if _, err := fmt.Fprintf(w, "</%s>", tag); err != nil {
		return err
	}
	if r.config.Pretty {
		w.Write([]byte{'\n'})
	}

	return nil
}

func (r *Renderer) renderText(w io.Writer, node *fdom.FNode) error {
	text := node.Text
	if node.Bind != nil {
		text = fmt.Sprint(resolve(node.Bind))
	}
	_, err := w.Write([]byte(escapeHTML(text)))
	return err
}

// renderAttributes writes an element's attributes in sorted key order.
// Event handler props never render; on the client they are registered with
// the delegator during hydration instead.
func (r *Renderer) renderAttributes(w io.Writer, node *fdom.FNode) error {
	if len(node.Props) == 0 {
		return nil
	}

	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if fdom.IsEventProp(key) {
			continue
		}
		value := resolve(node.Props[key])

		switch v := value.(type) {
		case nil:
			continue
		case bool:
			if v {
				if _, err := fmt.Fprintf(w, " %s", key); err != nil {
					return err
				}
			}
			continue
		}

		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(attrToString(value))); err != nil {
			return err
		}
	}

	// Event marker attributes let a thin client know which elements carry
	// handlers before the full runtime attaches.
	for _, key := range keys {
		if fdom.IsEventProp(key) {
			event := strings.TrimPrefix(key, "on")
			if _, err := fmt.Fprintf(w, ` data-on-%s="true"`, event); err != nil {
				return err
			}
		}
	}

	return nil
}

// resolve reads a possibly-reactive prop value without subscribing.
func resolve(v any) any {
	if rv, ok := v.(fdom.Reactive); ok {
		return rv.PeekValue()
	}
	var out any = v
	if fdom.IsReactive(v) {
		reactive.Untracked(func() {
			out = fdom.ReadReactive(v)
		})
	}
	return out
}

func attrToString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (r *Renderer) writeIndent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		w.Write([]byte(r.config.Indent))
	}
}

// isInlineElement reports whether tag is rendered inline in pretty mode,
// keeping its children on the same line.
func isInlineElement(tag string) bool {
	switch tag {
	case "a", "abbr", "b", "code", "em", "i", "kbd", "label", "mark",
		"q", "s", "small", "span", "strong", "sub", "sup", "time", "u":
		return true
	default:
		return false
	}
}
