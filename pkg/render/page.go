package render

import (
	"fmt"
	"io"

	"github.com/glint-ui/glint/pkg/fdom"
)

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is the root node for the page content.
	Body *fdom.FNode

	// Title is the page title.
	Title string

	// Meta contains meta tags for the page.
	Meta []MetaTag

	// Links contains link tags (stylesheets, favicon, etc.).
	Links []LinkTag

	// Scripts contains script tags to include.
	Scripts []ScriptTag

	// Styles contains inline CSS styles.
	Styles []string

	// StyleSheets contains paths to external stylesheets.
	StyleSheets []string

	// RootID is the id of the mount container wrapping Body. The client
	// hydrates against this element. Defaults to "app".
	RootID string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified.
	Lang string
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name      string
	Content   string
	Property  string
	HTTPEquiv string
	Charset   string
}

// LinkTag represents a link element in the document head.
type LinkTag struct {
	Rel         string
	Href        string
	Type        string
	Sizes       string
	CrossOrigin string
	Media       string
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string
	Type   string
	Defer  bool
	Async  bool
	Module bool
	Inline string
}

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	rootID := page.RootID
	if rootID == "" {
		rootID = "app"
	}

	if _, err := w.Write([]byte("<!DOCTYPE html>\n")); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, `<html lang="%s">`+"\n", escapeAttr(lang)); err != nil {
		return err
	}
	if err := r.renderHead(w, page); err != nil {
		return err
	}

	if _, err := w.Write([]byte("<body>\n")); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, `<div id="%s">`, escapeAttr(rootID)); err != nil {
		return err
	}
	if err := r.RenderToWriter(w, page.Body); err != nil {
		return err
	}
	if _, err := w.Write([]byte("</div>\n")); err != nil {
		return err
	}

	for _, script := range page.Scripts {
		if err := renderScript(w, script); err != nil {
			return err
		}
	}

	_, err := w.Write([]byte("</body>\n</html>\n"))
	return err
}

func (r *Renderer) renderHead(w io.Writer, page PageData) error {
	if _, err := w.Write([]byte("<head>\n<meta charset=\"utf-8\">\n")); err != nil {
		return err
	}
	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "<title>%s</title>\n", escapeHTML(page.Title)); err != nil {
			return err
		}
	}

	for _, meta := range page.Meta {
		if err := renderMeta(w, meta); err != nil {
			return err
		}
	}
	for _, link := range page.Links {
		if err := renderLink(w, link); err != nil {
			return err
		}
	}
	for _, href := range page.StyleSheets {
		if _, err := fmt.Fprintf(w, `<link rel="stylesheet" href="%s">`+"\n", escapeAttr(href)); err != nil {
			return err
		}
	}
	for _, css := range page.Styles {
		if _, err := fmt.Fprintf(w, "<style>%s</style>\n", css); err != nil {
			return err
		}
	}

	_, err := w.Write([]byte("</head>\n"))
	return err
}

func renderMeta(w io.Writer, meta MetaTag) error {
	if _, err := w.Write([]byte("<meta")); err != nil {
		return err
	}
	attrs := []struct{ name, value string }{
		{"charset", meta.Charset},
		{"name", meta.Name},
		{"property", meta.Property},
		{"http-equiv", meta.HTTPEquiv},
		{"content", meta.Content},
	}
	for _, a := range attrs {
		if a.value == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, a.name, escapeAttr(a.value)); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte(">\n"))
	return err
}

func renderLink(w io.Writer, link LinkTag) error {
	if _, err := w.Write([]byte("<link")); err != nil {
		return err
	}
	attrs := []struct{ name, value string }{
		{"rel", link.Rel},
		{"href", link.Href},
		{"type", link.Type},
		{"sizes", link.Sizes},
		{"crossorigin", link.CrossOrigin},
		{"media", link.Media},
	}
	for _, a := range attrs {
		if a.value == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, a.name, escapeAttr(a.value)); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte(">\n"))
	return err
}

func renderScript(w io.Writer, script ScriptTag) error {
	if _, err := w.Write([]byte("<script")); err != nil {
		return err
	}
	if script.Module {
		if _, err := w.Write([]byte(` type="module"`)); err != nil {
			return err
		}
	} else if script.Type != "" {
		if _, err := fmt.Fprintf(w, ` type="%s"`, escapeAttr(script.Type)); err != nil {
			return err
		}
	}
	if script.Src != "" {
		if _, err := fmt.Fprintf(w, ` src="%s"`, escapeAttr(script.Src)); err != nil {
			return err
		}
	}
	if script.Defer {
		if _, err := w.Write([]byte(" defer")); err != nil {
			return err
		}
	}
	if script.Async {
		if _, err := w.Write([]byte(" async")); err != nil {
			return err
		}
	}
	if _, err := w.Write([]byte(">")); err != nil {
		return err
	}
	if script.Inline != "" {
		if _, err := w.Write([]byte(script.Inline)); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte("</script>\n"))
	return err
}
