package fdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// Element constructors for the common intrinsic tags. Each takes props
// first and then children with N's flattening semantics.

// Div creates a <div> element.
func Div(props Props, children ...any) *FNode { return N("div", props, children...) }

// Span creates a <span> element.
func Span(props Props, children ...any) *FNode { return N("span", props, children...) }

// P creates a <p> element.
func P(props Props, children ...any) *FNode { return N("p", props, children...) }

// A creates an <a> element.
func A(props Props, children ...any) *FNode { return N("a", props, children...) }

// Button creates a <button> element.
func Button(props Props, children ...any) *FNode { return N("button", props, children...) }

// Input creates an <input> element.
func Input(props Props) *FNode { return N("input", props) }

// Label creates a <label> element.
func Label(props Props, children ...any) *FNode { return N("label", props, children...) }

// Form creates a <form> element.
func Form(props Props, children ...any) *FNode { return N("form", props, children...) }

// Ul creates a <ul> element.
func Ul(props Props, children ...any) *FNode { return N("ul", props, children...) }

// Ol creates an <ol> element.
func Ol(props Props, children ...any) *FNode { return N("ol", props, children...) }

// Li creates an <li> element.
func Li(props Props, children ...any) *FNode { return N("li", props, children...) }

// H1 creates an <h1> element.
func H1(props Props, children ...any) *FNode { return N("h1", props, children...) }

// H2 creates an <h2> element.
func H2(props Props, children ...any) *FNode { return N("h2", props, children...) }

// H3 creates an <h3> element.
func H3(props Props, children ...any) *FNode { return N("h3", props, children...) }

// Img creates an <img> element.
func Img(props Props) *FNode { return N("img", props) }

// Br creates a <br> element.
func Br() *FNode { return N("br", nil) }

// Hr creates an <hr> element.
func Hr() *FNode { return N("hr", nil) }

// Section creates a <section> element.
func Section(props Props, children ...any) *FNode { return N("section", props, children...) }

// Header creates a <header> element.
func Header(props Props, children ...any) *FNode { return N("header", props, children...) }

// Footer creates a <footer> element.
func Footer(props Props, children ...any) *FNode { return N("footer", props, children...) }

// Nav creates a <nav> element.
func Nav(props Props, children ...any) *FNode { return N("nav", props, children...) }

// Main creates a <main> element.
func Main(props Props, children ...any) *FNode { return N("main", props, children...) }

// Table creates a <table> element.
func Table(props Props, children ...any) *FNode { return N("table", props, children...) }

// Tr creates a <tr> element.
func Tr(props Props, children ...any) *FNode { return N("tr", props, children...) }

// Td creates a <td> element.
func Td(props Props, children ...any) *FNode { return N("td", props, children...) }

// Th creates a <th> element.
func Th(props Props, children ...any) *FNode { return N("th", props, children...) }

// Select creates a <select> element.
func Select(props Props, children ...any) *FNode { return N("select", props, children...) }

// Option creates an <option> element.
func Option(props Props, children ...any) *FNode { return N("option", props, children...) }

// Textarea creates a <textarea> element.
func Textarea(props Props, children ...any) *FNode { return N("textarea", props, children...) }

// Pre creates a <pre> element.
func Pre(props Props, children ...any) *FNode { return N("pre", props, children...) }

// Code creates a <code> element.
func Code(props Props, children ...any) *FNode { return N("code", props, children...) }
