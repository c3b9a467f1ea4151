package render

import "strings"

// textEntities maps the characters that must never appear raw in HTML text
// content to their entity form.
var textEntities = map[rune]string{
	'&':  "&amp;",
	'<':  "&lt;",
	'>':  "&gt;",
	'"':  "&quot;",
	'\'': "&#39;",
}

// attrEntities extends textEntities with the whitespace characters that
// could break attribute parsing.
var attrEntities = func() map[rune]string {
	m := map[rune]string{
		'\n': "&#10;",
		'\r': "&#13;",
		'\t': "&#9;",
	}
	for r, e := range textEntities {
		m[r] = e
	}
	return m
}()

func escapeWith(s string, entities map[rune]string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		if e, ok := entities[r]; ok {
			buf.WriteString(e)
		} else {
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeHTML escapes text for safe inclusion in HTML content.
func escapeHTML(s string) string {
	return escapeWith(s, textEntities)
}

// escapeAttr escapes text for safe inclusion in HTML attribute values.
func escapeAttr(s string) string {
	return escapeWith(s, attrEntities)
}
