package fdom

// With returns a copy of props extended with extra entries. Handy for
// composing attribute maps with event handlers at call sites.
func (p Props) With(key string, value any) Props {
	out := make(Props, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out[normalizeProp(key)] = value
	return out
}

// On returns a props entry binding an event handler under the normalized
// lowercase name. The handler value is kept opaque here; the delegator
// asserts its concrete type at dispatch.
func On(event string, handler any) Props {
	return Props{"on" + event: handler}
}

// Merge combines several props maps left to right; later entries win,
// matching the replace-not-stack rule for handlers.
func Merge(maps ...Props) Props {
	out := make(Props)
	for _, m := range maps {
		for k, v := range m {
			out[normalizeProp(k)] = v
		}
	}
	return out
}
