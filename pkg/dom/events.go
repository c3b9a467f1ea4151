package dom

import (
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// Event is the synthetic event delivered to handlers. Bubbling is simulated
// by the delegator: handlers run from the target upward until the root or
// until StopPropagation.
type Event struct {
	// Type is the lowercase event name ("click", "input", ...).
	Type string

	// Target is the node the event originated at.
	Target *html.Node

	// Value carries the event payload (input value, key name, ...).
	Value any

	cancelBubble bool
}

// StopPropagation stops the synthetic bubble walk after the current
// handler returns.
func (e *Event) StopPropagation() {
	e.cancelBubble = true
}

// Handler handles a dispatched event.
type Handler func(*Event)

// nonBubbling lists event types that do not bubble natively. Handlers for
// these are attached directly per node in the capture phase and bypass the
// synthetic bubble walk entirely.
var nonBubbling = map[string]bool{
	"focus":        true,
	"blur":         true,
	"mouseenter":   true,
	"mouseleave":   true,
	"pointerenter": true,
	"pointerleave": true,
	"scroll":       true,
	"load":         true,
	"unload":       true,
	"abort":        true,
}

// Delegator owns event dispatch for one document. Exactly one listener
// exists per event name (the rootListeners set stands in for the native
// addEventListener on document); per-node handlers live in an explicit
// side table that must be cleared on unmount so removed nodes do not
// retain their handlers.
type Delegator struct {
	mu sync.Mutex

	// rootListeners records which event names have a document-level
	// listener installed.
	rootListeners map[string]bool

	// bubbled maps node -> event name -> handler for events dispatched via
	// the synthetic bubble walk.
	bubbled map[*html.Node]map[string]Handler

	// captured maps node -> event name -> handler for non-bubbling events
	// attached directly in the capture phase.
	captured map[*html.Node]map[string]Handler
}

// NewDelegator creates an empty delegator.
func NewDelegator() *Delegator {
	return &Delegator{
		rootListeners: make(map[string]bool),
		bubbled:       make(map[*html.Node]map[string]Handler),
		captured:      make(map[*html.Node]map[string]Handler),
	}
}

// defaultDelegator is the process-wide document delegator, mirroring the
// one-document model of the platform this targets.
var defaultDelegator = NewDelegator()

// Default returns the process-wide delegator.
func Default() *Delegator {
	return defaultDelegator
}

// ResetEvents clears the process-wide delegator. For test isolation.
func ResetEvents() {
	defaultDelegator = NewDelegator()
}

// normalizeEvent lowercases an event name and strips an "on" prefix.
func normalizeEvent(name string) string {
	name = strings.ToLower(name)
	return strings.TrimPrefix(name, "on")
}

// On registers handler for (node, event), replacing any existing handler
// for the pair; handlers are never stacked. The handler value may be a
// Handler, a func(*Event), or a niladic func().
func (d *Delegator) On(node *html.Node, event string, handler any) {
	h := coerceHandler(handler)
	if h == nil || node == nil {
		return
	}
	event = normalizeEvent(event)

	d.mu.Lock()
	defer d.mu.Unlock()

	table := d.bubbled
	if nonBubbling[event] {
		table = d.captured
	} else {
		// First handler for this name installs the single document-level
		// listener.
		d.rootListeners[event] = true
	}

	byEvent := table[node]
	if byEvent == nil {
		byEvent = make(map[string]Handler)
		table[node] = byEvent
	}
	byEvent[event] = h
}

// Off removes the handler for (node, event). Removing an absent pair is a
// no-op, not an error.
func (d *Delegator) Off(node *html.Node, event string) {
	event = normalizeEvent(event)

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, table := range []map[*html.Node]map[string]Handler{d.bubbled, d.captured} {
		if byEvent, ok := table[node]; ok {
			delete(byEvent, event)
			if len(byEvent) == 0 {
				delete(table, node)
			}
		}
	}
}

// RemoveNode drops every handler owned by node. Called on unmount so the
// side table does not leak entries for removed nodes.
func (d *Delegator) RemoveNode(node *html.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.bubbled, node)
	delete(d.captured, node)
}

// Handler returns the registered handler for (node, event), if any.
func (d *Delegator) Handler(node *html.Node, event string) Handler {
	event = normalizeEvent(event)

	d.mu.Lock()
	defer d.mu.Unlock()

	if byEvent, ok := d.bubbled[node]; ok {
		if h, ok := byEvent[event]; ok {
			return h
		}
	}
	if byEvent, ok := d.captured[node]; ok {
		if h, ok := byEvent[event]; ok {
			return h
		}
	}
	return nil
}

// RootListenerCount returns the number of event names with a document-level
// listener installed. At most one exists per name regardless of how many
// nodes registered handlers.
func (d *Delegator) RootListenerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rootListeners)
}

// Dispatch delivers an event of the given type at target. Bubbling events
// walk from the target through its ancestors, invoking each node's handler
// until StopPropagation or the tree root; non-bubbling events invoke only
// the target's captured handler.
func (d *Delegator) Dispatch(target *html.Node, event string, value any) {
	event = normalizeEvent(event)
	e := &Event{Type: event, Target: target, Value: value}

	if nonBubbling[event] {
		d.mu.Lock()
		var h Handler
		if byEvent, ok := d.captured[target]; ok {
			h = byEvent[event]
		}
		d.mu.Unlock()

		if h != nil {
			h(e)
		}
		return
	}

	for n := target; n != nil; n = n.Parent {
		d.mu.Lock()
		var h Handler
		if byEvent, ok := d.bubbled[n]; ok {
			h = byEvent[event]
		}
		d.mu.Unlock()

		if h != nil {
			h(e)
			if e.cancelBubble {
				return
			}
		}
	}
}

// coerceHandler normalizes the accepted handler shapes to Handler.
func coerceHandler(handler any) Handler {
	switch h := handler.(type) {
	case nil:
		return nil
	case Handler:
		return h
	case func(*Event):
		return h
	case func():
		return func(*Event) { h() }
	default:
		return nil
	}
}

// On registers handler on the process-wide delegator.
func On(node *html.Node, event string, handler any) {
	defaultDelegator.On(node, event, handler)
}

// Off removes a handler from the process-wide delegator.
func Off(node *html.Node, event string) {
	defaultDelegator.Off(node, event)
}

// Dispatch delivers an event through the process-wide delegator.
func Dispatch(target *html.Node, event string, value any) {
	defaultDelegator.Dispatch(target, event, value)
}
