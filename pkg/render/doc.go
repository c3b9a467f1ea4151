// Package render serializes fdom trees to HTML for server-side rendering.
// The output is the markup the client-side reconciler hydrates against:
// text and attributes reflect the reactive graph's values at render time,
// and event handler props surface only as data-on-* markers.
package render
