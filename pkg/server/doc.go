// Package server serves rendered pages over HTTP and keeps live clients in
// sync over WebSocket. Registered views are rendered to full HTML documents
// for normal GETs; a client that opens the live endpoint gets the same page
// mounted server-side, sends its DOM events up as JSON frames, and receives
// sequence-numbered patch frames back after each reactive flush.
package server
