package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/glint-ui/glint/pkg/dom"
	"github.com/glint-ui/glint/pkg/metrics"
	"github.com/glint-ui/glint/pkg/reactive"
	"github.com/glint-ui/glint/pkg/reconcile"
)

// Frame is the JSON wire message exchanged with live clients.
type Frame struct {
	// Type is one of "patch", "event", "error".
	Type string `json:"type"`

	// Seq numbers server-to-client patch frames.
	Seq uint64 `json:"seq,omitempty"`

	// HTML carries the rendered mount-point markup in a patch frame.
	HTML string `json:"html,omitempty"`

	// Event is the event name in a client event frame.
	Event string `json:"event,omitempty"`

	// Target is the index path of the event's target node.
	Target string `json:"target,omitempty"`

	// Value is the event payload (input value, key name, ...).
	Value any `json:"value,omitempty"`

	// Message carries diagnostics in an error frame.
	Message string `json:"message,omitempty"`
}

const (
	frameTypePatch = "patch"
	frameTypeEvent = "event"
	frameTypeError = "error"
)

// Session is one live WebSocket client. The page is mounted server-side:
// client events are dispatched into the server's tree, effects flush, and
// the resulting markup streams back as a patch frame.
type Session struct {
	id     string
	conn   *websocket.Conn
	config *SessionConfig

	view       View
	container  *html.Node
	reconciler *reconcile.Reconciler
	delegator  *dom.Delegator

	send chan Frame
	seq  uint64

	logger    *slog.Logger
	collector *metrics.Collector
	tracer    trace.Tracer

	closeOnce sync.Once
	done      chan struct{}
}

func newSession(conn *websocket.Conn, view View, config *SessionConfig, logger *slog.Logger, collector *metrics.Collector, tracer trace.Tracer) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	d := dom.NewDelegator()
	s := &Session{
		id:         id,
		conn:       conn,
		config:     config,
		view:       view,
		container:  dom.NewContainer(),
		reconciler: reconcile.New(reconcile.WithDelegator(d)),
		delegator:  d,
		send:       make(chan Frame, config.SendBuffer),
		logger:     logger.With("session", id),
		collector:  collector,
		tracer:     tracer,
		done:       make(chan struct{}),
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Run mounts the page, sends the initial patch, and blocks until the
// connection closes.
func (s *Session) Run() {
	s.conn.SetReadLimit(s.config.MaxMessageSize)

	s.reconciler.Mount(s.view(), s.container)
	if err := s.queuePatch(); err != nil {
		s.logger.Error("initial patch failed", "error", err)
		s.Close()
		return
	}

	go s.writeLoop()
	s.readLoop()
}

// Close tears down the session. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
		s.reconciler.Unmount(s.container)
	})
}

func (s *Session) readLoop() {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(msg, &frame); err != nil {
			s.logger.Error("frame decode error", "error", err)
			s.sendError("invalid frame")
			continue
		}

		switch frame.Type {
		case frameTypeEvent:
			s.handleEvent(frame)
		default:
			s.logger.Warn("unknown frame type", "type", frame.Type)
		}
	}
}

// handleEvent dispatches one client event into the server-side tree,
// flushes the reactive graph and queues the resulting patch.
func (s *Session) handleEvent(frame Frame) {
	_, span := s.tracer.Start(context.Background(), "glint.event",
		trace.WithAttributes(
			attribute.String("event.name", frame.Event),
			attribute.String("event.target", frame.Target),
			attribute.String("session.id", s.id),
		))
	defer span.End()

	start := time.Now()
	status := "ok"
	defer func() {
		s.collector.RecordEvent(frame.Event, status, time.Since(start))
	}()

	target := resolvePath(s.container, frame.Target)
	if target == nil {
		status = "bad_target"
		span.SetStatus(codes.Error, "target not found")
		s.sendError(fmt.Sprintf("no node at path %q", frame.Target))
		return
	}

	if err := s.dispatchAndFlush(target, frame); err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "flush failed")
		s.logger.Error("event flush failed", "event", frame.Event, "error", err)
		s.sendError("internal error")
		return
	}
	span.SetStatus(codes.Ok, "")

	if err := s.queuePatch(); err != nil {
		status = "overflow"
		s.logger.Error("patch queue full", "error", err)
		s.Close()
	}
}

// dispatchAndFlush runs the handler and flush, converting a flush overflow
// panic into an error so one runaway cycle does not take the server down.
func (s *Session) dispatchAndFlush(target *html.Node, frame Frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.Is(e, reactive.ErrFlushOverflow) {
				s.collector.RecordFlushOverflow()
				err = e
				return
			}
			panic(r)
		}
	}()

	s.delegator.Dispatch(target, frame.Event, frame.Value)
	reactive.Flush()
	s.reconciler.Patch(s.view(), s.container)
	return nil
}

// queuePatch renders the container and queues a patch frame.
func (s *Session) queuePatch() error {
	markup, err := dom.RenderChildren(s.container)
	if err != nil {
		return err
	}
	s.seq++
	frame := Frame{Type: frameTypePatch, Seq: s.seq, HTML: markup}

	select {
	case s.send <- frame:
		s.collector.RecordPatches(1)
		return nil
	default:
		return errors.New("send buffer full")
	}
}

func (s *Session) sendError(message string) {
	select {
	case s.send <- Frame{Type: frameTypeError, Message: message}:
	default:
	}
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case frame := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := s.conn.WriteJSON(frame); err != nil {
				s.logger.Error("write error", "error", err)
				s.Close()
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func generateSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
