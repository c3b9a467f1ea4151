package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/glint-ui/glint/pkg/fdom"
	"github.com/glint-ui/glint/pkg/metrics"
	"github.com/glint-ui/glint/pkg/render"
)

const tracerName = "glint"

// View builds the root node for a page. It is invoked per render, inside
// the session's reactive context for live pages.
type View func() *fdom.FNode

// Server renders pages over HTTP and streams patches to live clients over
// WebSocket.
type Server struct {
	config   *Config
	router   chi.Router
	upgrader websocket.Upgrader

	mu       sync.Mutex
	views    map[string]View
	sessions map[string]*Session

	logger    *slog.Logger
	collector *metrics.Collector
	tracer    trace.Tracer
	renderer  *render.Renderer

	httpServer *http.Server
}

// New creates a Server with the given configuration. A nil config uses
// defaults.
func New(config *Config) *Server {
	config = config.withDefaults()

	s := &Server{
		config:    config,
		views:     make(map[string]View),
		sessions:  make(map[string]*Session),
		logger:    slog.Default().With("component", "server"),
		collector: metrics.Default(),
		tracer:    otel.Tracer(tracerName),
		renderer:  render.NewRenderer(render.RendererConfig{}),
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			if config.CheckOrigin == nil {
				return true
			}
			return config.CheckOrigin(r.Header.Get("Origin"), r.Host)
		},
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if config.MetricsPath != "" {
		r.Handle(config.MetricsPath, promhttp.Handler())
	}
	r.Get(config.LivePath, s.handleLive)
	s.router = r

	return s
}

// PageOption customizes a registered page.
type PageOption func(*render.PageData)

// WithTitle sets the page title.
func WithTitle(title string) PageOption {
	return func(p *render.PageData) { p.Title = title }
}

// WithStylesheet adds an external stylesheet.
func WithStylesheet(href string) PageOption {
	return func(p *render.PageData) { p.StyleSheets = append(p.StyleSheets, href) }
}

// WithScript adds a script tag.
func WithScript(tag render.ScriptTag) PageOption {
	return func(p *render.PageData) { p.Scripts = append(p.Scripts, tag) }
}

// Handle registers a page at pattern. GET requests render it to HTML;
// live sessions opened against the same pattern mount it server-side and
// stream patches.
func (s *Server) Handle(pattern string, view View, opts ...PageOption) {
	s.mu.Lock()
	s.views[pattern] = view
	s.mu.Unlock()

	s.router.Get(pattern, s.pageHandler(pattern, view, opts))
}

// Handler returns the HTTP handler, for mounting or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) pageHandler(pattern string, view View, opts []PageOption) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.Start(r.Context(), "glint.render",
			trace.WithAttributes(attribute.String("page.path", pattern)))
		defer span.End()
		_ = ctx

		start := time.Now()
		page := render.PageData{Body: view()}
		for _, opt := range opts {
			opt(&page)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.renderer.RenderPage(w, page); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "render failed")
			s.collector.RecordRender(pattern, "error", time.Since(start))
			s.logger.Error("render failed", "path", pattern, "error", err)
			return
		}
		span.SetStatus(codes.Ok, "")
		s.collector.RecordRender(pattern, "ok", time.Since(start))
	}
}

// handleLive upgrades the connection and runs a live session for the page
// named by the "page" query parameter.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("page")
	if pattern == "" {
		pattern = "/"
	}

	s.mu.Lock()
	view, ok := s.views[pattern]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "unknown page", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	sess, err := newSession(conn, view, s.config.SessionConfig, s.logger, s.collector, s.tracer)
	if err != nil {
		s.logger.Error("session start failed", "error", err)
		conn.Close()
		return
	}

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()
	s.collector.SessionStarted()

	s.logger.Info("session started", "session", sess.ID(), "page", pattern)

	sess.Run()

	s.mu.Lock()
	delete(s.sessions, sess.ID())
	s.mu.Unlock()
	s.collector.SessionEnded()
	s.logger.Info("session ended", "session", sess.ID())
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Start runs the HTTP server until the context is cancelled, then shuts
// down gracefully within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "address", s.config.Address)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
