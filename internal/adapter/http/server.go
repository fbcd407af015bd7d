// Package http serves the dashboard page, its JSON API, live updates over
// WebSocket, and the health, readiness and metrics endpoints.
package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/sf-danger-zones/internal/domain"
	"github.com/couchcryptid/sf-danger-zones/internal/observability"
	"github.com/couchcryptid/sf-danger-zones/internal/pipeline"
	"github.com/couchcryptid/sf-danger-zones/internal/store"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Dashboard computes the views served by the page and the API.
type Dashboard interface {
	Render(ctx context.Context, query url.Values) (domain.DashboardView, error)
	Update(ctx context.Context, sel domain.Selection, surface string) (domain.Summary, error)
	Options(ctx context.Context) (domain.Options, error)
	Selection(ctx context.Context, query url.Values) (domain.Selection, error)
	MapView(ctx context.Context) (domain.MapView, error)
	Preview(ctx context.Context) (domain.TablePreview, error)
	Export(ctx context.Context, sel domain.Selection) (int, error)
}

// PageRenderer writes the dashboard HTML.
type PageRenderer interface {
	Dashboard(w io.Writer, view domain.DashboardView) error
}

// Reloader drops the cached table and loads it again.
type Reloader interface {
	Reload(ctx context.Context) (store.Snapshot, error)
}

// Options tunes the server.
type Options struct {
	Addr string

	// WSMessageRate and WSMessageBurst bound selection messages per connection.
	WSMessageRate  float64
	WSMessageBurst int
}

// Server exposes the dashboard over HTTP.
type Server struct {
	httpServer *http.Server
	dashboard  Dashboard
	pages      PageRenderer
	reloader   Reloader
	upgrader   websocket.Upgrader
	opts       Options
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the page, API, WebSocket, and
// /healthz, /readyz, /metrics routes.
func NewServer(
	opts Options,
	dashboard Dashboard,
	pages PageRenderer,
	reloader Reloader,
	ready ReadinessChecker,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         opts.Addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dashboard: dashboard,
		pages:     pages,
		reloader:  reloader,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		opts:    opts,
		metrics: metrics,
		logger:  logger,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/options", s.handleOptions)
		r.Get("/view", s.handleView)
		r.Get("/map", s.handleMap)
		r.Get("/table", s.handleTable)
		r.Post("/reload", s.handleReload)
		r.Post("/export", s.handleExport)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", handleReady(ready))
	r.Handle("/metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	view, err := s.dashboard.Render(r.Context(), r.URL.Query())
	if err != nil {
		s.logger.Error("dashboard render failed", "error", err)
		http.Error(w, "dashboard unavailable: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.Dashboard(w, view); err != nil {
		s.logger.Error("page render failed", "error", err)
		http.Error(w, "dashboard unavailable", http.StatusInternalServerError)
	}
}

type viewResponse struct {
	Selection domain.Selection `json:"selection"`
	Summary   domain.Summary   `json:"summary"`
}

type reloadResponse struct {
	Generation uint64    `json:"generation"`
	Rows       int       `json:"rows"`
	LoadedAt   time.Time `json:"loaded_at"`
}

type exportResponse struct {
	Exported int `json:"exported"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.dashboard.Options(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "options", err)
		return
	}
	render.JSON(w, r, opts)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sel, err := s.dashboard.Selection(r.Context(), r.URL.Query())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "view", err)
		return
	}
	summary, err := s.dashboard.Update(r.Context(), sel, pipeline.SurfaceAPI)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "view", err)
		return
	}
	render.JSON(w, r, viewResponse{Selection: sel, Summary: summary})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	view, err := s.dashboard.MapView(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "map", err)
		return
	}
	render.JSON(w, r, view)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	preview, err := s.dashboard.Preview(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "table", err)
		return
	}
	render.JSON(w, r, preview)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.reloader.Reload(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "reload", err)
		return
	}
	s.logger.Info("incident table reloaded on request", "generation", snap.Generation)
	render.JSON(w, r, reloadResponse{
		Generation: snap.Generation,
		Rows:       snap.Table.Len(),
		LoadedAt:   snap.LoadedAt,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var sel domain.Selection
	if err := render.DecodeJSON(r.Body, &sel); err != nil {
		s.fail(w, r, http.StatusBadRequest, "export", err)
		return
	}

	n, err := s.dashboard.Export(r.Context(), sel)
	switch {
	case errors.Is(err, pipeline.ErrExportDisabled):
		s.fail(w, r, http.StatusServiceUnavailable, "export", err)
		return
	case err != nil:
		s.fail(w, r, http.StatusInternalServerError, "export", err)
		return
	}
	render.JSON(w, r, exportResponse{Exported: n})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, op string, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "op", op, "error", err)
	} else {
		s.logger.Warn("bad request", "op", op, "error", err)
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		render.JSON(w, r, map[string]string{"status": "ready"})
	}
}
