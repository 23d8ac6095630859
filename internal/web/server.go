// Package web provides the HTTP upload shell: clients post EDI extracts and
// receive the consolidated table as CSV or JSON.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ginjaninja78/edi-json-consolidator/internal/converter"
	"github.com/ginjaninja78/edi-json-consolidator/internal/csvwriter"
)

// DefaultDownloadName is the attachment name of the consolidated CSV.
const DefaultDownloadName = "dados_edi_consolidados.csv"

// Options configures a Server.
type Options struct {
	// CSV controls the attachment layout.
	CSV csvwriter.Options

	// MaxUploadBytes caps one request body.
	MaxUploadBytes int64

	// DownloadName is the attachment file name. Default: DefaultDownloadName.
	DownloadName string
}

// Server is the HTTP server for uploads.
type Server struct {
	consolidator *converter.Consolidator
	opts         Options
	logger       *slog.Logger
	router       *chi.Mux
	server       *http.Server
}

// NewServer creates a Server consolidating uploads with cons.
func NewServer(cons *converter.Consolidator, opts Options, logger *slog.Logger) *Server {
	if opts.DownloadName == "" {
		opts.DownloadName = DefaultDownloadName
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 200 << 20
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		consolidator: cons,
		opts:         opts,
		logger:       logger,
		router:       chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/consolidate", s.handleConsolidate)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// requestLogger logs one line per request with the chi request ID.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// writeError sends a JSON error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.logger.Warn("request error",
		"path", r.URL.Path,
		"status", status,
		"error", message,
		"request_id", middleware.GetReqID(r.Context()),
	)

	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeJSON sends v as a JSON body with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("json encode error", "error", err)
	}
}
