// Package web exposes the import pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz  -> liveness
//	POST /scan     -> multipart upload "file"; returns the inferred column map
//	POST /imports  -> multipart upload "file", optional "table"; runs an
//	                  import and returns the run summary
//
// Every request spools its upload to its own temporary file, removed when the
// request ends. Imports into the destination database are serialized: the
// database has a single writer.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"csvimport/internal/config"
)

// DefaultMaxUploadSize bounds a request body.
const DefaultMaxUploadSize = 64 << 20

// Config controls the server.
type Config struct {
	Addr string
	// DBPath is the destination database every import writes to.
	DBPath string
	// SpoolDir holds upload spool files; empty means os.TempDir.
	SpoolDir      string
	MaxUploadSize int64
	// RequestTimeout bounds a whole request, import included.
	RequestTimeout time.Duration
	Import         config.Config
}

// Server is the HTTP front of the importer.
type Server struct {
	cfg    Config
	log    zerolog.Logger
	router *chi.Mux
	writer *semaphore.Weighted
}

// NewServer constructs a Server with middleware and routes.
func NewServer(cfg Config, log zerolog.Logger) *Server {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Minute
	}
	s := &Server{
		cfg:    cfg,
		log:    log,
		router: chi.NewRouter(),
		writer: semaphore.NewWeighted(1),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root handler, for http.Server and tests.
func (s *Server) Handler() http.Handler { return s.router }

// Serve runs an http.Server on cfg.Addr until ctx is done, then shuts it
// down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info().Str("addr", s.cfg.Addr).Msg("listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/scan", s.handleScan)
	s.router.Post("/imports", s.handleImport)
}

// requestLogger attaches a request-scoped zerolog logger to the context and
// logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := s.log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(l.WithContext(r.Context())))

		l.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
