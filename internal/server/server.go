// Package server exposes the generator over HTTP for `schemats serve`.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/koustreak/schemats/internal/errs"
	"github.com/koustreak/schemats/internal/generate"
	"github.com/koustreak/schemats/internal/logger"
	"github.com/koustreak/schemats/internal/output"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves declarations regenerated from the live schema on every request.
type Server struct {
	gen      *generate.Generator
	database string
	db       Pinger
	log      *logger.Logger
	router   chi.Router
}

// New builds the router. A nil log uses the global logger.
func New(gen *generate.Generator, database string, db Pinger, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Global()
	}
	s := &Server{gen: gen, database: database, db: db, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/schema.d.ts", s.handleDeclarations)
	r.Get("/schema.json", s.handleJSON)
	r.Get("/tables/{table}.d.ts", s.handleTable)

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer wraps the handler in an *http.Server listening on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := s.log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger().WithContext(r.Context())

		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.log.Request(r.Method, r.URL.Path, status, time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDeclarations(w http.ResponseWriter, r *http.Request) {
	gen, ok := s.generatorFor(w, r)
	if !ok {
		return
	}
	doc, err := gen.Render(r.Context(), s.database)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeTypeScript(w, doc)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	gen, ok := s.generatorFor(w, r)
	if !ok {
		return
	}
	doc, err := gen.Run(r.Context(), s.database)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	gen, ok := s.generatorFor(w, r)
	if !ok {
		return
	}
	block, err := gen.RenderTable(r.Context(), s.database, chi.URLParam(r, "table"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeTypeScript(w, block)
}

// generatorFor applies the ?optional= query parameter.
func (s *Server) generatorFor(w http.ResponseWriter, r *http.Request) (*generate.Generator, bool) {
	raw := r.URL.Query().Get("optional")
	if raw == "" {
		return s.gen, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrKindInvalidInput, "optional must be a boolean", err))
		return nil, false
	}
	return s.gen.WithForceOptional(v), true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorWith("request failed", err, map[string]interface{}{"path": r.URL.Path})
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: errs.KindOf(err).String()})
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.ErrKindUnsupportedType:
		return http.StatusUnprocessableEntity
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindInvalidInput:
		return http.StatusBadRequest
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeTypeScript(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", output.ContentType+"; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
