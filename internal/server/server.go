// Package server implements the svz HTTP API.
//
// Routes:
//
//	GET  /healthz     liveness probe, responds "ok"
//	GET  /version     build information
//	GET  /v1/parsers  available parsers and output formats
//	POST /v1/graph    C source in the body, graph in the requested format
//
// POST /v1/graph accepts the query parameters format (dot, svg, png, pdf,
// json, yaml; default dot), parser, accent, no_color, scale and refresh.
// Every response carries an X-Render-ID header; errors are JSON objects
// with a machine-readable code.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/svz/pkg/buildinfo"
	svzerrors "github.com/matzehuels/svz/pkg/errors"
	svzio "github.com/matzehuels/svz/pkg/io"
	"github.com/matzehuels/svz/pkg/observability"
	"github.com/matzehuels/svz/pkg/pipeline"
)

// DefaultMaxBodyBytes limits the size of a request body.
const DefaultMaxBodyBytes = 8 << 20

// HeaderRenderID carries the per-request render identifier.
const HeaderRenderID = "X-Render-ID"

// contentTypes maps output formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatYAML: "application/yaml",
}

// Config configures the server.
type Config struct {
	Addr         string
	MaxBodyBytes int64

	// Defaults supplies parser, accent color, color mode and scale for
	// requests that do not set them. Formats come from the request.
	Defaults pipeline.Options
}

// Server serves the HTTP API on top of a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	cfg    Config
	newID  func() string
}

// New creates a server. The runner is shared by all requests.
func New(runner *pipeline.Runner, logger *log.Logger, cfg Config) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{runner: runner, logger: logger, cfg: cfg, newID: uuid.NewString}
}

// Handler returns the router with all middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/parsers", s.handleParsers)
		r.Post("/graph", s.handleGraph)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// Middleware
// =============================================================================

// instrument emits HTTP hooks, a server span and a debug log line per request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path, middleware.GetReqID(r.Context()))

		ctx, span := observability.StartServerSpan(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		var spanErr error
		if status >= http.StatusInternalServerError {
			spanErr = fmt.Errorf("status %d", status)
		}
		observability.EndSpan(span, spanErr)

		duration := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, duration)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", duration)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// ParsersResponse is the body of GET /v1/parsers.
type ParsersResponse struct {
	Parsers []string `json:"parsers"`
	Formats []string `json:"formats"`
	Default string   `json:"default"`
}

func (s *Server) handleParsers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ParsersResponse{
		Parsers: pipeline.Parsers(),
		Formats: pipeline.FormatNames,
		Default: pipeline.DefaultParser,
	})
}

// GraphResponse is the body of POST /v1/graph?format=json.
type GraphResponse struct {
	ID         string            `json:"id"`
	Parser     string            `json:"parser"`
	Structures []svzio.Structure `json:"structures"`
	Skipped    []svzio.Skip      `json:"skipped"`
	Nodes      []string          `json:"nodes"`
	Edges      []svzio.Edge      `json:"edges"`
	DOT        string            `json:"dot"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	id := s.newID()
	w.Header().Set(HeaderRenderID, id)

	opts, format, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, r, id, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = svzerrors.New(svzerrors.ErrCodeTooLarge, "request body exceeds %d bytes", tooLarge.Limit)
		} else {
			err = svzerrors.Wrap(svzerrors.ErrCodeInvalidInput, err, "read request body")
		}
		s.writeError(w, r, id, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), []pipeline.Source{{Name: id, Text: string(body)}}, opts)
	if err != nil {
		s.writeError(w, r, id, err)
		return
	}

	w.Header().Set("X-Cache-Parse", hitOrMiss(res.CacheInfo.ParseHit))
	if format == pipeline.FormatJSON {
		doc := svzio.FromResult(res.Parsed, res.Graph)
		for i := range doc.Skipped {
			doc.Skipped[i].Source = ""
		}
		writeJSON(w, http.StatusOK, GraphResponse{
			ID:         id,
			Parser:     opts.Parser,
			Structures: doc.Structures,
			Skipped:    nonNil(doc.Skipped),
			Nodes:      res.Graph.Names(),
			Edges:      nonNil(doc.Edges),
			DOT:        res.DOT,
		})
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// requestOptions merges query parameters into the configured defaults.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, string, error) {
	q := r.URL.Query()
	d := s.cfg.Defaults
	opts := pipeline.Options{
		Parser:      d.Parser,
		AccentColor: d.AccentColor,
		NoColor:     d.NoColor,
		Scale:       d.Scale,
		Logger:      s.logger,
	}

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatDOT
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return opts, "", err
	}
	// json responses embed the DOT text, so only DOT is rendered.
	if format == pipeline.FormatJSON {
		opts.Formats = []string{pipeline.FormatDOT}
	} else {
		opts.Formats = []string{format}
	}

	if v := q.Get("parser"); v != "" {
		opts.Parser = v
	}
	if v := q.Get("accent"); v != "" {
		opts.AccentColor = v
	}
	for _, p := range []struct {
		name string
		dst  *bool
	}{{"no_color", &opts.NoColor}, {"refresh", &opts.Refresh}} {
		if v := q.Get(p.name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, "", svzerrors.New(svzerrors.ErrCodeInvalidInput, "%s: invalid boolean %q", p.name, v)
			}
			*p.dst = b
		}
	}
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, "", svzerrors.New(svzerrors.ErrCodeInvalidInput, "scale: invalid number %q", v)
		}
		opts.Scale = f
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, "", err
	}
	return opts, format, nil
}

// =============================================================================
// Responses
// =============================================================================

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RenderID  string `json:"render_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, id string, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	status := svzerrors.HTTPStatus(err)
	code := svzerrors.GetCode(err)
	msg := svzerrors.UserMessage(err)
	if code == "" {
		code = svzerrors.ErrCodeInternal
	}
	if errors.Is(err, context.Canceled) {
		status = 499 // client closed request
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "render_id", id, "error", err)
		if code == svzerrors.ErrCodeInternal {
			msg = "internal error"
		}
	} else {
		s.logger.Debug("request rejected", "render_id", id, "error", err)
	}

	writeJSON(w, status, ErrorResponse{
		Code:      string(code),
		Message:   msg,
		RenderID:  id,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func hitOrMiss(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
