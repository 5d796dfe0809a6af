// Package server exposes the atlas pipeline over HTTP.
//
// # Endpoints
//
//	GET  /healthz                        liveness probe
//	GET  /v1/packers                     available packers, orderings and formats
//	POST /v1/atlases                     pack uploaded sprites (multipart/form-data)
//	GET  /v1/atlases/{id}/image          the packed atlas image
//	GET  /v1/atlases/{id}/descriptor     the resource descriptor
//
// POST /v1/atlases takes one or more files in the "sprites" field. Packing
// options are plain form fields named like the JSON fields of
// pipeline.Options (padding, border, max_size, pot, trim, overlay, packer,
// ordering, image_format, resource_format).
//
// Results are stored in a cache.Cache under a random UUID so that several
// server replicas can share them through Redis.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/atlaspack/pkg/cache"
	apperr "github.com/matzehuels/atlaspack/pkg/errors"
	"github.com/matzehuels/atlaspack/pkg/observability"
	"github.com/matzehuels/atlaspack/pkg/pipeline"
)

// DefaultMaxUpload is the largest accepted multipart body.
const DefaultMaxUpload = 64 << 20

// Server serves the HTTP API.
type Server struct {
	Runner    *pipeline.Runner
	Store     cache.Cache
	Keyer     cache.Keyer
	Logger    *log.Logger
	MaxUpload int64
	TTL       time.Duration
}

// New returns a server that packs with runner and keeps results in store.
func New(runner *pipeline.Runner, store cache.Cache, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if store == nil {
		store = runner.Cache
	}
	return &Server{
		Runner:    runner,
		Store:     store,
		Keyer:     runner.Keyer,
		Logger:    logger,
		MaxUpload: DefaultMaxUpload,
		TTL:       cache.TTLAtlas,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/packers", s.listPackers)
		r.Post("/atlases", s.createAtlas)
		r.Get("/atlases/{id}/image", s.getImage)
		r.Get("/atlases/{id}/descriptor", s.getDescriptor)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	observability.HTTP().OnError(r.Context(), r.Method, r.Host, r.URL.Path, err)
	code := apperr.GetCode(err)
	if code == "" {
		code = apperr.ErrCodeInternal
	}
	msg := apperr.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.Logger.Error("request failed", "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	switch apperr.GetCode(err) {
	case apperr.ErrCodeInvalidInput, apperr.ErrCodeInvalidFormat,
		apperr.ErrCodeInvalidPath, apperr.ErrCodeDecode:
		return http.StatusBadRequest
	case apperr.ErrCodeNotFound, apperr.ErrCodeFileNotFound:
		return http.StatusNotFound
	case apperr.ErrCodeInputRejected, apperr.ErrCodeSizeExceeded:
		return http.StatusUnprocessableEntity
	case apperr.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
