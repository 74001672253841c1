package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Belphemur/vttbridge/internal/apperrors"
	"github.com/Belphemur/vttbridge/internal/config"
	"github.com/Belphemur/vttbridge/internal/metrics"
	"github.com/Belphemur/vttbridge/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// CacheStatusHeader reports whether the subtitle was served from the cache.
const CacheStatusHeader = "X-Subtitle-Cache"

// Options configures the HTTP API.
type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter builds the chi router serving WebVTT to browser caption tracks.
func NewRouter(p services.SubtitlePipeline, opts Options) chi.Router {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{CacheStatusHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/subtitles.vtt", handleGetSubtitle(p))
	r.Delete("/cache", handleClearCache(p))

	return r
}

// NewServer wraps the router in an http.Server listening on address:port.
func NewServer(address string, port int, p services.SubtitlePipeline, opts Options) *http.Server {
	if port == 0 {
		port = 8081
	}
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", address, port),
		Handler:           NewRouter(p, opts),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func handleGetSubtitle(p services.SubtitlePipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		src := r.URL.Query().Get("src")
		if src == "" {
			http.Error(w, "missing src query parameter", http.StatusBadRequest)
			return
		}

		doc, err := p.GetSubtitle(r.Context(), src)
		if err != nil {
			http.Error(w, err.Error(), statusForError(err))
			return
		}

		cacheStatus := "miss"
		if doc.Cached {
			cacheStatus = "hit"
		}
		w.Header().Set("Content-Type", "text/vtt; charset=utf-8")
		w.Header().Set(CacheStatusHeader, cacheStatus)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(doc.Text))
	}
}

func handleClearCache(p services.SubtitlePipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.ClearCache()
		w.WriteHeader(http.StatusNoContent)
	}
}

// statusForError maps pipeline errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, &apperrors.ErrInvalidSource{}):
		return http.StatusBadRequest
	case errors.Is(err, &apperrors.ErrSubtitleResourceNotFound{}),
		errors.Is(err, &apperrors.ErrNoSubtitleInArchive{}):
		return http.StatusNotFound
	case errors.Is(err, &apperrors.RetrievalError{}):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := config.GetLogger()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", middleware.GetReqID(r.Context())).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("HTTP request")
		}()

		next.ServeHTTP(ww, r)
	})
}
