// Package middleware provides HTTP middleware for the web server.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/worldstats/internal/logging"
	"github.com/go-chi/chi/v5"
)

// RunIDHeader carries the id of the run a response belongs to.
const RunIDHeader = "X-Run-ID"

// Logger logs one line per request through the request-scoped logger, so
// every entry carries the chi request id.
//
// Fields: method, route (chi pattern, falls back to the path), path,
// status, duration_ms, bytes, ip (already rewritten by TrustedRealIP),
// user_agent, and run_id when the handler set RunIDHeader.
//
// Server errors log at Error, client errors at Warn, health probes at Debug
// and everything else at Info.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		attrs := []any{
			"method", r.Method,
			"route", routePattern(r),
			"path", r.URL.Path,
			"status", ww.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", ww.bytes,
			"ip", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		}
		if id := ww.Header().Get(RunIDHeader); id != "" {
			attrs = append(attrs, "run_id", id)
		}

		logging.FromContext(r.Context()).Log(r.Context(), requestLevel(r, ww.status), "request", attrs...)
	})
}

func requestLevel(r *http.Request, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	case r.URL.Path == "/healthz":
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// responseWriter records the status code and body size of a response.
type responseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
