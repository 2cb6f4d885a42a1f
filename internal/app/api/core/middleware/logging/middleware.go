// Package logging provides a middleware that logs every HTTP request with
// the structured slog logger.
package logging

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type Middleware struct {
	o options
}

// New returns a new logging middleware with the provided options.
func New(opts ...Option) *Middleware {
	return &Middleware{o: newOptions(opts...)}
}

// Handler returns the logging middleware handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := newWriterWrapper(w)
		start := time.Now()

		defer func() {
			slog.Log(r.Context(), m.o.level, fmt.Sprintf("%s %s", r.Method, r.URL.Path),
				"protocol", r.Proto,
				"status", ww.StatusCode,
				"dataLength", ww.WrittenBytes,
				"duration", time.Since(start).String(),
				"clientIP", r.RemoteAddr,
				"userAgent", r.UserAgent())
		}()

		next.ServeHTTP(ww, r)
	})
}
