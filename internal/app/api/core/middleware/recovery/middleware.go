// Package recovery provides a middleware that recovers from panics in the
// handler chain and turns them into Internal Server Error responses.
package recovery

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

type Middleware struct {
	o options
}

// New returns a new recovery middleware with the provided options.
// It should be the first middleware in the chain, so that it also covers
// panics in other middlewares.
func New(opts ...Option) *Middleware {
	return &Middleware{o: newOptions(opts...)}
}

// Handler returns the recovery middleware handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				stack := debug.Stack()

				slog.Error("recovered from panic",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(stack))

				m.writeErrorResponse(w, stack)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) writeErrorResponse(w http.ResponseWriter, stack []byte) {
	body := map[string]any{
		"error": "Internal Server Error",
	}
	if m.o.exposeStackTrace {
		body["stack"] = string(stack)
	}

	jsonBody, _ := json.Marshal(body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write(jsonBody)
}
