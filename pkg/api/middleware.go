package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"go.uber.org/zap"

	"github.com/wavesplatform/gomarket/pkg/metrics"
)

const apiKeyHeader = "X-API-Key" // #nosec: it's a header name

func wrapWriter(w http.ResponseWriter, r *http.Request) middleware.WrapResponseWriter {
	if ww, ok := w.(middleware.WrapResponseWriter); ok {
		return ww
	}
	return middleware.NewWrapResponseWriter(w, r.ProtoMajor)
}

// status of a handler that wrote nothing is 200.
func status(ww middleware.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}

// routePattern returns the matched chi pattern, so that asset and address path parameters
// do not explode metric cardinality.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// requestLogger logs every served request after the handler returns.
func requestLogger(l *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := wrapWriter(w, r)
			start := time.Now()
			next.ServeHTTP(ww, r)
			code := status(ww)
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("route", routePattern(r)),
				zap.String("path", r.URL.Path),
				zap.Int("status", code),
				zap.Int("size", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			}
			if code >= http.StatusInternalServerError {
				l.Warn("Market API request failed", fields...)
				return
			}
			l.Info("Served market API request", fields...)
		})
	}
}

func collectMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := wrapWriter(w, r)
		start := time.Now()
		defer func() {
			metrics.APIRequest(r.Method, routePattern(r), status(ww), time.Since(start))
		}()
		next.ServeHTTP(ww, r)
	})
}

func jsonResponses(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requireAPIKey guards ledger, registry and bank mutations.
func requireAPIKey(app *App, handleError HandleErrorFunc) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := app.checkAuth(r.Header.Get(apiKeyHeader)); err != nil {
				handleError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
