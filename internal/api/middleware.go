package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apperrors "activity-signup/internal/common/errors"
	"activity-signup/internal/common/logger"
	"activity-signup/internal/common/metrics"
	"activity-signup/internal/common/observability"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the ID assigned by the middleware, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// Middleware assigns request IDs, recovers panics, and records logs and metrics.
type Middleware struct {
	logger logger.Logger
	obs    *observability.Observability
	errors *apperrors.ErrorHandler
}

func NewMiddleware(log logger.Logger, obs *observability.Observability) *Middleware {
	return &Middleware{
		logger: log.WithFields(map[string]interface{}{"component": "http"}),
		obs:    obs,
		errors: apperrors.NewErrorHandler(log),
	}
}

func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			if p := recover(); p != nil {
				if rec.status == 0 {
					m.errors.HandleRequestError(rec, r, fmt.Errorf("panic: %v", p))
				} else {
					m.logger.Error("Panic after response started", map[string]interface{}{
						"panic":     fmt.Sprint(p),
						"requestId": requestID,
					})
				}
			}
			m.observe(r, rec, requestID, time.Since(start))
		}()

		next.ServeHTTP(rec, r)
	})
}

func (m *Middleware) observe(r *http.Request, rec *statusRecorder, requestID string, elapsed time.Duration) {
	status := rec.status
	if status == 0 {
		status = http.StatusOK
	}
	route := r.Pattern
	if route == "" {
		route = "unmatched"
	}

	metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, fmt.Sprint(status)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
	m.obs.RecordRequest(r.Context(), route, status)
	m.obs.RecordRequestDuration(r.Context(), route, elapsed)

	m.logger.Info("Request handled", map[string]interface{}{
		"method":     r.Method,
		"path":       r.URL.Path,
		"route":      route,
		"status":     status,
		"durationMs": elapsed.Milliseconds(),
		"requestId":  requestID,
	})
}

// NewRouter builds the mux with every route and wraps it in the middleware.
func NewRouter(h *Handler, mw *Middleware, extra func(mux *http.ServeMux)) http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	if extra != nil {
		extra(mux)
	}
	return mw.Wrap(mux)
}
