package middleware

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"surveyhub/internal/metrics"
)

type contextKey string

const RequestIDKey contextKey = "requestId"

// RequestIDHeader carries the request ID to and from clients
const RequestIDHeader = "X-Request-ID"

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades through the recorder
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijacking not supported")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// RequestLogger tags each request with an ID, logs it and counts it by route template
func RequestLogger(logger *zap.Logger, m *metrics.Metrics) mux.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, reqID)
			ctx := context.WithValue(r.Context(), RequestIDKey, reqID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tmpl, err := cur.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}
			m.HTTPRequest(route, r.Method, rec.status)

			logger.Info("request",
				zap.String("request_id", reqID),
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
