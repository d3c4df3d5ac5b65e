package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	requestIDContextKey contextKey = "Request-ID"
	loggerContextKey    contextKey = "Logger"
)

// RequestIDMiddleware tags every request with a fresh id,
// echoed in the X-Request-ID header
func (s *Server) RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.New().String()
		w.Header().Set("X-Request-ID", reqID)
		ctx := context.WithValue(r.Context(), requestIDContextKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggerMiddleware puts a request-scoped logger into the context
// and logs every finished request
func (s *Server) LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := s.logger
		if reqID, ok := r.Context().Value(requestIDContextKey).(string); ok && reqID != "" {
			logger = logger.With(zap.String("request_id", reqID))
		}
		logger = logger.With(zap.String("from", r.RemoteAddr))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		ctx := context.WithValue(r.Context(), loggerContextKey, logger)
		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.Info("Request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// GetLoggerFromCtx returns the request logger or a no-op logger
func GetLoggerFromCtx(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}
