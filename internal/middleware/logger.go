package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"reachright.co.za/web/internal/observability"
)

// Logger emits one structured entry per request using the context logger.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := NewResponseRecorder(w)

		ctx := r.Context()
		rid := chiMid.GetReqID(ctx)
		logger := observability.FromContext(ctx)
		if rid != "" {
			ctx = WithRequestID(ctx, rid)
			logger = logger.With(zap.String("requestId", rid))
			ctx = observability.WithLogger(ctx, logger)
		}
		r = r.WithContext(ctx)

		next.ServeHTTP(rw, r)

		status := rw.Status()
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int64("durationMs", time.Since(start).Milliseconds()),
			zap.String("remoteIp", clientIP(r)),
			zap.Bool("htmx", IsHTMX(ctx)),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest && status != http.StatusNotFound:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	})
}

// clientIP trusts the last X-Forwarded-For hop set by the fronting proxy.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		p := strings.Split(xff, ",")
		return strings.TrimSpace(p[len(p)-1])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return strings.TrimSpace(xrip)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
