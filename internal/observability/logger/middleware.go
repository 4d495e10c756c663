package logger

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	obsctx "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/observability/context"
)

// MiddlewareConfig tunes the request logging middleware.
type MiddlewareConfig struct {
	// SkipPaths suppresses access log lines for matching route templates
	// (health checks, metrics scrapes).
	SkipPaths []string
}

// GinMiddleware assigns a request id, stores it on the request context, and
// writes one access log line per request.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader("X-Request-Id"))
		if requestID == "" {
			requestID = newRequestID()
		}
		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Set("request_id", requestID)

		ctx := obsctx.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		if _, ok := skip[c.FullPath()]; ok {
			return
		}
		FromContext(ctx).Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	}
}

func newRequestID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(buf[:])
}
