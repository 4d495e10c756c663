package tracing

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// WrapHTTPClient instruments an http.Client with tracing propagation. The
// prediction client uses this so estimator calls show up as client spans.
func WrapHTTPClient(client *http.Client) *http.Client {
	if client == nil {
		client = http.DefaultClient
	}
	clone := *client
	base := clone.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	clone.Transport = &transport{base: base, tracer: otel.Tracer("ecotrack/http")}
	return &clone
}

type transport struct {
	base   http.RoundTripper
	tracer trace.Tracer
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return t.base.RoundTrip(req)
	}
	ctx, span := t.tracer.Start(req.Context(), "HTTP "+strings.ToUpper(req.Method), trace.WithSpanKind(trace.SpanKindClient))
	InjectContext(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := t.base.RoundTrip(req.WithContext(ctx))
	if err != nil {
		if safeErr := SafeError(err); safeErr != nil {
			span.RecordError(safeErr)
		}
		span.SetStatus(codes.Error, "client error")
		span.End()
		return resp, err
	}

	span.SetName("HTTP " + strings.ToUpper(req.Method) + " " + req.URL.Path)
	span.SetAttributes(SafeAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.host", req.URL.Host),
		attribute.Int("http.status_code", resp.StatusCode),
		attribute.Int64("http.client_duration_ms", time.Since(start).Milliseconds()),
	)...)
	if resp.StatusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, "server error")
	}
	span.End()
	return resp, err
}

// GinMiddleware opens a server span per request, honoring inbound W3C
// propagation headers.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("ecotrack/http")
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx, span := tracer.Start(ctx, "HTTP "+c.Request.Method+" "+route, trace.WithSpanKind(trace.SpanKindServer))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(SafeAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)...)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, "server error")
		}
		span.End()
	}
}
