package metrics

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics captures low-cardinality HTTP server metrics.
type HTTPMetrics struct {
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

var (
	httpMetricsOnce sync.Once
	httpMetrics     *HTTPMetrics
)

// HTTP returns the process-wide HTTP metrics, registering them on first use.
func HTTP(cfg Config) *HTTPMetrics {
	httpMetricsOnce.Do(func() {
		httpMetrics = newHTTPMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return httpMetrics
}

func newHTTPMetrics(registerer prometheus.Registerer, cfg Config) *HTTPMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "ecotrack"
	}

	constLabels := prometheus.Labels{"service": serviceName}

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "ecotrack_http_server_duration_ms",
			Help:        "HTTP request duration in milliseconds.",
			Buckets:     []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "status_code"},
	)
	inFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "ecotrack_http_server_in_flight",
			Help:        "In-flight HTTP requests.",
			ConstLabels: constLabels,
		},
	)

	registerer.MustRegister(requestDuration, inFlight)

	return &HTTPMetrics{
		requestDuration: requestDuration,
		inFlight:        inFlight,
	}
}

// GinMiddleware records request duration and in-flight metrics.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		endpoint := normalizeEndpoint(c.FullPath())
		m.inFlight.Inc()
		start := time.Now()
		c.Next()
		m.inFlight.Dec()

		status := c.Writer.Status()
		m.requestDuration.WithLabelValues(endpoint, strconv.Itoa(status)).
			Observe(float64(time.Since(start).Milliseconds()))
	}
}

// normalizeEndpoint keeps the route template so cardinality stays bounded.
func normalizeEndpoint(fullPath string) string {
	fullPath = strings.TrimSpace(fullPath)
	if fullPath == "" {
		return "unmatched"
	}
	return fullPath
}
