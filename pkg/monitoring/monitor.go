package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	ToastGenerationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toast_generations_total",
			Help: "Weekly toast generation attempts by outcome",
		},
		[]string{"outcome"}, // generated, cached, no_content, failed
	)

	ToastGenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "toast_generation_duration_seconds",
			Help:    "End-to-end duration of a toast generation",
			Buckets: []float64{1, 5, 10, 30, 60, 120},
		},
	)

	BadgeAwardCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badge_awards_total",
			Help: "Badges awarded by requirement key",
		},
		[]string{"requirement"},
	)

	WSMessageCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_messages_total",
			Help: "WebSocket messages by type and direction",
		},
		[]string{"type", "direction"},
	)

	WSOnlineUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_online_users",
			Help: "Users with an open notification socket on this instance",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ToastGenerationCounter)
	prometheus.MustRegister(ToastGenerationDuration)
	prometheus.MustRegister(BadgeAwardCounter)
	prometheus.MustRegister(WSMessageCounter)
	prometheus.MustRegister(WSOnlineUsers)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
