package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Application-level counters, in addition to the per-route HTTP metrics
// registered by fiberprometheus.
var (
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_cache_hits_total",
		Help: "Number of cache-aside hits by key prefix.",
	}, []string{"prefix"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_cache_misses_total",
		Help: "Number of cache-aside misses by key prefix.",
	}, []string{"prefix"})

	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_redis_errors_total",
		Help: "Number of Redis command errors by command name.",
	}, []string{"command"})

	MediaUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_media_uploads_total",
		Help: "Number of media uploads by outcome.",
	}, []string{"outcome"})
)

// InitMetrics creates the fiberprometheus middleware for HTTP request metrics.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware adapts the fiberprometheus middleware into a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
