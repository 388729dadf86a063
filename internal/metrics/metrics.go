package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "polydict_requests_total",
		Help: "Total number of API requests by route",
	}, []string{"route"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "polydict_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 20, 50, 100, 500},
	}, []string{"route"})
	LookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "polydict_lookups_total",
		Help: "Total point lookups by dictionary and outcome (hit/miss)",
	}, []string{"dictionary", "outcome"})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "polydict_cache_hits_total",
		Help: "Total redis result cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "polydict_cache_misses_total",
		Help: "Total redis result cache misses",
	})
	BuildsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "polydict_builds_total",
		Help: "Total dictionary builds by layout and result (ok/error)",
	}, []string{"layout", "result"})
	BuildDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "polydict_build_duration_seconds",
		Help:    "Dictionary build duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"layout"})
	Polygons = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "polydict_polygons",
		Help: "Number of polygons in the published dictionary instance",
	}, []string{"dictionary"})
	Generation = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "polydict_generation",
		Help: "Generation of the published dictionary instance",
	}, []string{"dictionary"})
	ReloadErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "polydict_reload_errors_total",
		Help: "Total failed reload attempts",
	}, []string{"dictionary"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "polydict_rate_limited_total",
		Help: "Total requests rejected by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(LookupsTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(BuildsTotal)
	prometheus.MustRegister(BuildDurationSeconds)
	prometheus.MustRegister(Polygons)
	prometheus.MustRegister(Generation)
	prometheus.MustRegister(ReloadErrorsTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
