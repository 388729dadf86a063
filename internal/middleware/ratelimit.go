package middleware

import (
	"net/http"
	"os"
	"polydict/internal/logger"
	"polydict/internal/metrics"
	"strconv"

	"golang.org/x/time/rate"
)

// 文档注释：全局限流中间件
// 背景：点定位是纯 CPU 计算，峰值流量下限制入口速率保护构建与重载所需的计算资源。
// 约束：RATE_LIMIT_ENABLED=true 时生效；RATE_LIMIT_QPS 默认 200，RATE_LIMIT_BURST 默认等于 QPS；
// 超限直接返回 429，不排队。
func Wrap(next http.Handler) http.Handler {
	if os.Getenv("RATE_LIMIT_ENABLED") != "true" {
		return next
	}
	qps := envInt("RATE_LIMIT_QPS", 200)
	burst := envInt("RATE_LIMIT_BURST", qps)
	logger.L().Info("rate_limit_enabled", "qps", qps, "burst", burst)
	return Limit(rate.NewLimiter(rate.Limit(qps), burst), next)
}

// Limit：使用给定限流器包装
func Limit(l *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow() {
			metrics.RateLimitedTotal.Inc()
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}
