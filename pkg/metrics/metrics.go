package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// 慢查询计数
	DBSlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of statements slower than the configured threshold",
		},
		[]string{"statement"},
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 状态变更计数
	StatusTransitionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_transition_count",
			Help: "Total number of applied status changes",
		},
		[]string{"entity", "from", "to"}, // entity: project, task
	)

	// 业务规则拒绝计数
	RuleViolationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "business_rule_violation_count",
			Help: "Total number of requests rejected by a domain rule",
		},
		[]string{"code"},
	)

	// 缓存命中
	CacheLookupCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookup_count",
			Help: "Cache lookups by outcome",
		},
		[]string{"cache", "result"}, // result: hit, miss, error
	)
)

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementSlowQuery 记录慢查询
func IncrementSlowQuery(statement string, duration time.Duration) {
	DBSlowQueryCount.WithLabelValues(statement).Inc()
	DBQueryDuration.WithLabelValues("slow", "").Observe(duration.Seconds())
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementStatusTransition 增加状态变更计数
func IncrementStatusTransition(entity, from, to string) {
	StatusTransitionCount.WithLabelValues(entity, from, to).Inc()
}

// IncrementRuleViolation 增加业务规则拒绝计数
func IncrementRuleViolation(code string) {
	RuleViolationCount.WithLabelValues(code).Inc()
}

// RecordCacheLookup 记录缓存查询结果
func RecordCacheLookup(cache, result string) {
	CacheLookupCount.WithLabelValues(cache, result).Inc()
}
