package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ems"

// Metrics 服务指标集合
// 所有方法对 nil 接收者安全，测试中可直接传 nil
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	scoresSubmitted  prometheus.Counter
	winnersDeclared  *prometheus.CounterVec
	conflicts        *prometheus.CounterVec
	batchFailures    *prometheus.CounterVec
	leaderboardCache *prometheus.CounterVec
}

// New 创建独立的 Registry 并注册全部指标
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP 请求总数",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP 请求耗时",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		scoresSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "judging",
			Name:      "score_entries_total",
			Help:      "成功写入的评分条目数",
		}),
		winnersDeclared: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "judging",
			Name:      "advancement_outcomes_total",
			Help:      "晋级结果计数（advanced / eliminated）",
		}, []string{"outcome"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "judging",
			Name:      "conflicts_total",
			Help:      "按类型统计的冲突次数",
		}, []string{"kind"}),
		batchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "judging",
			Name:      "best_effort_failures_total",
			Help:      "尽力而为批处理中被跳过的条目数",
		}, []string{"stage"}),
		leaderboardCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leaderboard",
			Name:      "cache_lookups_total",
			Help:      "排行榜缓存命中情况",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.scoresSubmitted,
		m.winnersDeclared,
		m.conflicts,
		m.batchFailures,
		m.leaderboardCache,
	)
	return m
}

// Handler /metrics 暴露端点
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry 返回底层 Registry（测试读取指标用）
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveHTTP 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ScoresSubmitted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.scoresSubmitted.Add(float64(n))
}

// AdvancementOutcome outcome 取 advanced / eliminated
func (m *Metrics) AdvancementOutcome(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.winnersDeclared.WithLabelValues(outcome).Add(float64(n))
}

// Conflict kind 取冲突类型，例如 schedule / capacity / judge_quota
func (m *Metrics) Conflict(kind string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(kind).Inc()
}

func (m *Metrics) BestEffortFailure(stage string) {
	if m == nil {
		return
	}
	m.batchFailures.WithLabelValues(stage).Inc()
}

// LeaderboardCache result 取 hit / miss / error
func (m *Metrics) LeaderboardCache(result string) {
	if m == nil {
		return
	}
	m.leaderboardCache.WithLabelValues(result).Inc()
}
