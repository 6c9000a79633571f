// Package metrics 提供入职助手的业务指标（Prometheus）。
//
// 所有方法对 nil *Metrics 安全，未注册指标时调用方无需判空。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 结果标签取值。
const (
	ResultOK          = "ok"
	ResultError       = "error"
	ResultPartial     = "partial"
	ResultNotFound    = "not_found"
	ResultCached      = "cached"
	ResultParseFailed = "parse_failed"
)

// Metrics 业务指标集合。
type Metrics struct {
	documentsIngested  *prometheus.CounterVec
	chunksIndexed      prometheus.Counter
	indexOps           *prometheus.CounterVec
	answers            *prometheus.CounterVec
	plans              *prometheus.CounterVec
	taskUpdates        *prometheus.CounterVec
	completionDuration *prometheus.HistogramVec
	completionTokens   *prometheus.CounterVec
}

// New 创建并注册业务指标。reg 为 nil 时使用默认注册表。
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		documentsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_ingested_total",
			Help:      "Documents ingested by result (ok, partial, error).",
		}, []string{"result"}),
		chunksIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_indexed_total",
			Help:      "Chunks written to the vector index.",
		}),
		indexOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_operations_total",
			Help:      "Vector index operations by operation and result.",
		}, []string{"operation", "result"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Questions answered by result (ok, not_found, cached, error).",
		}, []string{"result"}),
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_generated_total",
			Help:      "Plan generations by result (ok, parse_failed, error).",
		}, []string{"result"}),
		taskUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checklist_task_updates_total",
			Help:      "Checklist task status changes by new status.",
		}, []string{"status"}),
		completionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Completion service latency by operation.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"operation", "result"}),
		completionTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_tokens_total",
			Help:      "Tokens consumed by the completion service by kind (prompt, completion).",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.documentsIngested,
		m.chunksIndexed,
		m.indexOps,
		m.answers,
		m.plans,
		m.taskUpdates,
		m.completionDuration,
		m.completionTokens,
	)
	return m
}

// RecordIngest 记录一次文档导入。
func (m *Metrics) RecordIngest(result string, chunks int) {
	if m == nil {
		return
	}
	m.documentsIngested.WithLabelValues(result).Inc()
	if chunks > 0 {
		m.chunksIndexed.Add(float64(chunks))
	}
}

// RecordIndexOp 记录一次向量索引操作。
func (m *Metrics) RecordIndexOp(operation string, err error) {
	if m == nil {
		return
	}
	m.indexOps.WithLabelValues(operation, resultOf(err)).Inc()
}

// RecordAnswer 记录一次问答。
func (m *Metrics) RecordAnswer(result string) {
	if m == nil {
		return
	}
	m.answers.WithLabelValues(result).Inc()
}

// RecordPlan 记录一次计划生成。
func (m *Metrics) RecordPlan(result string) {
	if m == nil {
		return
	}
	m.plans.WithLabelValues(result).Inc()
}

// RecordTaskUpdate 记录任务状态变更。
func (m *Metrics) RecordTaskUpdate(status string) {
	if m == nil {
		return
	}
	m.taskUpdates.WithLabelValues(status).Inc()
}

// ObserveCompletion 记录一次补全调用的耗时与 token 用量。
func (m *Metrics) ObserveCompletion(operation string, d time.Duration, promptTokens, completionTokens int, err error) {
	if m == nil {
		return
	}
	m.completionDuration.WithLabelValues(operation, resultOf(err)).Observe(d.Seconds())
	if promptTokens > 0 {
		m.completionTokens.WithLabelValues("prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.completionTokens.WithLabelValues("completion").Add(float64(completionTokens))
	}
}

func resultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
