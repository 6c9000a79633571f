package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newTestMetrics() *Metrics {
	return New("test", prometheus.NewRegistry())
}

func TestRecordIngest(t *testing.T) {
	m := newTestMetrics()

	m.RecordIngest(ResultOK, 3)
	m.RecordIngest(ResultPartial, 1)
	m.RecordIngest(ResultError, 0)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.documentsIngested.WithLabelValues(ResultOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.documentsIngested.WithLabelValues(ResultPartial)))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.chunksIndexed))
}

func TestRecordIndexOp(t *testing.T) {
	m := newTestMetrics()

	m.RecordIndexOp("query", nil)
	m.RecordIndexOp("query", errors.New("down"))
	m.RecordIndexOp("query", errors.New("down"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.indexOps.WithLabelValues("query", ResultOK)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.indexOps.WithLabelValues("query", ResultError)))
}

func TestObserveCompletion(t *testing.T) {
	m := newTestMetrics()

	m.ObserveCompletion("answer", 200*time.Millisecond, 10, 5, nil)
	m.ObserveCompletion("plan", time.Second, 0, 0, errors.New("timeout"))

	assert.Equal(t, 2, testutil.CollectAndCount(m.completionDuration))
	assert.Equal(t, float64(10), testutil.ToFloat64(m.completionTokens.WithLabelValues("prompt")))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.completionTokens.WithLabelValues("completion")))
}

func TestCounters(t *testing.T) {
	m := newTestMetrics()

	m.RecordAnswer(ResultNotFound)
	m.RecordPlan(ResultParseFailed)
	m.RecordTaskUpdate("completed")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.answers.WithLabelValues(ResultNotFound)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.plans.WithLabelValues(ResultParseFailed)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.taskUpdates.WithLabelValues("completed")))
}

func TestNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordIngest(ResultOK, 1)
		m.RecordIndexOp("upsert", nil)
		m.RecordAnswer(ResultOK)
		m.RecordPlan(ResultOK)
		m.RecordTaskUpdate("pending")
		m.ObserveCompletion("answer", time.Second, 1, 1, nil)
	})
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New("dup", reg)
	assert.Panics(t, func() { New("dup", reg) })
}
