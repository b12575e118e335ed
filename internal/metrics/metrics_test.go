package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCommit("debit", 500000, nil)
	m.ObserveCommit("debit", 100, errors.New("insufficient funds"))
	m.ObserveOTP("issued")
	m.FlowOpened()
	m.FlowOpened()
	m.FlowClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.commitsTotal.WithLabelValues("debit", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commitsTotal.WithLabelValues("debit", "error")))
	assert.Equal(t, 500000.0, testutil.ToFloat64(m.committedKobo.WithLabelValues("debit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeFlows))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCommit("credit", 1, nil)
		m.ObserveLogin("password", nil)
		m.ObserveTransition("preview")
		m.FlowOpened()
		m.ObserveVerification(0.1)
	})
}
