package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is safe to use through a nil pointer, which records nothing.
type Metrics struct {
	commitsTotal     *prometheus.CounterVec
	committedKobo    *prometheus.CounterVec
	otpTotal         *prometheus.CounterVec
	loginTotal       *prometheus.CounterVec
	flowTransitions  *prometheus.CounterVec
	activeFlows      prometheus.Gauge
	verificationTime prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		commitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "jpay",
				Subsystem: "ledger",
				Name:      "commits_total",
				Help:      "Ledger commits partitioned by kind and result.",
			},
			[]string{"kind", "result"},
		),
		committedKobo: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "jpay",
				Subsystem: "ledger",
				Name:      "committed_kobo_total",
				Help:      "Total kobo moved by successful commits, by kind.",
			},
			[]string{"kind"},
		),
		otpTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "jpay",
				Subsystem: "auth",
				Name:      "otp_total",
				Help:      "One-time codes issued and verified, by outcome.",
			},
			[]string{"event"},
		),
		loginTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "jpay",
				Subsystem: "auth",
				Name:      "login_attempts_total",
				Help:      "Login attempts partitioned by method and result.",
			},
			[]string{"method", "result"},
		),
		flowTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "jpay",
				Subsystem: "payment_flow",
				Name:      "transitions_total",
				Help:      "Payment flow state entries by state.",
			},
			[]string{"state"},
		),
		activeFlows: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "jpay",
				Subsystem: "payment_flow",
				Name:      "active",
				Help:      "Payment flows not yet committed or cancelled.",
			},
		),
		verificationTime: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "jpay",
				Subsystem: "payment_flow",
				Name:      "verification_seconds",
				Help:      "Latency of recipient and meter verification.",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

func (m *Metrics) ObserveCommit(kind string, amount int64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.commitsTotal.WithLabelValues(kind, "error").Inc()
		return
	}
	m.commitsTotal.WithLabelValues(kind, "ok").Inc()
	m.committedKobo.WithLabelValues(kind).Add(float64(amount))
}

func (m *Metrics) ObserveOTP(event string) {
	if m == nil {
		return
	}
	m.otpTotal.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveLogin(method string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.loginTotal.WithLabelValues(method, result).Inc()
}

func (m *Metrics) ObserveTransition(state string) {
	if m == nil {
		return
	}
	m.flowTransitions.WithLabelValues(state).Inc()
}

func (m *Metrics) FlowOpened() {
	if m == nil {
		return
	}
	m.activeFlows.Inc()
}

func (m *Metrics) FlowClosed() {
	if m == nil {
		return
	}
	m.activeFlows.Dec()
}

func (m *Metrics) ObserveVerification(seconds float64) {
	if m == nil {
		return
	}
	m.verificationTime.Observe(seconds)
}
