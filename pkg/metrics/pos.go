package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// POSMetrics records terminal activity.
type POSMetrics struct {
	commands        *prometheus.CounterVec
	scansSuppressed prometheus.Counter
	salesCommitted  *prometheus.CounterVec
	ioDuration      *prometheus.HistogramVec
}

// NewPOSMetrics registers the terminal metrics on the provided registerer.
func NewPOSMetrics(reg prometheus.Registerer) *POSMetrics {
	if reg == nil {
		return &POSMetrics{}
	}
	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_commands_total",
		Help: "Terminal commands by outcome.",
	}, []string{"command", "outcome"})
	suppressed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_scans_suppressed_total",
		Help: "Scans dropped by the debounce window.",
	})
	committed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_sales_committed_total",
		Help: "Sales persisted, by payment method.",
	}, []string{"payment"})
	ioDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pos_io_duration_seconds",
		Help:    "Latency of catalog, sequencer and persistence calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	reg.MustRegister(commands, suppressed, committed, ioDuration)
	return &POSMetrics{
		commands:        commands,
		scansSuppressed: suppressed,
		salesCommitted:  committed,
		ioDuration:      ioDuration,
	}
}

// ObserveCommand counts a dispatched command.
func (m *POSMetrics) ObserveCommand(command string, accepted bool) {
	if m == nil || m.commands == nil {
		return
	}
	outcome := OutcomeRejected
	if accepted {
		outcome = OutcomeAccepted
	}
	m.commands.WithLabelValues(normalizeLabel(command), outcome).Inc()
}

func (m *POSMetrics) IncScanSuppressed() {
	if m == nil || m.scansSuppressed == nil {
		return
	}
	m.scansSuppressed.Inc()
}

func (m *POSMetrics) IncSaleCommitted(payment string) {
	if m == nil || m.salesCommitted == nil {
		return
	}
	m.salesCommitted.WithLabelValues(normalizeLabel(payment)).Inc()
}

// ObserveIO records the duration of an off-loop call.
func (m *POSMetrics) ObserveIO(op string, duration time.Duration) {
	if m == nil || m.ioDuration == nil {
		return
	}
	m.ioDuration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// OutboxMetrics records publisher throughput.
type OutboxMetrics struct {
	published *prometheus.CounterVec
}

func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_total",
		Help: "Outbox publish attempts by event type and outcome.",
	}, []string{"event_type", "outcome"})
	reg.MustRegister(published)
	return &OutboxMetrics{published: published}
}

func (m *OutboxMetrics) IncPublished(eventType string) {
	m.inc(eventType, "published")
}

func (m *OutboxMetrics) IncFailed(eventType string) {
	m.inc(eventType, "failed")
}

func (m *OutboxMetrics) IncTerminal(eventType string) {
	m.inc(eventType, "terminal")
}

func (m *OutboxMetrics) inc(eventType, outcome string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType), outcome).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
