package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
	"github.com/dwallet-labs/dwallet-network-sub008/module"
)

// MPCCollector implements module.MPCMetrics with prometheus collectors.
type MPCCollector struct {
	created           *prometheus.CounterVec
	finished          *prometheus.CounterVec
	failed            *prometheus.CounterVec
	advanceDuration   *prometheus.HistogramVec
	running           prometheus.Gauge
	pending           prometheus.Gauge
	reportsReceived   prometheus.Counter
	confirmed         prometheus.Gauge
	agreed            *prometheus.CounterVec
	submissionsFailed prometheus.Counter
}

var _ module.MPCMetrics = (*MPCCollector)(nil)

func NewMPCCollector(registerer prometheus.Registerer) *MPCCollector {
	factory := promauto.With(registerer)

	return &MPCCollector{
		created: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceMPC,
			Subsystem: subsystemSessions,
			Name:      "created_total",
			Help:      "number of sessions admitted to the registry",
		}, []string{LabelProtocol}),
		finished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceMPC,
			Subsystem: subsystemSessions,
			Name:      "finished_total",
			Help:      "number of sessions that produced a final output",
		}, []string{LabelProtocol}),
		failed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceMPC,
			Subsystem: subsystemSessions,
			Name:      "failed_total",
			Help:      "number of sessions that failed",
		}, []string{LabelProtocol}),
		advanceDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespaceMPC,
			Subsystem: subsystemSessions,
			Name:      "advance_duration_seconds",
			Help:      "duration of a single advance call",
			Buckets:   []float64{.001, .01, .05, .1, .5, 1, 5, 10, 30},
		}, []string{LabelProtocol}),
		running: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespaceMPC,
			Subsystem: subsystemSessions,
			Name:      "running",
			Help:      "number of sessions occupying a concurrency slot",
		}),
		pending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespaceMPC,
			Subsystem: subsystemSessions,
			Name:      "pending",
			Help:      "number of sessions waiting for a concurrency slot",
		}),
		reportsReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceMPC,
			Subsystem: subsystemSecurity,
			Name:      "malicious_reports_total",
			Help:      "number of malicious reports delivered by consensus",
		}),
		confirmed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespaceMPC,
			Subsystem: subsystemSecurity,
			Name:      "confirmed_malicious_authorities",
			Help:      "number of authorities confirmed malicious in the current epoch",
		}),
		agreed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceMPC,
			Subsystem: subsystemOutputs,
			Name:      "agreed_total",
			Help:      "number of session outputs a quorum agreed on",
		}, []string{LabelProtocol}),
		submissionsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceMPC,
			Subsystem: subsystemBroker,
			Name:      "submissions_failed_total",
			Help:      "number of consensus submissions that exhausted their retries",
		}),
	}
}

func (c *MPCCollector) SessionCreated(kind mpc.ProtocolKind) {
	c.created.WithLabelValues(kind.String()).Inc()
}

func (c *MPCCollector) SessionAdvanced(kind mpc.ProtocolKind, duration time.Duration) {
	c.advanceDuration.WithLabelValues(kind.String()).Observe(duration.Seconds())
}

func (c *MPCCollector) SessionFinished(kind mpc.ProtocolKind) {
	c.finished.WithLabelValues(kind.String()).Inc()
}

func (c *MPCCollector) SessionFailed(kind mpc.ProtocolKind) {
	c.failed.WithLabelValues(kind.String()).Inc()
}

func (c *MPCCollector) SessionsInFlight(running int, pending int) {
	c.running.Set(float64(running))
	c.pending.Set(float64(pending))
}

func (c *MPCCollector) MaliciousReportReceived() {
	c.reportsReceived.Inc()
}

func (c *MPCCollector) MaliciousAuthoritiesConfirmed(count int) {
	c.confirmed.Set(float64(count))
}

func (c *MPCCollector) OutputAgreed(kind mpc.ProtocolKind) {
	c.agreed.WithLabelValues(kind.String()).Inc()
}

func (c *MPCCollector) ConsensusSubmissionFailed() {
	c.submissionsFailed.Inc()
}
