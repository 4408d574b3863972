// Package metrics holds the Prometheus collectors of the approval service.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wb-go/wbf/zlog"
)

const namespace = "leave_approvals"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	transitions   *prometheus.CounterVec
	enqueued      *prometheus.CounterVec
	evicted       prometheus.Counter
	swept         *prometheus.CounterVec
	deliveries    *prometheus.CounterVec
	outcomes      *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	escalations   *prometheus.CounterVec
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
}

// New creates the collectors and registers them on reg.
// Collectors already registered on reg are reused.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Approval state machine transitions and refusals by audit action.",
		}, []string{"action"}),
		enqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_enqueued_total",
			Help:      "Notifications admitted to the queue, by whether they collapsed into a pending entry.",
		}, []string{"result"}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_evicted_total",
			Help:      "Pending notifications expired to make room in a full queue.",
		}),
		swept: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_swept_total",
			Help:      "Notifications expired or purged by the sweeper.",
		}, []string{"kind"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Channel delivery attempts by channel and result.",
		}, []string{"channel", "result"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_outcomes_total",
			Help:      "Queue status written after each dispatch attempt.",
		}, []string{"status"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_cycle_duration_seconds",
			Help:      "Duration of notification dispatch cycles.",
			Buckets:   prometheus.DefBuckets,
		}),
		escalations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escalations_total",
			Help:      "Escalation notices raised by tier.",
		}, []string{"tier"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escalation_runs_total",
			Help:      "Escalation scheduler runs by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "escalation_run_duration_seconds",
			Help:      "Duration of escalation scheduler runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}

	if reg == nil {
		return m
	}

	m.transitions = register(reg, m.transitions).(*prometheus.CounterVec)
	m.enqueued = register(reg, m.enqueued).(*prometheus.CounterVec)
	m.evicted = register(reg, m.evicted).(prometheus.Counter)
	m.swept = register(reg, m.swept).(*prometheus.CounterVec)
	m.deliveries = register(reg, m.deliveries).(*prometheus.CounterVec)
	m.outcomes = register(reg, m.outcomes).(*prometheus.CounterVec)
	m.cycleDuration = register(reg, m.cycleDuration).(prometheus.Histogram)
	m.escalations = register(reg, m.escalations).(*prometheus.CounterVec)
	m.runs = register(reg, m.runs).(*prometheus.CounterVec)
	m.runDuration = register(reg, m.runDuration).(prometheus.Histogram)

	return m
}

func register(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return already.ExistingCollector
		}
		zlog.Logger.Error().Err(err).Msg("failed to register metric")
	}

	return c
}

func (m *Metrics) Transition(action string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(action).Inc()
}

func (m *Metrics) Enqueued(deduplicated bool) {
	if m == nil {
		return
	}
	result := "admitted"
	if deduplicated {
		result = "deduplicated"
	}
	m.enqueued.WithLabelValues(result).Inc()
}

func (m *Metrics) Evicted(n int) {
	if m == nil {
		return
	}
	m.evicted.Add(float64(n))
}

func (m *Metrics) Swept(expired, purged int64) {
	if m == nil {
		return
	}
	m.swept.WithLabelValues("expired").Add(float64(expired))
	m.swept.WithLabelValues("purged").Add(float64(purged))
}

func (m *Metrics) Delivery(channel string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.deliveries.WithLabelValues(channel, result).Inc()
}

func (m *Metrics) Outcome(status string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(status).Inc()
}

func (m *Metrics) Cycle(d time.Duration) {
	if m == nil {
		return
	}
	m.cycleDuration.Observe(d.Seconds())
}

func (m *Metrics) Escalated(tier int) {
	if m == nil {
		return
	}
	m.escalations.WithLabelValues(strconv.Itoa(tier)).Inc()
}

func (m *Metrics) EscalationRun(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result).Inc()
	m.runDuration.Observe(d.Seconds())
}
