package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.Transition("approved")
		m.Enqueued(true)
		m.Evicted(3)
		m.Swept(1, 2)
		m.Delivery("in_app", nil)
		m.Outcome("sent")
		m.Cycle(time.Second)
		m.Escalated(2)
		m.EscalationRun("ok", time.Second)
	})
}

func TestMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Transition("approved")
	m.Transition("approved")
	m.Delivery("email", errors.New("smtp down"))
	m.Enqueued(false)
	m.Enqueued(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deliveries.WithLabelValues("email", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.enqueued.WithLabelValues("deduplicated")))
}

func TestNew_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := New(reg)
	second := New(reg)

	first.Escalated(1)
	second.Escalated(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(second.escalations.WithLabelValues("1")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
