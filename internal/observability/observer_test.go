package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEvent(t *testing.T) {
	msg := formatEvent(Event{
		Type:     EventEntryApplied,
		Resource: "res-1",
		Message:  "created",
		Fields:   map[string]string{"run": "abc", "action": "CREATE"},
	})
	assert.Equal(t, "entry.applied resource=res-1 created (action=CREATE, run=abc)", msg)
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	parent := NewConsoleObserver()
	child := parent.WithFields(map[string]string{"run": "abc"})
	require.NotNil(t, child)
	assert.Empty(t, parent.contextFields)
}

func TestNewRunIDUnique(t *testing.T) {
	assert.NotEqual(t, NewRunID(), NewRunID())
}

func TestMetricsObserveRun(t *testing.T) {
	m := NewMetrics()

	m.ObserveRun("success", 2*time.Second)
	m.ObserveRun("failure", time.Second)
	m.PlanEntries.WithLabelValues("CREATE").Add(3)
	m.PinsProvisioned.Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RunsTotal.WithLabelValues("failure")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.PlanEntries.WithLabelValues("CREATE")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PinsProvisioned))
}
