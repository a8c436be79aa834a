package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("GET", "2xx")
	m.ObserveRequest("GET", "2xx")
	m.ObserveRefresh(RefreshSuccess)
	m.ObserveReplay()
	m.ObserveLookup(LookupUnavailable)
	m.ObserveConflictCheck(true)
	m.ObserveConflictCheck(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues(RefreshSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Replays))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OfferingLookups.WithLabelValues(LookupUnavailable)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConflictChecks.WithLabelValues("conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConflictChecks.WithLabelValues("clear")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveRequest("GET", "2xx")
		m.ObserveRefresh(RefreshFailure)
		m.ObserveReplay()
		m.ObserveLookup(LookupHit)
		m.ObserveConflictCheck(true)
	})
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	require.Panics(t, func() { New(reg) })
}
