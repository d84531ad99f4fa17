package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		r.ObserveSyncDuration(time.Second)
		r.IncSyncOutcome(OutcomeSuccess)
		r.AddItemsCreated(3)
		r.AddItemsPurged(2)
		r.ObserveLockWait(time.Millisecond)
		r.IncLockContended()
	})
}

func TestNilPrometheusRecorder(t *testing.T) {
	var p *PrometheusRecorder
	assert.NotPanics(t, func() {
		p.ObserveSyncDuration(time.Second)
		p.IncSyncOutcome(OutcomeFailed)
		p.AddItemsCreated(1)
		p.AddItemsPurged(1)
		p.ObserveLockWait(time.Second)
		p.IncLockContended()
	})
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncSyncOutcome(OutcomeSuccess)
	pr.IncSyncOutcome(OutcomeSuccess)
	pr.IncSyncOutcome(OutcomeNotFound)
	pr.AddItemsCreated(4)
	pr.AddItemsCreated(0)
	pr.AddItemsPurged(5)
	pr.ObserveSyncDuration(150 * time.Millisecond)
	pr.ObserveLockWait(time.Millisecond)
	pr.IncLockContended()

	assert.Equal(t, 2.0, testutil.ToFloat64(pr.syncOutcomes.WithLabelValues(string(OutcomeSuccess))))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.syncOutcomes.WithLabelValues(string(OutcomeNotFound))))
	assert.Equal(t, 4.0, testutil.ToFloat64(pr.itemsCreated))
	assert.Equal(t, 5.0, testutil.ToFloat64(pr.itemsPurged))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.contended))

	expected := `
# HELP menus_items_purged_total Menu items removed by committed replaces
# TYPE menus_items_purged_total counter
menus_items_purged_total 5
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "menus_items_purged_total"))

	count, err := testutil.GatherAndCount(reg, "menus_sync_duration_seconds", "menus_sync_lock_wait_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLocksGauge(t *testing.T) {
	reg := prom.NewRegistry()
	held := 0
	g := RegisterLocksGauge(reg, func() int { return held })
	assert.Equal(t, 0.0, testutil.ToFloat64(g))

	held = 3
	assert.Equal(t, 3.0, testutil.ToFloat64(g))

	expected := `
# HELP menus_sync_locks Menus with a replace holding or waiting for the lock
# TYPE menus_sync_locks gauge
menus_sync_locks 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "menus_sync_locks"))
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.AddItemsCreated(2)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "menus_items_created_total 2")
}
