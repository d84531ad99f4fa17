package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "menus"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	syncDuration prom.Histogram
	syncOutcomes *prom.CounterVec
	itemsCreated prom.Counter
	itemsPurged  prom.Counter
	lockWait     prom.Histogram
	contended    prom.Counter
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		syncDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of menu replace operations, lock wait excluded",
			Buckets:   prom.DefBuckets,
		}),
		syncOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sync_outcomes_total",
			Help:      "Menu replace operations by final outcome",
		}, []string{"outcome"}),
		itemsCreated: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "items_created_total",
			Help:      "Menu items created by committed replaces",
		}),
		itemsPurged: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "items_purged_total",
			Help:      "Menu items removed by committed replaces",
		}),
		lockWait: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_lock_wait_seconds",
			Help:      "Time spent waiting for the per-menu lock",
			Buckets:   prom.ExponentialBuckets(0.0005, 4, 8),
		}),
		contended: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sync_lock_contended_total",
			Help:      "Replaces that found their menu already locked",
		}),
	}
	reg.MustRegister(pr.syncDuration, pr.syncOutcomes, pr.itemsCreated, pr.itemsPurged, pr.lockWait, pr.contended)
	return pr
}

func (p *PrometheusRecorder) ObserveSyncDuration(d time.Duration) {
	if p == nil || p.syncDuration == nil {
		return
	}
	p.syncDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncSyncOutcome(outcome Outcome) {
	if p == nil || p.syncOutcomes == nil {
		return
	}
	p.syncOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddItemsCreated(n int) {
	if p == nil || p.itemsCreated == nil || n <= 0 {
		return
	}
	p.itemsCreated.Add(float64(n))
}

func (p *PrometheusRecorder) AddItemsPurged(n int64) {
	if p == nil || p.itemsPurged == nil || n <= 0 {
		return
	}
	p.itemsPurged.Add(float64(n))
}

func (p *PrometheusRecorder) ObserveLockWait(d time.Duration) {
	if p == nil || p.lockWait == nil {
		return
	}
	p.lockWait.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncLockContended() {
	if p == nil || p.contended == nil {
		return
	}
	p.contended.Inc()
}

// RegisterLocksGauge exposes held() as menus_sync_locks, the number of menus
// with a replace holding or waiting for the lock. held is usually the Len
// method of the synchronizer's lock table.
func RegisterLocksGauge(reg *prom.Registry, held func() int) prom.GaugeFunc {
	g := prom.NewGaugeFunc(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "sync_locks",
		Help:      "Menus with a replace holding or waiting for the lock",
	}, func() float64 { return float64(held()) })
	reg.MustRegister(g)
	return g
}

// HTTPHandler returns an http.Handler that serves the metrics of reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
