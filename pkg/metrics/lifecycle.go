package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LifecycleMetrics tracks background worker cycles (expiry, inactivity,
// tier migration, premium expiry). A nil *LifecycleMetrics is valid;
// every method is a no-op.
type LifecycleMetrics struct {
	cyclesTotal    *prometheus.CounterVec
	cycleDuration  *prometheus.HistogramVec
	itemsProcessed *prometheus.CounterVec
	itemsFailed    *prometheus.CounterVec
}

func NewLifecycleMetrics() *LifecycleMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &LifecycleMetrics{
		cyclesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "filevault_lifecycle_cycles_total",
				Help: "Total number of lifecycle worker cycles run",
			},
			[]string{"worker"},
		),
		cycleDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filevault_lifecycle_cycle_duration_milliseconds",
				Help:    "Duration of a lifecycle worker cycle in milliseconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"worker"},
		),
		itemsProcessed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "filevault_lifecycle_items_processed_total",
				Help: "Total number of items successfully processed by a lifecycle worker",
			},
			[]string{"worker"},
		),
		itemsFailed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "filevault_lifecycle_items_failed_total",
				Help: "Total number of items a lifecycle worker failed to process",
			},
			[]string{"worker"},
		),
	}
}

func (m *LifecycleMetrics) ObserveCycle(worker string, d time.Duration, processed, failed int) {
	if m == nil {
		return
	}
	m.cyclesTotal.WithLabelValues(worker).Inc()
	m.cycleDuration.WithLabelValues(worker).Observe(float64(d.Milliseconds()))
	m.itemsProcessed.WithLabelValues(worker).Add(float64(processed))
	m.itemsFailed.WithLabelValues(worker).Add(float64(failed))
}
