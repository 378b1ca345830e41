package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StorageMetrics is the Prometheus implementation of the storage
// package's Metrics interface, shared by the local filesystem and S3
// backends. A nil *StorageMetrics is valid and every method on it is a
// no-op, so callers can always pass NewStorageMetrics()'s result
// through regardless of whether InitRegistry ran.
type StorageMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTransferred  *prometheus.CounterVec
	activeUploads     *prometheus.GaugeVec
}

// NewStorageMetrics creates a Prometheus-backed storage.Metrics
// implementation, or returns nil if InitRegistry has not run.
func NewStorageMetrics() *StorageMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &StorageMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "filevault_storage_operations_total",
				Help: "Total number of storage backend operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "filevault_storage_operation_duration_milliseconds",
				Help: "Duration of storage backend operations in milliseconds",
				Buckets: []float64{
					5, 25, 100, 500, 1000, 5000, 10000, 30000,
				},
			},
			[]string{"operation"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "filevault_storage_bytes_transferred_total",
				Help: "Total bytes transferred through storage backend operations",
			},
			[]string{"operation"},
		),
		activeUploads: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "filevault_storage_active_uploads",
				Help: "Current number of in-progress uploads by backend",
			},
			[]string{"backend"},
		),
	}
}

func (m *StorageMetrics) ObserveOperation(op string, d time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(op, status).Inc()
	m.operationDuration.WithLabelValues(op).Observe(float64(d.Milliseconds()))
}

func (m *StorageMetrics) RecordBytes(op string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesTransferred.WithLabelValues(op).Add(float64(n))
}

func (m *StorageMetrics) RecordActiveUpload(backend string, delta int) {
	if m == nil {
		return
	}
	m.activeUploads.WithLabelValues(backend).Add(float64(delta))
}
