// Package metrics owns the process-wide Prometheus registry and the
// concrete metric collectors for storage, quota, rate-limiting, and
// lifecycle-worker instrumentation.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registryMu sync.RWMutex
	registry   *prometheus.Registry
	enabled    bool
)

// InitRegistry creates the process-wide registry that subsequent New*
// constructors register their collectors against. Safe to call once at
// startup; a second call replaces the registry.
func InitRegistry() *prometheus.Registry {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has run. Constructors in this
// package return nil when it hasn't, so callers can pass nil straight
// into storage/quota/ratelimit components for zero overhead.
func IsEnabled() bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return enabled
}

// GetRegistry returns the process-wide registry, or nil if IsEnabled is
// false.
func GetRegistry() *prometheus.Registry {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry
}
