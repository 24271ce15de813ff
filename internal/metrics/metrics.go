// Package metrics exposes Prometheus counters for the sweep engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all bucketsweep metrics.
var Registry = prometheus.NewRegistry()

var (
	Cycles = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "bucketsweep_cycles_total",
		Help: "Completed sweep cycles, including failed ones.",
	})
	CycleFailures = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "bucketsweep_cycle_failures_total",
		Help: "Cycles that ended with at least one failure or panic.",
	})
	ObjectsScanned = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "bucketsweep_objects_scanned_total",
		Help: "Objects examined by the staleness policy.",
	})
	ObjectsDeleted = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "bucketsweep_objects_deleted_total",
		Help: "Objects deleted, counting already-absent keys as deleted.",
	})
	DeleteFailures = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "bucketsweep_delete_failures_total",
		Help: "Keys whose deletion failed after all retries.",
	})
	ListFailures = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "bucketsweep_list_failures_total",
		Help: "Prefix listings that failed after all retries.",
	})
	CycleDuration = promauto.With(Registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "bucketsweep_cycle_duration_seconds",
		Help:    "Wall time of one sweep cycle.",
		Buckets: prometheus.ExponentialBuckets(0.1, 4, 8),
	})
)

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// Handler serves the registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
