package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/jscadpack/pkg/observability"
)

const metricsNamespace = "jscadpack"

// newMetricsRegistry exposes stats as Prometheus metrics. Values are read
// from a fresh snapshot on every scrape.
func newMetricsRegistry(stats *observability.Counters) *prometheus.Registry {
	counter := func(name, help string, value func(observability.Snapshot) float64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      name,
			Help:      help,
		}, func() float64 { return value(stats.Snapshot()) })
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),

		counter("resolves_total", "Dependency resolutions run.",
			func(s observability.Snapshot) float64 { return float64(s.Resolves) }),
		counter("resolve_errors_total", "Dependency resolutions that failed.",
			func(s observability.Snapshot) float64 { return float64(s.ResolveErrors) }),
		counter("resolve_seconds_total", "Time spent resolving dependencies.",
			func(s observability.Snapshot) float64 { return s.ResolveTime.Seconds() }),
		counter("packages_resolved_total", "Packages in successfully resolved graphs.",
			func(s observability.Snapshot) float64 { return float64(s.Packages) }),
		counter("emits_total", "Bundle emissions run.",
			func(s observability.Snapshot) float64 { return float64(s.Emits) }),
		counter("emit_errors_total", "Bundle emissions that failed.",
			func(s observability.Snapshot) float64 { return float64(s.EmitErrors) }),
		counter("files_emitted_total", "Library files written to a sink.",
			func(s observability.Snapshot) float64 { return float64(s.Files) }),
		counter("bytes_emitted_total", "Library bytes written to a sink.",
			func(s observability.Snapshot) float64 { return float64(s.Bytes) }),
		counter("cache_hits_total", "Cache lookups that hit.",
			func(s observability.Snapshot) float64 { return float64(s.CacheHits) }),
		counter("cache_misses_total", "Cache lookups that missed.",
			func(s observability.Snapshot) float64 { return float64(s.CacheMisses) }),
		counter("cache_sets_total", "Cache entries written.",
			func(s observability.Snapshot) float64 { return float64(s.CacheSets) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "resolves_in_flight",
			Help:      "Resolutions currently running.",
		}, func() float64 { return float64(stats.Snapshot().InFlight) }),
	)
	return reg
}

func metricsHandler(stats *observability.Counters) http.Handler {
	return promhttp.HandlerFor(newMetricsRegistry(stats), promhttp.HandlerOpts{})
}
