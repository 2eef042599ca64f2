package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexisbeaulieu97/routekit/internal/plugin"
	"github.com/alexisbeaulieu97/routekit/internal/routing"
)

// Recorder exports registry activity as Prometheus metrics. It implements
// plugin.Observer.
type Recorder struct {
	// Rebuild metrics
	RebuildsTotal   *prometheus.CounterVec
	RebuildDuration prometheus.Histogram
	TableVersion    prometheus.Gauge
	TableEntries    prometheus.Gauge
	OverriddenTotal prometheus.Gauge

	// Resolution metrics
	ResolutionsTotal *prometheus.CounterVec

	// Plugin metrics
	Plugins *prometheus.GaugeVec
}

var _ plugin.Observer = (*Recorder)(nil)

// NewRecorder creates the metrics and registers them on registry. namespace
// prefixes every metric name and defaults to "routekit".
func NewRecorder(registry prometheus.Registerer, namespace string) *Recorder {
	if namespace == "" {
		namespace = "routekit"
	}

	r := &Recorder{
		RebuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "table_rebuilds_total",
				Help:      "Total number of route table rebuilds by outcome",
			},
			[]string{"outcome"},
		),
		RebuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "table_rebuild_duration_seconds",
				Help:      "Route table rebuild duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
		TableVersion: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "table_version",
				Help:      "Version of the published route table",
			},
		),
		TableEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "table_entries",
				Help:      "Number of routes in the published route table",
			},
		),
		OverriddenTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "table_overridden_routes",
				Help:      "Number of routes shadowed by an override in the published table",
			},
		),
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolutions_total",
				Help:      "Total number of path resolutions",
			},
			[]string{"found", "cached"},
		),
		Plugins: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "plugins",
				Help:      "Number of registered plugins by state",
			},
			[]string{"state"},
		),
	}

	registry.MustRegister(
		r.RebuildsTotal,
		r.RebuildDuration,
		r.TableVersion,
		r.TableEntries,
		r.OverriddenTotal,
		r.ResolutionsTotal,
		r.Plugins,
	)

	return r
}

// ObserveRebuild records one rebuild. Table gauges only move when a table was
// produced.
func (r *Recorder) ObserveRebuild(outcome string, table *routing.Table, elapsed time.Duration) {
	r.RebuildsTotal.WithLabelValues(outcome).Inc()
	r.RebuildDuration.Observe(elapsed.Seconds())
	if table == nil {
		return
	}
	r.TableVersion.Set(float64(table.Version()))
	r.TableEntries.Set(float64(table.Len()))
	r.OverriddenTotal.Set(float64(len(table.Overridden())))
}

// ObserveResolve records one resolution.
func (r *Recorder) ObserveResolve(found, cached bool) {
	r.ResolutionsTotal.WithLabelValues(strconv.FormatBool(found), strconv.FormatBool(cached)).Inc()
}

// ObservePlugins records the registry population.
func (r *Recorder) ObservePlugins(active, quarantined int) {
	r.Plugins.WithLabelValues(string(plugin.StateActive)).Set(float64(active))
	r.Plugins.WithLabelValues(string(plugin.StateQuarantined)).Set(float64(quarantined))
}

// RegisterMetricsEndpoint exposes registry on mux at /metrics.
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
