// Package metrics exposes Prometheus instrumentation for the HTTP service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the service metrics on a private registry.
type Collector struct {
	reg *prometheus.Registry

	RequestsTotal *prometheus.CounterVec // endpoint label: locations|enrich
	FetchErrors   prometheus.Counter

	RecordsFetched  prometheus.Counter
	RecordsEnriched prometheus.Counter

	PipelineDuration *prometheus.HistogramVec // pipeline label: locations|enrich
}

// NewCollector creates and registers the service metrics.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stride_requests_total",
			Help: "Total pipeline requests served, by endpoint.",
		}, []string{"endpoint"}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stride_fetch_errors_total",
			Help: "Total outbound API calls that failed.",
		}),
		RecordsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stride_records_fetched_total",
			Help: "Total location records materialized.",
		}),
		RecordsEnriched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stride_records_enriched_total",
			Help: "Total records run through the enrichment join.",
		}),
		PipelineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stride_pipeline_duration_seconds",
			Help:    "End-to-end pipeline run duration, by pipeline.",
			Buckets: prometheus.DefBuckets,
		}, []string{"pipeline"}),
	}

	reg.MustRegister(
		c.RequestsTotal,
		c.FetchErrors,
		c.RecordsFetched,
		c.RecordsEnriched,
		c.PipelineDuration,
	)
	return c
}

// Handler returns the /metrics HTTP handler for the private registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
