// Package metrics exposes collected transaction timings to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zoobzio/txtimez"
)

// Exporter is a prometheus.Collector that reads a txtimez.Collector snapshot
// on every scrape. It exports the completed count and the summed duration
// per transaction name.
type Exporter struct {
	source  *txtimez.Collector
	count   *prometheus.Desc
	seconds *prometheus.Desc
}

var _ prometheus.Collector = (*Exporter)(nil)

// NewExporter creates an exporter for source under the given namespace.
func NewExporter(source *txtimez.Collector, namespace string) *Exporter {
	return &Exporter{
		source: source,
		count: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "transaction", "count"),
			"Number of completed transactions currently collected.",
			[]string{"transaction"}, nil,
		),
		seconds: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "transaction", "seconds_total"),
			"Summed duration of completed transactions currently collected.",
			[]string{"transaction"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.count
	ch <- e.seconds
}

// Collect implements prometheus.Collector.
// Values are gauges because Clear can shrink them.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	times := e.source.ResponseTimes()
	for _, name := range times.Names() {
		ch <- prometheus.MustNewConstMetric(e.count, prometheus.GaugeValue, float64(times.Count(name)), name)
		ch <- prometheus.MustNewConstMetric(e.seconds, prometheus.GaugeValue, times.Total(name).Seconds(), name)
	}
}
