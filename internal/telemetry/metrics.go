package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/ranger"
)

// Metrics holds the build metric instruments
type Metrics struct {
	BuildsTotal        metric.Int64Counter
	BuildFailuresTotal metric.Int64Counter
	BuildDuration      metric.Float64Histogram

	// Output policy metrics
	AssetsRoutedTotal metric.Int64Counter
	DiagnosticsTotal  metric.Int64Counter

	CompressedBytesTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.BuildsTotal, _ = meter.Int64Counter(
		"ranger.builds.total",
		metric.WithDescription("Total number of builds started"),
		metric.WithUnit("{build}"),
	)

	m.BuildFailuresTotal, _ = meter.Int64Counter(
		"ranger.builds.failures.total",
		metric.WithDescription("Total number of builds that failed"),
		metric.WithUnit("{build}"),
	)

	m.BuildDuration, _ = meter.Float64Histogram(
		"ranger.builds.duration",
		metric.WithDescription("Duration of builds including post processing"),
		metric.WithUnit("ms"),
	)

	m.AssetsRoutedTotal, _ = meter.Int64Counter(
		"ranger.assets.routed.total",
		metric.WithDescription("Total number of assets relocated by kind"),
		metric.WithUnit("{asset}"),
	)

	m.DiagnosticsTotal, _ = meter.Int64Counter(
		"ranger.diagnostics.total",
		metric.WithDescription("Total number of bundler diagnostics by action"),
		metric.WithUnit("{diagnostic}"),
	)

	m.CompressedBytesTotal, _ = meter.Int64Counter(
		"ranger.compress.bytes.total",
		metric.WithDescription("Total bytes written to compressed copies"),
		metric.WithUnit("By"),
	)

	return m
}
