package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "bencher"

// Metrics holds the ingestion/detection instruments spec.md §4.6/§4.9
// drive: how many reports are ingested, how many metrics they carry,
// how many alerts the detector raises, and how long ingestion takes.
type Metrics struct {
	ReportsIngested metric.Int64Counter
	ReportsFailed   metric.Int64Counter
	MetricsReceived metric.Int64Counter
	AlertsRaised    metric.Int64Counter
	IngestDuration  metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.ReportsIngested, err = meter.Int64Counter("bencher.reports.ingested",
		metric.WithDescription("Number of reports ingested"))
	if err != nil {
		return nil, err
	}

	m.ReportsFailed, err = meter.Int64Counter("bencher.reports.failed",
		metric.WithDescription("Number of report ingestions that failed"))
	if err != nil {
		return nil, err
	}

	m.MetricsReceived, err = meter.Int64Counter("bencher.metrics.received",
		metric.WithDescription("Number of individual benchmark/measure metrics ingested"))
	if err != nil {
		return nil, err
	}

	m.AlertsRaised, err = meter.Int64Counter("bencher.alerts.raised",
		metric.WithDescription("Number of alerts raised by the threshold detector"))
	if err != nil {
		return nil, err
	}

	m.IngestDuration, err = meter.Float64Histogram("bencher.ingest.duration_seconds",
		metric.WithDescription("Report ingestion duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
