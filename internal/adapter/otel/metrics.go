package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "workflow-notify"

// Metrics holds all workflow-notify metric instruments.
type Metrics struct {
	ReportsBuilt        metric.Int64Counter
	ReportsFailed       metric.Int64Counter
	NotificationsSent   metric.Int64Counter
	NotificationsFailed metric.Int64Counter
	FetchDuration       metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.ReportsBuilt, err = meter.Int64Counter("workflow_notify.reports.built",
		metric.WithDescription("Number of workflow reports rendered"))
	if err != nil {
		return nil, err
	}

	m.ReportsFailed, err = meter.Int64Counter("workflow_notify.reports.failed",
		metric.WithDescription("Number of workflow reports that could not be fetched or rendered"))
	if err != nil {
		return nil, err
	}

	m.NotificationsSent, err = meter.Int64Counter("workflow_notify.notifications.sent",
		metric.WithDescription("Number of notifications delivered"))
	if err != nil {
		return nil, err
	}

	m.NotificationsFailed, err = meter.Int64Counter("workflow_notify.notifications.failed",
		metric.WithDescription("Number of notification deliveries that failed"))
	if err != nil {
		return nil, err
	}

	m.FetchDuration, err = meter.Float64Histogram("workflow_notify.fetch.duration_seconds",
		metric.WithDescription("Time spent reading run metadata from the CI provider"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
