// Package telemetry provides OpenTelemetry instrumentation for the cache engine.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SyncMetricsMeterName is the name used for the sync coordinator meter
	SyncMetricsMeterName = "github.com/mmcdole/reel/sync"

	// NotifyMetricsMeterName is the name used for the change notifier meter
	NotifyMetricsMeterName = "github.com/mmcdole/reel/notify"
)

// SyncMetrics holds the OpenTelemetry instruments for sync operations
type SyncMetrics struct {
	syncDuration   metric.Float64Histogram
	recordsApplied metric.Int64Counter
	recordsFailed  metric.Int64Counter
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	syncDuration, err := meter.Float64Histogram(
		"reel_sync_duration_seconds",
		metric.WithDescription("Duration of sync operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	recordsApplied, err := meter.Int64Counter(
		"reel_sync_records_applied_total",
		metric.WithDescription("Records that changed the cache"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	recordsFailed, err := meter.Int64Counter(
		"reel_sync_records_failed_total",
		metric.WithDescription("Records that could not be written"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		syncDuration:   syncDuration,
		recordsApplied: recordsApplied,
		recordsFailed:  recordsFailed,
	}, nil
}

// RecordSync records the outcome of one sync call for a list
func (m *SyncMetrics) RecordSync(ctx context.Context, list string, duration time.Duration, applied, failed int) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("list", list),
		attribute.Bool("success", failed == 0),
	)

	m.syncDuration.Record(ctx, duration.Seconds(), attrs)
	m.recordsApplied.Add(ctx, int64(applied), metric.WithAttributes(attribute.String("list", list)))
	m.recordsFailed.Add(ctx, int64(failed), metric.WithAttributes(attribute.String("list", list)))
}

// NotifyMetrics holds the OpenTelemetry instruments for change notification
type NotifyMetrics struct {
	changeSets   metric.Int64Counter
	backpressure metric.Int64Counter
	subscribers  metric.Int64UpDownCounter
}

// NewNotifyMetrics creates a new NotifyMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewNotifyMetrics(provider metric.MeterProvider) (*NotifyMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(NotifyMetricsMeterName)

	changeSets, err := meter.Int64Counter(
		"reel_notify_change_sets_total",
		metric.WithDescription("Change sets published to subscribers"),
		metric.WithUnit("{set}"),
	)
	if err != nil {
		return nil, err
	}

	backpressure, err := meter.Int64Counter(
		"reel_notify_backpressure_total",
		metric.WithDescription("Subscriber queue overflows that forced a resync"),
		metric.WithUnit("{signal}"),
	)
	if err != nil {
		return nil, err
	}

	subscribers, err := meter.Int64UpDownCounter(
		"reel_notify_subscribers",
		metric.WithDescription("Active change set subscribers"),
		metric.WithUnit("{subscriber}"),
	)
	if err != nil {
		return nil, err
	}

	return &NotifyMetrics{
		changeSets:   changeSets,
		backpressure: backpressure,
		subscribers:  subscribers,
	}, nil
}

// RecordPublish counts a published change set and its size
func (m *NotifyMetrics) RecordPublish(ctx context.Context, events int) {
	if m == nil {
		return
	}
	m.changeSets.Add(ctx, 1, metric.WithAttributes(attribute.Bool("empty", events == 0)))
}

// RecordBackpressure counts one overflow signal
func (m *NotifyMetrics) RecordBackpressure(ctx context.Context) {
	if m == nil {
		return
	}
	m.backpressure.Add(ctx, 1)
}

// RecordSubscribers adjusts the active subscriber gauge by delta
func (m *NotifyMetrics) RecordSubscribers(ctx context.Context, delta int) {
	if m == nil {
		return
	}
	m.subscribers.Add(ctx, int64(delta))
}
