// Package telemetry exposes OpenTelemetry instruments for sweep cycles.
// Instruments are created from the global meter provider; without a
// configured SDK they are no-ops.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/alexanderramin/slaguard"

// SweepSample is the subset of a sweep report that is exported.
type SweepSample struct {
	ItemsScanned       int
	ViolationsDetected int
	Resolved           int
	ActionsDispatched  int
	ActionsFailed      int
	Duration           time.Duration
	Failed             bool
}

type SweepMetrics struct {
	sweeps     metric.Int64Counter
	violations metric.Int64Counter
	resolved   metric.Int64Counter
	actions    metric.Int64Counter
	dropped    metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewSweepMetrics registers the sweep instruments on meter. A nil meter uses
// the global provider.
func NewSweepMetrics(meter metric.Meter) (*SweepMetrics, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	m := &SweepMetrics{}
	var err error

	m.sweeps, err = meter.Int64Counter("slaguard.sweeps.total",
		metric.WithDescription("Sweep cycles run"),
		metric.WithUnit("{sweep}"),
	)
	if err != nil {
		return nil, err
	}
	m.violations, err = meter.Int64Counter("slaguard.violations.detected",
		metric.WithDescription("Violations newly recorded by sweeps"),
		metric.WithUnit("{violation}"),
	)
	if err != nil {
		return nil, err
	}
	m.resolved, err = meter.Int64Counter("slaguard.violations.resolved",
		metric.WithDescription("Violations resolved during reconciliation"),
		metric.WithUnit("{violation}"),
	)
	if err != nil {
		return nil, err
	}
	m.actions, err = meter.Int64Counter("slaguard.actions.dispatched",
		metric.WithDescription("Rule actions dispatched"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, err
	}
	m.dropped, err = meter.Int64Counter("slaguard.sweeps.dropped",
		metric.WithDescription("Scheduled ticks dropped because a sweep was running"),
		metric.WithUnit("{tick}"),
	)
	if err != nil {
		return nil, err
	}
	m.duration, err = meter.Float64Histogram("slaguard.sweep.duration",
		metric.WithDescription("Sweep cycle duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordSweep exports one finished cycle. Safe on a nil receiver.
func (m *SweepMetrics) RecordSweep(ctx context.Context, s SweepSample) {
	if m == nil {
		return
	}
	outcome := attribute.String("outcome", "ok")
	if s.Failed {
		outcome = attribute.String("outcome", "failed")
	}
	m.sweeps.Add(ctx, 1, metric.WithAttributes(outcome))
	m.violations.Add(ctx, int64(s.ViolationsDetected))
	m.resolved.Add(ctx, int64(s.Resolved))
	m.actions.Add(ctx, int64(s.ActionsDispatched-s.ActionsFailed), metric.WithAttributes(attribute.Bool("success", true)))
	m.actions.Add(ctx, int64(s.ActionsFailed), metric.WithAttributes(attribute.Bool("success", false)))
	m.duration.Record(ctx, s.Duration.Seconds(), metric.WithAttributes(outcome))
}

func (m *SweepMetrics) RecordDropped(ctx context.Context) {
	if m == nil {
		return
	}
	m.dropped.Add(ctx, 1)
}
