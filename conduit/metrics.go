package conduit

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// metrics holds the metric instruments for the orchestration pipeline.
type metrics struct {
	// sendDuration measures the duration of a logical send in seconds,
	// including all restart cycles and nested refresh calls.
	sendDuration metric.Float64Histogram

	// transportCalls counts individual transport round trips.
	transportCalls metric.Int64Counter

	// restarts counts RestartWith verdicts (retry and refresh cycles).
	restarts metric.Int64Counter

	// tokenRefreshes counts successful nested token-refresh calls.
	tokenRefreshes metric.Int64Counter

	// decisionsApplied counts decisions whose predicate matched.
	decisionsApplied metric.Int64Counter

	// sendErrors counts terminal send errors by error type.
	sendErrors metric.Int64Counter
}

// newMetrics creates and registers metric instruments.
func newMetrics(meter metric.Meter) (*metrics, error) {
	m := &metrics{}
	var err error

	m.sendDuration, err = meter.Float64Histogram(
		"conduit.send.duration",
		metric.WithDescription("Duration of logical sends in seconds, restarts included"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.25, 0.5, 0.75, 1, 2.5, 5, 7.5, 10,
		),
	)
	if err != nil {
		return nil, err
	}

	m.transportCalls, err = meter.Int64Counter(
		"conduit.transport.calls",
		metric.WithDescription("Number of transport round trips"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	m.restarts, err = meter.Int64Counter(
		"conduit.restarts",
		metric.WithDescription("Number of send cycles restarted by a decision"),
		metric.WithUnit("{restart}"),
	)
	if err != nil {
		return nil, err
	}

	m.tokenRefreshes, err = meter.Int64Counter(
		"conduit.token.refreshes",
		metric.WithDescription("Number of successful nested token refresh calls"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	m.decisionsApplied, err = meter.Int64Counter(
		"conduit.decisions.applied",
		metric.WithDescription("Number of decisions whose predicate matched"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}

	m.sendErrors, err = meter.Int64Counter(
		"conduit.send.errors",
		metric.WithDescription("Number of sends that terminated with an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// recordSendDuration records the duration of a logical send.
func (m *metrics) recordSendDuration(
	ctx context.Context,
	duration time.Duration,
	attrs []attribute.KeyValue,
) {
	if m == nil || m.sendDuration == nil {
		return
	}
	m.sendDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// recordTransportCall records one transport round trip.
func (m *metrics) recordTransportCall(ctx context.Context, attrs []attribute.KeyValue) {
	if m == nil || m.transportCalls == nil {
		return
	}
	m.transportCalls.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// recordRestart records a restarted send cycle.
func (m *metrics) recordRestart(ctx context.Context, attrs []attribute.KeyValue) {
	if m == nil || m.restarts == nil {
		return
	}
	m.restarts.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// recordTokenRefresh records a successful nested token refresh.
func (m *metrics) recordTokenRefresh(ctx context.Context, attrs []attribute.KeyValue) {
	if m == nil || m.tokenRefreshes == nil {
		return
	}
	m.tokenRefreshes.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// recordDecisionApplied records a decision whose predicate matched.
func (m *metrics) recordDecisionApplied(ctx context.Context, attrs []attribute.KeyValue) {
	if m == nil || m.decisionsApplied == nil {
		return
	}
	m.decisionsApplied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// recordSendError records a terminal send error.
func (m *metrics) recordSendError(ctx context.Context, errType string, attrs []attribute.KeyValue) {
	if m == nil || m.sendErrors == nil {
		return
	}
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attrs...)
	allAttrs = append(allAttrs, attribute.String("error.type", errType))
	m.sendErrors.Add(ctx, 1, metric.WithAttributes(allAttrs...))
}
