package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// FetchMetrics holds metric instruments for backend reads.
// Initialize once per client and reuse for its lifetime.
type FetchMetrics struct {
	FetchCounter     metric.Int64Counter     // Reads by resource and served source
	FetchDuration    metric.Float64Histogram // Network call latency
	CoalescedCounter metric.Int64Counter     // Callers that joined an in-flight call
	NetworkErrors    metric.Int64Counter     // Failed network calls
}

// NewFetchMetrics creates the fetch instruments on the global meter provider.
// The global provider is a no-op until the embedder installs one.
func NewFetchMetrics() (*FetchMetrics, error) {
	meter := otel.Meter("mallpass/fetch")

	fetchCounter, err := meter.Int64Counter(
		"mallpass.fetch.count",
		metric.WithDescription("Total number of resource reads"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return nil, err
	}

	// Buckets: 10ms .. 15s, the member backend timeout.
	fetchDuration, err := meter.Float64Histogram(
		"mallpass.fetch.duration",
		metric.WithDescription("Backend call duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 15000),
	)
	if err != nil {
		return nil, err
	}

	coalesced, err := meter.Int64Counter(
		"mallpass.fetch.coalesced.count",
		metric.WithDescription("Reads served by joining an in-flight call for the same key"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return nil, err
	}

	networkErrors, err := meter.Int64Counter(
		"mallpass.fetch.error.count",
		metric.WithDescription("Backend calls that failed and were replaced by a fallback"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &FetchMetrics{
		FetchCounter:     fetchCounter,
		FetchDuration:    fetchDuration,
		CoalescedCounter: coalesced,
		NetworkErrors:    networkErrors,
	}, nil
}

// RecordRead counts a read served to a caller.
func (m *FetchMetrics) RecordRead(ctx context.Context, resource, backend, source string) {
	if m == nil {
		return
	}
	m.FetchCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mallpass.resource", resource),
		attribute.String("mallpass.backend", backend),
		attribute.String("mallpass.source", source),
	))
}

// RecordCall records one network call and whether it failed.
func (m *FetchMetrics) RecordCall(ctx context.Context, resource, backend string, durationMs float64, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("mallpass.resource", resource),
		attribute.String("mallpass.backend", backend),
	)
	m.FetchDuration.Record(ctx, durationMs, attrs)
	if err != nil {
		m.NetworkErrors.Add(ctx, 1, attrs)
	}
}

// RecordCoalesced counts a caller that shared another caller's network call.
func (m *FetchMetrics) RecordCoalesced(ctx context.Context, resource string) {
	if m == nil {
		return
	}
	m.CoalescedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("mallpass.resource", resource)))
}

// SessionMetrics holds metric instruments for identity transitions.
type SessionMetrics struct {
	Transitions   metric.Int64Counter // Principal changes by from/to/reason
	LoginFailures metric.Int64Counter // Rejected or failed logins by class
}

// NewSessionMetrics creates the session instruments on the global meter provider.
func NewSessionMetrics() (*SessionMetrics, error) {
	meter := otel.Meter("mallpass/session")

	transitions, err := meter.Int64Counter(
		"mallpass.session.transition.count",
		metric.WithDescription("Principal transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	loginFailures, err := meter.Int64Counter(
		"mallpass.session.login_failure.count",
		metric.WithDescription("Failed login attempts"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	return &SessionMetrics{Transitions: transitions, LoginFailures: loginFailures}, nil
}

// RecordTransition counts a principal change.
func (m *SessionMetrics) RecordTransition(ctx context.Context, from, to, reason string) {
	if m == nil {
		return
	}
	m.Transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mallpass.from", from),
		attribute.String("mallpass.to", to),
		attribute.String("mallpass.reason", reason),
	))
}

// RecordLoginFailure counts a failed login by error class.
func (m *SessionMetrics) RecordLoginFailure(ctx context.Context, class string) {
	if m == nil {
		return
	}
	m.LoginFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("mallpass.class", class)))
}
