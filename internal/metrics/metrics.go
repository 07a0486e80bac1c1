// Package metrics tracks banter pipeline health: generation successes
// per trigger type, validation and endpoint failures, dropped triggers,
// and generation latency. Counts are kept in-process for log summaries
// and mirrored to OpenTelemetry instruments for scraping.
package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jwebster45206/banter-engine/pkg/trigger"
)

// meterName is the instrumentation scope name for all banter metrics.
const meterName = "github.com/jwebster45206/banter-engine"

// latencyWindow caps the number of recent generation latencies kept
// for the in-process summary.
const latencyWindow = 100

// latencyBuckets defines histogram bucket boundaries in seconds,
// sized for LLM generation round trips.
var latencyBuckets = []float64{
	0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30,
}

// Snapshot is a point-in-time copy of the in-process counters.
type Snapshot struct {
	Successes          map[trigger.Type]int64
	ValidationFailures int64
	APIFailures        int64
	Dropped            int64
	AvgLatency         time.Duration
	LatencySamples     int
}

// Recorder accumulates banter pipeline counters. Safe for concurrent
// use.
type Recorder struct {
	mu                 sync.Mutex
	successes          map[trigger.Type]int64
	validationFailures int64
	apiFailures        int64
	dropped            int64
	latencies          []time.Duration

	successCounter    metric.Int64Counter
	validationCounter metric.Int64Counter
	apiFailureCounter metric.Int64Counter
	droppedCounter    metric.Int64Counter
	latencyHistogram  metric.Float64Histogram
}

// NewRecorder creates a Recorder with instruments registered on the
// given provider. Tests pass a manual-reader provider to inspect the
// exported values.
func NewRecorder(mp metric.MeterProvider) (*Recorder, error) {
	m := mp.Meter(meterName)
	r := &Recorder{
		successes: make(map[trigger.Type]int64),
	}

	var err error
	if r.successCounter, err = m.Int64Counter("banter.generation.successes",
		metric.WithDescription("Successful banter generations by trigger type."),
	); err != nil {
		return nil, err
	}
	if r.validationCounter, err = m.Int64Counter("banter.generation.validation_failures",
		metric.WithDescription("Banter generations discarded after exhausting validation retries."),
	); err != nil {
		return nil, err
	}
	if r.apiFailureCounter, err = m.Int64Counter("banter.generation.api_failures",
		metric.WithDescription("Banter generations abandoned due to endpoint errors."),
	); err != nil {
		return nil, err
	}
	if r.droppedCounter, err = m.Int64Counter("banter.triggers.dropped",
		metric.WithDescription("Triggers dropped because a generation was already in flight."),
	); err != nil {
		return nil, err
	}
	if r.latencyHistogram, err = m.Float64Histogram("banter.generation.duration",
		metric.WithDescription("End-to-end banter generation latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return r, nil
}

// RecordSuccess counts a completed generation and its latency.
func (r *Recorder) RecordSuccess(ctx context.Context, triggerType trigger.Type, latency time.Duration) {
	r.mu.Lock()
	r.successes[triggerType]++
	r.latencies = append(r.latencies, latency)
	if len(r.latencies) > latencyWindow {
		r.latencies = r.latencies[len(r.latencies)-latencyWindow:]
	}
	r.mu.Unlock()

	attrs := metric.WithAttributes(attribute.String("trigger_type", string(triggerType)))
	r.successCounter.Add(ctx, 1, attrs)
	r.latencyHistogram.Record(ctx, latency.Seconds(), attrs)
}

// RecordValidationFailure counts a generation discarded after the
// retry budget was spent on invalid responses.
func (r *Recorder) RecordValidationFailure(ctx context.Context, triggerType trigger.Type) {
	r.mu.Lock()
	r.validationFailures++
	r.mu.Unlock()

	r.validationCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("trigger_type", string(triggerType))))
}

// RecordAPIFailure counts a generation abandoned on endpoint errors.
func (r *Recorder) RecordAPIFailure(ctx context.Context, triggerType trigger.Type) {
	r.mu.Lock()
	r.apiFailures++
	r.mu.Unlock()

	r.apiFailureCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("trigger_type", string(triggerType))))
}

// RecordDropped counts a trigger discarded while another generation
// was in flight.
func (r *Recorder) RecordDropped(ctx context.Context, triggerType trigger.Type) {
	r.mu.Lock()
	r.dropped++
	r.mu.Unlock()

	r.droppedCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("trigger_type", string(triggerType))))
}

// Snapshot returns a copy of the current counters.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	successes := make(map[trigger.Type]int64, len(r.successes))
	for t, n := range r.successes {
		successes[t] = n
	}

	var avg time.Duration
	if len(r.latencies) > 0 {
		var total time.Duration
		for _, l := range r.latencies {
			total += l
		}
		avg = total / time.Duration(len(r.latencies))
	}

	return Snapshot{
		Successes:          successes,
		ValidationFailures: r.validationFailures,
		APIFailures:        r.apiFailures,
		Dropped:            r.dropped,
		AvgLatency:         avg,
		LatencySamples:     len(r.latencies),
	}
}

// LogSummary writes the current counters to the logger at info level.
func (r *Recorder) LogSummary(log *slog.Logger) {
	s := r.Snapshot()

	var totalSuccesses int64
	for _, n := range s.Successes {
		totalSuccesses += n
	}

	log.Info("banter metrics summary",
		"successes", totalSuccesses,
		"by_trigger", s.Successes,
		"validation_failures", s.ValidationFailures,
		"api_failures", s.APIFailures,
		"dropped", s.Dropped,
		"avg_latency", s.AvgLatency.String(),
		"latency_samples", s.LatencySamples,
	)
}
