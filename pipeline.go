package rowz

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for Pipeline.
const (
	// Metrics.
	PipelineAppliedTotal   = metricz.Key("pipeline.applied.total")
	PipelineSuccessesTotal = metricz.Key("pipeline.successes.total")
	PipelineFailuresTotal  = metricz.Key("pipeline.failures.total")
	PipelinePassesTotal    = metricz.Key("pipeline.passes.total")
	PipelineDurationMs     = metricz.Key("pipeline.duration.ms")

	// Spans.
	PipelineApplySpan = tracez.Key("pipeline.apply")

	// Tags.
	PipelineTagPassCount = tracez.Tag("pipeline.pass_count")
	PipelineTagSuccess   = tracez.Tag("pipeline.success")
	PipelineTagError     = tracez.Tag("pipeline.error")

	// Hook event keys.
	PipelineEventPassComplete = hookz.Key("pipeline.pass_complete")
	PipelineEventComplete     = hookz.Key("pipeline.complete")
)

// PipelineEvent is emitted via hookz as each pass completes and when the
// whole pipeline succeeds.
type PipelineEvent struct {
	Timestamp       time.Time     // When the event occurred
	Error           error         // Error if the pass failed
	Name            Name          // Pipeline name
	Pass            Name          // Pass name
	PassNumber      int           // Position of the pass (1-based)
	TotalPasses     int           // Passes in the pipeline
	CompletedPasses int           // Passes applied (for pipeline.complete)
	Duration        time.Duration // How long the pass took
	TotalDuration   time.Duration // Total time (for pipeline.complete)
	Success         bool          // Whether the pass succeeded
}

// Pipeline applies passes in order, stopping at the first failure. There is
// no retry and no resumption: a failed application leaves the row as the
// last successful operator left it.
//
// Like Pass, a Pipeline is read-only after construction and can be applied
// to different rows concurrently.
type Pipeline struct {
	clock   clockz.Clock
	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[PipelineEvent]
	name    Name
	version string
	passes  []*Pass
}

// NewPipeline creates a pipeline from passes.
func NewPipeline(name Name, passes ...*Pass) *Pipeline {
	metrics := metricz.New()
	metrics.Counter(PipelineAppliedTotal)
	metrics.Counter(PipelineSuccessesTotal)
	metrics.Counter(PipelineFailuresTotal)
	metrics.Gauge(PipelinePassesTotal)
	metrics.Gauge(PipelineDurationMs)

	return &Pipeline{
		name:    name,
		passes:  slices.Clone(passes),
		metrics: metrics,
		tracer:  tracez.New(),
		hooks:   hookz.New[PipelineEvent](),
	}
}

// WithVersion records the configuration version the pipeline was built from.
func (p *Pipeline) WithVersion(version string) *Pipeline {
	p.version = version
	return p
}

// WithClock sets the clock used for durations and event timestamps.
func (p *Pipeline) WithClock(clock clockz.Clock) *Pipeline {
	p.clock = clock
	return p
}

// Name implements Operator.
func (p *Pipeline) Name() Name { return p.name }

// Version returns the configuration version, if any.
func (p *Pipeline) Version() string { return p.version }

// Passes returns a copy of the passes.
func (p *Pipeline) Passes() []*Pass { return slices.Clone(p.passes) }

// Len returns the number of passes.
func (p *Pipeline) Len() int { return len(p.passes) }

// Names returns the pass names in order.
func (p *Pipeline) Names() []Name {
	names := make([]Name, len(p.passes))
	for i, pass := range p.passes {
		names[i] = pass.Name()
	}
	return names
}

// Apply runs every pass on c in order. The returned *Error has the pipeline
// name at the front of its Path.
func (p *Pipeline) Apply(ctx context.Context, c Container) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	clock := p.getClock()

	p.metrics.Counter(PipelineAppliedTotal).Inc()
	p.metrics.Gauge(PipelinePassesTotal).Set(float64(len(p.passes)))
	start := clock.Now()

	ctx, span := p.tracer.StartSpan(ctx, PipelineApplySpan)
	span.SetTag(PipelineTagPassCount, fmt.Sprintf("%d", len(p.passes)))
	defer func() {
		elapsed := clock.Since(start)
		p.metrics.Gauge(PipelineDurationMs).Set(float64(elapsed.Milliseconds()))
		if err == nil {
			span.SetTag(PipelineTagSuccess, "true")
			p.metrics.Counter(PipelineSuccessesTotal).Inc()
			capitan.Emit(ctx, SignalPipelineCompleted,
				FieldName.Field(p.name),
				FieldPasses.Field(len(p.passes)),
				FieldRowLen.Field(c.Len()),
				FieldDuration.Field(elapsed),
			)
		} else {
			span.SetTag(PipelineTagSuccess, "false")
			span.SetTag(PipelineTagError, err.Error())
			p.metrics.Counter(PipelineFailuresTotal).Inc()
		}
		span.Finish()
	}()

	for i, pass := range p.passes {
		passStart := clock.Now()
		err := pass.Apply(ctx, c)
		event := PipelineEvent{
			Name:        p.name,
			Pass:        pass.Name(),
			PassNumber:  i + 1,
			TotalPasses: len(p.passes),
			Success:     err == nil,
			Duration:    clock.Since(passStart),
			Timestamp:   clock.Now(),
		}
		if err != nil {
			rowErr := wrapError(err)
			if len(rowErr.Path) == 0 {
				rowErr = withPath(rowErr, p.name, pass.Name())
			} else {
				rowErr = withPath(rowErr, p.name)
			}
			event.Error = rowErr
			_ = p.hooks.Emit(ctx, PipelineEventPassComplete, event) //nolint:errcheck

			capitan.Emit(ctx, SignalPipelineFailed,
				FieldName.Field(p.name),
				FieldPass.Field(pass.Name()),
				FieldKind.Field(rowErr.Kind.String()),
				FieldError.Field(rowErr.Error()),
			)
			return rowErr
		}
		_ = p.hooks.Emit(ctx, PipelineEventPassComplete, event) //nolint:errcheck
	}

	_ = p.hooks.Emit(ctx, PipelineEventComplete, PipelineEvent{ //nolint:errcheck
		Name:            p.name,
		TotalPasses:     len(p.passes),
		CompletedPasses: len(p.passes),
		TotalDuration:   clock.Since(start),
		Success:         true,
		Timestamp:       clock.Now(),
	})
	return nil
}

// OnPassComplete registers a handler called after each pass.
func (p *Pipeline) OnPassComplete(handler func(context.Context, PipelineEvent) error) error {
	_, err := p.hooks.Hook(PipelineEventPassComplete, handler)
	return err
}

// OnComplete registers a handler called when every pass succeeded.
func (p *Pipeline) OnComplete(handler func(context.Context, PipelineEvent) error) error {
	_, err := p.hooks.Hook(PipelineEventComplete, handler)
	return err
}

// Metrics returns the metrics registry for this pipeline.
func (p *Pipeline) Metrics() *metricz.Registry {
	return p.metrics
}

// Tracer returns the tracer for this pipeline.
func (p *Pipeline) Tracer() *tracez.Tracer {
	return p.tracer
}

// Close releases observability resources of the pipeline and its passes.
func (p *Pipeline) Close() error {
	for _, pass := range p.passes {
		_ = pass.Close() //nolint:errcheck
	}
	if p.tracer != nil {
		p.tracer.Close()
	}
	p.hooks.Close()
	return nil
}

func (p *Pipeline) getClock() clockz.Clock {
	if p.clock == nil {
		return clockz.RealClock
	}
	return p.clock
}
