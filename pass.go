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

// Observability constants for Pass.
const (
	// Metrics.
	PassAppliedTotal       = metricz.Key("pass.applied.total")
	PassSuccessesTotal     = metricz.Key("pass.successes.total")
	PassFailuresTotal      = metricz.Key("pass.failures.total")
	PassOperatorsCompleted = metricz.Key("pass.operators.completed")
	PassOperatorsTotal     = metricz.Key("pass.operators.total")
	PassDurationMs         = metricz.Key("pass.duration.ms")

	// Spans.
	PassApplySpan    = tracez.Key("pass.apply")
	PassOperatorSpan = tracez.Key("pass.operator")

	// Tags.
	PassTagOperatorCount  = tracez.Tag("pass.operator_count")
	PassTagOperatorNumber = tracez.Tag("pass.operator_number")
	PassTagOperatorName   = tracez.Tag("pass.operator_name")
	PassTagPhase          = tracez.Tag("pass.phase")
	PassTagSuccess        = tracez.Tag("pass.success")
	PassTagError          = tracez.Tag("pass.error")

	// Hook event keys.
	PassEventOperatorComplete = hookz.Key("pass.operator_complete")
	PassEventComplete         = hookz.Key("pass.complete")
)

// Phase identifies which operator list of a pass is running.
type Phase string

// Pass phases.
const (
	PhaseTransform Phase = "transform"
	PhaseOrder     Phase = "order"
)

// PassEvent is emitted via hookz as each operator completes and when the
// whole pass succeeds.
type PassEvent struct {
	Timestamp          time.Time     // When the event occurred
	Error              error         // Error if the operator failed
	Name               Name          // Pass name
	Operator           Name          // Operator name
	Phase              Phase         // Transform or order
	OperatorNumber     int           // Position within the phase (1-based)
	TotalOperators     int           // Operators in the phase
	CompletedOperators int           // Operators applied (for pass.complete)
	Duration           time.Duration // How long the operator took
	TotalDuration      time.Duration // Total time for the pass (for pass.complete)
	Success            bool          // Whether the operator succeeded
}

// Pass is an ordered list of transform operators followed by an optional
// ordered list of reorder operators.
//
// Apply runs every transform operator in order and stops at the first
// failure. Operators that already ran are not undone. If all transforms
// succeeded and an order list is present, the order operators run with the
// same rule. The returned *Error has the pass name and the failing operator
// name at the front of its Path.
//
// A Pass is itself an Operator, so passes can be nested. Configure it with
// the With methods before first use; afterwards it is read-only and can be
// applied to different rows from several goroutines.
//
// # Observability
//
// Metrics:
//   - pass.applied.total: Counter of pass applications
//   - pass.successes.total: Counter of successful applications
//   - pass.failures.total: Counter of failed applications
//   - pass.operators.completed: Gauge of operators applied in the last run
//   - pass.operators.total: Gauge of configured operators
//   - pass.duration.ms: Gauge of the last run's duration
//
// Traces:
//   - pass.apply: Parent span for the pass
//   - pass.operator: Child span for each operator
//
// Events (via hooks):
//   - pass.operator_complete: Fired as each operator completes
//   - pass.complete: Fired when the pass succeeds
//
// Example:
//
//	pass := rowz.NewPass("split-amount",
//	    split,
//	    rowz.DeleteItem{Idx: 9},
//	).WithOrder(
//	    rowz.ReindexItem{From: 1, To: 0},
//	)
//	pass.OnOperatorComplete(func(ctx context.Context, e rowz.PassEvent) error {
//	    if !e.Success {
//	        log.Printf("%s/%s failed: %v", e.Name, e.Operator, e.Error)
//	    }
//	    return nil
//	})
type Pass struct {
	clock        clockz.Clock
	metrics      *metricz.Registry
	tracer       *tracez.Tracer
	hooks        *hookz.Hooks[PassEvent]
	name         Name
	comment      string
	transformers []Operator
	order        []Operator
	hasOrder     bool
}

// NewPass creates a pass with the given transform operators.
func NewPass(name Name, transformers ...Operator) *Pass {
	metrics := metricz.New()
	metrics.Counter(PassAppliedTotal)
	metrics.Counter(PassSuccessesTotal)
	metrics.Counter(PassFailuresTotal)
	metrics.Gauge(PassOperatorsCompleted)
	metrics.Gauge(PassOperatorsTotal)
	metrics.Gauge(PassDurationMs)

	return &Pass{
		name:         name,
		transformers: slices.Clone(transformers),
		metrics:      metrics,
		tracer:       tracez.New(),
		hooks:        hookz.New[PassEvent](),
	}
}

// WithOrder sets the reorder operators run after all transforms succeed.
// Calling it with no operators still marks the order list as present.
func (p *Pass) WithOrder(order ...Operator) *Pass {
	p.order = slices.Clone(order)
	p.hasOrder = true
	return p
}

// WithComment attaches a free-form description.
func (p *Pass) WithComment(comment string) *Pass {
	p.comment = comment
	return p
}

// WithClock sets the clock used for durations and event timestamps.
func (p *Pass) WithClock(clock clockz.Clock) *Pass {
	p.clock = clock
	return p
}

// Name implements Operator.
func (p *Pass) Name() Name {
	return p.name
}

// Comment returns the description set with WithComment.
func (p *Pass) Comment() string {
	return p.comment
}

// Transformers returns a copy of the transform operators.
func (p *Pass) Transformers() []Operator {
	return slices.Clone(p.transformers)
}

// Order returns a copy of the reorder operators and whether an order list
// is present.
func (p *Pass) Order() ([]Operator, bool) {
	return slices.Clone(p.order), p.hasOrder
}

// Len returns the number of operators across both phases.
func (p *Pass) Len() int {
	return len(p.transformers) + len(p.order)
}

// Apply implements Operator.
func (p *Pass) Apply(ctx context.Context, c Container) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	clock := p.getClock()

	p.metrics.Counter(PassAppliedTotal).Inc()
	p.metrics.Gauge(PassOperatorsTotal).Set(float64(p.Len()))
	p.metrics.Gauge(PassOperatorsCompleted).Set(0)
	start := clock.Now()

	ctx, span := p.tracer.StartSpan(ctx, PassApplySpan)
	span.SetTag(PassTagOperatorCount, fmt.Sprintf("%d", p.Len()))
	defer func() {
		p.metrics.Gauge(PassDurationMs).Set(float64(clock.Since(start).Milliseconds()))
		if err == nil {
			span.SetTag(PassTagSuccess, "true")
			p.metrics.Counter(PassSuccessesTotal).Inc()
		} else {
			span.SetTag(PassTagSuccess, "false")
			span.SetTag(PassTagError, err.Error())
			p.metrics.Counter(PassFailuresTotal).Inc()
		}
		span.Finish()
	}()

	completed := 0
	if err := p.run(ctx, c, PhaseTransform, p.transformers, &completed); err != nil {
		return err
	}
	if p.hasOrder {
		if err := p.run(ctx, c, PhaseOrder, p.order, &completed); err != nil {
			return err
		}
	}

	_ = p.hooks.Emit(ctx, PassEventComplete, PassEvent{ //nolint:errcheck
		Name:               p.name,
		CompletedOperators: completed,
		TotalDuration:      clock.Since(start),
		Success:            true,
		Timestamp:          clock.Now(),
	})
	return nil
}

func (p *Pass) run(ctx context.Context, c Container, phase Phase, ops []Operator, completed *int) error {
	clock := p.getClock()
	for i, op := range ops {
		opCtx, opSpan := p.tracer.StartSpan(ctx, PassOperatorSpan)
		opSpan.SetTag(PassTagPhase, string(phase))
		opSpan.SetTag(PassTagOperatorNumber, fmt.Sprintf("%d", i+1))
		opSpan.SetTag(PassTagOperatorName, op.Name())

		opStart := clock.Now()
		err := op.Apply(opCtx, c)
		duration := clock.Since(opStart)
		opSpan.Finish()

		event := PassEvent{
			Name:           p.name,
			Operator:       op.Name(),
			Phase:          phase,
			OperatorNumber: i + 1,
			TotalOperators: len(ops),
			Success:        err == nil,
			Error:          err,
			Duration:       duration,
			Timestamp:      clock.Now(),
		}
		if err == nil {
			*completed++
			p.metrics.Gauge(PassOperatorsCompleted).Set(float64(*completed))
			_ = p.hooks.Emit(ctx, PassEventOperatorComplete, event) //nolint:errcheck
			continue
		}

		rowErr := wrapError(err)
		if len(rowErr.Path) == 0 {
			rowErr = withPath(rowErr, p.name, op.Name())
		} else {
			rowErr = withPath(rowErr, p.name)
		}
		event.Error = rowErr
		_ = p.hooks.Emit(ctx, PassEventOperatorComplete, event) //nolint:errcheck

		capitan.Emit(ctx, SignalPassFailed,
			FieldName.Field(p.name),
			FieldOperator.Field(op.Name()),
			FieldKind.Field(rowErr.Kind.String()),
			FieldError.Field(rowErr.Error()),
		)
		return rowErr
	}
	return nil
}

// OnOperatorComplete registers a handler called after each operator.
func (p *Pass) OnOperatorComplete(handler func(context.Context, PassEvent) error) error {
	_, err := p.hooks.Hook(PassEventOperatorComplete, handler)
	return err
}

// OnComplete registers a handler called when the whole pass succeeds.
func (p *Pass) OnComplete(handler func(context.Context, PassEvent) error) error {
	_, err := p.hooks.Hook(PassEventComplete, handler)
	return err
}

// Metrics returns the metrics registry for this pass.
func (p *Pass) Metrics() *metricz.Registry {
	return p.metrics
}

// Tracer returns the tracer for this pass.
func (p *Pass) Tracer() *tracez.Tracer {
	return p.tracer
}

// Close releases observability resources.
func (p *Pass) Close() error {
	if p.tracer != nil {
		p.tracer.Close()
	}
	p.hooks.Close()
	return nil
}

func (p *Pass) getClock() clockz.Clock {
	if p.clock == nil {
		return clockz.RealClock
	}
	return p.clock
}
