package rowz

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/rowz/value"
)

// DefaultPipelineName is used by Build unless WithName is given.
const DefaultPipelineName = "rowz"

// BuildOption configures Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	parser ValueParser
	clock  clockz.Clock
	name   Name
}

// WithParser sets the parser used to coerce split tokens and appended values.
func WithParser(parser ValueParser) BuildOption {
	return func(o *buildOptions) { o.parser = parser }
}

// WithBuildClock sets the clock for passes, the pipeline and runtime values.
func WithBuildClock(clock clockz.Clock) BuildOption {
	return func(o *buildOptions) { o.clock = clock }
}

// WithName sets the pipeline name.
func WithName(name Name) BuildOption {
	return func(o *buildOptions) { o.name = name }
}

// Build validates cfg and constructs the pipeline it describes. Regular
// expressions are compiled here, once.
//
// Passes are named "pass[i]" and carry the configured comment. Absent-value
// splitting defaults to enabled; an N-way split produces one absent value
// per target for an absent source.
func Build(cfg Config, opts ...BuildOption) (*Pipeline, error) {
	o := buildOptions{name: DefaultPipelineName}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		buildFailed(o.name, err)
		return nil, err
	}

	b := builder{coercer: NewCoercer(o.parser), clock: o.clock}
	passes := make([]*Pass, 0, len(cfg.Passes))
	for i, pc := range cfg.Passes {
		pass, err := b.pass(i, pc)
		if err != nil {
			buildFailed(o.name, err)
			return nil, err
		}
		passes = append(passes, pass)
	}

	pipeline := NewPipeline(o.name, passes...).WithVersion(cfg.Version)
	if o.clock != nil {
		pipeline.WithClock(o.clock)
	}
	return pipeline, nil
}

type builder struct {
	clock   clockz.Clock
	coercer Coercer
}

func (b builder) pass(i int, pc PassConfig) (*Pass, error) {
	var ops []Operator
	for j, oc := range pc.Transformers {
		built, err := b.operators(oc)
		if err != nil {
			return nil, fmt.Errorf("passes[%d].transformers[%d]: %w", i, j, err)
		}
		ops = append(ops, built...)
	}

	pass := NewPass(fmt.Sprintf("pass[%d]", i), ops...).WithComment(pc.Comment)
	if pc.OrderItems != nil {
		order := make([]Operator, len(pc.OrderItems))
		for k, item := range pc.OrderItems {
			order[k] = ReindexItem{From: item.From, To: item.To}
		}
		pass.WithOrder(order...)
	}
	if b.clock != nil {
		pass.WithClock(b.clock)
	}
	return pass, nil
}

func (b builder) operators(oc OperatorConfig) ([]Operator, error) {
	switch oc.Type {
	case TypeDeleteItems:
		ops := make([]Operator, len(oc.Delete))
		for i, idx := range oc.Delete {
			ops[i] = DeleteItem{Idx: idx}
		}
		return ops, nil
	case TypeSplitItem:
		return b.splitItem(*oc.Split)
	case TypeSplitItemN:
		return b.splitItemN(*oc.SplitN)
	case TypeAddItem:
		return b.addItem(*oc.Add)
	}
	return nil, fmt.Errorf("unknown operator type %q", oc.Type)
}

func (b builder) splitItem(cfg SplitItemConfig) ([]Operator, error) {
	var strategy PairStrategy
	switch cfg.Spec.Name {
	case SplitterSeparatorChar:
		strategy = SeparatorCharPair{Sep: firstRune(cfg.Spec.Char), SplitNone: cfg.Spec.splitNone()}
	case SplitterPattern:
		re, err := NewRegexPair(cfg.Spec.Pattern, cfg.Spec.splitNone())
		if err != nil {
			return nil, err
		}
		strategy = re
	}
	return []Operator{SplitItem{
		Idx:          cfg.Idx,
		Strategy:     strategy,
		Coercer:      b.coercer,
		Left:         target(cfg.TargetLeft),
		Right:        target(cfg.TargetRight),
		DeleteSource: cfg.DeleteAfterSplit,
	}}, nil
}

func (b builder) splitItemN(cfg SplitItemNConfig) ([]Operator, error) {
	targets := make([]Target, len(cfg.Targets))
	for i, tc := range cfg.Targets {
		targets[i] = target(tc)
	}
	return []Operator{SplitItemN{
		Idx: cfg.Idx,
		Strategy: SeparatorCharN{
			Sep:        firstRune(cfg.Spec.Char),
			SplitNone:  cfg.Spec.splitNone(),
			NoneClones: len(targets),
		},
		Coercer:      b.coercer,
		Targets:      targets,
		DeleteSource: cfg.DeleteAfterSplit,
	}}, nil
}

func (b builder) addItem(cfg AddItemConfig) ([]Operator, error) {
	var source ValueSource
	switch cfg.Spec.Name {
	case AddStatic:
		source = StaticValue{Text: cfg.Spec.Value}
	case AddMeta:
		source = MetaValue{Key: cfg.Spec.Key}
	case AddRuntime:
		source = CurrentDateTimeUTC{Clock: b.clock}
	}
	return []Operator{AppendItem{
		Source:  source,
		Coercer: b.coercer,
		Target:  target(cfg.Target),
	}}, nil
}

// target converts a validated TargetConfig.
func target(tc TargetConfig) Target {
	kind, _ := value.ParseKind(tc.TargetType) //nolint:errcheck // validated by Config.Validate
	name := ""
	if tc.Header != nil {
		name = *tc.Header
	}
	return NewTarget(tc.Idx, name, kind)
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func buildFailed(name Name, err error) {
	capitan.Emit(context.Background(), SignalConfigBuildFailed,
		FieldName.Field(name),
		FieldError.Field(err.Error()),
	)
}
