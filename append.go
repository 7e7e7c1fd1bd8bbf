package rowz

import (
	"context"
	"fmt"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/rowz/value"
)

// Target describes an entry to be created: its idx, name and declared kind.
type Target struct {
	Name string
	Idx  uint
	Kind value.Kind
}

// NewTarget creates a Target. An empty name defaults to "col_<idx>".
func NewTarget(idx uint, name string, kind value.Kind) Target {
	return Target{Idx: idx, Name: name, Kind: kind}
}

// TypeInfo returns the descriptor of the target kind.
func (t Target) TypeInfo() value.Value {
	return value.Zero(t.Kind)
}

// Entry builds a fresh entry for the target holding data.
func (t Target) Entry(data *value.Value) Entry {
	name := t.Name
	if name == "" {
		name = DefaultName(t.Idx)
	}
	return NewEntry(t.Idx, name, t.TypeInfo(), data)
}

// DefaultName is the entry name used when a target has none.
func DefaultName(idx uint) string {
	return fmt.Sprintf("col_%d", idx)
}

// ValueSource produces the raw payload for AppendItem on each invocation.
type ValueSource interface {
	Resolve(ctx context.Context) (*value.Value, error)
}

// StaticValue yields the same text on every invocation.
type StaticValue struct {
	Text string
}

// Resolve implements ValueSource.
func (s StaticValue) Resolve(context.Context) (*value.Value, error) {
	return value.FromString(s.Text).Ptr(), nil
}

// MetaValue yields the metadata entry Key attached to the context with
// WithMeta. A missing key is a KindGeneric error.
type MetaValue struct {
	Key string
}

// Resolve implements ValueSource.
func (s MetaValue) Resolve(ctx context.Context) (*value.Value, error) {
	text, ok := MetaFrom(ctx)[s.Key]
	if !ok {
		return nil, genericError(fmt.Sprintf("metadata key %q not found", s.Key))
	}
	return value.FromString(text).Ptr(), nil
}

// CurrentDateTimeUTC yields the current time in UTC as a DateTime value.
type CurrentDateTimeUTC struct {
	Clock clockz.Clock
}

// Resolve implements ValueSource.
func (s CurrentDateTimeUTC) Resolve(context.Context) (*value.Value, error) {
	clock := s.Clock
	if clock == nil {
		clock = clockz.RealClock
	}
	return value.FromDateTime(clock.Now().UTC()).Ptr(), nil
}

// Meta is per-row metadata available to MetaValue sources.
type Meta map[string]string

type metaKey struct{}

// WithMeta returns a context carrying meta.
func WithMeta(ctx context.Context, meta Meta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}

// MetaFrom returns the metadata attached to ctx, or nil.
func MetaFrom(ctx context.Context) Meta {
	if ctx == nil {
		return nil
	}
	meta, _ := ctx.Value(metaKey{}).(Meta)
	return meta
}

// AppendItem adds a new entry built from Target, with a payload from Source
// coerced into the target kind. A fresh entry is built on every invocation,
// so the operator can be reused across rows. No idx uniqueness check is
// performed.
type AppendItem struct {
	Source  ValueSource
	Coercer Coercer
	Target  Target
}

// Name implements Operator.
func (o AppendItem) Name() Name {
	return fmt.Sprintf("append_item(%d)", o.Target.Idx)
}

// Apply implements Operator.
func (o AppendItem) Apply(ctx context.Context, c Container) error {
	var data *value.Value
	if o.Source != nil {
		raw, err := o.Source.Resolve(ctx)
		if err != nil {
			return wrapError(err)
		}
		if data, err = o.Coercer.CoerceOptional(raw, o.Target.TypeInfo()); err != nil {
			return err
		}
	}
	c.Add(o.Target.Entry(data))
	return nil
}

// AppendEntry adds a copy of Entry on every invocation.
type AppendEntry struct {
	Entry Entry
}

// Name implements Operator.
func (o AppendEntry) Name() Name {
	return fmt.Sprintf("append_entry(%d)", o.Entry.idx)
}

// Apply implements Operator.
func (o AppendEntry) Apply(_ context.Context, c Container) error {
	c.Add(o.Entry.Clone())
	return nil
}
