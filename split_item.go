package rowz

import (
	"context"
	"errors"
	"fmt"

	"github.com/zoobzio/rowz/value"
)

// SplitItem splits the entry at Idx into two new entries described by Left
// and Right.
//
// The destinations are added only when the split and both coercions
// succeed; on failure the row is left exactly as it was. When DeleteSource
// is set the source entry is removed as the final step.
//
//	op := rowz.SplitItem{
//	    Idx:          0,
//	    Strategy:     rowz.SeparatorCharPair{Sep: ' ', SplitNone: true},
//	    Left:         rowz.NewTarget(1, "amount", value.Float32),
//	    Right:        rowz.NewTarget(2, "currency", value.String),
//	    DeleteSource: true,
//	}
type SplitItem struct {
	Strategy     PairStrategy
	Coercer      Coercer
	Left         Target
	Right        Target
	Idx          uint
	DeleteSource bool
}

// Name implements Operator.
func (o SplitItem) Name() Name {
	return fmt.Sprintf("split_item(%d)", o.Idx)
}

// Apply implements Operator.
func (o SplitItem) Apply(_ context.Context, c Container) error {
	src, ok := c.Get(o.Idx)
	if !ok {
		return containerError("no source entry to split", o.Idx, nil)
	}
	if o.Strategy == nil {
		return genericError("split item has no strategy")
	}
	left, right, err := o.Strategy.SplitPair(src.Data())
	if err != nil {
		return withIdx(err, o.Idx)
	}
	entries, err := coerceTargets(o.Coercer, []*value.Value{left, right}, []Target{o.Left, o.Right})
	if err != nil {
		return withIdx(err, o.Idx)
	}
	return commit(c, o.Idx, entries, o.DeleteSource)
}

// SplitItemN splits the entry at Idx into one new entry per target. The
// strategy must produce exactly len(Targets) tokens. Atomicity and
// DeleteSource behave as in SplitItem.
type SplitItemN struct {
	Strategy     Strategy
	Coercer      Coercer
	Targets      []Target
	Idx          uint
	DeleteSource bool
}

// Name implements Operator.
func (o SplitItemN) Name() Name {
	return fmt.Sprintf("split_item_n(%d)", o.Idx)
}

// Apply implements Operator.
func (o SplitItemN) Apply(_ context.Context, c Container) error {
	src, ok := c.Get(o.Idx)
	if !ok {
		return containerError("no source entry to split", o.Idx, nil)
	}
	if o.Strategy == nil {
		return genericError("split item has no strategy")
	}
	tokens, err := o.Strategy.Split(src.Data())
	if err != nil {
		return withIdx(err, o.Idx)
	}
	if len(tokens) != len(o.Targets) {
		e := splitError(fmt.Sprintf("split produced %d token(s), but %d target(s) are configured", len(tokens), len(o.Targets)), src.Data(), "")
		return withIdx(e, o.Idx)
	}
	entries, err := coerceTargets(o.Coercer, tokens, o.Targets)
	if err != nil {
		return withIdx(err, o.Idx)
	}
	return commit(c, o.Idx, entries, o.DeleteSource)
}

func coerceTargets(coercer Coercer, tokens []*value.Value, targets []Target) ([]Entry, error) {
	entries := make([]Entry, len(targets))
	for i, target := range targets {
		data, err := coercer.CoerceOptional(tokens[i], target.TypeInfo())
		if err != nil {
			return nil, err
		}
		entries[i] = target.Entry(data)
	}
	return entries, nil
}

// commit adds the destinations and then removes the source if requested.
// Nothing touches the container before this point.
func commit(c Container, idx uint, entries []Entry, deleteSource bool) error {
	for _, e := range entries {
		c.Add(e)
	}
	if !deleteSource {
		return nil
	}
	if _, err := c.Delete(idx); err != nil {
		return containerError("cannot delete split source", idx, err)
	}
	return nil
}

func withIdx(err error, idx uint) error {
	var rowErr *Error
	if errors.As(err, &rowErr) && rowErr.Idx == nil {
		cp := *rowErr
		cp.Idx = &idx
		return &cp
	}
	return err
}
