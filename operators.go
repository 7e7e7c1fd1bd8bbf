package rowz

import (
	"context"
	"errors"
	"fmt"
)

// DeleteItem removes the entry at Idx. A missing idx is a KindContainerOp
// error wrapping the container's *IndexError.
type DeleteItem struct {
	Idx uint
}

// Name implements Operator.
func (o DeleteItem) Name() Name {
	return fmt.Sprintf("delete_item(%d)", o.Idx)
}

// Apply implements Operator.
func (o DeleteItem) Apply(_ context.Context, c Container) error {
	if _, err := c.Delete(o.Idx); err != nil {
		var idxErr *IndexError
		if errors.As(err, &idxErr) {
			return containerError("cannot delete entry", o.Idx, err)
		}
		return wrapError(err)
	}
	return nil
}

// ReindexItem moves the entry at From to To in place. Whether To is already
// occupied is not checked; order reindex steps so that they do not collide.
type ReindexItem struct {
	From uint
	To   uint
}

// Name implements Operator.
func (o ReindexItem) Name() Name {
	return fmt.Sprintf("reindex_item(%d->%d)", o.From, o.To)
}

// Apply implements Operator.
func (o ReindexItem) Apply(_ context.Context, c Container) error {
	e, ok := c.Get(o.From)
	if !ok {
		return containerError("no entry at index", o.From, nil)
	}
	e.SetIdx(o.To)
	return nil
}
