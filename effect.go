package rowz

import (
	"context"
	"fmt"
)

// Effect creates an Operator that inspects the row without changing it,
// for example to log or validate intermediate state between edits. A
// returned error stops the pass like any other operator failure.
//
// The function must not add or delete entries. Doing so is reported as a
// KindGeneric error.
//
// Example:
//
//	requireAmount := rowz.Effect("require_amount", func(ctx context.Context, c rowz.Container) error {
//	    if e, ok := c.Get(1); !ok || e.Data() == nil {
//	        return errors.New("amount is missing")
//	    }
//	    return nil
//	})
func Effect(name Name, fn func(context.Context, Container) error) Func {
	return Func{
		name: name,
		fn: func(ctx context.Context, c Container) error {
			before := c.Len()
			if err := fn(ctx, c); err != nil {
				rowErr := wrapError(err)
				if len(rowErr.Path) == 0 {
					return withPath(rowErr, name)
				}
				return rowErr
			}
			if after := c.Len(); after != before {
				rowErr := genericError(fmt.Sprintf("effect changed the row length from %d to %d", before, after))
				rowErr.Path = []Name{name}
				return rowErr
			}
			return nil
		},
	}
}
