package rowz

import (
	"context"
)

// Apply creates an Operator from a function that edits the row in place and
// may fail. Use it for edits the built-in operators do not cover.
//
// Errors that are not already *Error are wrapped as KindWrapped. Either way
// the error path starts with name.
//
// Example:
//
//	upper := rowz.Apply("upper_currency", func(ctx context.Context, c rowz.Container) error {
//	    e, ok := c.Get(2)
//	    if !ok {
//	        return fmt.Errorf("currency missing")
//	    }
//	    if s, ok := e.Data().AsString(); ok {
//	        e.SetData(value.FromString(strings.ToUpper(s)).Ptr())
//	    }
//	    return nil
//	})
func Apply(name Name, fn func(context.Context, Container) error) Func {
	return Func{
		name: name,
		fn: func(ctx context.Context, c Container) error {
			if err := fn(ctx, c); err != nil {
				rowErr := wrapError(err)
				if len(rowErr.Path) == 0 {
					return withPath(rowErr, name)
				}
				return rowErr
			}
			return nil
		},
	}
}
