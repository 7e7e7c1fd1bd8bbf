package rowz

import (
	"context"
	"fmt"
	"time"
)

// Func is an Operator backed by a plain function. Create one with Apply or
// Effect.
type Func struct {
	fn   func(context.Context, Container) error
	name Name
}

// Name implements Operator.
func (f Func) Name() Name {
	return f.name
}

// Apply implements Operator. A panic in the wrapped function is recovered
// and returned as a KindGeneric error.
func (f Func) Apply(ctx context.Context, c Container) (err error) {
	defer recoverFromPanic(&err, f.name)
	return f.fn(ctx, c)
}

func recoverFromPanic(err *error, name Name) {
	if r := recover(); r != nil {
		*err = &Error{
			Kind:      KindGeneric,
			Message:   fmt.Sprintf("panic in operator %q: %v", name, r),
			Path:      []Name{name},
			Timestamp: time.Now(),
		}
	}
}
