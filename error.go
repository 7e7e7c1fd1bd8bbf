package rowz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zoobzio/rowz/value"
)

// ErrorKind classifies a failure.
type ErrorKind uint8

// Error kinds.
const (
	// KindGeneric is a plain failure described by its message.
	KindGeneric ErrorKind = iota
	// KindWrapped passes a lower-layer failure through unchanged.
	KindWrapped
	// KindSplit covers arity, format, absent-value policy, regex and
	// coercion failures.
	KindSplit
	// KindContainerOp covers missing indices on delete, reindex and
	// split-source lookup.
	KindContainerOp
)

func (k ErrorKind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindWrapped:
		return "wrapped"
	case KindSplit:
		return "split"
	case KindContainerOp:
		return "container operation"
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// Sentinels matching any *Error of the corresponding kind with errors.Is.
var (
	ErrGeneric     = errors.New("generic error")
	ErrWrapped     = errors.New("wrapped error")
	ErrSplit       = errors.New("split error")
	ErrContainerOp = errors.New("container operation error")
)

// Error is the single failure type returned by operators, passes and
// pipelines. Path records where the failure happened, outermost first:
// pipeline name, pass name, operator name.
//
// Example:
//
//	err := pipeline.Apply(ctx, row)
//	var rowErr *rowz.Error
//	if errors.As(err, &rowErr) && errors.Is(err, rowz.ErrSplit) {
//	    log.Printf("split failed at %v on %v: %s", rowErr.Path, rowErr.Source, rowErr.Message)
//	}
type Error struct {
	Timestamp time.Time
	Err       error
	Source    *value.Value
	Idx       *uint
	Message   string
	Detail    string
	Path      []Name
	Kind      ErrorKind
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if len(e.Path) > 0 {
		b.WriteString(strings.Join(e.Path, " -> "))
		b.WriteString(" failed: ")
	}
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Idx != nil {
		fmt.Fprintf(&b, " (idx %d)", *e.Idx)
	}
	if e.Source != nil {
		fmt.Fprintf(&b, " [source %s %q]", e.Source.Kind(), e.Source.String())
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, " [%s]", e.Detail)
	}
	if e.Err != nil && e.Err.Error() != e.Message {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause, supporting error wrapping patterns.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrGeneric:
		return e.Kind == KindGeneric
	case ErrWrapped:
		return e.Kind == KindWrapped
	case ErrSplit:
		return e.Kind == KindSplit
	case ErrContainerOp:
		return e.Kind == KindContainerOp
	}
	return false
}

func splitError(msg string, src *value.Value, detail string) *Error {
	return &Error{
		Kind:      KindSplit,
		Message:   msg,
		Source:    cloneValue(src),
		Detail:    detail,
		Timestamp: time.Now(),
	}
}

func containerError(msg string, idx uint, cause error) *Error {
	return &Error{
		Kind:      KindContainerOp,
		Message:   msg,
		Idx:       &idx,
		Err:       cause,
		Timestamp: time.Now(),
	}
}

func genericError(msg string) *Error {
	return &Error{Kind: KindGeneric, Message: msg, Timestamp: time.Now()}
}

// wrapError returns err unchanged when it already is an *Error and wraps it
// as KindWrapped otherwise.
func wrapError(err error) *Error {
	var rowErr *Error
	if errors.As(err, &rowErr) {
		return rowErr
	}
	return &Error{Kind: KindWrapped, Message: err.Error(), Err: err, Timestamp: time.Now()}
}

// withPath returns a copy of rowErr with names placed in front of its path.
// rowErr itself is left untouched: operators may return the same *Error on
// every call.
func withPath(rowErr *Error, names ...Name) *Error {
	cp := *rowErr
	cp.Path = make([]Name, 0, len(names)+len(rowErr.Path))
	cp.Path = append(cp.Path, names...)
	cp.Path = append(cp.Path, rowErr.Path...)
	return &cp
}

func cloneValue(v *value.Value) *value.Value {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
