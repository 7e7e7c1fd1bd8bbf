package rowz

import (
	"context"
	"fmt"

	"github.com/zoobzio/rowz/value"
)

// Operator is a parameterized structural edit applied to a Container in
// place. Operators hold no per-call state: applying the same operator to
// equal rows gives equal results.
//
// Every built-in operator (DeleteItem, ReindexItem, AppendItem, AppendEntry,
// SplitItem, SplitItemN) and the adapters Apply and Effect implement this
// interface, so they can be mixed freely inside a Pass.
//
// The context carries tracing spans and row metadata (see WithMeta). It is
// never used for cancellation: operators do not block.
type Operator interface {
	Apply(context.Context, Container) error
	Name() Name
}

// Name is a type alias for operator, pass and pipeline names.
// Names appear in Error.Path to identify where a failure occurred.
type Name = string

// Container is the capability a row must provide to be transformed.
// Operators depend only on this interface.
//
// Get returns a pointer to the stored entry so that it can be modified in
// place. The pointer is only valid until the next Add or Delete.
// Delete fails with *IndexError when no entry has the idx.
// Add performs no idx collision check.
type Container interface {
	Get(idx uint) (*Entry, bool)
	Delete(idx uint) (Entry, error)
	Add(e Entry)
	Len() int
}

// Entry is one field of a row: its position key, display name, declared
// kind and optional payload. A nil payload means no value is present.
type Entry struct {
	typeInfo value.Value
	data     *value.Value
	name     string
	idx      uint
}

// NewEntry creates an entry. typeInfo is a descriptor (see value.Zero);
// only its kind matters.
func NewEntry(idx uint, name string, typeInfo value.Value, data *value.Value) Entry {
	return Entry{idx: idx, name: name, typeInfo: value.Zero(typeInfo.Kind()), data: data}
}

// Idx returns the position key of the entry.
func (e *Entry) Idx() uint { return e.idx }

// SetIdx changes the position key of the entry.
func (e *Entry) SetIdx(idx uint) { e.idx = idx }

// Name returns the display name of the entry.
func (e *Entry) Name() string { return e.name }

// SetName changes the display name of the entry.
func (e *Entry) SetName(name string) { e.name = name }

// TypeInfo returns the descriptor of the declared kind.
func (e *Entry) TypeInfo() value.Value { return e.typeInfo }

// SetTypeInfo changes the declared kind.
func (e *Entry) SetTypeInfo(typeInfo value.Value) { e.typeInfo = value.Zero(typeInfo.Kind()) }

// Data returns the payload, or nil when absent.
func (e *Entry) Data() *value.Value { return e.data }

// SetData replaces the payload. Pass nil to clear it.
func (e *Entry) SetData(data *value.Value) { e.data = data }

// Clone returns an independent copy of the entry.
func (e *Entry) Clone() Entry {
	c := *e
	if c.data != nil {
		data := *c.data
		c.data = &data
	}
	return c
}

func (e *Entry) String() string {
	data := "<absent>"
	if e.data != nil {
		data = fmt.Sprintf("%q", e.data.String())
	}
	return fmt.Sprintf("{idx:%d name:%q type:%s data:%s}", e.idx, e.name, e.typeInfo.Kind(), data)
}
