// Package value provides the closed set of field payloads handled by rowz.
//
// A Value is a tagged union: its Kind selects which payload is meaningful.
// Values are immutable and compared by kind and payload. A Value built with
// Zero carries only a kind and is used as a type descriptor, declaring what a
// destination field expects without holding data.
//
// The package also provides Parser, the templated string-to-value conversion
// used when split tokens are coerced into their destination kind.
package value

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical textual form of a Date value.
const DateLayout = "2006-01-02"

// Value is a single typed payload. Only the payload matching the kind is
// read; the others stay at their zero values.
type Value struct {
	t    time.Time
	d    decimal.Decimal
	s    string
	i    int64
	u    uint64
	f    float64
	kind Kind
	b    bool
}

// Zero returns the type descriptor for kind: a Value with the kind's default
// payload.
func Zero(kind Kind) Value {
	return Value{kind: kind}
}

// FromBool creates a Bool value.
func FromBool(b bool) Value { return Value{kind: Bool, b: b} }

// FromChar creates a Char value.
func FromChar(r rune) Value { return Value{kind: Char, i: int64(r)} }

// FromInt8 creates an Int8 value.
func FromInt8(n int8) Value { return Value{kind: Int8, i: int64(n)} }

// FromInt16 creates an Int16 value.
func FromInt16(n int16) Value { return Value{kind: Int16, i: int64(n)} }

// FromInt32 creates an Int32 value.
func FromInt32(n int32) Value { return Value{kind: Int32, i: int64(n)} }

// FromInt64 creates an Int64 value.
func FromInt64(n int64) Value { return Value{kind: Int64, i: n} }

// FromUint8 creates a Uint8 value.
func FromUint8(n uint8) Value { return Value{kind: Uint8, u: uint64(n)} }

// FromUint16 creates a Uint16 value.
func FromUint16(n uint16) Value { return Value{kind: Uint16, u: uint64(n)} }

// FromUint32 creates a Uint32 value.
func FromUint32(n uint32) Value { return Value{kind: Uint32, u: uint64(n)} }

// FromUint64 creates a Uint64 value.
func FromUint64(n uint64) Value { return Value{kind: Uint64, u: n} }

// FromFloat32 creates a Float32 value.
func FromFloat32(f float32) Value { return Value{kind: Float32, f: float64(f)} }

// FromFloat64 creates a Float64 value.
func FromFloat64(f float64) Value { return Value{kind: Float64, f: f} }

// FromString creates a String value.
func FromString(s string) Value { return Value{kind: String, s: s} }

// FromDate creates a Date value. The time of day and location are dropped.
func FromDate(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: Date, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// FromDateTime creates a DateTime value.
func FromDateTime(t time.Time) Value { return Value{kind: DateTime, t: t} }

// FromDecimal creates a Decimal value.
func FromDecimal(d decimal.Decimal) Value { return Value{kind: Decimal, d: d} }

// Ptr returns a pointer to a copy of v, for use as a present optional value.
func (v Value) Ptr() *Value {
	return &v
}

// Kind returns the tag of v.
func (v Value) Kind() Kind { return v.kind }

// SameKind reports whether v and other are type-compatible.
func (v Value) SameKind(other Value) bool { return v.kind == other.kind }

// AsBool returns the payload of a Bool value.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == Bool }

// AsChar returns the payload of a Char value.
func (v Value) AsChar() (rune, bool) { return rune(v.i), v.kind == Char }

// AsInt returns the payload of any signed integer value.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case Int8, Int16, Int32, Int64:
		return v.i, true
	}
	return 0, false
}

// AsUint returns the payload of any unsigned integer value.
func (v Value) AsUint() (uint64, bool) {
	switch v.kind {
	case Uint8, Uint16, Uint32, Uint64:
		return v.u, true
	}
	return 0, false
}

// AsFloat32 returns the payload of a Float32 value.
func (v Value) AsFloat32() (float32, bool) { return float32(v.f), v.kind == Float32 }

// AsFloat64 returns the payload of a Float32 or Float64 value.
func (v Value) AsFloat64() (float64, bool) {
	return v.f, v.kind == Float32 || v.kind == Float64
}

// AsString returns the payload of a String value.
func (v Value) AsString() (string, bool) { return v.s, v.kind == String }

// AsTime returns the payload of a Date or DateTime value.
func (v Value) AsTime() (time.Time, bool) {
	return v.t, v.kind == Date || v.kind == DateTime
}

// AsDecimal returns the payload of a Decimal value.
func (v Value) AsDecimal() (decimal.Decimal, bool) { return v.d, v.kind == Decimal }

// Equal reports whether v and other have the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Bool:
		return v.b == other.b
	case Char, Int8, Int16, Int32, Int64:
		return v.i == other.i
	case Uint8, Uint16, Uint32, Uint64:
		return v.u == other.u
	case Float32:
		return float32(v.f) == float32(other.f)
	case Float64:
		return v.f == other.f
	case String:
		return v.s == other.s
	case Date, DateTime:
		return v.t.Equal(other.t)
	case Decimal:
		return v.d.Equal(other.d)
	}
	return true
}

// String renders the payload in the textual form Parser accepts back.
func (v Value) String() string {
	switch v.kind {
	case Bool:
		return strconv.FormatBool(v.b)
	case Char:
		return string(rune(v.i))
	case Int8, Int16, Int32, Int64:
		return strconv.FormatInt(v.i, 10)
	case Uint8, Uint16, Uint32, Uint64:
		return strconv.FormatUint(v.u, 10)
	case Float32:
		return strconv.FormatFloat(v.f, 'g', -1, 32)
	case Float64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case String:
		return v.s
	case Date:
		return v.t.Format(DateLayout)
	case DateTime:
		return v.t.Format(time.RFC3339Nano)
	case Decimal:
		return v.d.String()
	}
	return ""
}

// EqualPtr compares two optional values. Two absent values are equal.
func EqualPtr(a, b *Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
