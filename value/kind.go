package value

import (
	"fmt"
	"strings"
)

// Kind is the tag of a Value. The set of kinds is closed.
type Kind uint8

// Supported kinds. Invalid is the zero Kind and never carries a payload.
const (
	Invalid Kind = iota
	Bool
	Char
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	String
	Date
	DateTime
	Decimal
)

var kindNames = [...]string{
	Invalid:  "Invalid",
	Bool:     "Bool",
	Char:     "Char",
	Int8:     "Int8",
	Int16:    "Int16",
	Int32:    "Int32",
	Int64:    "Int64",
	Uint8:    "Uint8",
	Uint16:   "Uint16",
	Uint32:   "Uint32",
	Uint64:   "Uint64",
	Float32:  "Float32",
	Float64:  "Float64",
	String:   "String",
	Date:     "Date",
	DateTime: "DateTime",
	Decimal:  "Decimal",
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames)-1)
	for k := Bool; k <= Decimal; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return k > Invalid && k <= Decimal
}

// ParseKind resolves a kind by name. Matching is case-insensitive so that
// configuration may use "Float32", "float32" or "FLOAT32".
func ParseKind(name string) (Kind, error) {
	for k := Bool; k <= Decimal; k++ {
		if strings.EqualFold(kindNames[k], name) {
			return k, nil
		}
	}
	return Invalid, fmt.Errorf("unknown value kind %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
