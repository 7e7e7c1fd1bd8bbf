package value

import (
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedKind is returned when a parse targets the Invalid kind.
var ErrUnsupportedKind = errors.New("unsupported value kind")

// ConversionError reports text that could not be parsed into a kind.
type ConversionError struct {
	Err  error
	Text string
	Kind Kind
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot parse %q as %s: %v", e.Text, e.Kind, e.Err)
}

// Unwrap returns the underlying parse failure.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Parser converts text into values of a requested kind. The zero Parser is
// not usable; create one with NewParser.
type Parser struct {
	// DateLayouts are tried in order for the Date kind.
	DateLayouts []string
	// DateTimeLayouts are tried in order for the DateTime kind.
	DateTimeLayouts []string
	// EmptyAsAbsent makes an empty string parse to an absent value for every
	// kind except String.
	EmptyAsAbsent bool
}

// NewParser returns a Parser with the default layouts and EmptyAsAbsent set.
func NewParser() *Parser {
	return &Parser{
		DateLayouts: []string{DateLayout, "2006/01/02", "02.01.2006"},
		DateTimeLayouts: []string{
			time.RFC3339Nano,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02 15:04:05Z07:00",
		},
		EmptyAsAbsent: true,
	}
}

// DefaultParser is used by the package-level Parse function.
var DefaultParser = NewParser()

// Parse converts text into a value of kind using DefaultParser.
func Parse(text string, kind Kind) (*Value, error) {
	return DefaultParser.Parse(text, kind)
}

// ParseValue converts text into a value of the kind carried by the template
// descriptor. The template's payload is ignored.
func (p *Parser) ParseValue(text string, template Value) (*Value, error) {
	return p.Parse(text, template.Kind())
}

// Parse converts text into a value of kind. A nil result with a nil error
// means the text denotes an absent value.
func (p *Parser) Parse(text string, kind Kind) (*Value, error) {
	if !kind.Valid() {
		return nil, &ConversionError{Text: text, Kind: kind, Err: ErrUnsupportedKind}
	}
	if text == "" && kind != String && p.EmptyAsAbsent {
		return nil, nil
	}

	v, err := p.parse(text, kind)
	if err != nil {
		return nil, &ConversionError{Text: text, Kind: kind, Err: err}
	}
	return &v, nil
}

func (p *Parser) parse(text string, kind Kind) (Value, error) {
	switch kind {
	case Bool:
		b, err := strconv.ParseBool(text)
		return FromBool(b), err
	case Char:
		r, size := utf8.DecodeRuneInString(text)
		if r == utf8.RuneError || size != len(text) {
			return Value{}, errors.New("expected exactly one character")
		}
		return FromChar(r), nil
	case Int8, Int16, Int32, Int64:
		n, err := strconv.ParseInt(text, 10, bitSize(kind))
		return Value{kind: kind, i: n}, err
	case Uint8, Uint16, Uint32, Uint64:
		n, err := strconv.ParseUint(text, 10, bitSize(kind))
		return Value{kind: kind, u: n}, err
	case Float32:
		f, err := strconv.ParseFloat(text, 32)
		return FromFloat32(float32(f)), err
	case Float64:
		f, err := strconv.ParseFloat(text, 64)
		return FromFloat64(f), err
	case String:
		return FromString(text), nil
	case Date:
		t, err := parseTime(text, p.DateLayouts)
		return FromDate(t), err
	case DateTime:
		t, err := parseTime(text, p.DateTimeLayouts)
		return FromDateTime(t), err
	case Decimal:
		d, err := decimal.NewFromString(text)
		return FromDecimal(d), err
	}
	return Value{}, ErrUnsupportedKind
}

func bitSize(kind Kind) int {
	switch kind {
	case Int8, Uint8:
		return 8
	case Int16, Uint16:
		return 16
	case Int32, Uint32:
		return 32
	}
	return 64
}

func parseTime(text string, layouts []string) (time.Time, error) {
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, text)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = errors.New("no layouts configured")
	}
	return time.Time{}, firstErr
}
