package rowz

import (
	"fmt"

	"github.com/zoobzio/rowz/value"
)

// ValueParser converts text into a value of the kind carried by target.
// A nil result with a nil error means the text denotes an absent value.
// *value.Parser implements it.
type ValueParser interface {
	ParseValue(text string, target value.Value) (*value.Value, error)
}

// Coercer assigns raw split tokens to destination kinds.
// The zero Coercer uses value.DefaultParser.
type Coercer struct {
	Parser ValueParser
}

// NewCoercer creates a Coercer backed by parser. A nil parser selects
// value.DefaultParser.
func NewCoercer(parser ValueParser) Coercer {
	return Coercer{Parser: parser}
}

// Coerce converts raw into the kind of target:
//   - the same kind is copied verbatim
//   - a String is parsed with the parser
//   - anything else is a KindSplit type mismatch
func (c Coercer) Coerce(raw value.Value, target value.Value) (*value.Value, error) {
	if raw.SameKind(target) {
		return raw.Ptr(), nil
	}
	text, ok := raw.AsString()
	if !ok {
		return nil, splitError(fmt.Sprintf("type mismatch: cannot assign %s to %s", raw.Kind(), target.Kind()), &raw, "")
	}
	parsed, err := c.parser().ParseValue(text, target)
	if err != nil {
		e := splitError(fmt.Sprintf("type mismatch: cannot parse string into %s", target.Kind()), &raw, "")
		e.Err = err
		return nil, e
	}
	return parsed, nil
}

// CoerceOptional is Coerce for an optional token. Absent stays absent
// without consulting the parser.
func (c Coercer) CoerceOptional(raw *value.Value, target value.Value) (*value.Value, error) {
	if raw == nil {
		return nil, nil
	}
	return c.Coerce(*raw, target)
}

func (c Coercer) parser() ValueParser {
	if c.Parser == nil {
		return value.DefaultParser
	}
	return c.Parser
}
