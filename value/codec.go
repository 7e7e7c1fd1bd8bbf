package value

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
)

// wireValue is the msgpack form of a Value: its kind and canonical text.
type wireValue struct {
	Text string `msgpack:"v"`
	Kind uint8  `msgpack:"k"`
}

var codecParser = NewParser()

// EncodeMsgpack implements msgpack.CustomEncoder.
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(wireValue{Kind: uint8(v.kind), Text: v.String()})
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	var w wireValue
	if err := dec.Decode(&w); err != nil {
		return err
	}
	kind := Kind(w.Kind)
	if kind == Invalid {
		*v = Value{}
		return nil
	}
	parsed, err := codecParser.parse(w.Text, kind)
	if err != nil {
		return &ConversionError{Text: w.Text, Kind: kind, Err: err}
	}
	*v = parsed
	return nil
}

// MarshalJSON renders the payload as a native JSON scalar where one exists
// and as a string otherwise. The kind is not encoded.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Bool:
		return json.Marshal(v.b)
	case Int8, Int16, Int32, Int64:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case Uint8, Uint16, Uint32, Uint64:
		return []byte(strconv.FormatUint(v.u, 10)), nil
	case Float32, Float64:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return json.Marshal(v.String())
		}
		return []byte(v.String()), nil
	case Invalid:
		return []byte("null"), nil
	}
	return json.Marshal(v.String())
}
