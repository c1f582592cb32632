package model

import (
	"encoding/json"
	"fmt"
)

// Value is a sealed interface over the scalar kinds a scenario carries in
// its assumption and override maps. Only Number, String, and Bool implement
// it. Null, arrays, and objects are not representable: parameter values are
// always flat scalars.
type Value interface {
	scalarValue() // Sealed - only these types implement it
}

// Number is a numeric scalar. There is a single numeric kind: JSON does not
// distinguish integers from decimals and neither does the command grammar.
type Number float64

func (Number) scalarValue() {}

// String is a text scalar.
type String string

func (String) scalarValue() {}

// Bool is a boolean scalar.
type Bool bool

func (Bool) scalarValue() {}

// EncodeValue marshals a scalar to JSON bytes.
func EncodeValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case Number:
		return json.Marshal(float64(val))
	case String:
		return json.Marshal(string(val))
	case Bool:
		return json.Marshal(bool(val))
	default:
		return nil, fmt.Errorf("unknown scalar type: %T", v)
	}
}

// DecodeValue parses JSON bytes into a scalar. Null, arrays, and objects
// are rejected: only number, string, and bool survive the trip.
func DecodeValue(data []byte) (Value, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return String(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil

	case 'n':
		return nil, fmt.Errorf("null is not a scalar: only number, string, bool allowed")

	case '[', '{':
		return nil, fmt.Errorf("nested values are not scalars: only number, string, bool allowed")

	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return Number(f), nil
	}
}
