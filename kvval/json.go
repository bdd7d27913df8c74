package kvval

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrMalformed is returned when serialized content does not conform to the
// value grammar: invalid JSON, invalid UTF-8, trailing data after the
// top-level value, or a non-object top level where an object is required.
var ErrMalformed = errors.New("malformed content")

// Marshal encodes v as JSON. Object keys are sorted, so equal values
// always encode to identical bytes.
func Marshal(v Value) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes a single JSON value. The input must be valid UTF-8
// and must contain nothing but the one value; anything else fails with
// ErrMalformed.
func Unmarshal(data []byte) (Value, error) {
	if !utf8.Valid(data) {
		return Value{}, fmt.Errorf("%w: invalid UTF-8", ErrMalformed)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	var v Value
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, ErrMalformed) {
			return Value{}, err
		}
		return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, fmt.Errorf("%w: trailing data after top-level value", ErrMalformed)
	}
	return v, nil
}

// EncodeMap encodes a key-value mapping as a single JSON object with
// sorted keys; encoding the same mapping always yields identical bytes.
// This is the snapshot content format.
func EncodeMap(m map[string]Value) ([]byte, error) {
	if m == nil {
		m = map[string]Value{}
	}
	return json.Marshal(m)
}

// DecodeMap decodes snapshot content: exactly one top-level JSON object
// mapping keys to values.
func DecodeMap(data []byte) (map[string]Value, error) {
	v, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if v.kind != KindObject {
		return nil, fmt.Errorf("%w: top-level value is %v, not an object", ErrMalformed, v.kind)
	}
	return v.obj, nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBoolean:
		return json.Marshal(v.b)
	case KindNumber:
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	case KindArray:
		if v.arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.arr)
	case KindObject:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.obj)
	default:
		return nil, fmt.Errorf("cannot encode %v value", v.kind)
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	dv, err := fromDecoded(raw)
	if err != nil {
		return err
	}
	*v = dv
	return nil
}

// fromDecoded converts encoding/json output without copying; the input is
// freshly decoded and never aliased.
func fromDecoded(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case float64:
		return Number(x), nil
	case string:
		return String(x), nil
	case []any:
		items := make([]Value, len(x))
		for i, e := range x {
			var err error
			items[i], err = fromDecoded(e)
			if err != nil {
				return Value{}, err
			}
		}
		return Value{kind: KindArray, arr: items}, nil
	case map[string]any:
		obj := make(map[string]Value, len(x))
		for k, e := range x {
			ev, err := fromDecoded(e)
			if err != nil {
				return Value{}, err
			}
			obj[k] = ev
		}
		return Value{kind: KindObject, obj: obj}, nil
	default:
		return Value{}, fmt.Errorf("%w: unexpected %T", ErrMalformed, raw)
	}
}
