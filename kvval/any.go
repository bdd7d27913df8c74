package kvval

import (
	"encoding/json"
	"fmt"
	"math"
)

// FromAny converts a native Go value into a Value. Handled directly: nil,
// bool, string, every integer and float width, Value, []Value,
// map[string]Value, []any and map[string]any. Anything else (structs,
// typed slices and maps) goes through a JSON round-trip.
func FromAny(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int8:
		return Number(float64(x)), nil
	case int16:
		return Number(float64(x)), nil
	case int32:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case uint:
		return Number(float64(x)), nil
	case uint8:
		return Number(float64(x)), nil
	case uint16:
		return Number(float64(x)), nil
	case uint32:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
		}
		return Number(n), nil
	case []Value:
		return Array(x...), nil
	case map[string]Value:
		return Object(x), nil
	case []any:
		items := make([]Value, len(x))
		for i, e := range x {
			var err error
			items[i], err = FromAny(e)
			if err != nil {
				return Value{}, err
			}
		}
		return Value{kind: KindArray, arr: items}, nil
	case map[string]any:
		obj := make(map[string]Value, len(x))
		for k, e := range x {
			ev, err := FromAny(e)
			if err != nil {
				return Value{}, err
			}
			obj[k] = ev
		}
		return Value{kind: KindObject, obj: obj}, nil
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return Value{}, fmt.Errorf("cannot convert %T: %w", x, err)
		}
		return Unmarshal(raw)
	}
}

// As extracts a typed payload from a Value: bool, string, float64, the
// common integer widths (rejecting fractional or out-of-range numbers),
// []Value, map[string]Value, Value itself, or any JSON-compatible struct,
// slice or map via a JSON round-trip.
func As[T any](v Value) (T, error) {
	var zero T
	switch p := any(&zero).(type) {
	case *Value:
		*p = v
		return zero, nil
	case *bool:
		b, err := v.AsBool()
		if err != nil {
			return zero, err
		}
		*p = b
		return zero, nil
	case *string:
		s, err := v.AsString()
		if err != nil {
			return zero, err
		}
		*p = s
		return zero, nil
	case *float64:
		n, err := v.AsNumber()
		if err != nil {
			return zero, err
		}
		*p = n
		return zero, nil
	case *float32:
		n, err := v.AsNumber()
		if err != nil {
			return zero, err
		}
		*p = float32(n)
		return zero, nil
	case *int:
		n, err := v.integer()
		if err != nil {
			return zero, err
		}
		if n != int64(int(n)) {
			return zero, outOfRange(v.num, "int")
		}
		*p = int(n)
		return zero, nil
	case *int32:
		n, err := v.integer()
		if err != nil {
			return zero, err
		}
		if n != int64(int32(n)) {
			return zero, outOfRange(v.num, "int32")
		}
		*p = int32(n)
		return zero, nil
	case *int64:
		n, err := v.integer()
		if err != nil {
			return zero, err
		}
		*p = n
		return zero, nil
	case *uint:
		u, err := v.unsigned()
		if err != nil {
			return zero, err
		}
		if u != uint64(uint(u)) {
			return zero, outOfRange(v.num, "uint")
		}
		*p = uint(u)
		return zero, nil
	case *uint32:
		u, err := v.unsigned()
		if err != nil {
			return zero, err
		}
		if u != uint64(uint32(u)) {
			return zero, outOfRange(v.num, "uint32")
		}
		*p = uint32(u)
		return zero, nil
	case *uint64:
		u, err := v.unsigned()
		if err != nil {
			return zero, err
		}
		*p = u
		return zero, nil
	case *[]Value:
		items, err := v.AsArray()
		if err != nil {
			return zero, err
		}
		*p = items
		return zero, nil
	case *map[string]Value:
		obj, err := v.AsObject()
		if err != nil {
			return zero, err
		}
		*p = obj
		return zero, nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return zero, err
		}
		if err := json.Unmarshal(raw, &zero); err != nil {
			return zero, fmt.Errorf("%w: cannot convert %v value to %T: %v", ErrTypeMismatch, v.kind, zero, err)
		}
		return zero, nil
	}
}

func (v Value) integer() (int64, error) {
	n, err := v.AsNumber()
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) || n < float64(math.MinInt64) || n >= float64(math.MaxInt64) {
		return 0, fmt.Errorf("%w: number %v is not an integer", ErrTypeMismatch, n)
	}
	return int64(n), nil
}

func (v Value) unsigned() (uint64, error) {
	n, err := v.AsNumber()
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) || n < 0 || n >= float64(math.MaxUint64) {
		return 0, fmt.Errorf("%w: number %v is not an unsigned integer", ErrTypeMismatch, n)
	}
	return uint64(n), nil
}

func outOfRange(n float64, typ string) error {
	return fmt.Errorf("%w: number %v does not fit %s", ErrTypeMismatch, n, typ)
}
