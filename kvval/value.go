// Package kvval implements the JSON-like tagged value model of the store:
// null, boolean, number, string, array and object.
//
// Values are immutable. Container constructors and accessors copy their
// data, so a value graph is acyclic by construction and never changes
// behind the store's back.
package kvval

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// ErrTypeMismatch is returned when extracting a payload of the wrong kind
// from a Value.
var ErrTypeMismatch = errors.New("value type mismatch")

// Kind is the runtime type tag of a Value.
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single JSON-like value. The zero Value is invalid; it is what
// failed lookups return, and it can never be stored.
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  string
	arr  []Value
	obj  map[string]Value
}

func Null() Value { return Value{kind: KindNull} }

func Bool(b bool) Value { return Value{kind: KindBoolean, b: b} }

func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

func String(s string) Value { return Value{kind: KindString, str: s} }

// Array returns an array value holding a copy of items.
func Array(items ...Value) Value {
	return Value{kind: KindArray, arr: slices.Clone(items)}
}

// Object returns an object value holding a copy of m.
func Object(m map[string]Value) Value {
	obj := make(map[string]Value, len(m))
	maps.Copy(obj, m)
	return Value{kind: KindObject, obj: obj}
}

// Kind returns the runtime type tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, error) {
	if v.kind != KindBoolean {
		return false, mismatch(KindBoolean, v.kind)
	}
	return v.b, nil
}

// AsNumber returns the numeric payload.
func (v Value) AsNumber() (float64, error) {
	if v.kind != KindNumber {
		return 0, mismatch(KindNumber, v.kind)
	}
	return v.num, nil
}

// AsString returns the string payload.
func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", mismatch(KindString, v.kind)
	}
	return v.str, nil
}

// AsArray returns a copy of the array items.
func (v Value) AsArray() ([]Value, error) {
	if v.kind != KindArray {
		return nil, mismatch(KindArray, v.kind)
	}
	return slices.Clone(v.arr), nil
}

// AsObject returns a copy of the object entries.
func (v Value) AsObject() (map[string]Value, error) {
	if v.kind != KindObject {
		return nil, mismatch(KindObject, v.kind)
	}
	obj := make(map[string]Value, len(v.obj))
	maps.Copy(obj, v.obj)
	return obj, nil
}

// Len returns the number of items of an array or entries of an object,
// and 0 for any other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Equal reports structural equality. Arrays compare item by item in
// order; objects compare entry sets.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBoolean:
		return v.b == o.b
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, a := range v.obj {
			b, ok := o.obj[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders v in JSON-like form for logs and debugging. Object keys
// come out sorted.
func (v Value) String() string {
	switch v.kind {
	case KindInvalid:
		return "<invalid>"
	case KindNull:
		return "null"
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.str)
	case KindArray:
		var buf strings.Builder
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(item.String())
		}
		buf.WriteByte(']')
		return buf.String()
	case KindObject:
		var buf strings.Builder
		buf.WriteByte('{')
		for i, k := range v.sortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Quote(k))
			buf.WriteByte(':')
			buf.WriteString(v.obj[k].String())
		}
		buf.WriteByte('}')
		return buf.String()
	default:
		return fmt.Sprintf("<%v>", v.kind)
	}
}

func (v Value) sortedKeys() []string {
	var keys []string
	for k := range v.obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func mismatch(want, got Kind) error {
	return fmt.Errorf("%w: want %v, got %v", ErrTypeMismatch, want, got)
}
