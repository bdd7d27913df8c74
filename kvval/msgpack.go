package kvval

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

var (
	_ msgpack.CustomEncoder = Value{}
	_ msgpack.CustomDecoder = (*Value)(nil)
)

// EncodeMsgpack encodes v with sorted object keys, so equal values always
// encode to identical bytes. Numbers always encode as float64.
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch v.kind {
	case KindNull:
		return enc.EncodeNil()
	case KindBoolean:
		return enc.EncodeBool(v.b)
	case KindNumber:
		return enc.EncodeFloat64(v.num)
	case KindString:
		return enc.EncodeString(v.str)
	case KindArray:
		if err := enc.EncodeArrayLen(len(v.arr)); err != nil {
			return err
		}
		for _, item := range v.arr {
			if err := item.EncodeMsgpack(enc); err != nil {
				return err
			}
		}
		return nil
	case KindObject:
		if err := enc.EncodeMapLen(len(v.obj)); err != nil {
			return err
		}
		for _, k := range v.sortedKeys() {
			if err := enc.EncodeString(k); err != nil {
				return err
			}
			if err := v.obj[k].EncodeMsgpack(enc); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("cannot encode %v value", v.kind)
	}
}

// DecodeMsgpack decodes any msgpack value. Integers widen to float64; map
// keys must be strings.
func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	c, err := dec.PeekCode()
	if err != nil {
		return err
	}
	switch {
	case c == msgpcode.Nil:
		if err := dec.DecodeNil(); err != nil {
			return err
		}
		*v = Null()
	case c == msgpcode.True || c == msgpcode.False:
		b, err := dec.DecodeBool()
		if err != nil {
			return err
		}
		*v = Bool(b)
	case msgpcode.IsString(c):
		s, err := dec.DecodeString()
		if err != nil {
			return err
		}
		*v = String(s)
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return err
		}
		items := make([]Value, n)
		for i := range items {
			if err := items[i].DecodeMsgpack(dec); err != nil {
				return err
			}
		}
		*v = Value{kind: KindArray, arr: items}
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return err
		}
		obj := make(map[string]Value, n)
		for i := 0; i < n; i++ {
			k, err := dec.DecodeString()
			if err != nil {
				return err
			}
			var item Value
			if err := item.DecodeMsgpack(dec); err != nil {
				return err
			}
			obj[k] = item
		}
		*v = Value{kind: KindObject, obj: obj}
	default:
		n, err := dec.DecodeFloat64()
		if err != nil {
			return err
		}
		*v = Number(n)
	}
	return nil
}
