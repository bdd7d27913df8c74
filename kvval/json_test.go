package kvval

import (
	"bytes"
	"testing"
)

func TestJSONRoundTrip(t *testing.T) {
	values := []Value{
		Null(),
		Bool(true),
		Bool(false),
		Number(0),
		Number(-12.75),
		Number(1e9),
		String(""),
		String("snow ☃ and \"quotes\""),
		Array(),
		Object(nil),
		Array(Number(1), String("two"), Null(), Array(Bool(true))),
		Object(map[string]Value{
			"null":   Null(),
			"bool":   Bool(false),
			"num":    Number(5),
			"str":    String("x"),
			"arr":    Array(Number(1), Number(2)),
			"nested": Object(map[string]Value{"deep": Array(Object(map[string]Value{"a": Null()}))}),
		}),
	}
	for _, v := range values {
		data := must(Marshal(v))
		back := must(Unmarshal(data))
		if !back.Equal(v) {
			t.Errorf("** round trip of %v came back as %v (bytes %s)", v, back, data)
		}
	}
}

func TestUnmarshalGrammar(t *testing.T) {
	good := []string{
		"null", "true", "false", "0", "-1.5", "1e3", `""`, `"x"`,
		"[]", "{}", `[1,"a",null,{}]`, ` { "a" : [ 1 ] } `,
	}
	for _, s := range good {
		if _, err := Unmarshal([]byte(s)); err != nil {
			t.Errorf("** Unmarshal(%q) failed: %v", s, err)
		}
	}

	bad := []string{
		"", "{", "}", `{"a":}`, `{"a" 1}`, "[1,]", "nulll", "tru",
		"5 5", `{"a":1} trailing`, "{} {}", "1; drop",
	}
	for _, s := range bad {
		_, err := Unmarshal([]byte(s))
		if err == nil {
			t.Errorf("** Unmarshal(%q) succeeded, wanted ErrMalformed", s)
			continue
		}
		wantMalformed(t, err)
	}
}

func TestUnmarshalRejectsInvalidUTF8(t *testing.T) {
	_, err := Unmarshal([]byte{'"', 0xff, 0xfe, '"'})
	wantMalformed(t, err)
}

func TestNumbersDecodeToFloat64(t *testing.T) {
	v := must(Unmarshal([]byte(`{"a": 0, "b": 7, "c": 2.5, "d": 1e2}`)))
	obj := must(v.AsObject())
	deepEqual(t, must(obj["a"].AsNumber()), 0.0)
	deepEqual(t, must(obj["b"].AsNumber()), 7.0)
	deepEqual(t, must(obj["c"].AsNumber()), 2.5)
	deepEqual(t, must(obj["d"].AsNumber()), 100.0)
}

func TestDecodeMap(t *testing.T) {
	m := must(DecodeMap([]byte(`{"kvs": 1, "flag": true}`)))
	deepEqual(t, len(m), 2)
	deepEqual(t, must(m["kvs"].AsNumber()), 1.0)
	deepEqual(t, must(m["flag"].AsBool()), true)

	empty := must(DecodeMap([]byte(`{}`)))
	deepEqual(t, len(empty), 0)
	if empty == nil {
		t.Errorf("** DecodeMap({}) returned nil map")
	}

	for _, s := range []string{`[1,2]`, `5`, `"x"`, `null`, `true`} {
		_, err := DecodeMap([]byte(s))
		wantMalformed(t, err)
	}
}

func TestDecodeMapDuplicateKeysLastWins(t *testing.T) {
	m := must(DecodeMap([]byte(`{"a": 1, "a": 2}`)))
	deepEqual(t, len(m), 1)
	deepEqual(t, must(m["a"].AsNumber()), 2.0)
}

func TestEncodeMapDeterministic(t *testing.T) {
	m := map[string]Value{
		"zeta":  Number(1),
		"alpha": Object(map[string]Value{"b": Null(), "a": Bool(true)}),
		"mid":   Array(String("x")),
	}
	first := must(EncodeMap(m))
	for i := 0; i < 10; i++ {
		if again := must(EncodeMap(m)); !bytes.Equal(first, again) {
			t.Fatalf("** encoding changed between runs: %s vs %s", first, again)
		}
	}

	back := must(DecodeMap(first))
	if !Object(back).Equal(Object(m)) {
		t.Errorf("** decoded map %v, wanted %v", Object(back), Object(m))
	}

	deepEqual(t, string(must(EncodeMap(nil))), "{}")
}

func TestMarshalRejectsInvalidValue(t *testing.T) {
	if _, err := Marshal(Value{}); err == nil {
		t.Errorf("** Marshal of invalid value succeeded")
	}
	if _, err := EncodeMap(map[string]Value{"a": {}}); err == nil {
		t.Errorf("** EncodeMap with invalid value succeeded")
	}
}
