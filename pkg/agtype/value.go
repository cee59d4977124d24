// Package agtype implements the property value model for Apache AGE graphs.
//
// AGE stores node and edge properties as agtype, a JSON-like tagged format.
// This package provides the Value union used at every boundary of the
// system, the Cypher literal encoder used to build query text, and a
// decoder for the agtype text AGE returns from queries.
//
// Values are classified into exactly one kind before serialization. There
// is no implicit coercion: a string that looks like a number stays a
// string, an integer never becomes a float. The decoder preserves the
// same distinction, so Decode(Encode(v)) reproduces v for every kind.
//
// Example:
//
//	props := map[string]agtype.Value{
//		"name": agtype.StringValue("Alice"),
//		"age":  agtype.IntValue(30),
//	}
//	fmt.Println(agtype.EncodeMap(props))
//	// {age: 30, name: 'Alice'}
package agtype

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindMap
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	}
	return "unknown"
}

// Value is a tagged union over the types an AGE property may hold:
// null, boolean, integer, float, string, and nested arrays and maps.
//
// The zero Value is null. Values are immutable once constructed; the
// accessors return a copy of the tag payload together with an ok flag
// that reports whether the Value holds that kind.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []Value
	obj  map[string]Value

	// ann records a trailing ::annotation (vertex, edge, path) seen by
	// the decoder. It does not participate in equality.
	ann string
}

// Null is the null Value.
var Null = Value{}

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// IntValue returns an integer Value.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue returns a float Value.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// ArrayValue returns an array Value holding the given items.
func ArrayValue(items ...Value) Value {
	return Value{kind: KindArray, arr: items}
}

// MapValue returns a map Value holding the given entries.
func MapValue(entries map[string]Value) Value {
	return Value{kind: KindMap, obj: entries}
}

// Kind reports which variant the Value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the Value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Int returns the integer payload.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Float returns the float payload. Integers are not coerced; use Number
// when either numeric kind is acceptable.
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }

// Number returns the value as float64 when it holds either numeric kind.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// Text returns the string payload.
func (v Value) Text() (string, bool) { return v.s, v.kind == KindString }

// Array returns the array payload.
func (v Value) Array() ([]Value, bool) { return v.arr, v.kind == KindArray }

// Map returns the map payload.
func (v Value) Map() (map[string]Value, bool) { return v.obj, v.kind == KindMap }

// Annotation returns the ::annotation the decoder saw on this value, if
// any ("vertex", "edge", "path", "numeric", ...). Encoded values never
// carry annotations.
func (v Value) Annotation() string { return v.ann }

// Equal reports deep equality of two Values. Annotations are ignored;
// kinds must match exactly, so IntValue(1) is not equal to FloatValue(1).
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
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
	case KindMap:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, vv := range v.obj {
			ov, ok := o.obj[k]
			if !ok || !vv.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders the Value as a Cypher literal. Implements fmt.Stringer.
func (v Value) String() string { return Encode(v) }

// FromNative classifies a native Go value into a Value. Supported inputs
// are nil, bool, the integer and float types, string, json.Number,
// []any, map[string]any, and Value itself. Numeric-looking strings are
// NOT coerced to numbers; they stay strings.
func FromNative(v any) (Value, error) {
	switch n := v.(type) {
	case nil:
		return Null, nil
	case Value:
		return n, nil
	case bool:
		return BoolValue(n), nil
	case int:
		return IntValue(int64(n)), nil
	case int8:
		return IntValue(int64(n)), nil
	case int16:
		return IntValue(int64(n)), nil
	case int32:
		return IntValue(int64(n)), nil
	case int64:
		return IntValue(n), nil
	case uint:
		return IntValue(int64(n)), nil
	case uint8:
		return IntValue(int64(n)), nil
	case uint16:
		return IntValue(int64(n)), nil
	case uint32:
		return IntValue(int64(n)), nil
	case uint64:
		return IntValue(int64(n)), nil
	case float32:
		return FloatValue(float64(n)), nil
	case float64:
		return FloatValue(n), nil
	case string:
		return StringValue(n), nil
	case json.Number:
		// json.Number keeps full precision; integers that fit int64
		// stay integers instead of collapsing to float64.
		if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
			return IntValue(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return Null, fmt.Errorf("invalid number %q: %w", string(n), err)
		}
		return FloatValue(f), nil
	case []any:
		items := make([]Value, len(n))
		for i, item := range n {
			iv, err := FromNative(item)
			if err != nil {
				return Null, err
			}
			items[i] = iv
		}
		return ArrayValue(items...), nil
	case map[string]any:
		entries := make(map[string]Value, len(n))
		for k, item := range n {
			iv, err := FromNative(item)
			if err != nil {
				return Null, err
			}
			entries[k] = iv
		}
		return MapValue(entries), nil
	}
	return Null, fmt.Errorf("unsupported property type %T", v)
}

// FromNativeMap converts a native property map, as decoded from a JSON
// request body, into a Value map.
func FromNativeMap(props map[string]any) (map[string]Value, error) {
	out := make(map[string]Value, len(props))
	for k, v := range props {
		val, err := FromNative(v)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

// MarshalJSON renders the Value as plain JSON for API responses.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		if v.arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.arr)
	case KindMap:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.obj)
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

// UnmarshalJSON parses plain JSON into a Value, preserving the
// integer/float distinction via json.Number.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromNative(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
