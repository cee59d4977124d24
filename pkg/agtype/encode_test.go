package agtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"null", Null, "null"},
		{"true", BoolValue(true), "true"},
		{"false", BoolValue(false), "false"},
		{"int", IntValue(30), "30"},
		{"negative int", IntValue(-7), "-7"},
		{"big int", IntValue(844424930131969), "844424930131969"},
		{"float", FloatValue(3.14), "3.14"},
		// Integral floats keep a decimal point so they stay floats.
		{"integral float", FloatValue(30), "30.0"},
		{"string", StringValue("Alice"), "'Alice'"},
		{"string with quote", StringValue("O'Brien"), `'O\'Brien'`},
		{"string with backslash", StringValue(`a\b`), `'a\\b'`},
		{"string with newline", StringValue("a\nb"), `'a\nb'`},
		{"array", ArrayValue(IntValue(1), StringValue("x")), "[1, 'x']"},
		{"nested map", MapValue(map[string]Value{
			"inner": MapValue(map[string]Value{"k": IntValue(1)}),
		}), "{inner: {k: 1}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Encode(tt.input))
		})
	}
}

func TestEncodeMapSortedAndNullFree(t *testing.T) {
	props := map[string]Value{
		"name":    StringValue("Alice"),
		"age":     IntValue(30),
		"deleted": Null,
	}

	// Null entries are omitted, keys are sorted.
	assert.Equal(t, "{age: 30, name: 'Alice'}", EncodeMap(props))

	// Deterministic across calls.
	for i := 0; i < 10; i++ {
		assert.Equal(t, "{age: 30, name: 'Alice'}", EncodeMap(props))
	}
}

func TestRoundTrip(t *testing.T) {
	values := []Value{
		Null,
		BoolValue(true),
		BoolValue(false),
		IntValue(0),
		IntValue(30),
		IntValue(-42),
		IntValue(844424930131969),
		FloatValue(3.14),
		FloatValue(30),
		FloatValue(-0.001),
		FloatValue(1.5e30),
		StringValue(""),
		StringValue("Alice"),
		StringValue("30"),
		StringValue("it's \\ tricky\n"),
		ArrayValue(),
		ArrayValue(IntValue(1), FloatValue(2.5), StringValue("three"), BoolValue(false), Null),
		MapValue(map[string]Value{}),
		MapValue(map[string]Value{
			"name":  StringValue("Alice"),
			"age":   IntValue(30),
			"tags":  ArrayValue(StringValue("a"), StringValue("b")),
			"inner": MapValue(map[string]Value{"x": FloatValue(1.5)}),
		}),
	}

	for _, v := range values {
		t.Run(Encode(v), func(t *testing.T) {
			back, err := Decode(Encode(v))
			require.NoError(t, err)
			assert.True(t, v.Equal(back), "round trip changed value: %s -> %s", v, back)
		})
	}
}
