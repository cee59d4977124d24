package agtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeScalars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Value
	}{
		{"int", "30", IntValue(30)},
		{"negative", "-5", IntValue(-5)},
		{"graphid", "844424930131969", IntValue(844424930131969)},
		{"float", "3.14", FloatValue(3.14)},
		{"exponent", "1.5e3", FloatValue(1500)},
		{"true", "true", BoolValue(true)},
		{"false", "false", BoolValue(false)},
		{"null", "null", Null},
		{"double quoted", `"Alice"`, StringValue("Alice")},
		{"single quoted", `'Alice'`, StringValue("Alice")},
		{"escaped quote", `'O\'Brien'`, StringValue("O'Brien")},
		{"json escapes", `"a\nb\tcé"`, StringValue("a\nb\tcé")},
		{"annotated numeric", "2.5::numeric", FloatValue(2.5)},
		{"whitespace", "  42  ", IntValue(42)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s, want %s", got, tt.expected)
		})
	}
}

func TestDecodeVertex(t *testing.T) {
	input := `{"id": 844424930131969, "label": "Person", "properties": {"name": "Alice", "age": 30}}::vertex`

	v, err := Decode(input)
	require.NoError(t, err)
	assert.Equal(t, "vertex", v.Annotation())

	m, ok := v.Map()
	require.True(t, ok)

	id, ok := m["id"].Int()
	require.True(t, ok, "vertex id must decode as integer, got %s", m["id"].Kind())
	assert.Equal(t, int64(844424930131969), id)

	props, ok := m["properties"].Map()
	require.True(t, ok)

	// The decode bug this layer guards against: numeric payloads must
	// come back numeric, not stringly.
	age, ok := props["age"].Int()
	require.True(t, ok, "age must stay an integer, got %s", props["age"].Kind())
	assert.Equal(t, int64(30), age)

	name, ok := props["name"].Text()
	require.True(t, ok)
	assert.Equal(t, "Alice", name)
}

func TestDecodeEdge(t *testing.T) {
	input := `{"id": 1125899906842625, "label": "KNOWS", "end_id": 844424930131970, "start_id": 844424930131969, "properties": {"since": 2015}}::edge`

	v, err := Decode(input)
	require.NoError(t, err)
	assert.Equal(t, "edge", v.Annotation())

	m, ok := v.Map()
	require.True(t, ok)

	start, _ := m["start_id"].Int()
	end, _ := m["end_id"].Int()
	assert.Equal(t, int64(844424930131969), start)
	assert.Equal(t, int64(844424930131970), end)
}

func TestDecodeNestedAndBareKeys(t *testing.T) {
	v, err := Decode(`{name: 'Alice', scores: [1, 2.5, null], meta: {active: true}}`)
	require.NoError(t, err)

	m, ok := v.Map()
	require.True(t, ok)

	scores, ok := m["scores"].Array()
	require.True(t, ok)
	require.Len(t, scores, 3)
	assert.True(t, scores[0].Equal(IntValue(1)))
	assert.True(t, scores[1].Equal(FloatValue(2.5)))
	assert.True(t, scores[2].IsNull())

	meta, ok := m["meta"].Map()
	require.True(t, ok)
	assert.True(t, meta["active"].Equal(BoolValue(true)))
}

func TestDecodeErrors(t *testing.T) {
	bad := []string{
		"",
		"{",
		"[1, 2",
		"'unterminated",
		"{key}",
		"tru",
		"1 2",
		"{a: 1,}x",
	}
	for _, input := range bad {
		t.Run(input, func(t *testing.T) {
			_, err := Decode(input)
			assert.Error(t, err)
		})
	}
}
