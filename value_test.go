package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNumberFromLiteral_ClassifiesKind(t *testing.T) {
	n, ok := newNumberFromLiteral("42")
	assert.True(t, ok)
	assert.Equal(t, kindUint64, n.Kind)

	n, ok = newNumberFromLiteral("-42")
	assert.True(t, ok)
	assert.Equal(t, kindInt64, n.Kind)

	n, ok = newNumberFromLiteral("3.5")
	assert.True(t, ok)
	assert.Equal(t, kindFloat64, n.Kind)
	assert.False(t, n.isIntegerValued())

	n, ok = newNumberFromLiteral("3.0")
	assert.True(t, ok)
	assert.True(t, n.isIntegerValued(), "3.0 is integer-valued per JSON Schema's type rule")
}

func TestJSONEqual_NumbersCompareByValue(t *testing.T) {
	intVal, _ := newNumberFromLiteral("1")
	floatVal, _ := newNumberFromLiteral("1.0")
	assert.True(t, jsonEqual(intVal, floatVal))
}

func TestJSONEqual_ObjectsIgnoreKeyOrder(t *testing.T) {
	a := map[string]any{"x": "1", "y": "2"}
	b := map[string]any{"y": "2", "x": "1"}
	assert.True(t, jsonEqual(a, b))
}

func TestJSONEqual_ArraysAreOrderSensitive(t *testing.T) {
	assert.False(t, jsonEqual([]any{"1", "2"}, []any{"2", "1"}))
	assert.True(t, jsonEqual([]any{"1", "2"}, []any{"1", "2"}))
}

func TestJSONType(t *testing.T) {
	n, _ := newNumberFromLiteral("5")
	assert.Equal(t, "integer", jsonType(n))
	f, _ := newNumberFromLiteral("5.5")
	assert.Equal(t, "number", jsonType(f))
	assert.Equal(t, "null", jsonType(nil))
	assert.Equal(t, "array", jsonType([]any{}))
	assert.Equal(t, "object", jsonType(map[string]any{}))
}

func TestRuneLength_CountsCodePointsNotBytes(t *testing.T) {
	assert.Equal(t, 2, runeLength("日本"))
	assert.Equal(t, 6, len("日本")) // 3 bytes per rune in UTF-8
}

func TestSortedKeys_Deterministic(t *testing.T) {
	m := map[string]any{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, sortedKeys(m))
}

func TestDecodeValue_ClassifiesNumbersFromJSON(t *testing.T) {
	v, err := decodeValue([]byte(`{"a": 5, "b": 5.5, "c": -5}`))
	assert.NoError(t, err)
	obj := v.(map[string]any)
	assert.Equal(t, kindUint64, obj["a"].(Number).Kind)
	assert.Equal(t, kindFloat64, obj["b"].(Number).Kind)
	assert.Equal(t, kindInt64, obj["c"].(Number).Kind)
}
