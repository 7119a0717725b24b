package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, schema string) *Validator {
	t.Helper()
	v, err := NewCompiler().Compile([]byte(schema))
	require.NoError(t, err)
	return v
}

func TestIsValid_Primitives(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		data   string
		valid  bool
	}{
		{"integer minimum ok", `{"type":"integer","minimum":5}`, `5`, true},
		{"integer minimum violated", `{"type":"integer","minimum":5}`, `4`, false},
		{"exclusiveMinimum boundary", `{"type":"number","exclusiveMinimum":5}`, `5`, false},
		{"string minLength ok", `{"type":"string","minLength":3}`, `"abc"`, true},
		{"string minLength short", `{"type":"string","minLength":3}`, `"ab"`, false},
		{"boolean type mismatch", `{"type":"boolean"}`, `"true"`, false},
		{"null type ok", `{"type":"null"}`, `null`, true},
		{"multipleOf ok", `{"type":"number","multipleOf":0.5}`, `1.5`, true},
		{"multipleOf violated", `{"type":"number","multipleOf":0.5}`, `1.3`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustCompile(t, tt.schema)
			ok, err := v.IsValid([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestOneOf_ExactlyOneBranchMatches(t *testing.T) {
	v := mustCompile(t, `{
		"oneOf": [
			{"type": "integer"},
			{"type": "string", "minLength": 2}
		]
	}`)

	ok, err := v.IsValid([]byte(`5`))
	require.NoError(t, err)
	assert.True(t, ok, "integer matches only the first branch")

	ok, err = v.IsValid([]byte(`"hi"`))
	require.NoError(t, err)
	assert.True(t, ok, "two-char string matches only the second branch")

	ok, err = v.IsValid([]byte(`"h"`))
	require.NoError(t, err)
	assert.False(t, ok, "single-char string fails both branches")
}

func TestOneOf_BothBranchesMatchIsInvalid(t *testing.T) {
	v := mustCompile(t, `{
		"oneOf": [
			{"type": "integer"},
			{"minimum": 0}
		]
	}`)
	ok, err := v.IsValid([]byte(`5`))
	require.NoError(t, err)
	assert.False(t, ok, "an integer >= 0 matches both branches, violating oneOf")

	err = v.Validate([]byte(`5`))
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "one_of", ve.Code)
	assert.Equal(t, 2, ve.Params["count"])
}

func TestAdditionalPropertiesFalse_RejectsUnknownKeys(t *testing.T) {
	v := mustCompile(t, `{
		"type": "object",
		"properties": {"name": {"type": "string"}},
		"additionalProperties": false
	}`)

	ok, err := v.IsValid([]byte(`{"name": "a"}`))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.IsValid([]byte(`{"name": "a", "extra": 1}`))
	require.NoError(t, err)
	assert.False(t, ok)

	errs, err := v.IterErrors([]byte(`{"name": "a", "extra": 1, "another": 2}`))
	require.NoError(t, err)
	var codes []string
	for ve := range errs {
		codes = append(codes, ve.Code)
	}
	assert.Len(t, codes, 2, "both unexpected keys should each report an additionalProperties failure")
}

func TestPatternProperties_NestedErrorLocation(t *testing.T) {
	v := mustCompile(t, `{
		"type": "object",
		"patternProperties": {
			"^S_": {"type": "string"}
		}
	}`)

	errs, err := v.IterErrors([]byte(`{"S_name": 5}`))
	require.NoError(t, err)
	var found *ValidationError
	for ve := range errs {
		found = ve
		break
	}
	require.NotNil(t, found)
	assert.Equal(t, "/S_name", found.InstanceLocation)
	assert.Equal(t, "type", found.Keyword)
}

func TestCyclicRef_ThroughArrayItems(t *testing.T) {
	v := mustCompile(t, `{
		"$id": "https://example.com/tree",
		"type": "object",
		"properties": {
			"children": {
				"type": "array",
				"items": {"$ref": "#"}
			}
		}
	}`)

	ok, err := v.IsValid([]byte(`{"children": [{"children": []}, {"children": [{"children": []}]}]}`))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.IsValid([]byte(`{"children": [{"children": "not an array"}]}`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCrossDocumentRef(t *testing.T) {
	compiler := NewCompiler(WithRetriever(MapRetriever(map[string]Value{
		"https://example.com/definitions.json": map[string]any{
			"$id":  "https://example.com/definitions.json",
			"type": "string",
			"minLength": Number{Kind: kindInt64, I64: 3, F64: 3},
		},
	})))
	v, err := compiler.Compile([]byte(`{
		"$id": "https://example.com/root.json",
		"$ref": "https://example.com/definitions.json"
	}`))
	require.NoError(t, err)

	ok, err := v.IsValid([]byte(`"abcd"`))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.IsValid([]byte(`"ab"`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIterErrors_StopsEarlyOnBreak(t *testing.T) {
	v := mustCompile(t, `{
		"type": "object",
		"properties": {
			"a": {"type": "string"},
			"b": {"type": "string"},
			"c": {"type": "string"}
		}
	}`)
	count := 0
	errs, err := v.IterErrors([]byte(`{"a": 1, "b": 2, "c": 3}`))
	require.NoError(t, err)
	for range errs {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestAllOf_ErrorModeEvaluatesEveryBranch(t *testing.T) {
	v := mustCompile(t, `{
		"allOf": [
			{"minimum": 10},
			{"multipleOf": 2},
			{"maximum": 1}
		]
	}`)
	ok, err := v.IsValid([]byte(`3`))
	require.NoError(t, err)
	assert.False(t, ok)

	errs, err := v.IterErrors([]byte(`3`))
	require.NoError(t, err)
	var codes []string
	for ve := range errs {
		codes = append(codes, ve.Code)
	}
	assert.ElementsMatch(t, []string{"minimum", "multiple_of", "maximum"}, codes)
}

func TestAnyOf_PassesWhenOneBranchMatches(t *testing.T) {
	v := mustCompile(t, `{"anyOf": [{"type": "string"}, {"type": "integer"}]}`)
	ok, err := v.IsValid([]byte(`5`))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.IsValid([]byte(`true`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNot(t *testing.T) {
	v := mustCompile(t, `{"not": {"type": "string"}}`)
	ok, _ := v.IsValid([]byte(`5`))
	assert.True(t, ok)
	ok, _ = v.IsValid([]byte(`"x"`))
	assert.False(t, ok)
}

func TestIfThenElse(t *testing.T) {
	v := mustCompile(t, `{
		"if": {"properties": {"kind": {"const": "a"}}},
		"then": {"required": ["a_only"]},
		"else": {"required": ["b_only"]}
	}`)
	ok, _ := v.IsValid([]byte(`{"kind": "a", "a_only": 1}`))
	assert.True(t, ok)
	ok, _ = v.IsValid([]byte(`{"kind": "a"}`))
	assert.False(t, ok)
	ok, _ = v.IsValid([]byte(`{"kind": "b", "b_only": 1}`))
	assert.True(t, ok)
}

func TestRequiredAndDependentRequired(t *testing.T) {
	v := mustCompile(t, `{
		"type": "object",
		"required": ["name"],
		"dependentRequired": {"credit_card": ["billing_address"]}
	}`)
	ok, _ := v.IsValid([]byte(`{"name": "a"}`))
	assert.True(t, ok)
	ok, _ = v.IsValid([]byte(`{}`))
	assert.False(t, ok)
	ok, _ = v.IsValid([]byte(`{"name": "a", "credit_card": "1234"}`))
	assert.False(t, ok)
	ok, _ = v.IsValid([]byte(`{"name": "a", "credit_card": "1234", "billing_address": "x"}`))
	assert.True(t, ok)
}

func TestUniqueItems(t *testing.T) {
	v := mustCompile(t, `{"type": "array", "uniqueItems": true}`)
	ok, _ := v.IsValid([]byte(`[1, 2, 3]`))
	assert.True(t, ok)
	ok, _ = v.IsValid([]byte(`[1, 2, 1]`))
	assert.False(t, ok)
}

func TestContainsWithMinMax(t *testing.T) {
	v := mustCompile(t, `{"type": "array", "contains": {"type": "integer"}, "minContains": 2, "maxContains": 3}`)
	ok, _ := v.IsValid([]byte(`["x", 1, 2]`))
	assert.True(t, ok)
	ok, _ = v.IsValid([]byte(`["x", 1]`))
	assert.False(t, ok)
	ok, _ = v.IsValid([]byte(`[1, 2, 3, 4]`))
	assert.False(t, ok)
}

func TestFalseSchemaRejectsEverything(t *testing.T) {
	v := mustCompile(t, `false`)
	ok, _ := v.IsValid([]byte(`null`))
	assert.False(t, ok)
	ok, _ = v.IsValid([]byte(`{}`))
	assert.False(t, ok)
}

func TestTrueSchemaAcceptsEverything(t *testing.T) {
	v := mustCompile(t, `true`)
	ok, _ := v.IsValid([]byte(`null`))
	assert.True(t, ok)
	ok, _ = v.IsValid([]byte(`{"anything": [1,2,3]}`))
	assert.True(t, ok)
}

func TestValidate_WrapsValidationError(t *testing.T) {
	v := mustCompile(t, `{"type": "string"}`)
	err := v.Validate([]byte(`5`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "type", ve.Keyword)
}

func TestUnevaluatedPropertiesWithAllOf(t *testing.T) {
	v := mustCompile(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"allOf": [
			{"properties": {"a": {"type": "string"}}}
		],
		"unevaluatedProperties": false
	}`)
	ok, _ := v.IsValid([]byte(`{"a": "x"}`))
	// Known simplification: unevaluatedProperties only tracks this node's own
	// properties/patternProperties/additionalProperties, not annotations
	// produced by sibling allOf branches, so "a" (evaluated only by the allOf
	// branch) is treated as unevaluated here and the instance is rejected.
	assert.False(t, ok)
}
