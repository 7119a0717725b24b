package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_RejectsNonBooleanNonObjectSchema(t *testing.T) {
	_, err := NewCompiler().Compile([]byte(`5`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaCompilation)
}

func TestCompile_RejectsEmptyEnum(t *testing.T) {
	_, err := NewCompiler().Compile([]byte(`{"enum": []}`))
	require.Error(t, err)
	var sce *SchemaCompileError
	require.ErrorAs(t, err, &sce)
	assert.Equal(t, "enum", sce.Keyword)
	assert.ErrorIs(t, err, ErrEmptyEnum)
}

func TestCompile_RejectsUnknownTypeName(t *testing.T) {
	_, err := NewCompiler().Compile([]byte(`{"type": "nonsense"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidKeywordType)
}

func TestCompile_RejectsUnresolvedRef(t *testing.T) {
	_, err := NewCompiler().Compile([]byte(`{"$ref": "https://nowhere.example/schema.json"}`))
	require.Error(t, err)
}

func TestCompile_RejectsInvalidID(t *testing.T) {
	_, err := NewCompiler().Compile([]byte(`{"$id": "http://[not-a-valid-host", "type": "string"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidURI)
}

func TestCompile_ItemsTupleLegacyDraft(t *testing.T) {
	v, err := NewCompiler().Compile([]byte(`{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "array",
		"items": [{"type": "integer"}, {"type": "string"}],
		"additionalItems": false
	}`))
	require.NoError(t, err)

	ok, _ := v.IsValid([]byte(`[1, "a"]`))
	assert.True(t, ok)
	ok, _ = v.IsValid([]byte(`[1, "a", "extra"]`))
	assert.False(t, ok, "additionalItems:false rejects anything past the tuple prefix")
}

func TestCompile_PrefixItems2020(t *testing.T) {
	v, err := NewCompiler().Compile([]byte(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "array",
		"prefixItems": [{"type": "integer"}],
		"items": {"type": "string"}
	}`))
	require.NoError(t, err)

	ok, _ := v.IsValid([]byte(`[1, "a", "b"]`))
	assert.True(t, ok)
	ok, _ = v.IsValid([]byte(`[1, 2]`))
	assert.False(t, ok, "second element must satisfy the items schema, not the prefix schema")
}

func TestHoistDiscriminator_FastPathDispatch(t *testing.T) {
	branches := []any{
		map[string]any{
			"properties": map[string]any{"kind": map[string]any{"const": "cat"}},
			"required":   []any{"kind"},
		},
		map[string]any{
			"properties": map[string]any{"kind": map[string]any{"const": "dog"}},
			"required":   []any{"kind"},
		},
	}
	spec := hoistDiscriminator(branches)
	require.NotNil(t, spec)
	assert.Equal(t, "kind", spec.property)
	assert.Equal(t, 0, spec.dispatch["cat"])
	assert.Equal(t, 1, spec.dispatch["dog"])
}

func TestHoistDiscriminator_NoCommonPropertyReturnsNil(t *testing.T) {
	branches := []any{
		map[string]any{
			"properties": map[string]any{"kind": map[string]any{"const": "cat"}},
			"required":   []any{"kind"},
		},
		map[string]any{
			"properties": map[string]any{"species": map[string]any{"const": "dog"}},
			"required":   []any{"species"},
		},
	}
	assert.Nil(t, hoistDiscriminator(branches))
}

func TestCompile_SelfReferentialSchemaCompilesOnce(t *testing.T) {
	v, err := NewCompiler().Compile([]byte(`{
		"$id": "https://example.com/node",
		"type": "object",
		"properties": {
			"next": {"$ref": "#"}
		}
	}`))
	require.NoError(t, err)
	ok, _ := v.IsValid([]byte(`{"next": {"next": {}}}`))
	assert.True(t, ok)
}

func TestCompile_DraftRefSiblingsIgnored(t *testing.T) {
	v, err := NewCompiler().Compile([]byte(`{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"$ref": "#/definitions/str",
		"type": "integer",
		"definitions": {"str": {"type": "string"}}
	}`))
	require.NoError(t, err)
	// draft7 ignores "type" here since $ref is present; only the ref target
	// (string) is evaluated.
	ok, _ := v.IsValid([]byte(`"hello"`))
	assert.True(t, ok)
	ok, _ = v.IsValid([]byte(`5`))
	assert.False(t, ok)
}

func TestCompile_DraftRefSiblingsEvaluated2020(t *testing.T) {
	v, err := NewCompiler().Compile([]byte(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"$ref": "#/$defs/str",
		"minLength": 10,
		"$defs": {"str": {"type": "string"}}
	}`))
	require.NoError(t, err)
	// 2020-12 evaluates $ref alongside siblings: both the ref target and
	// minLength must hold.
	ok, _ := v.IsValid([]byte(`"short"`))
	assert.False(t, ok)
	ok, _ = v.IsValid([]byte(`"a very long string"`))
	assert.True(t, ok)
}
