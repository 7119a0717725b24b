package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRegistry_SeedsBuiltinMetaSchemas(t *testing.T) {
	reg, err := buildRegistry(map[string]Value{"": map[string]any{"type": "string"}}, NoRetriever, Draft2020)
	require.NoError(t, err)
	for uri := range builtinMetaSchemas {
		assert.True(t, reg.documents.has(uri), "built-in meta-schema %s should be seeded", uri)
	}
}

func TestBuildRegistry_FetchesExternalRef(t *testing.T) {
	retriever := MapRetriever(map[string]Value{
		"https://example.com/other.json": map[string]any{"type": "integer"},
	})
	reg, err := buildRegistry(map[string]Value{
		"https://example.com/root.json": map[string]any{
			"$id":  "https://example.com/root.json",
			"$ref": "https://example.com/other.json",
		},
	}, retriever, Draft2020)
	require.NoError(t, err)
	assert.True(t, reg.documents.has("https://example.com/other.json"))
}

func TestBuildRegistry_FirstWinsOnDuplicateURI(t *testing.T) {
	metaURI := metaSchemaURIForDraft[Draft7]
	reg, err := buildRegistry(map[string]Value{
		"https://example.com/a.json": map[string]any{
			"$id":  "https://example.com/a.json",
			"type": "string",
		},
		metaURI: map[string]any{"type": "integer"},
	}, NoRetriever, Draft2020)
	require.NoError(t, err)
	doc, ok := reg.documents.get("https://example.com/a.json")
	require.True(t, ok)
	obj, ok := doc.value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", obj["type"])

	meta, ok := reg.documents.get(metaURI)
	require.True(t, ok)
	assert.Equal(t, true, meta.value, "the built-in meta-schema, inserted first, keeps the URI")
}

func TestBuildRegistry_FlagsUnknownMetaSchema(t *testing.T) {
	reg, err := buildRegistry(map[string]Value{
		"": map[string]any{"$schema": "https://example.com/not-a-real-draft"},
	}, NoRetriever, Draft2020)
	require.NoError(t, err)
	err = reg.checkKnownMetaSchema(dummyBaseURI)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSpecification)
}

func TestBuildRegistry_CustomMetaSchemaRegisteredNotFlagged(t *testing.T) {
	reg, err := buildRegistry(map[string]Value{
		"": map[string]any{"$schema": "https://example.com/custom-meta.json"},
		"https://example.com/custom-meta.json": map[string]any{"type": "object"},
	}, NoRetriever, Draft2020)
	require.NoError(t, err)
	assert.NoError(t, reg.checkKnownMetaSchema(dummyBaseURI))
}

func TestBuildRegistry_UnfetchableSchemaRefIsNonFatal(t *testing.T) {
	reg, err := buildRegistry(map[string]Value{
		"": map[string]any{"$schema": "https://example.com/unreachable-meta.json"},
	}, NoRetriever, Draft2020)
	require.NoError(t, err, "a $schema fetch failure must not fail build()")
	err = reg.checkKnownMetaSchema(dummyBaseURI)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSpecification)
}

func TestBuildRegistry_PropagatesRetrieverFailure(t *testing.T) {
	_, err := buildRegistry(map[string]Value{
		"https://example.com/root.json": map[string]any{
			"$id":  "https://example.com/root.json",
			"$ref": "https://example.com/missing.json",
		},
	}, NoRetriever, Draft2020)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriever)
}
