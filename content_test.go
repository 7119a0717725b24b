package jsonschema

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentEncoding_Base64(t *testing.T) {
	v, err := NewCompiler().Compile([]byte(`{"type": "string", "contentEncoding": "base64"}`))
	require.NoError(t, err)

	encoded := base64.StdEncoding.EncodeToString([]byte("hello"))
	ok, err := v.IsValid([]byte(`"` + encoded + `"`))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.IsValid([]byte(`"not valid base64!!"`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContentMediaType_ApplicationJSON(t *testing.T) {
	v, err := NewCompiler().Compile([]byte(`{"type": "string", "contentMediaType": "application/json"}`))
	require.NoError(t, err)

	ok, err := v.IsValid([]byte(`"{\"a\": 1}"`))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.IsValid([]byte(`"not json"`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContentSchema_ValidatesParsedMediaType(t *testing.T) {
	v, err := NewCompiler().Compile([]byte(`{
		"type": "string",
		"contentMediaType": "application/json",
		"contentSchema": {"type": "object", "required": ["name"]}
	}`))
	require.NoError(t, err)

	ok, err := v.IsValid([]byte(`"{\"name\": \"a\"}"`))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.IsValid([]byte(`"{\"other\": 1}"`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContentEncodingThenMediaType_Base64JSON(t *testing.T) {
	v, err := NewCompiler().Compile([]byte(`{
		"type": "string",
		"contentEncoding": "base64",
		"contentMediaType": "application/json"
	}`))
	require.NoError(t, err)

	encoded := base64.StdEncoding.EncodeToString([]byte(`{"x": 1}`))
	ok, err := v.IsValid([]byte(`"` + encoded + `"`))
	require.NoError(t, err)
	assert.True(t, ok)
}
