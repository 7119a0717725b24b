package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormats_BuiltinValidators(t *testing.T) {
	tests := []struct {
		format string
		value  string
		valid  bool
	}{
		{"date-time", "2026-07-31T12:00:00Z", true},
		{"date-time", "not-a-date", false},
		{"date", "2026-07-31", true},
		{"date", "2026-13-40", false},
		{"email", "user@example.com", true},
		{"email", "not-an-email", false},
		{"ipv4", "192.168.1.1", true},
		{"ipv4", "999.999.999.999", false},
		{"ipv6", "::1", true},
		{"ipv6", "192.168.1.1", false},
		{"uuid", "550e8400-e29b-41d4-a716-446655440000", true},
		{"uuid", "not-a-uuid", false},
		{"uri", "https://example.com/path", true},
		{"json-pointer", "/a/b/0", true},
	}
	formats := defaultFormats()
	for _, tt := range tests {
		t.Run(tt.format+"/"+tt.value, func(t *testing.T) {
			fn, ok := formats[tt.format]
			require := assert.New(t)
			require.True(ok, "format %s must be registered", tt.format)
			require.Equal(tt.valid, fn(tt.value))
		})
	}
}

func TestFormat_NonStringInstanceAlwaysPasses(t *testing.T) {
	formats := defaultFormats()
	assert.True(t, formats["email"](Number{Kind: kindInt64, I64: 5, F64: 5}))
}

func TestFormatAssertion_DisabledByDefaultOnWhenRequested(t *testing.T) {
	v, err := NewCompiler(WithFormatAssertion(true)).Compile([]byte(`{"type": "string", "format": "email"}`))
	require := assert.New(t)
	require.NoError(err)
	ok, _ := v.IsValid([]byte(`"not-an-email"`))
	require.False(ok)

	v2, err := NewCompiler().Compile([]byte(`{"type": "string", "format": "email"}`))
	require.NoError(err)
	ok, _ = v2.IsValid([]byte(`"not-an-email"`))
	require.True(ok, "format is annotation-only when assertion is disabled")
}
