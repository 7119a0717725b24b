package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveURI_RelativeAgainstBase(t *testing.T) {
	got := resolveURI("https://example.com/schemas/root.json", "other.json")
	assert.Equal(t, "https://example.com/schemas/other.json", got)
}

func TestResolveURI_AbsoluteRefPassesThrough(t *testing.T) {
	got := resolveURI("https://example.com/schemas/root.json", "https://other.example/x.json")
	assert.Equal(t, "https://other.example/x.json", got)
}

func TestCanonicalize_StripsFragment(t *testing.T) {
	cache := newURICache()
	got := canonicalize(cache, "https://example.com/root.json", "https://example.com/other.json#/defs/x")
	assert.Equal(t, "https://example.com/other.json", got)
}

func TestCanonicalize_MemoizesResolution(t *testing.T) {
	cache := newURICache()
	a := canonicalize(cache, "https://example.com/root.json", "other.json")
	b := canonicalize(cache, "https://example.com/root.json", "other.json")
	assert.Equal(t, a, b)
	_, ok := cache.cache[uriCacheKey{base: "https://example.com/root.json", rel: "other.json"}]
	assert.True(t, ok)
}

func TestSplitFragment(t *testing.T) {
	base, frag := splitFragment("https://example.com/a.json#/defs/x")
	assert.Equal(t, "https://example.com/a.json", base)
	assert.Equal(t, "/defs/x", frag)

	base, frag = splitFragment("https://example.com/a.json")
	assert.Equal(t, "https://example.com/a.json", base)
	assert.Equal(t, "", frag)
}

func TestIsURNScheme(t *testing.T) {
	assert.True(t, isURNScheme("urn:uuid:1234"))
	assert.False(t, isURNScheme("https://example.com"))
}

func TestIsAbsoluteURI(t *testing.T) {
	assert.True(t, isAbsoluteURI("https://example.com/a.json"))
	assert.False(t, isAbsoluteURI("relative/path.json"))
}
