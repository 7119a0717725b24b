package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzePattern_FastPathClassification(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind patternKind
	}{
		{"exact literal", "^hello$", patternExact},
		{"prefix literal", "^hello", patternPrefix},
		{"alternation of literals", "^(a|b|c)$", patternAlternation},
		{"no-whitespace idiom", `^\S+$`, patternNoWhitespace},
		{"general regex falls back", "^[a-z]+[0-9]*$", patternRegex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp, err := analyzePattern("pattern", "#/pattern", tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, cp.kind)
		})
	}
}

func TestAnalyzePattern_FastPathsMatchSameAsRegex(t *testing.T) {
	cp, err := analyzePattern("pattern", "#/pattern", "^(cat|dog)$")
	require.NoError(t, err)
	assert.True(t, cp.match("cat"))
	assert.True(t, cp.match("dog"))
	assert.False(t, cp.match("catfish"))
}

func TestAnalyzePattern_RejectsLookaround(t *testing.T) {
	_, err := analyzePattern("pattern", "#/pattern", "(?=foo)bar")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRegexUnsupported)
	var rpe *RegexPatternError
	require.ErrorAs(t, err, &rpe)
	assert.Equal(t, "pattern", rpe.Keyword)
}

func TestAnalyzePattern_RejectsBackreference(t *testing.T) {
	_, err := analyzePattern("pattern", "#/pattern", `(a)\1`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRegexUnsupported)
}

func TestAnalyzePattern_PrefixMatchDoesNotAnchorEnd(t *testing.T) {
	cp, err := analyzePattern("pattern", "#/pattern", "^abc")
	require.NoError(t, err)
	assert.True(t, cp.match("abcdef"))
	assert.False(t, cp.match("xabc"))
}
