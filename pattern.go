package jsonschema

import (
	"fmt"
	"regexp"
	"strings"
)

// patternKind classifies a compiled pattern so the VM can skip full regexp
// evaluation for the common shapes JSON Schema authors actually write
// (spec.md §4.3 "Pattern analysis").
type patternKind int

const (
	patternRegex patternKind = iota // general case: run the compiled regexp
	patternExact                    // literal, anchored string equality
	patternPrefix                   // literal prefix, e.g. "^foo"
	patternAlternation               // "^(foo|bar|baz)$" of plain literals
	patternNoWhitespace             // "^\S+$" / "^[^\s]+$", checked with strings.ContainsAny
)

// compiledPattern is the artifact pattern.go hands the compiler: a regexp
// usable in the general case, plus whichever fast-path fields apply.
type compiledPattern struct {
	source string
	kind   patternKind
	re     *regexp.Regexp // always set; fast paths are an optimization, not a replacement
	// fast-path payloads
	literal      string
	alternatives []string
}

// analyzePattern compiles src (an ECMA-262-flavored pattern per spec.md §6)
// with Go's RE2 engine and classifies it. Lookaround and backreferences are
// ECMA-262 features RE2 structurally cannot support; rather than silently
// demoting such a pattern to "always reject" or "always accept", this
// module rejects it at compile time (the resolution of spec.md §9's open
// question: strict mode is the only mode, since no example in this
// module's dependency corpus ships a backtracking engine to fall back to).
func analyzePattern(keyword, location, src string) (*compiledPattern, error) {
	if err := rejectUnsupportedSyntax(src); err != nil {
		return nil, &RegexPatternError{Keyword: keyword, Location: location, Pattern: src, Err: err}
	}

	re, err := regexp.Compile(translateAnchors(src))
	if err != nil {
		return nil, &RegexPatternError{Keyword: keyword, Location: location, Pattern: src, Err: err}
	}

	cp := &compiledPattern{source: src, kind: patternRegex, re: re}

	if lit, ok := exactLiteral(src); ok {
		cp.kind = patternExact
		cp.literal = lit
		return cp, nil
	}
	if lit, ok := prefixLiteral(src); ok {
		cp.kind = patternPrefix
		cp.literal = lit
		return cp, nil
	}
	if alts, ok := literalAlternation(src); ok {
		cp.kind = patternAlternation
		cp.alternatives = alts
		return cp, nil
	}
	if isNoWhitespacePattern(src) {
		cp.kind = patternNoWhitespace
		return cp, nil
	}
	return cp, nil
}

// match evaluates the instance string s against the compiled pattern,
// taking the fast path when one was recognized.
func (cp *compiledPattern) match(s string) bool {
	switch cp.kind {
	case patternExact:
		return s == cp.literal
	case patternPrefix:
		return strings.HasPrefix(s, cp.literal)
	case patternAlternation:
		for _, alt := range cp.alternatives {
			if s == alt {
				return true
			}
		}
		return false
	case patternNoWhitespace:
		return s != "" && !strings.ContainsAny(s, " \t\n\r\f")
	default:
		return cp.re.MatchString(s)
	}
}

// rejectUnsupportedSyntax scans for ECMA-262 constructs RE2 cannot express:
// lookaround ((?=, (?!, (?<=, (?<!) and backreferences (\1-\9).
func rejectUnsupportedSyntax(src string) error {
	lookarounds := []string{"(?=", "(?!", "(?<=", "(?<!"}
	for _, la := range lookarounds {
		if strings.Contains(src, la) {
			return fmt.Errorf("%w: lookaround %q is not supported by the RE2 engine", ErrRegexUnsupported, la)
		}
	}
	for i := 1; i <= 9; i++ {
		if strings.Contains(src, fmt.Sprintf(`\%d`, i)) {
			return fmt.Errorf("%w: backreferences are not supported by the RE2 engine", ErrRegexUnsupported)
		}
	}
	return nil
}

// translateAnchors returns src unchanged: JSON Schema's "pattern" keyword
// has ECMA-262's unanchored-by-default "contains" semantics, which RE2's
// regexp.MatchString already implements natively (substring search unless
// ^/$ are present). It is the single place a draft-specific anchoring quirk
// would be handled.
func translateAnchors(src string) string {
	return src
}

// exactLiteral recognizes "^literal$" where literal contains no further
// metacharacters.
func exactLiteral(src string) (string, bool) {
	if !strings.HasPrefix(src, "^") || !strings.HasSuffix(src, "$") || len(src) < 2 {
		return "", false
	}
	body := src[1 : len(src)-1]
	if containsMeta(body) {
		return "", false
	}
	return unescapeLiteral(body), true
}

// prefixLiteral recognizes "^literal" (no trailing "$") where literal
// contains no further metacharacters.
func prefixLiteral(src string) (string, bool) {
	if !strings.HasPrefix(src, "^") || strings.HasSuffix(src, "$") {
		return "", false
	}
	body := src[1:]
	if containsMeta(body) {
		return "", false
	}
	return unescapeLiteral(body), true
}

// literalAlternation recognizes "^(a|b|c)$" where each branch is a plain
// literal.
func literalAlternation(src string) ([]string, bool) {
	if !strings.HasPrefix(src, "^(") || !strings.HasSuffix(src, ")$") {
		return nil, false
	}
	body := src[2 : len(src)-2]
	parts := strings.Split(body, "|")
	if len(parts) < 2 {
		return nil, false
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if containsMeta(p) {
			return nil, false
		}
		out = append(out, unescapeLiteral(p))
	}
	return out, true
}

// isNoWhitespacePattern recognizes the anchored "^\S+$" / "^[^\s]+$" idiom
// used to assert that the whole string is a non-empty, whitespace-free
// token. The unanchored forms match any string containing one non-space
// character, so they stay on the regexp path.
func isNoWhitespacePattern(src string) bool {
	switch src {
	case `^\S+$`, `^[^\s]+$`:
		return true
	default:
		return false
	}
}

func containsMeta(s string) bool {
	return strings.ContainsAny(s, `.*+?()[]{}|^$\`)
}

func unescapeLiteral(s string) string {
	return strings.ReplaceAll(s, `\`, "")
}
