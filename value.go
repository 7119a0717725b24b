package jsonschema

import (
	"math"
	"math/big"
	"sort"
	"unicode/utf8"
)

// Value is a decoded JSON value: nil, bool, string, Number, []any, or
// map[string]any. Decoding goes through decode.go, which classifies every
// JSON number once (§3 of SPEC_FULL.md: "number distinguishes at least
// unsigned-integer, signed-integer, and float subcases") instead of
// collapsing everything to float64.
type Value = any

// numberKind is the runtime-comparison subtype of a decoded JSON number.
type numberKind uint8

const (
	kindUint64 numberKind = iota
	kindInt64
	kindFloat64
)

// Number is the decoded representation of a JSON number. Exactly one of
// U64/I64/F64 is authoritative, selected by Kind; F64 is always populated
// (possibly with rounding for very large integers) so numeric predicate
// instructions that don't care about the distinction can read it directly.
type Number struct {
	Kind numberKind
	U64  uint64
	I64  int64
	F64  float64
}

// newNumberFromLiteral classifies a JSON number's literal text the way the
// teacher's getDataType/rat.go do: try exact big.Int first, fall back to
// big.Float, so "3" folds to an integer kind without float round-off and
// "3.0" still reports as an integer value per JSON Schema's type rule.
func newNumberFromLiteral(lit string) (Number, bool) {
	if bi, ok := new(big.Int).SetString(lit, 10); ok {
		f, _ := new(big.Float).SetInt(bi).Float64()
		if bi.IsUint64() {
			return Number{Kind: kindUint64, U64: bi.Uint64(), F64: f}, true
		}
		if bi.IsInt64() {
			return Number{Kind: kindInt64, I64: bi.Int64(), F64: f}, true
		}
		return Number{Kind: kindFloat64, F64: f}, true
	}
	bf, ok := new(big.Float).SetString(lit)
	if !ok {
		return Number{}, false
	}
	f, _ := bf.Float64()
	return Number{Kind: kindFloat64, F64: f}, true
}

// isIntegerValued reports whether n has a zero fractional part, the JSON
// Schema "integer" type test (spec.md §3/§4.5 TYPE_INTEGER).
func (n Number) isIntegerValued() bool {
	switch n.Kind {
	case kindUint64, kindInt64:
		return true
	default:
		return n.F64 == float64(int64(n.F64)) && !isInf(n.F64)
	}
}

func isInf(f float64) bool { return math.IsInf(f, 0) }

// jsonType returns the JSON Schema type name for a decoded value.
func jsonType(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case Number:
		if t.isIntegerValued() {
			return "integer"
		}
		return "number"
	default:
		return "unknown"
	}
}

// runeLength measures a JSON string's length in Unicode code points, per
// the JSON Schema spec's definition of minLength/maxLength (spec.md §4.4:
// "length in characters, not bytes").
func runeLength(s string) int {
	return utf8.RuneCountInString(s)
}

// jsonEqual implements JSON Schema's instance-equality relation, used by
// const, enum, and uniqueItems: objects compare by key set regardless of
// order, arrays compare element-wise and order-sensitively, and numbers
// compare by mathematical value so 1 == 1.0.
func jsonEqual(a, b any) bool {
	an, aok := a.(Number)
	bn, bok := b.(Number)
	if aok || bok {
		if !aok || !bok {
			return false
		}
		return numberEqual(an, bn)
	}
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !jsonEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bval, exists := bv[k]
			if !exists || !jsonEqual(v, bval) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// numberEqual compares two Numbers by mathematical value rather than by
// Kind, so an integer 1 and a float 1.0 are the same JSON Schema value.
func numberEqual(a, b Number) bool {
	if a.Kind == kindUint64 && b.Kind == kindUint64 {
		return a.U64 == b.U64
	}
	if a.Kind == kindInt64 && b.Kind == kindInt64 {
		return a.I64 == b.I64
	}
	return a.F64 == b.F64
}

// sortedKeys returns an object's keys in deterministic ascending order, used
// wherever iteration order must be stable (additionalProperties rejection
// lists, error records).
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
