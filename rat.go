package jsonschema

import (
	"fmt"
	"math/big"
)

// numberToRat converts a Number into an exact big.Rat, ported from the
// teacher's Rat/convertToBigRat (rat.go) but driven from this module's
// Number struct instead of an untyped interface{}, so no precision is lost
// going through float64 for the uint64/int64 cases.
func numberToRat(n Number) (*big.Rat, error) {
	r := new(big.Rat)
	switch n.Kind {
	case kindUint64:
		r.SetUint64(n.U64)
	case kindInt64:
		r.SetInt64(n.I64)
	case kindFloat64:
		if isInf(n.F64) || n.F64 != n.F64 { // NaN
			return nil, fmt.Errorf("%w: non-finite float", ErrRatConversion)
		}
		if _, ok := r.SetString(fmt.Sprintf("%v", n.F64)); !ok {
			if rr := r.SetFloat64(n.F64); rr == nil {
				return nil, fmt.Errorf("%w: %v", ErrRatConversion, n.F64)
			}
		}
	default:
		return nil, ErrUnsupportedRatType
	}
	return r, nil
}

// compareNumbers returns -1, 0, or 1 comparing a and b exactly, bridging
// across numberKind (int/uint/float) via big.Rat so e.g. a float64 bound of
// 1e300 compares correctly against a uint64 instance.
func compareNumbers(a, b Number) (int, error) {
	ra, err := numberToRat(a)
	if err != nil {
		return 0, err
	}
	rb, err := numberToRat(b)
	if err != nil {
		return 0, err
	}
	return ra.Cmp(rb), nil
}

// isMultipleOfRat reports whether instance is an exact integer multiple of
// divisor, evaluated in exact rational arithmetic (spec.md's multipleOf
// must not use floating-point division, which misclassifies cases like
// 0.615 % 0.01 due to binary rounding).
func isMultipleOfRat(instance, divisor *big.Rat) bool {
	if divisor.Sign() == 0 {
		return false
	}
	q := new(big.Rat).Quo(instance, divisor)
	return q.IsInt()
}
