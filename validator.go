package jsonschema

import (
	"fmt"
	"iter"
)

// Validator is the immutable result of compiling a schema (spec.md §4.7
// "Validator facade"): a Program plus the Compiler whose format/content
// registries it was compiled against. Safe for concurrent read-only use,
// since neither field is mutated after Compiler.compileFromRegistry
// constructs it.
type Validator struct {
	program  *Program
	compiler *Compiler
}

func (v *Validator) newVM() *vm {
	return &vm{program: v.program, compiler: v.compiler}
}

// IsValid decodes data and reports whether it satisfies the compiled
// schema, discarding error detail (spec.md §4.7 "is_valid").
func (v *Validator) IsValid(data []byte) (bool, error) {
	instance, err := decodeValue(data)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrJSONUnmarshal, err)
	}
	return v.IsValidValue(instance), nil
}

// IsValidValue reports whether an already-decoded instance satisfies the
// compiled schema.
func (v *Validator) IsValidValue(instance Value) bool {
	return v.newVM().Run(instance)
}

// Validate decodes data and returns the first ValidationError wrapped in
// ErrValidationFailed, or nil if it is valid (spec.md §4.7 "validate").
func (v *Validator) Validate(data []byte) error {
	instance, err := decodeValue(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrJSONUnmarshal, err)
	}
	return v.ValidateValue(instance)
}

// ValidateValue is Validate for an already-decoded instance.
func (v *Validator) ValidateValue(instance Value) error {
	for ve := range v.newVM().RunErrors(instance) {
		return fmt.Errorf("%w: %w", ErrValidationFailed, ve)
	}
	return nil
}

// IterErrors decodes data and streams every ValidationError lazily (spec.md
// §4.7 "iter_errors"); range over the result and break early to stop the
// walk mid-schema.
func (v *Validator) IterErrors(data []byte) (iter.Seq[*ValidationError], error) {
	instance, err := decodeValue(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJSONUnmarshal, err)
	}
	return v.IterErrorsValue(instance), nil
}

// IterErrorsValue is IterErrors for an already-decoded instance.
func (v *Validator) IterErrorsValue(instance Value) iter.Seq[*ValidationError] {
	return v.newVM().RunErrors(instance)
}
