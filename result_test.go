package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_ErrorSubstitutesParams(t *testing.T) {
	ve := &ValidationError{
		InstanceLocation: "/age",
		Keyword:          "minimum",
		Code:             "minimum",
		Message:          "value must be greater than or equal to {min}",
		Params:           map[string]any{"min": 18},
	}
	assert.Equal(t, "/age: value must be greater than or equal to 18", ve.Error())
}

func TestValidationError_LocalizeFallsBackWithoutLocalizer(t *testing.T) {
	ve := &ValidationError{
		InstanceLocation: "/name",
		Message:          "value must be of type {expected}",
		Params:           map[string]any{"expected": "string"},
	}
	assert.Equal(t, ve.Error(), ve.Localize(nil))
}

func TestValidationError_LocalizeUsesBundle(t *testing.T) {
	bundle, err := NewI18n()
	require.NoError(t, err)
	localizer := bundle.NewLocalizer("en")

	ve := &ValidationError{
		Code:   "minimum",
		Params: map[string]any{"min": 18},
	}
	msg := ve.Localize(localizer)
	assert.Contains(t, msg, "18")
}

func TestToDisplayString_NumberKinds(t *testing.T) {
	assert.Equal(t, "3", toDisplayString(Number{Kind: kindInt64, I64: 3, F64: 3}))
	assert.Equal(t, "3", toDisplayString(Number{Kind: kindUint64, U64: 3, F64: 3}))
	assert.Equal(t, "str", toDisplayString("str"))
	assert.Equal(t, "5", toDisplayString(5))
	assert.Equal(t, "1.5", toDisplayString(Number{Kind: kindFloat64, F64: 1.5}))
}

func TestResult_ErrorReportsFirstFailure(t *testing.T) {
	r := &Result{
		Valid: false,
		Errors: []*ValidationError{
			{InstanceLocation: "/a", Message: "first failure"},
			{InstanceLocation: "/b", Message: "second failure"},
		},
	}
	assert.Contains(t, r.Error(), "first failure")
}
