package jsonschema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kaptinlin/go-i18n"
)

// ValidationError is one failing instruction reported at validate time
// (spec.md §6 "Error record", §7 "ValidationError"): the schema and
// instance locations that produced it, a keyword/code pair for
// localization, and the literal instance value that failed, mirroring the
// teacher's EvaluationError/EvaluationResult (result.go) collapsed into a
// single flat record since the VM walks one flat Program rather than a
// keyword-method tree.
type ValidationError struct {
	SchemaLocation   string
	InstanceLocation string
	Keyword          string
	Code             string
	Message          string
	Params           map[string]any
	Value            Value
}

// Error renders the English default message with Params substituted in,
// ported from the teacher's EvaluationError.Error/replace (utils.go).
func (e *ValidationError) Error() string {
	return e.InstanceLocation + ": " + replaceParams(e.Message, e.Params)
}

// Localize renders the message in the localizer's locale, falling back to
// the English default when localizer is nil (teacher's
// EvaluationError.Localize, result.go).
func (e *ValidationError) Localize(localizer *i18n.Localizer) string {
	if localizer == nil {
		return e.Error()
	}
	return localizer.Get(e.Code, i18n.Vars(e.Params))
}

// replaceParams substitutes "{key}" placeholders in template with Params,
// ported verbatim from the teacher's replace (utils.go).
func replaceParams(template string, params map[string]any) string {
	for key, value := range params {
		template = strings.ReplaceAll(template, "{"+key+"}", toDisplayString(value))
	}
	return template
}

func toDisplayString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case Number:
		if t.isIntegerValued() {
			switch t.Kind {
			case kindUint64:
				return itoa(int(t.U64))
			case kindInt64:
				return itoa(int(t.I64))
			}
		}
		return strconv.FormatFloat(t.F64, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Result is the outcome of a single IsValid/Validate call bundled with
// every ValidationError collected, mirroring the teacher's EvaluationResult
// flattened to this module's one-record-per-instruction shape (result.go).
type Result struct {
	Valid  bool
	Errors []*ValidationError
}

func (r *Result) Error() string {
	if r.Valid || len(r.Errors) == 0 {
		return "instance does not match schema"
	}
	return r.Errors[0].Error()
}
