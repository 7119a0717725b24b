package jsonschema

import (
	"iter"
	"strings"
)

// vm executes a compiled Program against a decoded instance (spec.md §4.6
// "Virtual machine"). Rather than the stack-machine-with-explicit-PC the
// spec describes literally, this VM walks the flat instruction array with
// ordinary Go recursion: every compound opcode (OpProperties, OpAllOf,
// OpRefCall, ...) carries the Addr/Proc of a self-contained, contiguous
// instruction run (compiler.go's flush), so "descend into a subschema" is
// just a nested call to runNode at that address — the Go call stack stands
// in for spec.md's explicit value/iterator/combinator/call stacks, which
// keeps the interpreter a plain recursive-descent evaluator instead of a
// hand-rolled bytecode loop with manual stack bookkeeping.
type vm struct {
	program  *Program
	compiler *Compiler
}

// collector accumulates ValidationError records for the lazy streaming-error
// execution mode (spec.md §4.6 "Error execution"); a nil collector, or one
// with a nil yield func, means boolean-only mode, where composite keywords
// (allOf, anyOf, oneOf) take the cheaper short-circuiting path since no
// caller is listening for individual failures.
type collector struct {
	yield func(*ValidationError) bool
	stop  bool
}

func (c *collector) active() bool { return c != nil && c.yield != nil }

func (c *collector) shouldStop() bool { return c != nil && c.stop }

func (c *collector) fail(instancePath, schemaPath, keyword, code, message string, params map[string]any, value Value) {
	if !c.active() || c.stop {
		return
	}
	ve := &ValidationError{
		SchemaLocation:   schemaPath,
		InstanceLocation: instancePath,
		Keyword:          keyword,
		Code:             code,
		Message:          message,
		Params:           params,
		Value:            value,
	}
	if !c.yield(ve) {
		c.stop = true
	}
}

// Run executes the VM in boolean mode (spec.md §4.6 "Validity execution").
func (m *vm) Run(instance Value) bool {
	return m.runNode(m.program.root, instance, "", "#", nil)
}

// RunErrors executes the VM in streaming error mode (spec.md §4.6 "Error
// execution"), yielding each ValidationError lazily: the walk stops as soon
// as the consuming range loop breaks (range-over-func propagates that as
// yield returning false, which this package threads back through
// collector.stop).
func (m *vm) RunErrors(instance Value) iter.Seq[*ValidationError] {
	return func(yield func(*ValidationError) bool) {
		c := &collector{yield: yield}
		m.runNode(m.program.root, instance, "", "#", c)
	}
}

// runNode evaluates the self-contained instruction run starting at addr
// against instance, reporting failures (when c is collecting) with
// instancePath/schemaPath as the JSON Pointers in effect at this node.
// instr.Location is always "#/..." relative to this node's own root, so the
// full schema pointer is schemaPath + the location with its leading "#"
// trimmed.
func (m *vm) runNode(addr int, instance Value, instancePath, schemaPath string, c *collector) bool {
	if c.shouldStop() {
		return false
	}

	valid := true
	evaluatedProps := make(map[string]bool)
	prefixCount := 0
	itemsCoversRest := false
	containsMatched := make(map[int]bool)
	var contentDecoded []byte
	var contentDecodedOK bool
	var contentParsed Value
	var contentParsedOK bool

	fail := func(instr Instruction, code, message string, params map[string]any) {
		valid = false
		loc := schemaPath + strings.TrimPrefix(instr.Location, "#")
		c.fail(instancePath, loc, instr.Keyword, code, message, params, instance)
	}
	childLoc := func(instr Instruction) string {
		return schemaPath + strings.TrimPrefix(instr.Location, "#")
	}

	pc := addr
	for {
		instr := m.program.instructions[pc]
		if instr.Op == OpHalt {
			break
		}

		switch instr.Op {
		case OpNop:
			// reserved slot, never reached once patched

		case OpTrue:
			// always valid

		case OpFalse:
			fail(instr, "false_schema", "instance does not match the false schema", nil)

		case OpType:
			if instanceTypeBits(instance)&instr.Types == 0 {
				fail(instr, "type", "value must be of type {expected}", map[string]any{"expected": typeMaskNames(instr.Types)})
			}

		case OpConst:
			if !jsonEqual(instance, m.program.values[instr.Pool]) {
				fail(instr, "const", "value must equal the constant defined in the schema", nil)
			}

		case OpEnum:
			set := m.program.valueLists[instr.Pool]
			matched := false
			for _, v := range set.values {
				if jsonEqual(instance, v) {
					matched = true
					break
				}
			}
			if !matched {
				fail(instr, "enum", "value must be one of the enumerated values", nil)
			}

		case OpNumberRange:
			if n, ok := instance.(Number); ok {
				nr := m.program.numberRanges[instr.Pool]
				if nr.hasMin {
					cmp, err := compareNumbers(n, nr.min)
					if err == nil {
						if nr.exclusiveMin && cmp <= 0 {
							fail(instr, "exclusive_minimum", "value must be greater than {min}", map[string]any{"min": nr.min})
						} else if !nr.exclusiveMin && cmp < 0 {
							fail(instr, "minimum", "value must be greater than or equal to {min}", map[string]any{"min": nr.min})
						}
					}
				}
				if nr.hasMax {
					cmp, err := compareNumbers(n, nr.max)
					if err == nil {
						if nr.exclusiveMax && cmp >= 0 {
							fail(instr, "exclusive_maximum", "value must be less than {max}", map[string]any{"max": nr.max})
						} else if !nr.exclusiveMax && cmp > 0 {
							fail(instr, "maximum", "value must be less than or equal to {max}", map[string]any{"max": nr.max})
						}
					}
				}
			}

		case OpMultipleOf:
			if n, ok := instance.(Number); ok {
				divisor, err := numberToRat(m.program.rats[instr.Pool].n)
				if err == nil {
					instVal, err := numberToRat(n)
					if err == nil && !isMultipleOfRat(instVal, divisor) {
						fail(instr, "multiple_of", "value must be a multiple of {divisor}", map[string]any{"divisor": m.program.rats[instr.Pool].n})
					}
				}
			}

		case OpMinLength:
			if s, ok := instance.(string); ok && runeLength(s) < instr.Int {
				fail(instr, "min_length", "length must be greater than or equal to {min}", map[string]any{"min": instr.Int})
			}

		case OpMaxLength:
			if s, ok := instance.(string); ok && runeLength(s) > instr.Int {
				fail(instr, "max_length", "length must be less than or equal to {max}", map[string]any{"max": instr.Int})
			}

		case OpPattern:
			if s, ok := instance.(string); ok {
				cp := m.program.patterns[instr.Pool]
				if !cp.match(s) {
					fail(instr, "pattern", "value must match pattern {pattern}", map[string]any{"pattern": cp.source})
				}
			}

		case OpFormat:
			if m.compiler.assertFormat {
				name := m.program.formats[instr.Pool]
				if fn, ok := m.compiler.formats[name]; ok && !fn(instance) {
					fail(instr, "format", "value does not match format {format}", map[string]any{"format": name})
				}
			}

		case OpMinItems:
			if arr, ok := instance.([]any); ok && len(arr) < instr.Int {
				fail(instr, "min_items", "array must contain at least {min} items", map[string]any{"min": instr.Int})
			}

		case OpMaxItems:
			if arr, ok := instance.([]any); ok && len(arr) > instr.Int {
				fail(instr, "max_items", "array must contain at most {max} items", map[string]any{"max": instr.Int})
			}

		case OpUniqueItems:
			if arr, ok := instance.([]any); ok && !itemsUnique(arr) {
				fail(instr, "unique_items", "array items must be unique", nil)
			}

		case OpPrefixItems:
			if arr, ok := instance.([]any); ok {
				addrs := m.program.addrLists[instr.Pool]
				prefixCount = len(addrs)
				for i, a := range addrs {
					if i >= len(arr) {
						break
					}
					if !m.runNode(a, arr[i], instancePath+"/"+itoa(i), childLoc(instr)+"/"+itoa(i), c) {
						valid = false
						if !c.active() {
							break
						}
					}
					if c.shouldStop() {
						return false
					}
				}
			}

		case OpItems:
			if arr, ok := instance.([]any); ok {
				itemsCoversRest = true
				for i := prefixCount; i < len(arr); i++ {
					if !m.runNode(instr.Addr, arr[i], instancePath+"/"+itoa(i), childLoc(instr), c) {
						valid = false
						if !c.active() {
							break
						}
					}
					if c.shouldStop() {
						return false
					}
				}
			}

		case OpAdditionalItems:
			if arr, ok := instance.([]any); ok {
				itemsCoversRest = true
				for i := prefixCount; i < len(arr); i++ {
					if !m.runNode(instr.Addr, arr[i], instancePath+"/"+itoa(i), childLoc(instr), c) {
						valid = false
						if !c.active() {
							break
						}
					}
					if c.shouldStop() {
						return false
					}
				}
			}

		case OpContains:
			if arr, ok := instance.([]any); ok {
				spec := m.program.containsSpecs[instr.Pool]
				count := 0
				for i, elem := range arr {
					if m.runNode(spec.addr, elem, instancePath+"/"+itoa(i), childLoc(instr), nil) {
						count++
						containsMatched[i] = true
					}
				}
				if count < spec.min || (spec.max >= 0 && count > spec.max) {
					fail(instr, "contains", "array must contain between {min} and {max} matching items", map[string]any{"min": spec.min, "max": spec.max})
				}
			}

		case OpUnevaluatedItems:
			if arr, ok := instance.([]any); ok {
				evaluatedUpTo := prefixCount
				if itemsCoversRest {
					evaluatedUpTo = len(arr)
				}
				for i := 0; i < len(arr); i++ {
					if i < evaluatedUpTo || containsMatched[i] {
						continue
					}
					if !m.runNode(instr.Addr, arr[i], instancePath+"/"+itoa(i), childLoc(instr), c) {
						valid = false
					}
					if c.shouldStop() {
						return false
					}
				}
			}

		case OpMinProperties:
			if obj, ok := instance.(map[string]any); ok && len(obj) < instr.Int {
				fail(instr, "min_properties", "object must contain at least {min} properties", map[string]any{"min": instr.Int})
			}

		case OpMaxProperties:
			if obj, ok := instance.(map[string]any); ok && len(obj) > instr.Int {
				fail(instr, "max_properties", "object must contain at most {max} properties", map[string]any{"max": instr.Int})
			}

		case OpRequired:
			if obj, ok := instance.(map[string]any); ok {
				var missing []string
				for _, name := range m.program.stringLists[instr.Pool] {
					if _, present := obj[name]; !present {
						missing = append(missing, name)
					}
				}
				if len(missing) > 0 {
					fail(instr, "required", "missing required properties {properties}", map[string]any{"properties": strings.Join(missing, ", ")})
				}
			}

		case OpProperties:
			if obj, ok := instance.(map[string]any); ok {
				for _, rule := range m.program.propertyTables[instr.Pool] {
					val, present := obj[rule.name]
					if !present {
						continue
					}
					evaluatedProps[rule.name] = true
					if !m.runNode(rule.addr, val, instancePath+"/"+pointerEscape(rule.name), childLoc(instr)+"/"+pointerEscape(rule.name), c) {
						valid = false
					}
					if c.shouldStop() {
						return false
					}
				}
			}

		case OpPatternProperties:
			if obj, ok := instance.(map[string]any); ok {
				for _, rule := range m.program.patternPropTables[instr.Pool] {
					for _, key := range sortedKeys(obj) {
						if !rule.pattern.match(key) {
							continue
						}
						evaluatedProps[key] = true
						if !m.runNode(rule.addr, obj[key], instancePath+"/"+pointerEscape(key), childLoc(instr), c) {
							valid = false
						}
						if c.shouldStop() {
							return false
						}
					}
				}
			}

		case OpAdditionalProperties:
			if obj, ok := instance.(map[string]any); ok {
				for _, key := range sortedKeys(obj) {
					if evaluatedProps[key] {
						continue
					}
					evaluatedProps[key] = true
					if !m.runNode(instr.Addr, obj[key], instancePath+"/"+pointerEscape(key), childLoc(instr), c) {
						valid = false
					}
					if c.shouldStop() {
						return false
					}
				}
			}

		case OpPropertyNames:
			if obj, ok := instance.(map[string]any); ok {
				for _, key := range sortedKeys(obj) {
					if !m.runNode(instr.Addr, key, instancePath+"/"+pointerEscape(key), childLoc(instr), c) {
						valid = false
					}
					if c.shouldStop() {
						return false
					}
				}
			}

		case OpDependentRequired:
			if obj, ok := instance.(map[string]any); ok {
				for _, spec := range m.program.dependentRequired[instr.Pool] {
					if _, present := obj[spec.property]; !present {
						continue
					}
					var missing []string
					for _, req := range spec.requires {
						if _, present := obj[req]; !present {
							missing = append(missing, req)
						}
					}
					if len(missing) > 0 {
						fail(instr, "dependent_required", "property {property} requires {properties}", map[string]any{"property": spec.property, "properties": strings.Join(missing, ", ")})
					}
				}
			}

		case OpDependentSchemas:
			if obj, ok := instance.(map[string]any); ok {
				for _, spec := range m.program.dependentSchemas[instr.Pool] {
					if _, present := obj[spec.property]; !present {
						continue
					}
					if !m.runNode(spec.addr, instance, instancePath, childLoc(instr), c) {
						valid = false
					}
					if c.shouldStop() {
						return false
					}
				}
			}

		case OpUnevaluatedProperties:
			if obj, ok := instance.(map[string]any); ok {
				for _, key := range sortedKeys(obj) {
					if evaluatedProps[key] {
						continue
					}
					evaluatedProps[key] = true
					if !m.runNode(instr.Addr, obj[key], instancePath+"/"+pointerEscape(key), childLoc(instr), c) {
						valid = false
					}
					if c.shouldStop() {
						return false
					}
				}
			}

		case OpAllOf:
			for i, a := range m.program.addrLists[instr.Pool] {
				ok := m.runNode(a, instance, instancePath, childLoc(instr)+"/"+itoa(i), c)
				if !ok {
					valid = false
					if !c.active() {
						break
					}
				}
				if c.shouldStop() {
					return false
				}
			}

		case OpAnyOf:
			addrs := m.program.addrLists[instr.Pool]
			anyValid := false
			for _, a := range addrs {
				if m.runNode(a, instance, instancePath, childLoc(instr), nil) {
					anyValid = true
					break
				}
			}
			if !anyValid {
				valid = false
				if c.active() {
					for i, a := range addrs {
						m.runNode(a, instance, instancePath, childLoc(instr)+"/"+itoa(i), c)
						if c.shouldStop() {
							return false
						}
					}
				}
			}

		case OpOneOf:
			spec := m.program.oneOfSpecs[instr.Pool]
			matchCount := 0
			if spec.discriminator != nil {
				if obj, ok := instance.(map[string]any); ok {
					if lit, ok := obj[spec.discriminator.property].(string); ok {
						if branch, known := spec.discriminator.dispatch[lit]; known {
							if m.runNode(spec.addrs[branch], instance, instancePath, childLoc(instr)+"/"+itoa(branch), nil) {
								matchCount = 1
							}
						}
					}
				}
			}
			if matchCount == 0 {
				for _, a := range spec.addrs {
					if m.runNode(a, instance, instancePath, childLoc(instr), nil) {
						matchCount++
						if matchCount > 1 {
							break
						}
					}
				}
			}
			if matchCount != 1 {
				fail(instr, "one_of", "value must match exactly one schema but matched {count}", map[string]any{"count": matchCount})
			}

		case OpNot:
			if m.runNode(instr.Addr, instance, instancePath, childLoc(instr), nil) {
				fail(instr, "not", "value must not match the schema", nil)
			}

		case OpIf:
			spec := m.program.ifThenElse[instr.Pool]
			if m.runNode(spec.ifAddr, instance, instancePath, childLoc(instr), nil) {
				if spec.thenAddr >= 0 && !m.runNode(spec.thenAddr, instance, instancePath, childLoc(instr), c) {
					valid = false
				}
			} else if spec.elseAddr >= 0 && !m.runNode(spec.elseAddr, instance, instancePath, childLoc(instr), c) {
				valid = false
			}
			if c.shouldStop() {
				return false
			}

		case OpRefCall, OpDynamicRefCall:
			proc := m.program.procedures[instr.Proc]
			if proc.addr >= 0 {
				if !m.runNode(proc.addr, instance, instancePath, childLoc(instr), c) {
					valid = false
				}
				if c.shouldStop() {
					return false
				}
			}

		case OpContentEncoding:
			if s, ok := instance.(string); ok {
				decoded, _, _, err := m.evaluateContent(instr, s)
				if err != nil {
					fail(instr, "content_encoding", "value is not valid {encoding}-encoded content", map[string]any{"encoding": m.program.strings[instr.Pool]})
				} else {
					contentDecoded, contentDecodedOK = decoded, true
				}
			}

		case OpContentMediaType:
			if s, ok := instance.(string); ok {
				source := s
				if contentDecodedOK {
					source = string(contentDecoded)
				}
				_, parsed, hasParsed, err := m.evaluateContent(instr, source)
				if err != nil {
					fail(instr, "content_media_type", "value does not match media type {media}", map[string]any{"media": m.program.strings[instr.Pool]})
				} else if hasParsed {
					contentParsed, contentParsedOK = parsed, true
				}
			}

		case OpContentSchema:
			if contentParsedOK {
				if !m.runNode(instr.Addr, contentParsed, instancePath, childLoc(instr), c) {
					valid = false
				}
				if c.shouldStop() {
					return false
				}
			}
		}

		if c.shouldStop() {
			return false
		}
		pc++
	}

	return valid
}

// instanceTypeBits returns the OpType bit(s) instance satisfies; an integer-
// valued number satisfies both typeInteger and typeNumber, matching JSON
// Schema's "integer is also a number" rule.
func instanceTypeBits(instance Value) uint32 {
	switch t := instance.(type) {
	case nil:
		return typeNull
	case bool:
		return typeBoolean
	case string:
		return typeString
	case []any:
		return typeArray
	case map[string]any:
		return typeObject
	case Number:
		if t.isIntegerValued() {
			return typeInteger | typeNumber
		}
		return typeNumber
	default:
		return 0
	}
}

// typeMaskNames renders an OpType bitmask back into its type-name list for
// error messages, e.g. typeString|typeNumber -> "string, number".
func typeMaskNames(mask uint32) string {
	names := []struct {
		bit  uint32
		name string
	}{
		{typeNull, "null"}, {typeBoolean, "boolean"}, {typeString, "string"},
		{typeArray, "array"}, {typeObject, "object"}, {typeInteger, "integer"},
		{typeNumber, "number"},
	}
	var found []string
	for _, n := range names {
		if mask&n.bit != 0 {
			found = append(found, n.name)
		}
	}
	return strings.Join(found, ", ")
}

// itemsUnique reports whether arr has no two jsonEqual elements, used by
// uniqueItems (O(n^2) but arrays subject to this keyword are rarely large;
// Values are not comparable with == so no map-based fast path is available).
func itemsUnique(arr []any) bool {
	for i := 0; i < len(arr); i++ {
		for j := i + 1; j < len(arr); j++ {
			if jsonEqual(arr[i], arr[j]) {
				return false
			}
		}
	}
	return true
}
