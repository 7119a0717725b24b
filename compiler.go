package jsonschema

import (
	"fmt"
)

// FormatFunc validates a single format-annotated value, returning false if
// the instance violates the named format (spec.md §4.8 "Format"). Ported
// from the teacher's format validator signature (format.go), credited
// there to santhosh-tekuri/jsonschema.
type FormatFunc func(v Value) bool

// ContentDecoder decodes a contentEncoding-annotated string into raw bytes
// (e.g. "base64"), mirroring the teacher's Compiler.Decoders registry.
type ContentDecoder func(s string) ([]byte, error)

// ContentMediaTypeFunc parses decoded bytes as a named contentMediaType
// (e.g. "application/json"), returning the parsed Value so a contentSchema
// can validate it (mirroring the teacher's Compiler.MediaTypes registry,
// content.go's evaluateContent).
type ContentMediaTypeFunc func(data []byte) (Value, error)

// Compiler turns schema documents into compiled Validators (spec.md §4.4
// "Compiler"). It owns the ambient registries (formats, content decoders,
// media types) a Registry's documents are compiled against; the Registry
// itself is rebuilt per Compile call since each call may supply a different
// root document, but shares the Compiler's retriever and draft default.
type Compiler struct {
	defaultDraft Draft
	assertFormat bool
	retriever    Retriever
	formats      map[string]FormatFunc
	decoders     map[string]ContentDecoder
	mediaTypes   map[string]ContentMediaTypeFunc
}

// CompilerOption configures a Compiler at construction time, following the
// teacher's preference for an explicit Register*/New pairing generalized
// here into functional options so zero-value construction stays valid.
type CompilerOption func(*Compiler)

// WithDefaultDraft sets the draft assumed for documents with no $schema.
func WithDefaultDraft(d Draft) CompilerOption {
	return func(c *Compiler) { c.defaultDraft = d }
}

// WithRetriever installs the Retriever used for external $ref/$schema
// lookups; without one, external references fail with ErrUnresolvedReference.
func WithRetriever(r Retriever) CompilerOption {
	return func(c *Compiler) { c.retriever = r }
}

// WithFormatAssertion toggles whether "format" produces validation errors
// (true) or only annotations (false, the 2019-09+ default per spec.md §4.8).
func WithFormatAssertion(assert bool) CompilerOption {
	return func(c *Compiler) { c.assertFormat = assert }
}

// NewCompiler builds a Compiler with the built-in format validators,
// content decoders, and media type checks registered, matching the
// teacher's Compiler.initDefaults/setupMediaTypes/setupLoaders (compiler.go).
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		defaultDraft: Draft2020,
		retriever:    NoRetriever,
		formats:      defaultFormats(),
		decoders:     defaultDecoders(),
		mediaTypes:   defaultMediaTypes(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterFormat adds or overrides a named format validator.
func (c *Compiler) RegisterFormat(name string, fn FormatFunc) {
	c.formats[name] = fn
}

// RegisterDecoder adds or overrides a named contentEncoding decoder.
func (c *Compiler) RegisterDecoder(name string, fn ContentDecoder) {
	c.decoders[name] = fn
}

// RegisterMediaType adds or overrides a named contentMediaType checker.
func (c *Compiler) RegisterMediaType(name string, fn ContentMediaTypeFunc) {
	c.mediaTypes[name] = fn
}

// Compile decodes schemaJSON and compiles it into a Validator.
func (c *Compiler) Compile(schemaJSON []byte) (*Validator, error) {
	v, err := decodeValue(schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaCompilation, err)
	}
	return c.CompileValue(v)
}

// CompileValue compiles an already-decoded schema Value.
func (c *Compiler) CompileValue(v Value) (*Validator, error) {
	reg, err := buildRegistry(map[string]Value{"": v}, c.retriever, c.defaultDraft)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaCompilation, err)
	}
	val, err := c.compileFromRegistry(reg, dummyBaseURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaCompilation, err)
	}
	return val, nil
}

// CompileBatch decodes and compiles multiple named documents that may
// reference one another, returning one Validator per input key (mirroring
// the teacher's Compiler.CompileBatch).
func (c *Compiler) CompileBatch(docs map[string][]byte) (map[string]*Validator, error) {
	values := make(map[string]Value, len(docs))
	for uri, data := range docs {
		v, err := decodeValue(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSchemaCompilation, uri, err)
		}
		values[uri] = v
	}
	reg, err := buildRegistry(values, c.retriever, c.defaultDraft)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaCompilation, err)
	}
	out := make(map[string]*Validator, len(docs))
	for uri := range docs {
		canon := canonicalize(reg.uriCache, dummyBaseURI, uri)
		v, err := c.compileFromRegistry(reg, canon)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSchemaCompilation, uri, err)
		}
		out[uri] = v
	}
	return out, nil
}

func (c *Compiler) compileFromRegistry(reg *Registry, rootURI string) (*Validator, error) {
	if err := reg.checkKnownMetaSchema(rootURI); err != nil {
		return nil, err
	}
	doc, ok := reg.documents.get(rootURI)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGlobalReferenceResolution, rootURI)
	}
	ctx := withRootDocument(reg, rootURI, doc.value, doc.draft)
	s := &compileSession{c: c, ctx: ctx, program: newProgram(), procByKey: make(map[string]int), compiling: make(map[string]bool)}

	addr, err := s.compileNode(newResolver(ctx), doc.value, doc.draft)
	if err != nil {
		return nil, err
	}
	if len(s.program.instructions) > maxProgramInstructions {
		return nil, fmt.Errorf("%w: %d instructions", ErrInstructionOverflow, len(s.program.instructions))
	}
	s.program.root = addr
	return &Validator{program: s.program, compiler: c}, nil
}

// compileSession holds the mutable state of a single Compile/CompileValue
// call: the Program being built and the dedup tables that turn repeated or
// cyclic $ref targets into calls against one shared procedure instead of
// infinite inlining (spec.md §4.6 "$ref hoisting").
type compileSession struct {
	c         *Compiler
	ctx       *resolutionContext
	program   *Program
	procByKey map[string]int
	compiling map[string]bool
}

// compileNode compiles a single schema node (boolean or object) into a run
// of instructions terminated by OpHalt, returning its entry address.
func (s *compileSession) compileNode(r *Resolver, v Value, draft Draft) (int, error) {
	switch node := v.(type) {
	case bool:
		if node {
			addr := s.program.emit(Instruction{Op: OpTrue})
			s.program.emit(Instruction{Op: OpHalt})
			return addr, nil
		}
		addr := s.program.emit(Instruction{Op: OpFalse})
		s.program.emit(Instruction{Op: OpHalt})
		return addr, nil
	case map[string]any:
		return s.compileObjectSchema(r, node, draft)
	default:
		return 0, &SchemaCompileError{Location: "#", Err: fmt.Errorf("%w: schema must be a boolean or an object", ErrInvalidKeywordType)}
	}
}

func (s *compileSession) compileObjectSchema(r *Resolver, obj map[string]any, draft Draft) (int, error) {
	if idVal, ok := obj[draft.idKeyword()].(string); ok && idVal != "" {
		if !isValidURI(idVal) {
			return 0, &SchemaCompileError{Keyword: draft.idKeyword(), Location: "#", Err: ErrInvalidURI}
		}
		pop := r.pushID(idVal)
		defer pop()
	}
	if schemaURI, ok := obj["$schema"].(string); ok {
		if d, known := detectDraft(schemaURI); known && d != DraftUnknown {
			draft = d
		}
	}

	// Own instructions are buffered here rather than appended straight to
	// s.program: keyword compilation below recursively calls s.compileNode
	// for subschemas (properties, items, allOf, ...), and those calls append
	// their own complete, self-contained runs to s.program as they go. If
	// this node's instructions were appended directly alongside them, the
	// node's own run would end up interleaved with its children's bodies in
	// the flat array — breaking the VM's "walk from entry to the next
	// OpHalt belongs to this node" contract. Buffering and flushing in one
	// batch after every child has already been appended keeps this node's
	// run contiguous regardless of how much child-compilation happened in
	// between.
	var own []Instruction
	emit := func(instr Instruction) {
		own = append(own, instr)
	}
	flush := func() int {
		entry := len(s.program.instructions)
		if len(own) == 0 {
			s.program.emit(Instruction{Op: OpTrue, Location: "#"})
		} else {
			for _, instr := range own {
				s.program.emit(instr)
			}
		}
		s.program.emit(Instruction{Op: OpHalt})
		return entry
	}

	// $ref: drafts 4-7 ignore sibling keywords entirely once $ref is
	// present (spec.md §4.4 step 1); 2019-09+ evaluate $ref alongside
	// siblings, so fall through to the general keyword loop afterward.
	if ref, ok := obj["$ref"].(string); ok {
		proc, err := s.refProcedure(r, ref, false)
		if err != nil {
			return 0, err
		}
		emit(Instruction{Op: OpRefCall, Proc: proc, Keyword: "$ref", Location: "#"})
		if draft.refSiblingsIgnored() {
			return flush(), nil
		}
	}

	if draft.supportsDynamicRef() {
		if ref, ok := obj["$dynamicRef"].(string); ok {
			proc, err := s.refProcedure(r, ref, true)
			if err != nil {
				return 0, err
			}
			emit(Instruction{Op: OpDynamicRefCall, Proc: proc, Keyword: "$dynamicRef", Location: "#"})
		}
	} else if ref, ok := obj["$recursiveRef"].(string); ok {
		// $recursiveRef (2019-09) goes through the $dynamicRef path. Its
		// usual value "#" names no anchor, so resolveDynamicRef returns the
		// static target (the resource at the current base) without scanning
		// the dynamic scope; $recursiveAnchor is not read.
		proc, err := s.refProcedure(r, ref, true)
		if err != nil {
			return 0, err
		}
		emit(Instruction{Op: OpDynamicRefCall, Proc: proc, Keyword: "$recursiveRef", Location: "#"})
	}

	if t, ok := obj["type"]; ok {
		mask, err := typeMask(t)
		if err != nil {
			return 0, &SchemaCompileError{Keyword: "type", Location: "#", Err: err}
		}
		emit(Instruction{Op: OpType, Types: mask, Keyword: "type", Location: "#/type"})
	}

	if c, ok := obj["const"]; ok {
		idx := len(s.program.values)
		s.program.values = append(s.program.values, c)
		emit(Instruction{Op: OpConst, Pool: idx, Keyword: "const", Location: "#/const"})
	}

	if e, ok := obj["enum"].([]any); ok {
		if len(e) == 0 {
			return 0, &SchemaCompileError{Keyword: "enum", Location: "#/enum", Err: ErrEmptyEnum}
		}
		idx := len(s.program.valueLists)
		s.program.valueLists = append(s.program.valueLists, &enumSet{values: e})
		emit(Instruction{Op: OpEnum, Pool: idx, Keyword: "enum", Location: "#/enum"})
	}

	if err := s.compileNumberRange(obj, draft, emit); err != nil {
		return 0, err
	}
	if n, ok := numberKeyword(obj["multipleOf"]); ok {
		if _, err := numberToRat(n); err != nil {
			return 0, &SchemaCompileError{Keyword: "multipleOf", Location: "#/multipleOf", Err: err}
		}
		idx := len(s.program.rats)
		s.program.rats = append(s.program.rats, ratBound{n: n})
		emit(Instruction{Op: OpMultipleOf, Pool: idx, Keyword: "multipleOf", Location: "#/multipleOf"})
	}

	if n, ok := intKeyword(obj["minLength"]); ok {
		emit(Instruction{Op: OpMinLength, Int: n, Keyword: "minLength", Location: "#/minLength"})
	}
	if n, ok := intKeyword(obj["maxLength"]); ok {
		emit(Instruction{Op: OpMaxLength, Int: n, Keyword: "maxLength", Location: "#/maxLength"})
	}
	if pat, ok := obj["pattern"].(string); ok {
		cp, err := analyzePattern("pattern", "#/pattern", pat)
		if err != nil {
			return 0, err
		}
		idx := len(s.program.patterns)
		s.program.patterns = append(s.program.patterns, cp)
		emit(Instruction{Op: OpPattern, Pool: idx, Keyword: "pattern", Location: "#/pattern"})
	}
	if f, ok := obj["format"].(string); ok {
		idx := len(s.program.formats)
		s.program.formats = append(s.program.formats, f)
		emit(Instruction{Op: OpFormat, Pool: idx, Keyword: "format", Location: "#/format"})
	}

	if err := s.compileArrayKeywords(r, obj, draft, emit); err != nil {
		return 0, err
	}
	if err := s.compileObjectKeywords(r, obj, draft, emit); err != nil {
		return 0, err
	}
	if err := s.compileApplicators(r, obj, draft, emit); err != nil {
		return 0, err
	}
	if err := s.compileContent(r, obj, draft, emit); err != nil {
		return 0, err
	}

	return flush(), nil
}

// refProcedure resolves ref (static or dynamic) and returns the index of a
// shared procedure compiled for its target, compiling the target exactly
// once even if several $refs (or a cycle) point at it.
func (s *compileSession) refProcedure(r *Resolver, ref string, dynamic bool) (int, error) {
	var target refTarget
	var err error
	if dynamic {
		target, err = r.resolveDynamicRef(ref)
	} else {
		target, err = r.resolveRef(ref)
	}
	if err != nil {
		return 0, &SchemaCompileError{Keyword: refKeyword(dynamic), Location: "#", Err: err}
	}

	if idx, ok := s.procByKey[target.uri]; ok {
		return idx, nil
	}

	idx := len(s.program.procedures)
	s.program.procedures = append(s.program.procedures, procedure{uri: target.uri, addr: -1, draft: target.draft})
	s.procByKey[target.uri] = idx

	if s.compiling[target.uri] {
		// Cyclic reference: the procedure slot is already reserved; the
		// recursive caller higher on the Go stack will fill in .addr once
		// its own compileNode returns.
		return idx, nil
	}
	s.compiling[target.uri] = true
	defer delete(s.compiling, target.uri)

	childResolver := newResolverAt(s.ctx, target.base)
	childResolver.dynamicScope = nil // rebuilt below, outermost frame first
	for _, b := range r.dynamicScope {
		pop := childResolver.pushDynamicScope(b)
		defer pop()
	}
	pop := childResolver.pushDynamicScope(target.base)
	defer pop()

	addr, err := s.compileNode(childResolver, target.value, target.draft)
	if err != nil {
		return 0, err
	}
	s.program.procedures[idx].addr = addr
	return idx, nil
}

func refKeyword(dynamic bool) string {
	if dynamic {
		return "$dynamicRef"
	}
	return "$ref"
}

func (s *compileSession) compileNumberRange(obj map[string]any, draft Draft, emit func(Instruction)) error {
	nr := numberRange{}
	if n, ok := numberKeyword(obj["minimum"]); ok {
		nr.hasMin, nr.min = true, n
	}
	if n, ok := numberKeyword(obj["maximum"]); ok {
		nr.hasMax, nr.max = true, n
	}
	if draft.exclusiveIsBoolean() {
		if b, ok := obj["exclusiveMinimum"].(bool); ok && b && nr.hasMin {
			nr.exclusiveMin = true
		}
		if b, ok := obj["exclusiveMaximum"].(bool); ok && b && nr.hasMax {
			nr.exclusiveMax = true
		}
	} else {
		if n, ok := numberKeyword(obj["exclusiveMinimum"]); ok {
			nr.hasMin, nr.min, nr.exclusiveMin = true, n, true
		}
		if n, ok := numberKeyword(obj["exclusiveMaximum"]); ok {
			nr.hasMax, nr.max, nr.exclusiveMax = true, n, true
		}
	}
	if nr.hasMin || nr.hasMax {
		idx := len(s.program.numberRanges)
		s.program.numberRanges = append(s.program.numberRanges, nr)
		emit(Instruction{Op: OpNumberRange, Pool: idx, Keyword: "minimum/maximum", Location: "#"})
	}
	return nil
}

// numberKeyword type-asserts a decoded keyword value as a Number (decode.go
// already classified every JSON number into U64/I64/F64 at parse time, so
// no further literal parsing happens here).
func numberKeyword(v any) (Number, bool) {
	n, ok := v.(Number)
	return n, ok
}

// intKeyword reads a keyword expected to be a non-negative JSON integer
// (minLength, maxItems, and friends) as a plain Go int.
func intKeyword(v any) (int, bool) {
	n, ok := v.(Number)
	if !ok {
		return 0, false
	}
	switch n.Kind {
	case kindUint64:
		return int(n.U64), true
	case kindInt64:
		return int(n.I64), true
	default:
		return int(n.F64), true
	}
}

// typeMask compiles a "type" keyword value (a single type name string, or
// an array of them) into the OpType bitmask.
func typeMask(v any) (uint32, error) {
	switch t := v.(type) {
	case string:
		bit, ok := typeNameBit(t)
		if !ok {
			return 0, fmt.Errorf("%w: unknown type name %q", ErrInvalidKeywordType, t)
		}
		return bit, nil
	case []any:
		var mask uint32
		for _, elem := range t {
			name, ok := elem.(string)
			if !ok {
				return 0, fmt.Errorf("%w: type array must contain strings", ErrInvalidKeywordType)
			}
			bit, ok := typeNameBit(name)
			if !ok {
				return 0, fmt.Errorf("%w: unknown type name %q", ErrInvalidKeywordType, name)
			}
			mask |= bit
		}
		return mask, nil
	default:
		return 0, fmt.Errorf("%w: type must be a string or array of strings", ErrInvalidKeywordType)
	}
}

func typeNameBit(name string) (uint32, bool) {
	switch name {
	case "null":
		return typeNull, true
	case "boolean":
		return typeBoolean, true
	case "string":
		return typeString, true
	case "array":
		return typeArray, true
	case "object":
		return typeObject, true
	case "integer":
		return typeInteger, true
	case "number":
		return typeNumber, true
	default:
		return 0, false
	}
}

func (s *compileSession) compileArrayKeywords(r *Resolver, obj map[string]any, draft Draft, emit func(Instruction)) error {
	if n, ok := intKeyword(obj["minItems"]); ok {
		emit(Instruction{Op: OpMinItems, Int: n, Keyword: "minItems", Location: "#/minItems"})
	}
	if n, ok := intKeyword(obj["maxItems"]); ok {
		emit(Instruction{Op: OpMaxItems, Int: n, Keyword: "maxItems", Location: "#/maxItems"})
	}
	if b, ok := obj["uniqueItems"].(bool); ok && b {
		emit(Instruction{Op: OpUniqueItems, Keyword: "uniqueItems", Location: "#/uniqueItems"})
	}

	if draft.supportsPrefixItems() {
		if arr, ok := obj["prefixItems"].([]any); ok {
			addrs := make([]int, 0, len(arr))
			for i, sub := range arr {
				addr, err := s.compileNode(r, sub, draft)
				if err != nil {
					return &SchemaCompileError{Keyword: "prefixItems", Location: fmt.Sprintf("#/prefixItems/%d", i), Err: err}
				}
				addrs = append(addrs, addr)
			}
			idx := len(s.program.addrLists)
			s.program.addrLists = append(s.program.addrLists, addrs)
			emit(Instruction{Op: OpPrefixItems, Pool: idx, Keyword: "prefixItems", Location: "#/prefixItems"})
		}
		if items, ok := obj["items"]; ok {
			addr, err := s.compileNode(r, items, draft)
			if err != nil {
				return &SchemaCompileError{Keyword: "items", Location: "#/items", Err: err}
			}
			emit(Instruction{Op: OpItems, Addr: addr, Keyword: "items", Location: "#/items"})
		}
	} else {
		if items, ok := obj["items"]; ok {
			if arr, isTuple := items.([]any); isTuple {
				addrs := make([]int, 0, len(arr))
				for i, sub := range arr {
					addr, err := s.compileNode(r, sub, draft)
					if err != nil {
						return &SchemaCompileError{Keyword: "items", Location: fmt.Sprintf("#/items/%d", i), Err: err}
					}
					addrs = append(addrs, addr)
				}
				idx := len(s.program.addrLists)
				s.program.addrLists = append(s.program.addrLists, addrs)
				emit(Instruction{Op: OpPrefixItems, Pool: idx, Keyword: "items", Location: "#/items"})
				if add, ok := obj["additionalItems"]; ok {
					addr, err := s.compileNode(r, add, draft)
					if err != nil {
						return &SchemaCompileError{Keyword: "additionalItems", Location: "#/additionalItems", Err: err}
					}
					emit(Instruction{Op: OpAdditionalItems, Addr: addr, Keyword: "additionalItems", Location: "#/additionalItems"})
				}
			} else {
				addr, err := s.compileNode(r, items, draft)
				if err != nil {
					return &SchemaCompileError{Keyword: "items", Location: "#/items", Err: err}
				}
				emit(Instruction{Op: OpItems, Addr: addr, Keyword: "items", Location: "#/items"})
			}
		}
	}

	if contains, ok := obj["contains"]; ok {
		addr, err := s.compileNode(r, contains, draft)
		if err != nil {
			return &SchemaCompileError{Keyword: "contains", Location: "#/contains", Err: err}
		}
		spec := containsSpec{addr: addr, min: 1, max: -1}
		if n, ok := intKeyword(obj["minContains"]); ok {
			spec.min = n
		}
		if n, ok := intKeyword(obj["maxContains"]); ok {
			spec.max = n
		}
		idx := len(s.program.containsSpecs)
		s.program.containsSpecs = append(s.program.containsSpecs, spec)
		emit(Instruction{Op: OpContains, Pool: idx, Keyword: "contains", Location: "#/contains"})
	}

	if draft.supportsUnevaluated() {
		if items, ok := obj["unevaluatedItems"]; ok {
			addr, err := s.compileNode(r, items, draft)
			if err != nil {
				return &SchemaCompileError{Keyword: "unevaluatedItems", Location: "#/unevaluatedItems", Err: err}
			}
			emit(Instruction{Op: OpUnevaluatedItems, Addr: addr, Keyword: "unevaluatedItems", Location: "#/unevaluatedItems"})
		}
	}
	return nil
}

func (s *compileSession) compileObjectKeywords(r *Resolver, obj map[string]any, draft Draft, emit func(Instruction)) error {
	if n, ok := intKeyword(obj["minProperties"]); ok {
		emit(Instruction{Op: OpMinProperties, Int: n, Keyword: "minProperties", Location: "#/minProperties"})
	}
	if n, ok := intKeyword(obj["maxProperties"]); ok {
		emit(Instruction{Op: OpMaxProperties, Int: n, Keyword: "maxProperties", Location: "#/maxProperties"})
	}
	if req, ok := obj["required"].([]any); ok {
		names := make([]string, 0, len(req))
		for _, v := range req {
			if name, ok := v.(string); ok {
				names = append(names, name)
			}
		}
		idx := len(s.program.stringLists)
		s.program.stringLists = append(s.program.stringLists, names)
		emit(Instruction{Op: OpRequired, Pool: idx, Keyword: "required", Location: "#/required"})
	}

	if props, ok := obj["properties"].(map[string]any); ok {
		rules := make([]propertyRule, 0, len(props))
		for name, sub := range props {
			addr, err := s.compileNode(r, sub, draft)
			if err != nil {
				return &SchemaCompileError{Keyword: "properties", Location: "#/properties/" + pointerEscape(name), Err: err}
			}
			rules = append(rules, propertyRule{name: name, addr: addr})
		}
		idx := len(s.program.propertyTables)
		s.program.propertyTables = append(s.program.propertyTables, rules)
		emit(Instruction{Op: OpProperties, Pool: idx, Keyword: "properties", Location: "#/properties"})
	}

	if pp, ok := obj["patternProperties"].(map[string]any); ok {
		rules := make([]patternPropRule, 0, len(pp))
		for pat, sub := range pp {
			cp, err := analyzePattern("patternProperties", "#/patternProperties/"+pointerEscape(pat), pat)
			if err != nil {
				return err
			}
			addr, err := s.compileNode(r, sub, draft)
			if err != nil {
				return &SchemaCompileError{Keyword: "patternProperties", Location: "#/patternProperties/" + pointerEscape(pat), Err: err}
			}
			rules = append(rules, patternPropRule{pattern: cp, addr: addr})
		}
		idx := len(s.program.patternPropTables)
		s.program.patternPropTables = append(s.program.patternPropTables, rules)
		emit(Instruction{Op: OpPatternProperties, Pool: idx, Keyword: "patternProperties", Location: "#/patternProperties"})
	}

	if add, ok := obj["additionalProperties"]; ok {
		addr, err := s.compileNode(r, add, draft)
		if err != nil {
			return &SchemaCompileError{Keyword: "additionalProperties", Location: "#/additionalProperties", Err: err}
		}
		emit(Instruction{Op: OpAdditionalProperties, Addr: addr, Keyword: "additionalProperties", Location: "#/additionalProperties"})
	}

	if pn, ok := obj["propertyNames"]; ok {
		addr, err := s.compileNode(r, pn, draft)
		if err != nil {
			return &SchemaCompileError{Keyword: "propertyNames", Location: "#/propertyNames", Err: err}
		}
		emit(Instruction{Op: OpPropertyNames, Addr: addr, Keyword: "propertyNames", Location: "#/propertyNames"})
	}

	if err := s.compileDependents(r, obj, draft, emit); err != nil {
		return err
	}

	if draft.supportsUnevaluated() {
		if up, ok := obj["unevaluatedProperties"]; ok {
			addr, err := s.compileNode(r, up, draft)
			if err != nil {
				return &SchemaCompileError{Keyword: "unevaluatedProperties", Location: "#/unevaluatedProperties", Err: err}
			}
			emit(Instruction{Op: OpUnevaluatedProperties, Addr: addr, Keyword: "unevaluatedProperties", Location: "#/unevaluatedProperties"})
		}
	}
	return nil
}

// compileDependents handles both the 2019-09+ split keywords
// (dependentRequired/dependentSchemas) and the draft4-7 combined
// "dependencies" keyword, whose per-key value is either an array (treated
// as dependentRequired) or a schema (treated as dependentSchemas).
func (s *compileSession) compileDependents(r *Resolver, obj map[string]any, draft Draft, emit func(Instruction)) error {
	var reqSpecs []dependentRequiredSpec
	var schemaSpecs []dependentSchemasSpec

	if dr, ok := obj["dependentRequired"].(map[string]any); ok {
		for prop, v := range dr {
			if arr, ok := v.([]any); ok {
				names := make([]string, 0, len(arr))
				for _, n := range arr {
					if name, ok := n.(string); ok {
						names = append(names, name)
					}
				}
				reqSpecs = append(reqSpecs, dependentRequiredSpec{property: prop, requires: names})
			}
		}
	}
	if ds, ok := obj["dependentSchemas"].(map[string]any); ok {
		for prop, sub := range ds {
			addr, err := s.compileNode(r, sub, draft)
			if err != nil {
				return &SchemaCompileError{Keyword: "dependentSchemas", Location: "#/dependentSchemas/" + pointerEscape(prop), Err: err}
			}
			schemaSpecs = append(schemaSpecs, dependentSchemasSpec{property: prop, addr: addr})
		}
	}
	if legacy, ok := obj["dependencies"].(map[string]any); ok {
		for prop, v := range legacy {
			switch dep := v.(type) {
			case []any:
				names := make([]string, 0, len(dep))
				for _, n := range dep {
					if name, ok := n.(string); ok {
						names = append(names, name)
					}
				}
				reqSpecs = append(reqSpecs, dependentRequiredSpec{property: prop, requires: names})
			default:
				addr, err := s.compileNode(r, dep, draft)
				if err != nil {
					return &SchemaCompileError{Keyword: "dependencies", Location: "#/dependencies/" + pointerEscape(prop), Err: err}
				}
				schemaSpecs = append(schemaSpecs, dependentSchemasSpec{property: prop, addr: addr})
			}
		}
	}

	if len(reqSpecs) > 0 {
		idx := len(s.program.dependentRequired)
		s.program.dependentRequired = append(s.program.dependentRequired, reqSpecs)
		emit(Instruction{Op: OpDependentRequired, Pool: idx, Keyword: "dependentRequired", Location: "#/dependentRequired"})
	}
	if len(schemaSpecs) > 0 {
		idx := len(s.program.dependentSchemas)
		s.program.dependentSchemas = append(s.program.dependentSchemas, schemaSpecs)
		emit(Instruction{Op: OpDependentSchemas, Pool: idx, Keyword: "dependentSchemas", Location: "#/dependentSchemas"})
	}
	return nil
}

func (s *compileSession) compileApplicators(r *Resolver, obj map[string]any, draft Draft, emit func(Instruction)) error {
	compileList := func(keyword string, arr []any) ([]int, error) {
		addrs := make([]int, 0, len(arr))
		for i, sub := range arr {
			addr, err := s.compileNode(r, sub, draft)
			if err != nil {
				return nil, &SchemaCompileError{Keyword: keyword, Location: fmt.Sprintf("#/%s/%d", keyword, i), Err: err}
			}
			addrs = append(addrs, addr)
		}
		return addrs, nil
	}

	if arr, ok := obj["allOf"].([]any); ok {
		addrs, err := compileList("allOf", arr)
		if err != nil {
			return err
		}
		idx := len(s.program.addrLists)
		s.program.addrLists = append(s.program.addrLists, addrs)
		emit(Instruction{Op: OpAllOf, Pool: idx, Keyword: "allOf", Location: "#/allOf"})
	}
	if arr, ok := obj["anyOf"].([]any); ok {
		addrs, err := compileList("anyOf", arr)
		if err != nil {
			return err
		}
		idx := len(s.program.addrLists)
		s.program.addrLists = append(s.program.addrLists, addrs)
		emit(Instruction{Op: OpAnyOf, Pool: idx, Keyword: "anyOf", Location: "#/anyOf"})
	}
	if arr, ok := obj["oneOf"].([]any); ok {
		addrs, err := compileList("oneOf", arr)
		if err != nil {
			return err
		}
		spec := oneOfSpec{addrs: addrs, discriminator: hoistDiscriminator(arr)}
		idx := len(s.program.oneOfSpecs)
		s.program.oneOfSpecs = append(s.program.oneOfSpecs, spec)
		emit(Instruction{Op: OpOneOf, Pool: idx, Keyword: "oneOf", Location: "#/oneOf"})
	}
	if sub, ok := obj["not"]; ok {
		addr, err := s.compileNode(r, sub, draft)
		if err != nil {
			return &SchemaCompileError{Keyword: "not", Location: "#/not", Err: err}
		}
		emit(Instruction{Op: OpNot, Addr: addr, Keyword: "not", Location: "#/not"})
	}
	if ifSchema, ok := obj["if"]; ok {
		ifAddr, err := s.compileNode(r, ifSchema, draft)
		if err != nil {
			return &SchemaCompileError{Keyword: "if", Location: "#/if", Err: err}
		}
		spec := ifThenElseSpec{ifAddr: ifAddr, thenAddr: -1, elseAddr: -1}
		if thenSchema, ok := obj["then"]; ok {
			addr, err := s.compileNode(r, thenSchema, draft)
			if err != nil {
				return &SchemaCompileError{Keyword: "then", Location: "#/then", Err: err}
			}
			spec.thenAddr = addr
		}
		if elseSchema, ok := obj["else"]; ok {
			addr, err := s.compileNode(r, elseSchema, draft)
			if err != nil {
				return &SchemaCompileError{Keyword: "else", Location: "#/else", Err: err}
			}
			spec.elseAddr = addr
		}
		idx := len(s.program.ifThenElse)
		s.program.ifThenElse = append(s.program.ifThenElse, spec)
		emit(Instruction{Op: OpIf, Pool: idx, Keyword: "if", Location: "#/if"})
	}
	return nil
}

// hoistDiscriminator looks for a required string property whose branches
// each pin it to a distinct const (or single-valued enum), letting the VM
// dispatch straight to the matching branch instead of trying every oneOf
// branch in turn (spec.md §4.6 "oneOf discriminator hoisting").
func hoistDiscriminator(branches []any) *discriminatorSpec {
	if len(branches) < 2 {
		return nil
	}
	var property string
	dispatch := make(map[string]int, len(branches))
	for i, b := range branches {
		obj, ok := b.(map[string]any)
		if !ok {
			return nil
		}
		props, ok := obj["properties"].(map[string]any)
		if !ok {
			return nil
		}
		req, _ := obj["required"].([]any)
		found := ""
		for _, r := range req {
			if name, ok := r.(string); ok {
				if _, has := props[name]; has {
					found = name
					break
				}
			}
		}
		if found == "" {
			return nil
		}
		if property == "" {
			property = found
		} else if property != found {
			return nil
		}
		propSchema, ok := props[found].(map[string]any)
		if !ok {
			return nil
		}
		literal, ok := propSchema["const"].(string)
		if !ok {
			if enumArr, ok := propSchema["enum"].([]any); ok && len(enumArr) == 1 {
				literal, ok = enumArr[0].(string)
				if !ok {
					return nil
				}
			} else {
				return nil
			}
		}
		if _, dup := dispatch[literal]; dup {
			return nil
		}
		dispatch[literal] = i
	}
	return &discriminatorSpec{property: property, dispatch: dispatch}
}

func (s *compileSession) compileContent(r *Resolver, obj map[string]any, draft Draft, emit func(Instruction)) error {
	if enc, ok := obj["contentEncoding"].(string); ok {
		idx := len(s.program.strings)
		s.program.strings = append(s.program.strings, enc)
		emit(Instruction{Op: OpContentEncoding, Pool: idx, Keyword: "contentEncoding", Location: "#/contentEncoding"})
	}
	if mt, ok := obj["contentMediaType"].(string); ok {
		idx := len(s.program.strings)
		s.program.strings = append(s.program.strings, mt)
		emit(Instruction{Op: OpContentMediaType, Pool: idx, Keyword: "contentMediaType", Location: "#/contentMediaType"})
	}
	if cs, ok := obj["contentSchema"]; ok {
		addr, err := s.compileNode(r, cs, draft)
		if err != nil {
			return &SchemaCompileError{Keyword: "contentSchema", Location: "#/contentSchema", Err: err}
		}
		emit(Instruction{Op: OpContentSchema, Addr: addr, Keyword: "contentSchema", Location: "#/contentSchema"})
	}
	return nil
}
