package jsonschema

import "errors"

// === Network and IO Related Errors ===
var (
	// ErrDataRead is returned when data cannot be read from the specified URL.
	ErrDataRead = errors.New("data read failed")

	// ErrNetworkFetch is returned when there is an error fetching from the URL.
	ErrNetworkFetch = errors.New("network fetch failed")

	// ErrInvalidStatusCode is returned when an invalid HTTP status code is returned.
	ErrInvalidStatusCode = errors.New("invalid http status code")
)

// === Serialization Related Errors ===
var (
	// ErrJSONUnmarshal is returned when there is an error unmarshalling JSON.
	ErrJSONUnmarshal = errors.New("json unmarshal failed")

	// ErrYAMLUnmarshal is returned when there is an error unmarshalling YAML.
	ErrYAMLUnmarshal = errors.New("yaml unmarshal failed")
)

// === Schema Compilation Related Errors ===
var (
	// ErrSchemaCompilation wraps any failure encountered while compiling a
	// schema value into a Program.
	ErrSchemaCompilation = errors.New("schema compilation failed")

	// ErrInvalidURI is returned when a URI ($id, $ref, $schema) fails to
	// parse as RFC 3986.
	ErrInvalidURI = errors.New("invalid uri")

	// ErrNoBaseURI is returned when a relative reference is resolved against
	// the dummy "json-schema:///" base with no enclosing $id.
	ErrNoBaseURI = errors.New("no base uri is available")

	// ErrUnresolvedReference is returned when a $ref cannot be found in the
	// registry after retrieval has been exhausted.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrGlobalReferenceResolution is returned when a $ref cannot be
	// resolved against the compiling registry at all (no matching document).
	ErrGlobalReferenceResolution = errors.New("global reference resolution failed")

	// ErrJSONPointerSegmentNotFound is returned when a JSON Pointer fragment
	// does not address any node of the target document.
	ErrJSONPointerSegmentNotFound = errors.New("json pointer segment not found")

	// ErrUnknownSpecification is returned when a document's $schema names a
	// draft URI that is neither a recognized meta-schema nor present in the
	// registry under custom-meta-schema validation.
	ErrUnknownSpecification = errors.New("unknown specification")

	// ErrRetriever is returned when a user-supplied Retriever returns an
	// error while fetching an external schema document.
	ErrRetriever = errors.New("retriever failed")

	// ErrRegexUnsupported is returned when a pattern requires a regex
	// feature (lookaround, backreferences) RE2 cannot provide.
	ErrRegexUnsupported = errors.New("regex")

	// ErrEmptyEnum is returned when an "enum" keyword is an empty array.
	ErrEmptyEnum = errors.New("enum must not be empty")

	// ErrInvalidKeywordType is returned when a keyword's JSON value has the
	// wrong shape for its draft (e.g. "type" is a number).
	ErrInvalidKeywordType = errors.New("invalid keyword type")

	// ErrUnsupportedEncoding is returned when a schema names a
	// contentEncoding with no registered decoder.
	ErrUnsupportedEncoding = errors.New("unsupported content encoding")

	// ErrUnsupportedMediaType is returned when a schema names a
	// contentMediaType with no registered handler.
	ErrUnsupportedMediaType = errors.New("unsupported content media type")

	// ErrInstructionOverflow is returned when a compiled program would
	// exceed the addressable jump-offset range (int32).
	ErrInstructionOverflow = errors.New("program exceeds maximum instruction count")
)

// === Format Validation Related Errors ===
var (
	// ErrIPv6AddressFormat is returned when a URI's IPv6 host is not
	// bracket-enclosed.
	ErrIPv6AddressFormat = errors.New("ipv6 address must be enclosed in brackets")

	// ErrInvalidIPv6 is returned when a URI's bracket-enclosed host does not
	// parse as an IPv6 address.
	ErrInvalidIPv6 = errors.New("invalid ipv6 address")
)

// === Validation Related Errors ===
var (
	// ErrValidationFailed is the sentinel wrapped by Validator.Validate's
	// returned error; the *ValidationError detail is unwrapped from it.
	ErrValidationFailed = errors.New("instance does not match schema")
)

// === Numeric conversion errors (Rat, multipleOf folding) ===
var (
	ErrUnsupportedRatType = errors.New("unsupported rat type")
	ErrRatConversion      = errors.New("rat conversion failed")
)

// SchemaCompileError is a structured compile-time failure, carrying the
// schema-relative JSON Pointer location that triggered it.
type SchemaCompileError struct {
	Location string // JSON Pointer into the schema document
	Keyword  string
	Err      error
}

func (e *SchemaCompileError) Error() string {
	if e.Keyword == "" {
		return e.Location + ": " + e.Err.Error()
	}
	return e.Location + " (" + e.Keyword + "): " + e.Err.Error()
}

func (e *SchemaCompileError) Unwrap() error { return e.Err }

// RegexPatternError reports a pattern that failed to compile, ported from
// the teacher's collectRegexErrors diagnostics.
type RegexPatternError struct {
	Keyword  string
	Location string
	Pattern  string
	Err      error
}

func (e *RegexPatternError) Error() string {
	return "invalid pattern " + e.Pattern + " at " + e.Location + ": " + e.Err.Error()
}

func (e *RegexPatternError) Unwrap() error { return e.Err }
