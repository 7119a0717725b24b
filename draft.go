package jsonschema

// Draft is the closed enumeration of specification versions this module
// compiles against (spec.md §3 "Draft identifier").
type Draft int

const (
	DraftUnknown Draft = iota
	Draft4
	Draft6
	Draft7
	Draft2019
	Draft2020
)

func (d Draft) String() string {
	switch d {
	case Draft4:
		return "draft4"
	case Draft6:
		return "draft6"
	case Draft7:
		return "draft7"
	case Draft2019:
		return "draft2019-09"
	case Draft2020:
		return "draft2020-12"
	default:
		return "unknown"
	}
}

// draftMetaSchemaURIs is the exact-match detection table from spec.md §6.
// A trailing '#' is trimmed by detectDraft before lookup.
var draftMetaSchemaURIs = map[string]Draft{
	"https://json-schema.org/draft/2020-12/schema": Draft2020,
	"https://json-schema.org/draft/2019-09/schema": Draft2019,
	"http://json-schema.org/draft-07/schema":       Draft7,
	"http://json-schema.org/draft-06/schema":       Draft6,
	"http://json-schema.org/draft-04/schema":       Draft4,
}

// metaSchemaURIForDraft is the inverse of draftMetaSchemaURIs, used to seed
// the registry's built-in documents.
var metaSchemaURIForDraft = map[Draft]string{
	Draft2020: "https://json-schema.org/draft/2020-12/schema",
	Draft2019: "https://json-schema.org/draft/2019-09/schema",
	Draft7:    "http://json-schema.org/draft-07/schema",
	Draft6:    "http://json-schema.org/draft-06/schema",
	Draft4:    "http://json-schema.org/draft-04/schema",
}

// detectDraft reads a document's $schema member and maps it to a Draft.
// A missing $schema yields (DraftUnknown, false) so the caller can fall
// back to the compiler's configured default; an unrecognized $schema URI
// yields (DraftUnknown, true) so the caller knows custom-meta-schema
// validation is required (spec.md §4.1 step 7).
func detectDraft(schemaURI string) (Draft, bool) {
	if schemaURI == "" {
		return DraftUnknown, false
	}
	trimmed := trimTrailingHash(schemaURI)
	if d, ok := draftMetaSchemaURIs[trimmed]; ok {
		return d, true
	}
	return DraftUnknown, true
}

func trimTrailingHash(uri string) string {
	if len(uri) > 0 && uri[len(uri)-1] == '#' {
		return uri[:len(uri)-1]
	}
	return uri
}

// idKeyword returns the member name a draft uses for the identifier
// keyword: "id" for draft 4, "$id" from draft 6 onward.
func (d Draft) idKeyword() string {
	if d == Draft4 {
		return "id"
	}
	return "$id"
}

// refSiblingsIgnored reports whether $ref, when present, suppresses
// sibling keywords (true for drafts 4-7, false from 2019-09 onward) —
// spec.md §4.4 step 1.
func (d Draft) refSiblingsIgnored() bool {
	return d == Draft4 || d == Draft6 || d == Draft7 || d == DraftUnknown
}

// supportsDynamicRef reports whether $dynamicRef/$dynamicAnchor are
// recognized (2020-12 only).
func (d Draft) supportsDynamicRef() bool {
	return d == Draft2020
}

// supportsPrefixItems reports whether "items" is the 2020-12 single-schema
// keyword with "prefixItems" handling the tuple prefix, as opposed to the
// legacy array-of-schemas "items" + "additionalItems" pairing. "prefixItems"
// was introduced in 2020-12; 2019-09 still uses the legacy array-form
// "items"/"additionalItems" pairing.
func (d Draft) supportsPrefixItems() bool {
	return d == Draft2020
}

// exclusiveIsBoolean reports whether exclusiveMinimum/exclusiveMaximum are
// booleans paired with minimum/maximum (draft 4) as opposed to numeric
// keywords in their own right (draft 6+).
func (d Draft) exclusiveIsBoolean() bool {
	return d == Draft4
}

// supportsUnevaluated reports whether unevaluatedProperties/unevaluatedItems
// are recognized (2019-09 onward).
func (d Draft) supportsUnevaluated() bool {
	return d == Draft2019 || d == Draft2020
}

// definitionsKeyword returns the legacy name for $defs, recognized for
// backward compatibility on every draft this module compiles.
const definitionsKeyword = "definitions"
