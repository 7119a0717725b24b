package jsonschema

import (
	"strconv"
	"strings"
)

// resourcePointer designates a sub-document: the raw Value plus the draft
// that governs it (spec.md §3 "Resource pointer"). Once registry build
// finishes, resourcePointer.value's identity is stable for the registry's
// lifetime (it is never copied).
type resourcePointer struct {
	value Value
	draft Draft
}

// anchorKey is the (base URI, name) pair spec.md §3 defines for "Anchor".
type anchorKey struct {
	base string
	name string
}

// subschemaKeywords names every keyword whose value (or, for map/slice
// keywords, whose map values / slice elements) is itself a schema, across
// all five supported drafts. The registry walk and the resolution-context
// walk both use this table to find subresources without needing a
// draft-specific walker (the keyword set recognized by a given draft is
// still enforced later, by the compiler).
var subschemaKeywords = struct {
	single []string // value is a single schema
	slice  []string // value is an array of schemas
	object []string // value is a map of name -> schema
}{
	single: []string{
		"additionalProperties", "additionalItems", "unevaluatedProperties",
		"unevaluatedItems", "contains", "propertyNames", "not", "if", "then",
		"else", "items", "contentSchema",
	},
	slice: []string{"allOf", "anyOf", "oneOf", "prefixItems", "items"},
	object: []string{"properties", "patternProperties", "$defs", "definitions", "dependentSchemas", "dependencies"},
}

// walkSubresources visits v (assumed a schema node) and every nested schema
// reachable through subschemaKeywords, calling visit(base, ptr, node) for
// each, where base is the resolved base URI in effect at that node
// (propagated from enclosing $id values per spec.md §4.2) and ptr is the
// JSON pointer (leading "/", no "#") from the document root to node.
// idKeyword picks "id" vs "$id" for the active draft.
func walkSubresources(v Value, base, ptr, idKeyword string, visit func(base, ptr string, node Value)) {
	obj, ok := v.(map[string]any)
	if !ok {
		return
	}

	nodeBase := base
	if idVal, ok := obj[idKeyword].(string); ok && idVal != "" {
		if isAbsoluteURI(idVal) {
			nodeBase = baseOf(idVal)
		} else {
			nodeBase = baseOf(resolveURI(base, idVal))
		}
	}

	visit(nodeBase, ptr, v)

	for _, kw := range subschemaKeywords.single {
		if child, ok := obj[kw]; ok {
			walkSubresources(child, nodeBase, ptr+"/"+pointerEscape(kw), idKeyword, visit)
		}
	}
	for _, kw := range subschemaKeywords.slice {
		if arr, ok := obj[kw].([]any); ok {
			for i, child := range arr {
				walkSubresources(child, nodeBase, ptr+"/"+pointerEscape(kw)+"/"+itoa(i), idKeyword, visit)
			}
		}
	}
	for _, kw := range subschemaKeywords.object {
		if m, ok := obj[kw].(map[string]any); ok {
			for name, child := range m {
				walkSubresources(child, nodeBase, ptr+"/"+pointerEscape(kw)+"/"+pointerEscape(name), idKeyword, visit)
			}
		}
	}
}

// pointerEscape applies RFC 6901 escaping ("~" -> "~0", "/" -> "~1") for a
// single JSON pointer token.
func pointerEscape(tok string) string {
	tok = strings.ReplaceAll(tok, "~", "~0")
	tok = strings.ReplaceAll(tok, "/", "~1")
	return tok
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

// collectExternalRefs scans a single schema node (not its subresources —
// the caller is expected to already be inside walkSubresources) for $ref /
// $schema / $dynamicRef member values that may need external retrieval.
// add's isSchema flag tells the caller which fetch-failure policy applies:
// a $ref/$dynamicRef target is fatal to build() (spec.md §4.1 step 4), a
// $schema target is not — its absence is deferred to custom-meta-schema
// validation (spec.md §4.1 step 7).
func collectExternalRefs(node Value, add func(ref string, isSchema bool)) {
	obj, ok := node.(map[string]any)
	if !ok {
		return
	}
	if ref, ok := obj["$ref"].(string); ok && ref != "" {
		add(ref, false)
	}
	if ref, ok := obj["$dynamicRef"].(string); ok && ref != "" {
		add(ref, false)
	}
	if s, ok := obj["$schema"].(string); ok && s != "" {
		add(s, true)
	}
}

// collectAnchorNames returns the plain and dynamic anchor names declared
// directly on node, per draft's anchor keyword ("$anchor" from Draft2019
// onward, "$dynamicAnchor" in Draft2020 only; legacy drafts fold anchors
// into a fragment-only "$id").
func collectAnchorNames(node Value, d Draft) (plain, dynamic string) {
	obj, ok := node.(map[string]any)
	if !ok {
		return "", ""
	}
	if d == Draft4 || d == Draft6 || d == Draft7 {
		if id, ok := obj[d.idKeyword()].(string); ok && strings.HasPrefix(id, "#") && len(id) > 1 {
			return id[1:], ""
		}
		return "", ""
	}
	if a, ok := obj["$anchor"].(string); ok {
		plain = a
	}
	if d.supportsDynamicRef() {
		if a, ok := obj["$dynamicAnchor"].(string); ok {
			dynamic = a
		}
	}
	return plain, dynamic
}
