package jsonschema

// builtinMetaSchemas seeds the registry with one sentinel document per
// known draft (spec.md §4.1 step 1). These are boolean-true placeholders
// rather than the full meta-schema text: the Core this module specifies
// validates *instances against schemas*, not schemas against their own
// meta-schema's keyword shape (that full self-description is the
// "fine-grained annotation" / source-text concern spec.md §1 puts out of
// scope). What must hold is only: these URIs are always present, always
// take precedence over same-URI user documents, and are never retrieved —
// all three of which a trivial accepting document satisfies.
var builtinMetaSchemas = func() map[string]document {
	m := make(map[string]document, len(metaSchemaURIForDraft))
	for draft, uri := range metaSchemaURIForDraft {
		m[uri] = document{value: true, draft: draft, explicitDraft: true}
	}
	return m
}()

// isBuiltinMetaSchemaURI reports whether uri names one of the well-known
// meta-schema documents, which never trigger retrieval (spec.md §4.1 step 6).
func isBuiltinMetaSchemaURI(uri string) bool {
	_, ok := draftMetaSchemaURIs[trimTrailingHash(uri)]
	return ok
}
