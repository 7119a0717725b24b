package jsonschema

import "fmt"

// resourceLocation pin-points a resource (a schema boolean/object reachable
// at some base URI) inside a stored document, so a later $ref lookup can
// jump straight to it without re-walking the whole tree.
type resourceLocation struct {
	docURI string // canonical URI under which the owning document is stored
	ptr    string // JSON pointer from the document root to this resource
}

// Registry is the immutable result of build(): every known document
// (built-in meta-schemas plus user-supplied and retrieved schemas), indexed
// by canonical base URI and by anchor, ready for repeated compilation
// (spec.md §3 "Registry", §4.1).
type Registry struct {
	documents    *documentStore
	uriCache     *uriCache
	retriever    Retriever
	defaultDraft Draft
	resources    map[string]resourceLocation
	anchors      map[anchorKey]resourceLocation
	// unknownMetaSchemas records, per document URI, a $schema value that
	// didn't match any of draftMetaSchemaURIs — not fatal at build time,
	// only when a compile actually needs that document (spec.md §4.1 step 7).
	unknownMetaSchemas map[string]string
}

// buildRegistry implements spec.md §4.1's build(documents, retriever,
// default_draft) -> Registry | Error. documents maps a caller-chosen URI
// (or "" for an anonymous root, which is canonicalized against
// dummyBaseURI) to an already-decoded Value.
func buildRegistry(documents map[string]Value, retriever Retriever, defaultDraft Draft) (*Registry, error) {
	if retriever == nil {
		retriever = NoRetriever
	}

	r := &Registry{
		documents:          newDocumentStore(),
		uriCache:           newURICache(),
		retriever:          retriever,
		defaultDraft:       defaultDraft,
		resources:          make(map[string]resourceLocation),
		anchors:            make(map[anchorKey]resourceLocation),
		unknownMetaSchemas: make(map[string]string),
	}

	// Step 1: seed built-in meta-schema documents. These always win ties
	// against same-URI user input because they are inserted first and
	// documentStore.insert is first-wins.
	for uri, doc := range builtinMetaSchemas {
		r.documents.insert(uri, doc)
	}

	type worklistEntry struct {
		uri string
	}
	var worklist []worklistEntry
	seen := make(map[string]bool) // (base-identity) dedup for the worklist itself
	refSeen := make(map[string]bool) // (base-identity + "#" + ref) dedup, spec.md §4.1 step 6

	// Step 2: insert user documents, first-wins among duplicates, detecting
	// each one's draft from its own $schema (falling back to defaultDraft).
	for rawURI, val := range documents {
		uri := rawURI
		if uri == "" {
			uri = dummyBaseURI
		}
		canon := canonicalize(r.uriCache, dummyBaseURI, uri)
		draft, explicit := r.documentDraft(val, defaultDraft)
		if r.documents.insert(canon, document{value: val, draft: draft, explicitDraft: explicit}) {
			if !seen[canon] {
				seen[canon] = true
				worklist = append(worklist, worklistEntry{uri: canon})
			}
		}
	}

	// Step 3/4/5/6: FIFO worklist walking subresources, discovering
	// anchors, and fetching external refs/meta-schemas on demand.
	for len(worklist) > 0 {
		entry := worklist[0]
		worklist = worklist[1:]

		doc, ok := r.documents.get(entry.uri)
		if !ok {
			continue
		}

		var walkErr error
		walkSubresources(doc.value, entry.uri, "", doc.draft.idKeyword(), func(base, ptr string, node Value) {
			if walkErr != nil {
				return
			}
			loc := resourceLocation{docURI: entry.uri, ptr: ptr}
			if _, exists := r.resources[base]; !exists {
				r.resources[base] = loc
			}

			plainAnchor, dynAnchor := collectAnchorNames(node, doc.draft)
			if plainAnchor != "" {
				key := anchorKey{base: base, name: plainAnchor}
				if _, exists := r.anchors[key]; !exists {
					r.anchors[key] = loc
				}
			}
			if dynAnchor != "" {
				key := anchorKey{base: base, name: dynAnchor}
				if _, exists := r.anchors[key]; !exists {
					r.anchors[key] = loc
				}
			}

			collectExternalRefs(node, func(ref string, isSchema bool) {
				if walkErr != nil {
					return
				}
				refBase, _ := splitFragment(ref)
				if refBase == "" {
					return // pure fragment reference, same document
				}
				if base == dummyBaseURI && !isAbsoluteURI(refBase) {
					// Nothing to resolve against: never handed to the retriever.
					if !isSchema {
						walkErr = fmt.Errorf("%w: %s", ErrNoBaseURI, ref)
					}
					return
				}
				resolved := canonicalize(r.uriCache, base, refBase)
				dedupKey := base + "#" + ref
				if refSeen[dedupKey] {
					return
				}
				refSeen[dedupKey] = true

				if isURNScheme(resolved) || isBuiltinMetaSchemaURI(resolved) || r.documents.has(resolved) {
					return
				}

				fetched, err := retriever(resolved)
				if err != nil {
					// A $schema target that can't be fetched is not fatal here:
					// it is left unresolved and surfaces (if ever needed) through
					// checkKnownMetaSchema instead (spec.md §4.1 step 7). A $ref/
					// $dynamicRef target failing to resolve is fatal (step 4).
					if !isSchema {
						walkErr = fmt.Errorf("%w: %s: %w", ErrRetriever, resolved, err)
					}
					return
				}
				fdraft, fexplicit := r.documentDraft(fetched, defaultDraft)
				if r.documents.insert(resolved, document{value: fetched, draft: fdraft, explicitDraft: fexplicit}) {
					if !seen[resolved] {
						seen[resolved] = true
						worklist = append(worklist, worklistEntry{uri: resolved})
					}
				}
			})
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}

	// Step 7: any document whose $schema didn't resolve to a known draft is
	// flagged but not yet fatal — ErrUnknownSpecification surfaces only when
	// the compiler actually needs that document (spec.md §4.1 step 7). A
	// $schema naming a document that *is* registered (fetched above, or
	// seeded/inserted directly by the caller as a custom meta-schema) is not
	// flagged: its presence in the store is all step 7 requires.
	for uri, doc := range r.documents.docs {
		if doc.explicitDraft && doc.draft == DraftUnknown {
			if s, ok := schemaMember(doc.value); ok {
				resolved := canonicalize(r.uriCache, uri, s)
				if !r.documents.has(resolved) {
					r.unknownMetaSchemas[uri] = s
				}
			}
		}
	}

	return r, nil
}

// documentDraft detects val's draft via its $schema member, falling back to
// fallback when $schema is absent. Returns explicit=true whenever $schema
// was present, even if unrecognized (DraftUnknown), so build() can flag it.
func (r *Registry) documentDraft(val Value, fallback Draft) (Draft, bool) {
	s, ok := schemaMember(val)
	if !ok {
		return fallback, false
	}
	d, _ := detectDraft(s)
	return d, true
}

func schemaMember(val Value) (string, bool) {
	obj, ok := val.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := obj["$schema"].(string)
	return s, ok && s != ""
}

// lookupResource returns the resource stored at canonical base URI uri, if
// any (spec.md §4.2's resolution context consults this before falling back
// to a lazy walk of the active root document).
func (r *Registry) lookupResource(uri string) (resourceLocation, bool) {
	loc, ok := r.resources[uri]
	return loc, ok
}

// lookupAnchor returns the resource registered under (base, name).
func (r *Registry) lookupAnchor(base, name string) (resourceLocation, bool) {
	loc, ok := r.anchors[anchorKey{base: base, name: name}]
	return loc, ok
}

// checkKnownMetaSchema returns ErrUnknownSpecification if uri names a
// document whose $schema didn't resolve to one of the five supported
// drafts; called by the compiler right before it would otherwise use that
// document's keyword set (spec.md §4.1 step 7).
func (r *Registry) checkKnownMetaSchema(uri string) error {
	if s, bad := r.unknownMetaSchemas[uri]; bad {
		return fmt.Errorf("%w: %s: %s", ErrUnknownSpecification, uri, s)
	}
	return nil
}
