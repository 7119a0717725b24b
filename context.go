package jsonschema

import (
	"net/url"
	"strconv"

	"github.com/kaptinlin/jsonpointer"
)

// resolutionContext is the read side of a Registry plus whatever overlay a
// single compile needs for its own root document (spec.md §4.2
// "Resolution context"). Registries are shared and reused across compiles;
// the overlay is not, so it is rebuilt (cheaply, lazily) per compile.
type resolutionContext struct {
	registry  *Registry
	rootURI   string
	rootDoc   Value
	rootDraft Draft

	indexed       bool
	rootResources map[string]resourceLocation
	rootAnchors   map[anchorKey]resourceLocation
}

// withRootDocument builds a resolutionContext for compiling rootDoc (already
// assigned canonical URI rootURI and detected draft rootDraft) against reg.
// If rootDoc was itself inserted into reg during buildRegistry, the
// registry's own index already covers it and the overlay stays empty.
func withRootDocument(reg *Registry, rootURI string, rootDoc Value, rootDraft Draft) *resolutionContext {
	return &resolutionContext{
		registry:  reg,
		rootURI:   rootURI,
		rootDoc:   rootDoc,
		rootDraft: rootDraft,
	}
}

// ensureIndexed lazily walks the root document for subresources and anchors
// the very first time resolution needs them, mirroring spec.md §4.2's
// "resources/anchors maps computed lazily from a registry".
func (c *resolutionContext) ensureIndexed() {
	if c.indexed {
		return
	}
	c.indexed = true
	if c.registry.documents.has(c.rootURI) {
		return // already covered by the registry's own index
	}
	c.rootResources = make(map[string]resourceLocation)
	c.rootAnchors = make(map[anchorKey]resourceLocation)
	walkSubresources(c.rootDoc, c.rootURI, "", c.rootDraft.idKeyword(), func(base, ptr string, node Value) {
		loc := resourceLocation{docURI: c.rootURI, ptr: ptr}
		if _, exists := c.rootResources[base]; !exists {
			c.rootResources[base] = loc
		}
		plain, dyn := collectAnchorNames(node, c.rootDraft)
		if plain != "" {
			key := anchorKey{base: base, name: plain}
			if _, exists := c.rootAnchors[key]; !exists {
				c.rootAnchors[key] = loc
			}
		}
		if dyn != "" {
			key := anchorKey{base: base, name: dyn}
			if _, exists := c.rootAnchors[key]; !exists {
				c.rootAnchors[key] = loc
			}
		}
	})
}

// resolveBase returns the schema Value rooted at canonical base URI uri,
// checking the registry's index first and the root-document overlay second.
func (c *resolutionContext) resolveBase(uri string) (Value, bool) {
	if loc, ok := c.registry.lookupResource(uri); ok {
		return c.fetch(loc)
	}
	c.ensureIndexed()
	if loc, ok := c.rootResources[uri]; ok {
		return c.fetch(loc)
	}
	return nil, false
}

// resolveAnchor returns the schema Value registered under (base, name).
// Plain and dynamic anchors share one index, so either kind matches.
func (c *resolutionContext) resolveAnchor(base, name string) (Value, bool) {
	if loc, ok := c.registry.lookupAnchor(base, name); ok {
		return c.fetch(loc)
	}
	c.ensureIndexed()
	if loc, ok := c.rootAnchors[anchorKey{base: base, name: name}]; ok {
		return c.fetch(loc)
	}
	return nil, false
}

// fetch dereferences a resourceLocation into the Value it names, preferring
// the in-flight root document over the registry's stored copy when they are
// the same document (so edits/overlay state during compile stay visible).
func (c *resolutionContext) fetch(loc resourceLocation) (Value, bool) {
	var root Value
	if loc.docURI == c.rootURI {
		root = c.rootDoc
	} else if doc, ok := c.registry.documents.get(loc.docURI); ok {
		root = doc.value
	} else {
		return nil, false
	}
	return pointerGet(root, loc.ptr)
}

// ownerOf finds the document that owns the resource at canonical base URI
// uri: its own canonical URI, root Value, and draft. JSON-pointer fragments
// are always evaluated against this root, never against an intermediate
// $id subresource (spec.md §4.2 "JSON pointer fragments are document-root
// relative").
func (c *resolutionContext) ownerOf(uri string) (docURI string, root Value, draft Draft, ok bool) {
	if doc, found := c.registry.documents.get(uri); found {
		return uri, doc.value, doc.draft, true
	}
	if uri == c.rootURI {
		return c.rootURI, c.rootDoc, c.rootDraft, true
	}
	if loc, found := c.registry.lookupResource(uri); found {
		if doc, found2 := c.registry.documents.get(loc.docURI); found2 {
			return loc.docURI, doc.value, doc.draft, true
		}
		if loc.docURI == c.rootURI {
			return c.rootURI, c.rootDoc, c.rootDraft, true
		}
	}
	c.ensureIndexed()
	if loc, found := c.rootResources[uri]; found && loc.docURI == c.rootURI {
		return c.rootURI, c.rootDoc, c.rootDraft, true
	}
	return "", nil, DraftUnknown, false
}

// pointerGet walks root along the RFC 6901 pointer ptr (leading "/", no
// "#"), using kaptinlin/jsonpointer to split and unescape tokens.
func pointerGet(root Value, ptr string) (Value, bool) {
	if ptr == "" {
		return root, true
	}
	segments := jsonpointer.Parse(ptr)
	cur := root
	for _, seg := range segments {
		decoded, err := url.PathUnescape(seg)
		if err != nil {
			decoded = seg
		}
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[decoded]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(decoded)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}
