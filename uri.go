package jsonschema

import (
	"net/url"
	"strings"
	"sync"
)

// dummyBaseURI is the placeholder base used when a schema is compiled
// without any enclosing $id, matching spec.md §4.1 step 5's
// "json-schema:///" sentinel.
const dummyBaseURI = "json-schema:///"

// uriCache memoizes (base, relative) -> resolved URI, the registry's
// uri_cache from spec.md §3. It is shared and safe for concurrent use so a
// Registry stays immutable (and reusable across compiles) after build().
type uriCache struct {
	mu    sync.RWMutex
	cache map[uriCacheKey]string
}

type uriCacheKey struct {
	base string
	rel  string
}

func newURICache() *uriCache {
	return &uriCache{cache: make(map[uriCacheKey]string)}
}

// resolve resolves rel against base, memoizing the result so repeated
// resolution of the same pair is pointer/value-stable (spec.md §8
// "URI canonicalization").
func (c *uriCache) resolve(base, rel string) string {
	key := uriCacheKey{base: base, rel: rel}
	c.mu.RLock()
	if v, ok := c.cache[key]; ok {
		c.mu.RUnlock()
		return v
	}
	c.mu.RUnlock()

	resolved := resolveURI(base, rel)

	c.mu.Lock()
	c.cache[key] = resolved
	c.mu.Unlock()
	return resolved
}

// resolveURI resolves a relative reference against a base URI using RFC
// 3986 semantics via net/url. If rel is already absolute, it is returned
// unchanged (after fragment-stripping is handled by the caller).
func resolveURI(base, rel string) string {
	if isAbsoluteURI(rel) {
		return rel
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return rel
	}
	relURL, err := url.Parse(rel)
	if err != nil {
		return rel
	}
	return baseURL.ResolveReference(relURL).String()
}

// isAbsoluteURI reports whether s has a non-empty scheme component.
func isAbsoluteURI(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != ""
}

// isValidURI reports whether s parses as an RFC 3986 URI reference at all
// (absolute or relative).
func isValidURI(s string) bool {
	_, err := url.Parse(s)
	return err == nil
}

// isURNScheme reports whether s uses the "urn:" scheme, which spec.md §4.1
// says never triggers external retrieval.
func isURNScheme(s string) bool {
	return strings.HasPrefix(s, "urn:")
}

// splitFragment separates a reference into its canonical (fragment-free)
// URI and fragment parts.
func splitFragment(ref string) (base, fragment string) {
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}

// canonicalize resolves rel against base and strips any fragment; used
// whenever a URI is about to become a document-store key (spec.md §3:
// "registry keys store URIs without a fragment").
func canonicalize(cache *uriCache, base, rel string) string {
	resolved := cache.resolve(base, rel)
	b, _ := splitFragment(resolved)
	return b
}

// baseOf returns the directory-level base URI an $id establishes for
// resolving further relative references beneath it (net/url's
// ResolveReference already does the heavy lifting; this just strips any
// fragment an $id should never carry).
func baseOf(id string) string {
	b, _ := splitFragment(id)
	return b
}
