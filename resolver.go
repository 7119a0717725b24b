package jsonschema

import "fmt"

// refTarget is the fully-resolved destination of a $ref or $dynamicRef: the
// canonical base URI it landed on, the schema Value found there, and the
// draft that governs it (which may differ from the referrer's draft when a
// $ref crosses a document boundary).
type refTarget struct {
	uri   string
	value Value
	draft Draft
	// base is the resource-identity base URI that should seed a Resolver
	// compiling into value — the base further $id/$ref resolution inside
	// value is relative to. For a fragment-free or anchor target this is
	// exactly the resource's own base; for a JSON-pointer-fragment target
	// it is an approximation (the owning document's base), which is exact
	// unless an untracked intermediate $id sits between the document root
	// and the pointer target (see DESIGN.md).
	base string
}

// Resolver pairs a resolutionContext with the mutable base-URI stack the
// compiler maintains while walking a schema tree (spec.md §4.2 "Resolver").
// A Context is immutable and shared; a Resolver is created fresh per
// compile and mutated as the walk descends into $id scopes.
type Resolver struct {
	ctx          *resolutionContext
	baseStack    []string
	dynamicScope []string
}

func newResolver(ctx *resolutionContext) *Resolver {
	return newResolverAt(ctx, ctx.rootURI)
}

// newResolverAt starts a Resolver whose base stack is seeded at base,
// used when the compiler follows a $ref into a different resource and
// needs a fresh base for compiling that resource's own subtree.
func newResolverAt(ctx *resolutionContext, base string) *Resolver {
	return &Resolver{
		ctx:          ctx,
		baseStack:    []string{base},
		dynamicScope: []string{base},
	}
}

// currentBase returns the base URI in effect at the top of the stack.
func (r *Resolver) currentBase() string {
	return r.baseStack[len(r.baseStack)-1]
}

// pushID resolves id (an $id/id member value) against the current base and
// pushes it, returning a restore func the caller defers to pop back out
// once the walk leaves that subtree.
func (r *Resolver) pushID(id string) func() {
	if id == "" {
		return func() {}
	}
	next := r.ctx.registry.uriCache.resolve(r.currentBase(), id)
	next = baseOf(next)
	r.baseStack = append(r.baseStack, next)
	return func() {
		r.baseStack = r.baseStack[:len(r.baseStack)-1]
	}
}

// pushDynamicScope extends the dynamic scope chain used by $dynamicRef
// resolution (spec.md §4.2: "the outermost matching $dynamicAnchor in the
// dynamic scope wins, not the lexically nearest one"). It is pushed every
// time compilation follows a $ref into another resource, in addition to
// $id-based lexical nesting.
func (r *Resolver) pushDynamicScope(base string) func() {
	r.dynamicScope = append(r.dynamicScope, base)
	return func() {
		r.dynamicScope = r.dynamicScope[:len(r.dynamicScope)-1]
	}
}

// resolveRef resolves a static $ref string against the current base,
// returning the target resource.
func (r *Resolver) resolveRef(ref string) (refTarget, error) {
	base := r.currentBase()
	refBase, fragment := splitFragment(ref)

	resolved := base
	if refBase != "" {
		if base == dummyBaseURI && !isAbsoluteURI(refBase) {
			return refTarget{}, fmt.Errorf("%w: %s", ErrNoBaseURI, ref)
		}
		resolved = r.ctx.registry.uriCache.resolve(base, refBase)
		resolved = baseOf(resolved)
	}

	if fragment == "" {
		val, ok := r.ctx.resolveBase(resolved)
		if ok {
			_, _, draft, _ := r.ctx.ownerOf(resolved)
			return refTarget{uri: resolved, value: val, draft: draft, base: resolved}, nil
		}
		// The base itself may be a plain document root with no $id boundary.
		if docURI, root, draft, ok := r.ctx.ownerOf(resolved); ok {
			return refTarget{uri: docURI, value: root, draft: draft, base: docURI}, nil
		}
		return refTarget{}, fmt.Errorf("%w: %s", ErrGlobalReferenceResolution, ref)
	}

	if len(fragment) > 0 && fragment[0] == '/' {
		docURI, root, draft, ok := r.ctx.ownerOf(resolved)
		if !ok {
			return refTarget{}, fmt.Errorf("%w: %s", ErrGlobalReferenceResolution, ref)
		}
		val, ok := pointerGet(root, fragment)
		if !ok {
			return refTarget{}, fmt.Errorf("%w: %s#%s", ErrJSONPointerSegmentNotFound, docURI, fragment)
		}
		return refTarget{uri: docURI + "#" + fragment, value: val, draft: draft, base: docURI}, nil
	}

	// Plain anchor fragment ("#name").
	val, ok := r.ctx.resolveAnchor(resolved, fragment)
	if !ok {
		return refTarget{}, fmt.Errorf("%w: %s", ErrGlobalReferenceResolution, ref)
	}
	_, _, draft, _ := r.ctx.ownerOf(resolved)
	return refTarget{uri: resolved + "#" + fragment, value: val, draft: draft, base: resolved}, nil
}

// resolveDynamicRef resolves a $dynamicRef: it first resolves exactly like
// a static $ref, then, when the fragment is an anchor name, scans the
// dynamic scope chain from the outermost (root-most) frame inward for the
// first resource whose anchor index holds that name. The anchor index does
// not tell $anchor from $dynamicAnchor, so a plain $anchor of that name
// also matches, and the lexical target is not checked for a $dynamicAnchor.
// (spec.md §4.2, 2020-12 semantics only — callers must not invoke this for
// earlier drafts.)
func (r *Resolver) resolveDynamicRef(ref string) (refTarget, error) {
	lexical, err := r.resolveRef(ref)
	if err != nil {
		return refTarget{}, err
	}

	_, fragment := splitFragment(ref)
	if fragment == "" || fragment[0] == '/' {
		return lexical, nil // no anchor name to rescan for
	}

	for _, scopeBase := range r.dynamicScope {
		if val, ok := r.ctx.resolveAnchor(scopeBase, fragment); ok {
			_, _, draft, _ := r.ctx.ownerOf(scopeBase)
			return refTarget{uri: scopeBase + "#" + fragment, value: val, draft: draft, base: scopeBase}, nil
		}
	}
	return lexical, nil
}
