package registry

import (
	"sort"

	"github.com/osomworks/themerouter/internal/types"
)

// Runtime is the registration state of the current request: which post
// types and taxonomies are live right now. The host populates it while the
// loaded theme runs its setup; re-registration adds to it; capture reads
// it. Per-request sequential use, no locking (see the concurrency notes in
// the package comment).
type Runtime struct {
	postTypes  map[types.ContentType]PostTypeSpec
	taxonomies map[string]TaxonomySpec
}

// NewRuntime creates an empty registration set.
func NewRuntime() *Runtime {
	return &Runtime{
		postTypes:  make(map[types.ContentType]PostTypeSpec),
		taxonomies: make(map[string]TaxonomySpec),
	}
}

// RegisterPostType makes a post type live. Re-registering an existing name
// replaces its spec, matching host semantics.
func (rt *Runtime) RegisterPostType(name types.ContentType, spec PostTypeSpec) {
	if name == "" {
		return
	}
	rt.postTypes[name] = spec
}

// RegisterTaxonomy makes a taxonomy live.
func (rt *Runtime) RegisterTaxonomy(name string, spec TaxonomySpec) {
	if name == "" {
		return
	}
	rt.taxonomies[name] = spec
}

// HasPostType reports whether a post type is live.
func (rt *Runtime) HasPostType(name types.ContentType) bool {
	_, ok := rt.postTypes[name]
	return ok
}

// HasTaxonomy reports whether a taxonomy is live.
func (rt *Runtime) HasTaxonomy(name string) bool {
	_, ok := rt.taxonomies[name]
	return ok
}

// PostType returns the live spec for a post type.
func (rt *Runtime) PostType(name types.ContentType) (PostTypeSpec, bool) {
	spec, ok := rt.postTypes[name]
	return spec, ok
}

// Taxonomy returns the live spec for a taxonomy.
func (rt *Runtime) Taxonomy(name string) (TaxonomySpec, bool) {
	spec, ok := rt.taxonomies[name]
	return spec, ok
}

// PostTypeNames returns the live custom post type names, sorted.
func (rt *Runtime) PostTypeNames() []types.ContentType {
	names := make([]types.ContentType, 0, len(rt.postTypes))
	for name := range rt.postTypes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// publicObjects builds the capture payload: every live public custom post
// type and taxonomy. Built-in objects belong to the host, not to a theme,
// and are excluded.
func (rt *Runtime) publicObjects() ThemeObjects {
	objects := ThemeObjects{
		PostTypes:  make(map[string]PostTypeSpec),
		Taxonomies: make(map[string]TaxonomySpec),
	}

	for name, spec := range rt.postTypes {
		if name.Builtin() || !spec.Public {
			continue
		}
		objects.PostTypes[string(name)] = spec
	}
	for name, spec := range rt.taxonomies {
		if builtinTaxonomy(name) || !spec.Public {
			continue
		}
		objects.Taxonomies[name] = spec
	}

	return objects
}
