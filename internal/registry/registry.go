// Package registry keeps custom post types and taxonomies resolvable when
// the theme that declares them is not the one currently loaded.
//
// Each theme registers its own post types and taxonomies during its setup.
// When a rule routes a request to theme B, theme A never runs, and any URL
// pointing into one of A's post types would stop parsing. The registry
// records, per owning theme, the full registration descriptors, and
// re-registers whatever the active rule list references but the loaded
// theme does not define.
package registry

/*
 * Two phases per request, both idempotent:
 *
 *   1. Reregister (early): collect the post type / taxonomy slugs the rule
 *      list references; for each one not live in the runtime, search every
 *      stored owning-theme entry and register from the stored descriptor.
 *   2. Capture (late, after the loaded theme finished registering): record
 *      descriptors for every public custom object keyed by the active
 *      theme. The write is skipped when nothing changed.
 *
 * Over many requests with different active themes the stored map converges
 * to "theme -> the objects it defines", which is what makes re-registration
 * possible for any theme, not just the previous one.
 */

import (
	"fmt"
	"reflect"

	"github.com/osomworks/themerouter/internal/types"
)

// OptionName is the store option holding the cross-theme object registry.
const OptionName = "theme_object_registry"

// OptionStore is the slice of the rule store the registry persists through.
type OptionStore interface {
	Option(name string, dest any) (bool, error)
	SetOption(name string, value any) error
}

// PostTypeSpec is the registration descriptor for a custom post type.
type PostTypeSpec struct {
	Label       string   `json:"label,omitempty"`
	Public      bool     `json:"public"`
	RewriteSlug string   `json:"rewrite_slug,omitempty"`
	HasArchive  bool     `json:"has_archive,omitempty"`
	ArchiveSlug string   `json:"archive_slug,omitempty"`
	Supports    []string `json:"supports,omitempty"`
	ShowInREST  bool     `json:"show_in_rest,omitempty"`
	RESTBase    string   `json:"rest_base,omitempty"`
	Taxonomies  []string `json:"taxonomies,omitempty"`
}

// TaxonomySpec is the registration descriptor for a custom taxonomy.
type TaxonomySpec struct {
	Label       string   `json:"label,omitempty"`
	Public      bool     `json:"public"`
	RewriteSlug string   `json:"rewrite_slug,omitempty"`
	ShowInREST  bool     `json:"show_in_rest,omitempty"`
	RESTBase    string   `json:"rest_base,omitempty"`
	ObjectTypes []string `json:"object_types,omitempty"`
}

// ThemeObjects are the custom objects one theme declares.
type ThemeObjects struct {
	PostTypes  map[string]PostTypeSpec `json:"post_types"`
	Taxonomies map[string]TaxonomySpec `json:"taxonomies"`
}

// Registry reads and writes the persisted cross-theme object map.
type Registry struct {
	store OptionStore
}

// New creates a Registry over the given option store.
func New(store OptionStore) *Registry {
	return &Registry{store: store}
}

// Snapshot returns the stored owning-theme map. A never-written registry is
// an empty map.
func (r *Registry) Snapshot() (map[types.ThemeSlug]ThemeObjects, error) {
	snapshot := make(map[types.ThemeSlug]ThemeObjects)
	if _, err := r.store.Option(OptionName, &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Reregister registers, into the runtime, every post type and taxonomy the
// rule list references that is not already live, using descriptors stored
// under any owning theme. Returns the number of objects registered. Silent
// on store errors: this is a read-time fallback and must never break a
// request.
func (r *Registry) Reregister(rules []types.Rule, rt *Runtime) int {
	postTypes, taxonomies := referencedObjects(rules)
	if len(postTypes) == 0 && len(taxonomies) == 0 {
		return 0
	}

	snapshot, err := r.Snapshot()
	if err != nil {
		return 0
	}

	registered := 0
	for name := range postTypes {
		if rt.HasPostType(name) {
			continue
		}
		for _, objects := range snapshot {
			if spec, ok := objects.PostTypes[string(name)]; ok {
				rt.RegisterPostType(name, spec)
				registered++
				break
			}
		}
	}
	for name := range taxonomies {
		if rt.HasTaxonomy(name) {
			continue
		}
		for _, objects := range snapshot {
			if spec, ok := objects.Taxonomies[name]; ok {
				rt.RegisterTaxonomy(name, spec)
				registered++
				break
			}
		}
	}

	return registered
}

// Capture records the runtime's public custom objects under the active
// theme. The stored entry is only overwritten when its content differs.
// Returns whether a write happened.
func (r *Registry) Capture(active types.ThemeSlug, rt *Runtime) (bool, error) {
	if active == "" {
		return false, fmt.Errorf("capture requires an active theme")
	}

	objects := rt.publicObjects()

	snapshot, err := r.Snapshot()
	if err != nil {
		return false, err
	}

	if existing, ok := snapshot[active]; ok && reflect.DeepEqual(existing, objects) {
		return false, nil
	}

	snapshot[active] = objects
	if err := r.store.SetOption(OptionName, snapshot); err != nil {
		return false, fmt.Errorf("failed to store object registry: %w", err)
	}
	return true, nil
}

// referencedObjects collects the custom post type and taxonomy names the
// rule list depends on.
func referencedObjects(rules []types.Rule) (map[types.ContentType]struct{}, map[string]struct{}) {
	postTypes := make(map[types.ContentType]struct{})
	taxonomies := make(map[string]struct{})

	for _, rule := range rules {
		switch t := rule.Match.(type) {
		case types.PostTypeTarget:
			if t.Name != "" && !t.Name.Builtin() {
				postTypes[t.Name] = struct{}{}
			}
		case types.CPTItemTarget:
			if t.PostType != "" && !t.PostType.Builtin() {
				postTypes[t.PostType] = struct{}{}
			}
		case types.TaxonomyTarget:
			if t.Taxonomy != "" && !builtinTaxonomy(t.Taxonomy) {
				taxonomies[t.Taxonomy] = struct{}{}
			}
		}
	}

	return postTypes, taxonomies
}

func builtinTaxonomy(name string) bool {
	return name == "category" || name == "post_tag"
}
