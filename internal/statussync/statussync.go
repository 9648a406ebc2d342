// Package statussync keeps per-item rules aligned with content status
// changes.
package statussync

/*
 * A rule targeting a specific content item is qualified by that item's
 * publication status: a "draft page" rule stops applying the moment the
 * page is published, because the published page now lives under its
 * permalink instead of a preview URL. Status sync rewrites such rules on
 * every status transition so they keep tracking the item, or removes them
 * when no rule type covers the new status.
 *
 * Transitions for revisions, autosaves and unchanged statuses are noise
 * and ignored. Custom post types participate only while publicly
 * registered; an unregistered type's items cannot be addressed anyway.
 */

import (
	"fmt"

	"github.com/osomworks/themerouter/internal/registry"
	"github.com/osomworks/themerouter/internal/types"
)

// RuleStore is the slice of the rule store status sync needs.
type RuleStore interface {
	Rules() ([]types.Rule, error)
	SaveRules([]types.Rule) error
}

// Transition describes one content status change reported by the host.
type Transition struct {
	ID        types.ContentID
	Type      types.ContentType
	OldStatus types.ContentStatus
	NewStatus types.ContentStatus
	// Revision and Autosave mark transitions on shadow copies of the
	// real item.
	Revision bool
	Autosave bool
}

// Syncer applies status transitions to the stored rule list.
type Syncer struct {
	store   RuleStore
	runtime *registry.Runtime
}

// NewSyncer builds a Syncer. A nil runtime treats every custom post type
// as unsupported.
func NewSyncer(store RuleStore, runtime *registry.Runtime) *Syncer {
	return &Syncer{store: store, runtime: runtime}
}

// Apply rewrites or removes rules targeting the transitioned item. The
// rule list is persisted only when at least one rule changed.
func (s *Syncer) Apply(t Transition) error {
	if t.NewStatus == t.OldStatus || t.Revision || t.Autosave {
		return nil
	}
	if !s.supported(t.Type) {
		return nil
	}

	rules, err := s.store.Rules()
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	old := types.Content{ID: t.ID, Type: t.Type, Status: t.OldStatus}
	updated := false
	kept := rules[:0]

	for _, rule := range rules {
		if !types.MatchesComposite(rule.Match, old) {
			kept = append(kept, rule)
			continue
		}
		if t.NewStatus == types.StatusTrash {
			updated = true
			continue
		}
		target, ok := retarget(rule.Match, t.NewStatus, t.Type)
		if !ok {
			// No rule type tracks this status for this content type,
			// e.g. a custom item reaching publish: its per-item rule
			// has nothing to become.
			updated = true
			continue
		}
		rule.Match = target
		kept = append(kept, rule)
		updated = true
	}

	if !updated {
		return nil
	}
	if err := s.store.SaveRules(kept); err != nil {
		return fmt.Errorf("save rules: %w", err)
	}
	return nil
}

// retarget rebuilds a per-item target for the new status, ok=false when
// no rule type covers the combination.
func retarget(target types.Target, status types.ContentStatus, ct types.ContentType) (types.Target, bool) {
	if _, ok := types.RuleTypeFor(status, ct); !ok {
		return nil, false
	}
	switch t := target.(type) {
	case types.PageTarget:
		t.Status = status
		return t, true
	case types.PostTarget:
		t.Status = status
		return t, true
	case types.CPTItemTarget:
		t.Status = status
		return t, true
	}
	return nil, false
}

// supported reports whether rules for this content type participate in
// status sync: built-in page and post always, custom types only while
// publicly registered.
func (s *Syncer) supported(ct types.ContentType) bool {
	if ct.Builtin() {
		return true
	}
	if s.runtime == nil {
		return false
	}
	spec, ok := s.runtime.PostType(ct)
	return ok && spec.Public
}
