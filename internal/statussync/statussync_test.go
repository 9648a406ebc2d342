package statussync

import (
	"testing"

	"github.com/osomworks/themerouter/internal/registry"
	"github.com/osomworks/themerouter/internal/types"
)

type fakeRuleStore struct {
	rules []types.Rule
	saves int
}

func (f *fakeRuleStore) Rules() ([]types.Rule, error) { return f.rules, nil }

func (f *fakeRuleStore) SaveRules(rules []types.Rule) error {
	f.rules = rules
	f.saves++
	return nil
}

func runtimeWith(name types.ContentType, public bool) *registry.Runtime {
	rt := registry.NewRuntime()
	rt.RegisterPostType(name, registry.PostTypeSpec{Public: public})
	return rt
}

func TestApply_RewritesOnStatusChange(t *testing.T) {
	store := &fakeRuleStore{rules: []types.Rule{
		{ID: "r1", Theme: "themeB", Match: types.PageTarget{ID: 42, Status: types.StatusDraft}},
		{ID: "r2", Theme: "themeC", Match: types.URLTarget{Path: "about"}},
	}}
	s := NewSyncer(store, nil)

	err := s.Apply(Transition{ID: 42, Type: types.TypePage, OldStatus: types.StatusDraft, NewStatus: types.StatusPublish})
	if err != nil {
		t.Fatalf("Apply() error = %v, want nil", err)
	}

	if store.saves != 1 {
		t.Fatalf("saves = %d, want 1", store.saves)
	}
	want := types.PageTarget{ID: 42, Status: types.StatusPublish}
	if store.rules[0].Match != want {
		t.Errorf("rule = %#v, want rewritten to publish", store.rules[0].Match)
	}
	if store.rules[1].Match != (types.URLTarget{Path: "about"}) {
		t.Errorf("unrelated rule changed: %#v", store.rules[1].Match)
	}
}

func TestApply_TrashDeletesRule(t *testing.T) {
	store := &fakeRuleStore{rules: []types.Rule{
		{ID: "r1", Theme: "themeB", Match: types.PostTarget{ID: 7, Status: types.StatusPublish}},
		{ID: "r2", Theme: "themeC", Match: types.URLTarget{Path: "about"}},
	}}
	s := NewSyncer(store, nil)

	err := s.Apply(Transition{ID: 7, Type: types.TypePost, OldStatus: types.StatusPublish, NewStatus: types.StatusTrash})
	if err != nil {
		t.Fatalf("Apply() error = %v, want nil", err)
	}

	if len(store.rules) != 1 {
		t.Fatalf("len(rules) = %d, want 1", len(store.rules))
	}
	if store.rules[0].ID != "r2" {
		t.Errorf("surviving rule = %s, want r2", store.rules[0].ID)
	}
}

func TestApply_CustomItemReachingPublishDeletesRule(t *testing.T) {
	store := &fakeRuleStore{rules: []types.Rule{
		{ID: "r1", Theme: "themeB", Match: types.CPTItemTarget{ID: 9, PostType: "event", Status: types.StatusDraft}},
	}}
	s := NewSyncer(store, runtimeWith("event", true))

	err := s.Apply(Transition{ID: 9, Type: "event", OldStatus: types.StatusDraft, NewStatus: types.StatusPublish})
	if err != nil {
		t.Fatalf("Apply() error = %v, want nil", err)
	}

	if len(store.rules) != 0 {
		t.Fatalf("len(rules) = %d, want 0: no rule type tracks published custom items", len(store.rules))
	}
}

func TestApply_CustomItemStatusRewrite(t *testing.T) {
	store := &fakeRuleStore{rules: []types.Rule{
		{ID: "r1", Theme: "themeB", Match: types.CPTItemTarget{ID: 9, PostType: "event", Status: types.StatusDraft}},
	}}
	s := NewSyncer(store, runtimeWith("event", true))

	err := s.Apply(Transition{ID: 9, Type: "event", OldStatus: types.StatusDraft, NewStatus: types.StatusPending})
	if err != nil {
		t.Fatalf("Apply() error = %v, want nil", err)
	}

	want := types.CPTItemTarget{ID: 9, PostType: "event", Status: types.StatusPending}
	if store.rules[0].Match != want {
		t.Errorf("rule = %#v, want %#v", store.rules[0].Match, want)
	}
}

func TestApply_SkipsNoise(t *testing.T) {
	tests := []struct {
		name string
		tr   Transition
	}{
		{"no-op transition", Transition{ID: 42, Type: types.TypePage, OldStatus: types.StatusDraft, NewStatus: types.StatusDraft}},
		{"revision", Transition{ID: 42, Type: types.TypePage, OldStatus: types.StatusDraft, NewStatus: types.StatusPublish, Revision: true}},
		{"autosave", Transition{ID: 42, Type: types.TypePage, OldStatus: types.StatusDraft, NewStatus: types.StatusPublish, Autosave: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeRuleStore{rules: []types.Rule{
				{ID: "r1", Theme: "themeB", Match: types.PageTarget{ID: 42, Status: types.StatusDraft}},
			}}
			s := NewSyncer(store, nil)
			if err := s.Apply(tt.tr); err != nil {
				t.Fatalf("Apply() error = %v, want nil", err)
			}
			if store.saves != 0 {
				t.Errorf("saves = %d, want 0", store.saves)
			}
		})
	}
}

func TestApply_UnsupportedTypesIgnored(t *testing.T) {
	store := &fakeRuleStore{rules: []types.Rule{
		{ID: "r1", Theme: "themeB", Match: types.CPTItemTarget{ID: 9, PostType: "event", Status: types.StatusDraft}},
	}}

	// Not registered at all.
	s := NewSyncer(store, registry.NewRuntime())
	if err := s.Apply(Transition{ID: 9, Type: "event", OldStatus: types.StatusDraft, NewStatus: types.StatusPublish}); err != nil {
		t.Fatalf("Apply() error = %v, want nil", err)
	}
	if store.saves != 0 {
		t.Errorf("saves = %d, want 0 for unregistered type", store.saves)
	}

	// Registered but not public.
	s = NewSyncer(store, runtimeWith("event", false))
	if err := s.Apply(Transition{ID: 9, Type: "event", OldStatus: types.StatusDraft, NewStatus: types.StatusPublish}); err != nil {
		t.Fatalf("Apply() error = %v, want nil", err)
	}
	if store.saves != 0 {
		t.Errorf("saves = %d, want 0 for private type", store.saves)
	}
}

func TestApply_NoMatchingRulesNoSave(t *testing.T) {
	store := &fakeRuleStore{rules: []types.Rule{
		{ID: "r1", Theme: "themeB", Match: types.PageTarget{ID: 41, Status: types.StatusDraft}},
	}}
	s := NewSyncer(store, nil)

	if err := s.Apply(Transition{ID: 42, Type: types.TypePage, OldStatus: types.StatusDraft, NewStatus: types.StatusPublish}); err != nil {
		t.Fatalf("Apply() error = %v, want nil", err)
	}
	if store.saves != 0 {
		t.Errorf("saves = %d, want 0 when nothing changed", store.saves)
	}
}

func TestApply_DynamicFormRuleTracked(t *testing.T) {
	// Rules stored in the legacy "{status}_{post_type}" form decode to the
	// same variant and must be rewritten like canonical ones.
	store := &fakeRuleStore{rules: []types.Rule{
		{ID: "r1", Theme: "themeB", Match: types.CPTItemTarget{ID: 9, PostType: "event", Status: types.StatusDraft}},
	}}
	s := NewSyncer(store, runtimeWith("event", true))

	if err := s.Apply(Transition{ID: 9, Type: "event", OldStatus: types.StatusDraft, NewStatus: types.StatusFuture}); err != nil {
		t.Fatalf("Apply() error = %v, want nil", err)
	}
	want := types.CPTItemTarget{ID: 9, PostType: "event", Status: types.StatusFuture}
	if store.rules[0].Match != want {
		t.Errorf("rule = %#v, want %#v", store.rules[0].Match, want)
	}
}
