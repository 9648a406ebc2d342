package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/osomworks/themerouter/internal/core/db"
	"github.com/osomworks/themerouter/internal/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "store_test.db")
	conn, err := db.Open("sqlite://" + path)
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.MigrateUp(conn); err != nil {
		t.Fatalf("MigrateUp() error = %v, want nil", err)
	}
	queries, err := db.LoadQueries(conn)
	if err != nil {
		t.Fatalf("LoadQueries() error = %v, want nil", err)
	}
	return New(queries)
}

func TestOption_RoundTrip(t *testing.T) {
	s := testStore(t)

	var value string
	ok, err := s.Option("never_set", &value)
	if err != nil {
		t.Fatalf("Option() error = %v, want nil", err)
	}
	if ok {
		t.Fatalf("Option() ok = true for unset option, want false")
	}

	if err := s.SetOption("greeting", "hello"); err != nil {
		t.Fatalf("SetOption() error = %v, want nil", err)
	}
	ok, err = s.Option("greeting", &value)
	if err != nil || !ok || value != "hello" {
		t.Fatalf("Option() = (%q, %v, %v), want (hello, true, nil)", value, ok, err)
	}

	// Upsert replaces in place.
	if err := s.SetOption("greeting", "hej"); err != nil {
		t.Fatalf("SetOption() error = %v, want nil", err)
	}
	if _, err := s.Option("greeting", &value); err != nil || value != "hej" {
		t.Fatalf("Option() = (%q, %v), want (hej, nil)", value, err)
	}
}

func TestRules_RoundTrip(t *testing.T) {
	s := testStore(t)

	rules, err := s.Rules()
	if err != nil {
		t.Fatalf("Rules() error = %v, want nil", err)
	}
	if len(rules) != 0 {
		t.Fatalf("len(rules) = %d, want 0 before any save", len(rules))
	}

	saved := []types.Rule{
		{ID: types.NewRuleID(), Theme: "themeB", Match: types.URLTarget{Path: "about-us"}},
		{ID: types.NewRuleID(), Theme: "themeC", Match: types.PageTarget{ID: 42, Status: types.StatusDraft}},
	}
	if err := s.SaveRules(saved); err != nil {
		t.Fatalf("SaveRules() error = %v, want nil", err)
	}

	loaded, err := s.Rules()
	if err != nil {
		t.Fatalf("Rules() error = %v, want nil", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("len(rules) = %d, want 2", len(loaded))
	}
	for i := range saved {
		if loaded[i].Theme != saved[i].Theme || loaded[i].Match != saved[i].Match {
			t.Errorf("rule %d = %#v, want %#v", i, loaded[i], saved[i])
		}
	}
}

func TestSetRestPrefix(t *testing.T) {
	s := testStore(t)

	clean, err := s.SetRestPrefix("themeC", "/API v2!/")
	if err != nil {
		t.Fatalf("SetRestPrefix() error = %v, want nil", err)
	}
	if clean != "apiv2" {
		t.Errorf("sanitized prefix = %q, want apiv2", clean)
	}

	// Updating the same theme replaces in place.
	if _, err := s.SetRestPrefix("themeC", "wp-json-2"); err != nil {
		t.Fatalf("SetRestPrefix() error = %v, want nil", err)
	}
	prefixes, err := s.RestPrefixes()
	if err != nil {
		t.Fatalf("RestPrefixes() error = %v, want nil", err)
	}
	if len(prefixes) != 1 {
		t.Fatalf("len(prefixes) = %d, want 1 (no duplicates)", len(prefixes))
	}
	if prefixes[0].Prefix != "wp-json-2" {
		t.Errorf("prefix = %q, want wp-json-2", prefixes[0].Prefix)
	}
}

func TestSetRestPrefix_Rejections(t *testing.T) {
	s := testStore(t)

	if _, err := s.SetRestPrefix("themeC", "///"); !errors.Is(err, types.ErrEmptyPrefix) {
		t.Errorf("SetRestPrefix(///) error = %v, want ErrEmptyPrefix", err)
	}
	if _, err := s.SetRestPrefix("themeC", "!!!"); !errors.Is(err, types.ErrEmptyPrefix) {
		t.Errorf("SetRestPrefix(!!!) error = %v, want ErrEmptyPrefix", err)
	}
	if _, err := s.SetRestPrefix("themeC", types.DefaultRestPrefix); !errors.Is(err, types.ErrReservedPrefix) {
		t.Errorf("SetRestPrefix(default) error = %v, want ErrReservedPrefix", err)
	}
}

func TestDeleteRestPrefix(t *testing.T) {
	s := testStore(t)

	if _, err := s.SetRestPrefix("themeB", "alpha"); err != nil {
		t.Fatalf("SetRestPrefix() error = %v, want nil", err)
	}
	if _, err := s.SetRestPrefix("themeC", "beta"); err != nil {
		t.Fatalf("SetRestPrefix() error = %v, want nil", err)
	}

	if err := s.DeleteRestPrefix(5); !errors.Is(err, types.ErrRuleNotFound) {
		t.Errorf("DeleteRestPrefix(5) error = %v, want ErrRuleNotFound", err)
	}
	if err := s.DeleteRestPrefix(0); err != nil {
		t.Fatalf("DeleteRestPrefix(0) error = %v, want nil", err)
	}

	prefixes, err := s.RestPrefixes()
	if err != nil {
		t.Fatalf("RestPrefixes() error = %v, want nil", err)
	}
	if len(prefixes) != 1 || prefixes[0].Theme != "themeC" {
		t.Errorf("prefixes = %#v, want only themeC", prefixes)
	}
}

func TestSanitizeRestPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"wp-json-2", "wp-json-2"},
		{"/api/", "api"},
		{"API V2", "apiv2"},
		{"my_prefix", "my_prefix"},
		{"<x>&y", "xy"},
		{"///", ""},
	}
	for _, tt := range tests {
		if got := SanitizeRestPrefix(tt.in); got != tt.want {
			t.Errorf("SanitizeRestPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAdminTheme(t *testing.T) {
	s := testStore(t)

	theme, err := s.AdminTheme(7)
	if err != nil {
		t.Fatalf("AdminTheme() error = %v, want nil", err)
	}
	if theme != "" {
		t.Fatalf("AdminTheme() = %q, want empty before set", theme)
	}

	if err := s.SetAdminTheme(7, "themeB"); err != nil {
		t.Fatalf("SetAdminTheme() error = %v, want nil", err)
	}
	if theme, _ := s.AdminTheme(7); theme != "themeB" {
		t.Errorf("AdminTheme() = %q, want themeB", theme)
	}

	// Preferences are per user.
	if theme, _ := s.AdminTheme(8); theme != "" {
		t.Errorf("AdminTheme(8) = %q, want empty", theme)
	}

	// Empty clears.
	if err := s.SetAdminTheme(7, ""); err != nil {
		t.Fatalf("SetAdminTheme() clear error = %v, want nil", err)
	}
	if theme, _ := s.AdminTheme(7); theme != "" {
		t.Errorf("AdminTheme() = %q after clear, want empty", theme)
	}
}

func TestSiteSettings(t *testing.T) {
	s := testStore(t)

	settings, err := s.SiteSettings()
	if err != nil {
		t.Fatalf("SiteSettings() error = %v, want nil", err)
	}
	if settings.CategoryBase != "category" || settings.TagBase != "tag" || settings.FrontPageID != 0 {
		t.Errorf("defaults = %#v, want category/tag/0", settings)
	}

	if err := s.SetOption("page_on_front", 10); err != nil {
		t.Fatalf("SetOption() error = %v, want nil", err)
	}
	if err := s.SetOption("category_base", "topics"); err != nil {
		t.Fatalf("SetOption() error = %v, want nil", err)
	}

	settings, err = s.SiteSettings()
	if err != nil {
		t.Fatalf("SiteSettings() error = %v, want nil", err)
	}
	if settings.FrontPageID != 10 || settings.CategoryBase != "topics" || settings.TagBase != "tag" {
		t.Errorf("settings = %#v, want front page 10, topics, tag", settings)
	}
}
