// Package store persists theme-routing state: the ordered rule list, REST
// prefix mappings, per-user admin theme preferences, and named options.
package store

/*
 * Rule Store.
 *
 * Thin key-value persistence over the options table; no matching logic.
 * Values are JSON-encoded so the rule list round-trips through the same
 * flat wire format the original plugin stored, including rule types this
 * version does not understand.
 *
 * Concurrency: last-writer-wins, no locking. Writes are rare and
 * admin-driven; resolution only reads.
 */

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/osomworks/themerouter/internal/core/db"
	"github.com/osomworks/themerouter/internal/types"
)

// Option names. The rule list and prefix mappings are owned exclusively by
// this store; nothing else writes them.
const (
	optionRules        = "theme_rules"
	optionRestPrefixes = "theme_rest_prefixes"
	optionFrontPage    = "page_on_front"
	optionCategoryBase = "category_base"
	optionTagBase      = "tag_base"
)

var prefixStrip = regexp.MustCompile(`[^a-z0-9_-]`)

// Store provides access to persisted routing state.
type Store struct {
	q *db.Queries
}

// New creates a Store over the given query set.
func New(q *db.Queries) *Store {
	return &Store{q: q}
}

// Queries exposes the underlying query set, for wiring collaborators that
// read the same database.
func (s *Store) Queries() *db.Queries {
	return s.q
}

// Option reads a named option into dest. Returns false when the option has
// never been set; dest is left untouched in that case.
func (s *Store) Option(name string, dest any) (bool, error) {
	var raw string
	err := s.q.Get("get-option", &raw, name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read option %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("failed to decode option %s: %w", name, err)
	}
	return true, nil
}

// SetOption writes a named option, JSON-encoded.
func (s *Store) SetOption(name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode option %s: %w", name, err)
	}
	if _, err := s.q.Exec("set-option", name, string(raw)); err != nil {
		return fmt.Errorf("failed to write option %s: %w", name, err)
	}
	return nil
}

// Rules returns the ordered rule list. A never-set option is an empty list.
func (s *Store) Rules() ([]types.Rule, error) {
	var rules []types.Rule
	if _, err := s.Option(optionRules, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// SaveRules replaces the ordered rule list.
func (s *Store) SaveRules(rules []types.Rule) error {
	if rules == nil {
		rules = []types.Rule{}
	}
	return s.SetOption(optionRules, rules)
}

// RestPrefixes returns all theme REST prefix mappings.
func (s *Store) RestPrefixes() ([]types.RestPrefix, error) {
	var prefixes []types.RestPrefix
	if _, err := s.Option(optionRestPrefixes, &prefixes); err != nil {
		return nil, err
	}
	return prefixes, nil
}

// SaveRestPrefixes replaces all theme REST prefix mappings.
func (s *Store) SaveRestPrefixes(prefixes []types.RestPrefix) error {
	if prefixes == nil {
		prefixes = []types.RestPrefix{}
	}
	return s.SetOption(optionRestPrefixes, prefixes)
}

// SetRestPrefix sanitizes prefix and creates or replaces the mapping for
// theme. A theme already holding a mapping is updated in place rather than
// appended as a duplicate. Returns the sanitized prefix.
func (s *Store) SetRestPrefix(theme types.ThemeSlug, prefix string) (string, error) {
	clean := SanitizeRestPrefix(prefix)
	if clean == "" {
		return "", types.ErrEmptyPrefix
	}
	if clean == types.DefaultRestPrefix {
		return "", types.ErrReservedPrefix
	}

	prefixes, err := s.RestPrefixes()
	if err != nil {
		return "", err
	}

	found := false
	for i := range prefixes {
		if prefixes[i].Theme == theme {
			prefixes[i].Prefix = clean
			found = true
			break
		}
	}
	if !found {
		prefixes = append(prefixes, types.RestPrefix{Theme: theme, Prefix: clean})
	}

	return clean, s.SaveRestPrefixes(prefixes)
}

// DeleteRestPrefix removes the mapping at the given list index.
func (s *Store) DeleteRestPrefix(index int) error {
	prefixes, err := s.RestPrefixes()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(prefixes) {
		return types.ErrRuleNotFound
	}
	prefixes = append(prefixes[:index], prefixes[index+1:]...)
	return s.SaveRestPrefixes(prefixes)
}

// SanitizeRestPrefix lowercases and strips everything outside [a-z0-9_-],
// and trims surrounding slashes.
func SanitizeRestPrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	prefix = strings.ToLower(prefix)
	return prefixStrip.ReplaceAllString(prefix, "")
}

// AdminTheme returns the dashboard theme preference for a user, or empty
// when none is set.
func (s *Store) AdminTheme(user types.UserID) (types.ThemeSlug, error) {
	var theme string
	err := s.q.Get("get-admin-theme", &theme, int64(user))
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read admin theme for user %d: %w", user, err)
	}
	return types.ThemeSlug(theme), nil
}

// SetAdminTheme stores the dashboard theme preference for a user.
// An empty theme clears the preference.
func (s *Store) SetAdminTheme(user types.UserID, theme types.ThemeSlug) error {
	if theme == "" {
		if _, err := s.q.Exec("delete-admin-theme", int64(user)); err != nil {
			return fmt.Errorf("failed to clear admin theme for user %d: %w", user, err)
		}
		return nil
	}
	if _, err := s.q.Exec("set-admin-theme", int64(user), string(theme)); err != nil {
		return fmt.Errorf("failed to set admin theme for user %d: %w", user, err)
	}
	return nil
}

// SiteSettings reads the site-level options early matching needs.
// Unset options fall back to the host defaults.
func (s *Store) SiteSettings() (types.SiteSettings, error) {
	settings := types.SiteSettings{
		CategoryBase: "category",
		TagBase:      "tag",
	}

	var frontPage int64
	if ok, err := s.Option(optionFrontPage, &frontPage); err != nil {
		return settings, err
	} else if ok {
		settings.FrontPageID = types.ContentID(frontPage)
	}

	var base string
	if ok, err := s.Option(optionCategoryBase, &base); err != nil {
		return settings, err
	} else if ok && base != "" {
		settings.CategoryBase = base
	}

	base = ""
	if ok, err := s.Option(optionTagBase, &base); err != nil {
		return settings, err
	} else if ok && base != "" {
		settings.TagBase = base
	}

	return settings, nil
}
