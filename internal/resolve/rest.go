package resolve

import "github.com/osomworks/themerouter/internal/types"

// RewriteRule is one URL-rewrite contribution the host must install:
// requests matching Pattern dispatch to Replacement.
type RewriteRule struct {
	Pattern     string
	Replacement string
}

// FilterRestPrefix returns the REST URL prefix the current theme should
// expose, given the host's default. The current theme is the requesting
// user's admin preference on dashboard page loads, otherwise the host's
// active theme; a configured mapping for that theme replaces the prefix,
// anything else leaves it untouched. Re-entrant calls return the input
// unchanged: resolving the mapping reads configuration whose retrieval
// can trigger prefix resolution again.
func (e *Engine) FilterRestPrefix(rc *RequestContext, prefix string) string {
	if rc.filteringRestPrefix {
		return prefix
	}
	rc.filteringRestPrefix = true
	defer func() { rc.filteringRestPrefix = false }()

	current := types.ThemeSlug("")
	if rc.Admin && !rc.Ajax {
		if theme, ok := e.adminPreference(rc.UserID); ok {
			current = theme
		}
	}
	if current == "" {
		current = rc.ActiveTheme
	}
	if current == "" {
		return prefix
	}

	prefixes, err := e.source.RestPrefixes()
	if err != nil {
		return prefix
	}
	for _, mapping := range prefixes {
		if mapping.Theme == current && mapping.Prefix != "" {
			return mapping.Prefix
		}
	}
	return prefix
}

// RestRewriteRules returns the rewrite contributions for every configured
// custom REST prefix, routing "{prefix}/*" to the standard REST dispatch
// route.
func (e *Engine) RestRewriteRules() []RewriteRule {
	prefixes, err := e.source.RestPrefixes()
	if err != nil {
		return nil
	}
	var out []RewriteRule
	for _, mapping := range prefixes {
		if mapping.Prefix == "" {
			continue
		}
		out = append(out, RewriteRule{
			Pattern:     "^" + mapping.Prefix + "/?(.*)$",
			Replacement: "index.php?rest_route=/$matches[1]",
		})
	}
	return out
}
