// Package resolve decides which theme serves a request.
package resolve

/*
 * The resolution engine.
 *
 * Resolve runs a strict precedence chain over the request classification:
 *
 *   1. REST calls — resolved through the per-theme REST-prefix mappings.
 *   2. Dashboard background calls — correlated to a content ID and matched
 *      against per-item rules, then the user's admin theme preference.
 *   3. Dashboard page loads — admin theme preference only; frontend rules
 *      deliberately never apply inside the dashboard.
 *   4. Content previews — matched against status-qualified per-item rules.
 *   5. Everything else — the ordered rule list, first match wins.
 *
 * Every store or content lookup that fails is a non-match, never an error:
 * resolution runs on the hot path of page rendering and must always return
 * an answer. A matched rule naming a theme that is not installed is
 * skipped the same way.
 */

import (
	"strings"

	"github.com/osomworks/themerouter/internal/content"
	"github.com/osomworks/themerouter/internal/match"
	"github.com/osomworks/themerouter/internal/registry"
	"github.com/osomworks/themerouter/internal/types"
)

// Source supplies the persisted inputs resolution depends on.
type Source interface {
	Rules() ([]types.Rule, error)
	RestPrefixes() ([]types.RestPrefix, error)
	AdminTheme(user types.UserID) (types.ThemeSlug, error)
	SiteSettings() (types.SiteSettings, error)
}

// ThemeIndex answers whether a theme is installed.
type ThemeIndex interface {
	Exists(theme types.ThemeSlug) bool
}

// Request classifications reported to the Recorder.
const (
	ClassRest     = "rest"
	ClassAjax     = "ajax"
	ClassAdmin    = "admin"
	ClassPreview  = "preview"
	ClassFrontend = "frontend"
	ClassNone     = "none"
)

// Recorder observes resolution outcomes. Implementations must be safe for
// concurrent use.
type Recorder interface {
	// Resolution records one completed resolution: the classification that
	// produced the answer and whether a theme override was applied.
	Resolution(classification string, overridden bool)
}

// NopRecorder is a Recorder that discards everything.
type NopRecorder struct{}

// Resolution implements Recorder.
func (NopRecorder) Resolution(string, bool) {}

// Engine resolves requests to theme overrides.
type Engine struct {
	source  Source
	themes  ThemeIndex
	content content.Resolver
	runtime *registry.Runtime
	reg     *registry.Registry
	rec     Recorder
}

// NewEngine builds an Engine. runtime, reg and rec may be nil; a nil
// themes index accepts every non-empty theme slug.
func NewEngine(source Source, themes ThemeIndex, resolver content.Resolver, runtime *registry.Runtime, reg *registry.Registry, rec Recorder) *Engine {
	if rec == nil {
		rec = NopRecorder{}
	}
	return &Engine{
		source:  source,
		themes:  themes,
		content: resolver,
		runtime: runtime,
		reg:     reg,
		rec:     rec,
	}
}

// PrepareRequest restores registrations for post types and taxonomies the
// rule list references but the active theme did not register. Idempotent;
// meant to run once during request initialization, before Resolve.
func (e *Engine) PrepareRequest() {
	if e.reg == nil || e.runtime == nil {
		return
	}
	rules, err := e.source.Rules()
	if err != nil {
		return
	}
	e.reg.Reregister(rules, e.runtime)
}

// Resolve returns the theme override for the request, if any.
func (e *Engine) Resolve(rc *RequestContext) (types.ThemeSlug, bool) {
	theme, class := e.resolve(rc)
	e.rec.Resolution(class, theme != "")
	return theme, theme != ""
}

func (e *Engine) resolve(rc *RequestContext) (types.ThemeSlug, string) {
	rest := e.IsRest(rc)

	if rest {
		if theme, ok := e.themeByRestPrefix(rc); ok {
			return theme, ClassRest
		}
	}

	// REST calls issued from the editor run under the dashboard flag; the
	// REST classification above already decided them, so the dashboard
	// branches must not fire again.
	if rc.Admin && !rest {
		if rc.Ajax {
			if theme, ok := e.themeForDashboardCall(rc); ok {
				return theme, ClassAjax
			}
		} else {
			if theme, ok := e.adminPreference(rc.UserID); ok {
				return theme, ClassAdmin
			}
			// In the dashboard with no preference: the default theme,
			// never frontend rules.
			return "", ClassAdmin
		}
	}

	if rc.Preview() {
		if theme, ok := e.themeForPreview(rc); ok {
			return theme, ClassPreview
		}
	}

	if !rc.Admin {
		if theme, ok := e.themeForFrontend(rc); ok {
			return theme, ClassFrontend
		}
	}

	return "", ClassNone
}

// IsRest classifies the request as an API call: either the host flagged
// it, or the path carries the default REST prefix or any configured
// custom prefix. The answer is computed once per request.
func (e *Engine) IsRest(rc *RequestContext) bool {
	if rc.isRest != nil {
		return *rc.isRest
	}

	rest := rc.RestFlag
	if !rest {
		if pathHasPrefix(rc.Path, types.DefaultRestPrefix) {
			rest = true
		} else if prefixes, err := e.source.RestPrefixes(); err == nil {
			for _, mapping := range prefixes {
				if mapping.Prefix != "" && pathHasPrefix(rc.Path, mapping.Prefix) {
					rest = true
					break
				}
			}
		}
	}

	rc.isRest = &rest
	return rest
}

func (e *Engine) themeByRestPrefix(rc *RequestContext) (types.ThemeSlug, bool) {
	prefixes, err := e.source.RestPrefixes()
	if err != nil {
		return "", false
	}
	for _, mapping := range prefixes {
		if mapping.Prefix != "" && pathHasPrefix(rc.Path, mapping.Prefix) && e.valid(mapping.Theme) {
			return mapping.Theme, true
		}
	}
	return "", false
}

// themeForDashboardCall resolves a dashboard background call by
// correlating it to a content ID and walking the rule list: per-item
// publish rules first, then status-qualified rules, then post-type-wide
// rules, then the user's admin theme preference.
func (e *Engine) themeForDashboardCall(rc *RequestContext) (types.ThemeSlug, bool) {
	id := rc.CorrelatedContentID()
	if id == 0 {
		return "", false
	}
	c, ok := e.content.Lookup(id)
	if !ok {
		return "", false
	}

	rules, err := e.source.Rules()
	if err != nil {
		return "", false
	}
	for _, rule := range rules {
		if !e.valid(rule.Theme) {
			continue
		}
		switch t := rule.Match.(type) {
		case types.PostTarget:
			if publishStatus(t.Status) && t.ID == id {
				return rule.Theme, true
			}
		case types.PageTarget:
			if publishStatus(t.Status) && t.ID == id {
				return rule.Theme, true
			}
		case types.PostTypeTarget:
			if t.Name == c.Type {
				return rule.Theme, true
			}
		}
		if c.Status != types.StatusPublish && types.MatchesComposite(rule.Match, c) {
			return rule.Theme, true
		}
	}

	return e.adminPreference(rc.UserID)
}

// themeForPreview matches a preview request against status-qualified
// per-item rules for the previewed content's current status and type.
// Published content has no status-qualified rule type and never matches
// here; its ordinary rules apply during frontend evaluation instead.
func (e *Engine) themeForPreview(rc *RequestContext) (types.ThemeSlug, bool) {
	id := rc.PreviewContentID()
	if id == 0 {
		return "", false
	}
	c, ok := e.content.Lookup(id)
	if !ok || c.Status == types.StatusPublish {
		return "", false
	}

	rules, err := e.source.Rules()
	if err != nil {
		return "", false
	}
	for _, rule := range rules {
		if types.MatchesComposite(rule.Match, c) && e.valid(rule.Theme) {
			return rule.Theme, true
		}
	}
	return "", false
}

func (e *Engine) themeForFrontend(rc *RequestContext) (types.ThemeSlug, bool) {
	rules, err := e.source.Rules()
	if err != nil || len(rules) == 0 {
		return "", false
	}

	// Scheduled and draft previews address content by raw ID, so the
	// path carries no slug to match; correlate the ID to URL rules
	// before ordinary evaluation.
	if rc.HasRawContentParam() {
		if theme, ok := e.matchRawContentParam(rc, rules); ok {
			return theme, true
		}
	}

	site, err := e.source.SiteSettings()
	if err != nil {
		site = types.SiteSettings{}
	}
	// Before the host's main query has run only the early matchers are
	// safe; once it has, the query predicates decide. A complete query
	// with no QueryState still degrades to early matching inside Matches.
	phase := match.PhaseEarly
	if rc.QueryComplete {
		phase = match.PhaseLate
	}
	ctx := &match.Context{
		Phase:   phase,
		Path:    rc.NormalizedPath(),
		Content: e.content,
		Runtime: e.runtime,
		Site:    site,
		Query:   rc.QueryState,
	}

	for _, rule := range rules {
		if match.Matches(rule, ctx) && e.valid(rule.Theme) {
			return rule.Theme, true
		}
	}
	return "", false
}

// matchRawContentParam resolves a ?p= / ?page_id= request by comparing
// the named content's permalink path against URL rules. Pages match on
// the exact full hierarchical path only; posts additionally match when
// their slug is one segment of a multi-segment rule path. Pages are
// hierarchical, so a bare slug appearing mid-path would be a different
// page.
func (e *Engine) matchRawContentParam(rc *RequestContext, rules []types.Rule) (types.ThemeSlug, bool) {
	id := rc.PreviewContentID()
	if id == 0 {
		return "", false
	}
	c, ok := e.content.Lookup(id)
	if !ok {
		return "", false
	}

	switch c.Type {
	case types.TypePage:
		path := c.Slug
		if c.ParentID != 0 {
			parentPath := content.PagePath(e.content, c.ParentID)
			if parentPath == "" {
				return "", false
			}
			path = parentPath + "/" + path
		}
		for _, rule := range rules {
			t, ok := rule.Match.(types.URLTarget)
			if !ok {
				continue
			}
			if strings.Trim(t.Path, "/") == path && e.valid(rule.Theme) {
				return rule.Theme, true
			}
		}
	case types.TypePost:
		for _, rule := range rules {
			t, ok := rule.Match.(types.URLTarget)
			if !ok {
				continue
			}
			ruleURL := strings.Trim(t.Path, "/")
			if !e.valid(rule.Theme) {
				continue
			}
			if ruleURL == c.Slug {
				return rule.Theme, true
			}
			for _, segment := range strings.Split(ruleURL, "/") {
				if segment == c.Slug {
					return rule.Theme, true
				}
			}
		}
	}
	return "", false
}

func (e *Engine) adminPreference(user types.UserID) (types.ThemeSlug, bool) {
	if user == 0 {
		return "", false
	}
	theme, err := e.source.AdminTheme(user)
	if err != nil || theme == "" || !e.valid(theme) {
		return "", false
	}
	return theme, true
}

// valid reports whether a theme override may be applied: a known,
// installed theme. With no index configured, any non-empty slug passes.
func (e *Engine) valid(theme types.ThemeSlug) bool {
	if theme == "" {
		return false
	}
	if e.themes == nil {
		return true
	}
	return e.themes.Exists(theme)
}

func publishStatus(s types.ContentStatus) bool {
	return s == "" || s == types.StatusPublish
}

// pathHasPrefix reports whether the request URI contains "/{prefix}/",
// the REST classification the stored prefixes have always used.
func pathHasPrefix(requestURI, prefix string) bool {
	return strings.Contains(requestURI, "/"+strings.Trim(prefix, "/")+"/")
}
