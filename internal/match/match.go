// Package match tests a single rule against the current request.
package match

/*
 * Two-phase rule matching.
 *
 * Early phase: the host's routing/query layer has not run yet, so nothing
 * knows which content the URL refers to. Every rule type gets a bespoke
 * matcher working from the raw URL path and direct content lookups:
 *
 *   - URL rules compare trimmed paths on equality or prefix.
 *   - Page rules resolve the page's slug filtered by expected status and
 *     rebuild the hierarchical path; a published page with an unpublished
 *     ancestor is unreachable under that path and never matches.
 *   - Post and custom-item rules match the slug against whole path
 *     segments, never substrings, so "test" cannot match "contest" or
 *     "latest-news".
 *   - Term and post-type rules lean on slugs cached on the rule at
 *     creation time, because the owning taxonomy or post type may not be
 *     registered yet this early.
 *
 * Late phase: the query is resolved and the host's "is this the current
 * page/post/archive/term" predicates are authoritative; matching defers to
 * them through QueryState.
 *
 * Phase selection is the caller's job, but a late-phase context without a
 * QueryState falls back to early matching: calling query predicates before
 * the query ran produces garbage, and a degraded-but-correct early match
 * beats a confidently wrong late one.
 */

import (
	"net/url"
	"strings"

	"github.com/osomworks/themerouter/internal/content"
	"github.com/osomworks/themerouter/internal/registry"
	"github.com/osomworks/themerouter/internal/types"
)

// Phase is the matching mode: before or after the host's main query.
type Phase int

// Matching phases.
const (
	PhaseEarly Phase = iota
	PhaseLate
)

// Context carries everything one rule evaluation may consult. It is
// request-scoped and passed explicitly; matching keeps no state of its own.
type Context struct {
	Phase   Phase
	Path    string // request path, query string stripped, slashes trimmed
	Content content.Resolver
	Runtime *registry.Runtime
	Site    types.SiteSettings
	Query   QueryState // nil until the main query has resolved
}

// NormalizePath strips the query string and fragment from a raw request
// URI and trims surrounding slashes.
func NormalizePath(rawURI string) string {
	if u, err := url.Parse(rawURI); err == nil {
		rawURI = u.Path
	}
	return strings.Trim(rawURI, "/")
}

// Matches reports whether the rule applies to the request described by
// ctx. Unknown rule variants never match.
func Matches(rule types.Rule, ctx *Context) bool {
	if rule.Match == nil {
		return false
	}
	if ctx.Phase == PhaseLate && ctx.Query != nil {
		return matchLate(rule.Match, ctx)
	}
	return matchEarly(rule.Match, ctx)
}

func matchEarly(target types.Target, ctx *Context) bool {
	switch t := target.(type) {
	case types.URLTarget:
		return matchURL(t, ctx.Path)
	case types.PageTarget:
		return matchPageEarly(t, ctx)
	case types.PostTarget:
		c, ok := ctx.Content.LookupFiltered(t.ID, types.TypePost, status(t.Status))
		return ok && segmentMatch(ctx.Path, c.Slug)
	case types.CPTItemTarget:
		return matchCPTItemEarly(t, ctx)
	case types.PostTypeTarget:
		return matchPostTypeEarly(t, ctx)
	case types.CategoryTarget:
		return matchTermEarly(ctx, t.TermID, ctx.Site.CategoryBase)
	case types.TagTarget:
		return matchTermEarly(ctx, t.TermID, ctx.Site.TagBase)
	case types.TaxonomyTarget:
		return matchTermEarly(ctx, t.TermID, taxonomyBase(t, ctx))
	default:
		return false
	}
}

func matchLate(target types.Target, ctx *Context) bool {
	q := ctx.Query
	switch t := target.(type) {
	case types.URLTarget:
		return matchURL(t, ctx.Path)
	case types.PageTarget:
		if status(t.Status) != types.StatusPublish {
			// Equivalent of the early status filter: the item must still
			// exist before the query predicate is trusted.
			if _, ok := ctx.Content.Lookup(t.ID); !ok {
				return false
			}
		}
		return q.IsPage(t.ID)
	case types.PostTarget:
		if status(t.Status) != types.StatusPublish {
			if _, ok := ctx.Content.Lookup(t.ID); !ok {
				return false
			}
		}
		return q.IsSingle(t.ID)
	case types.CPTItemTarget:
		if _, ok := ctx.Content.Lookup(t.ID); !ok {
			return false
		}
		return q.IsSingle(t.ID)
	case types.PostTypeTarget:
		return q.IsSingular(t.Name) || q.IsPostTypeArchive(t.Name)
	case types.CategoryTarget:
		return q.IsCategory(t.TermID) || (q.IsSingleItem() && q.InCategory(t.TermID))
	case types.TagTarget:
		return q.IsTag(t.TermID) || (q.IsSingleItem() && q.HasTag(t.TermID))
	case types.TaxonomyTarget:
		return q.IsTax(t.Taxonomy, t.TermID)
	default:
		return false
	}
}

// matchURL compares trimmed paths: exact match or raw prefix, the same
// semantics the stored rules have always had.
func matchURL(t types.URLTarget, path string) bool {
	ruleURL := strings.Trim(t.Path, "/")
	if ruleURL == "" {
		return false
	}
	return path == ruleURL || strings.HasPrefix(path, ruleURL)
}

func matchPageEarly(t types.PageTarget, ctx *Context) bool {
	st := status(t.Status)

	// The configured front page is served at the site root, where no slug
	// appears in the path at all.
	if st == types.StatusPublish && ctx.Site.FrontPageID != 0 && t.ID == ctx.Site.FrontPageID && ctx.Path == "" {
		return true
	}

	c, ok := ctx.Content.LookupFiltered(t.ID, types.TypePage, st)
	if !ok {
		return false
	}

	slug := c.Slug
	if c.ParentID != 0 {
		parentPath := content.PagePath(ctx.Content, c.ParentID)
		if st == types.StatusPublish {
			// An unpublished ancestor makes the page unreachable by path.
			if parentPath == "" {
				return false
			}
			slug = parentPath + "/" + slug
		} else if parentPath != "" {
			slug = parentPath + "/" + slug
		}
	}

	return ctx.Path == slug
}

func matchCPTItemEarly(t types.CPTItemTarget, ctx *Context) bool {
	st := status(t.Status)

	if t.PostType == "" {
		// Legacy rules without a cached post type: any custom item with
		// the right ID and status.
		c, ok := ctx.Content.Lookup(t.ID)
		if !ok || c.Type.Builtin() || c.Status != st {
			return false
		}
		return segmentMatch(ctx.Path, c.Slug)
	}

	c, ok := ctx.Content.LookupFiltered(t.ID, t.PostType, st)
	return ok && segmentMatch(ctx.Path, c.Slug)
}

func matchPostTypeEarly(t types.PostTypeTarget, ctx *Context) bool {
	archive := t.ArchiveSlug
	rewrite := t.RewriteSlug

	// The slugs cached on the rule win; live registration data only fills
	// the gaps, when the post type happens to be registered this early.
	if ctx.Runtime != nil {
		if spec, ok := ctx.Runtime.PostType(t.Name); ok {
			if archive == "" {
				archive = spec.ArchiveSlug
			}
			if rewrite == "" {
				rewrite = spec.RewriteSlug
			}
		}
	}

	if archive != "" && (ctx.Path == archive || strings.HasPrefix(ctx.Path, archive+"/")) {
		return true
	}
	if rewrite != "" && firstSegment(ctx.Path) == rewrite {
		return true
	}
	return false
}

// matchTermEarly forms "{base}/{slug}" for the term and matches the path
// on equality or prefix.
func matchTermEarly(ctx *Context, termID types.ContentID, base string) bool {
	if base == "" {
		return false
	}
	term, ok := ctx.Content.Term(termID)
	if !ok {
		return false
	}
	target := strings.Trim(base, "/") + "/" + term.Slug
	return ctx.Path == target || strings.HasPrefix(ctx.Path, target)
}

// taxonomyBase picks the URL base for a custom-taxonomy rule: live
// registration data first, then the slug cached on the rule at creation
// time, then the taxonomy name itself.
func taxonomyBase(t types.TaxonomyTarget, ctx *Context) string {
	if ctx.Runtime != nil {
		if spec, ok := ctx.Runtime.Taxonomy(t.Taxonomy); ok && spec.RewriteSlug != "" {
			return spec.RewriteSlug
		}
	}
	if t.RewriteSlug != "" {
		return t.RewriteSlug
	}
	return t.Taxonomy
}

// segmentMatch reports whether slug equals one complete "/"-delimited
// segment of path. Segment equality prevents "test" from matching
// "contest" or "latest-news" while supporting arbitrary permalink shapes
// where the slug is not necessarily the last segment.
func segmentMatch(path, slug string) bool {
	if slug == "" {
		return false
	}
	for _, segment := range strings.Split(path, "/") {
		if segment == slug {
			return true
		}
	}
	return false
}

func firstSegment(path string) string {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}

// status defaults an unset rule status to publish.
func status(s types.ContentStatus) types.ContentStatus {
	if s == "" {
		return types.StatusPublish
	}
	return s
}
