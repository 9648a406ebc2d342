package resolve

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/osomworks/themerouter/internal/match"
	"github.com/osomworks/themerouter/internal/types"
)

// RequestContext describes one inbound request to the resolver. It is
// built once per request from host-supplied signals and passed explicitly
// through the whole resolution chain; all classification caching and the
// REST-prefix recursion guard live here rather than in process-wide state,
// so nothing leaks between requests.
type RequestContext struct {
	// Path is the raw request URI, query string included.
	Path string
	// Query and Form are the parsed query-string and POST-body parameters.
	Query url.Values
	Form  url.Values
	// Referer is the HTTP referer header, used as a last-resort content
	// correlation source for dashboard background calls.
	Referer string

	// UserID is the authenticated user, zero for anonymous requests.
	UserID types.UserID
	// Admin marks dashboard requests; Ajax marks the dashboard's
	// asynchronous-call channel (Ajax implies Admin at the host).
	Admin bool
	Ajax  bool
	// RestFlag is set when the host has already classified the request as
	// an API call, independent of path inspection.
	RestFlag bool

	// ActiveTheme is the theme the host considers current before any
	// override, consulted by REST-prefix filtering.
	ActiveTheme types.ThemeSlug

	// QueryComplete marks that the host's main query has finished.
	// Resolution before that point works from the raw path; after it,
	// QueryState carries the query's outcome and its predicates are
	// authoritative.
	QueryComplete bool
	// QueryState is the resolved-query view backing post-query rule
	// evaluation, nil until the host supplies one.
	QueryState match.QueryState

	// isRest caches REST classification for the lifetime of the request.
	isRest *bool
	// filteringRestPrefix guards FilterRestPrefix against re-entry: prefix
	// resolution reads configuration whose retrieval can itself trigger
	// prefix resolution.
	filteringRestPrefix bool
}

var refererPostID = regexp.MustCompile(`[?&]post=(\d+)`)

// NormalizedPath returns the request path with the query string stripped
// and surrounding slashes trimmed.
func (rc *RequestContext) NormalizedPath() string {
	path := rc.Path
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return strings.Trim(path, "/")
}

// Preview reports whether the request carries the content-preview flag.
func (rc *RequestContext) Preview() bool {
	return rc.Query.Get("preview") == "true"
}

// PreviewContentID returns the content ID named by the preview-style
// query parameters, zero when absent.
func (rc *RequestContext) PreviewContentID() types.ContentID {
	if id := parseID(rc.Query.Get("p")); id != 0 {
		return id
	}
	return parseID(rc.Query.Get("page_id"))
}

// HasRawContentParam reports whether a raw content-ID query parameter is
// present, the shape scheduled and draft previews use without the
// preview flag.
func (rc *RequestContext) HasRawContentParam() bool {
	return rc.Query.Has("page_id") || rc.Query.Has("p")
}

// CorrelatedContentID extracts the content ID a dashboard background call
// is about, trying each known carrier in order: explicit form fields, the
// nested editor context object, the generic id field, the query string,
// and finally the referer URL.
func (rc *RequestContext) CorrelatedContentID() types.ContentID {
	if id := parseID(rc.Form.Get("post_id")); id != 0 {
		return id
	}
	if id := parseID(rc.Form.Get("context[postId]")); id != 0 {
		return id
	}
	if id := parseID(rc.Form.Get("id")); id != 0 {
		return id
	}
	if id := parseID(rc.Query.Get("postId")); id != 0 {
		return id
	}
	if m := refererPostID.FindStringSubmatch(rc.Referer); m != nil {
		return parseID(m[1])
	}
	return 0
}

func parseID(s string) types.ContentID {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return types.ContentID(n)
}
