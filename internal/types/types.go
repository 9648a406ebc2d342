// Package types provides domain models shared across themerouter components.
//
// Zero-dependency design: types.go, rules.go and errors.go use only
// encoding/json so embedding hosts can take the matcher without the full
// toolchain. ID utilities in ids.go import uuid but are isolated for
// selective inclusion.
package types

// ThemeSlug identifies an installed theme by its directory name.
// Empty slug means "no override" wherever a theme is optional.
type ThemeSlug string

// ContentID identifies a content item (page, post, custom-post-type item)
// or a taxonomy term in the host content store.
type ContentID int64

// UserID identifies an authenticated dashboard user.
type UserID int64

// ContentStatus is a content item's publication status.
// Statuses outside the supported set are carried verbatim but never map to
// a rule type.
type ContentStatus string

// Supported publication statuses.
const (
	StatusPublish ContentStatus = "publish"
	StatusDraft   ContentStatus = "draft"
	StatusPending ContentStatus = "pending"
	StatusPrivate ContentStatus = "private"
	StatusFuture  ContentStatus = "future"
	StatusTrash   ContentStatus = "trash"
)

// ContentType is a content item's type: the built-in "page" or "post", or
// the name of a custom post type.
type ContentType string

// Built-in content types.
const (
	TypePage ContentType = "page"
	TypePost ContentType = "post"
)

// Builtin reports whether t is one of the two built-in content types.
func (t ContentType) Builtin() bool {
	return t == TypePage || t == TypePost
}

// Content is the structural record the Content Resolver answers with:
// everything rule matching needs to know about one content item.
type Content struct {
	ID       ContentID
	Slug     string
	ParentID ContentID
	Status   ContentStatus
	Type     ContentType
}

// Term is a taxonomy term record.
type Term struct {
	ID       ContentID
	Slug     string
	Taxonomy string
}

// RestPrefix maps a theme to a custom REST URL prefix. At most one mapping
// per theme; saving an existing theme's mapping replaces it in place.
type RestPrefix struct {
	Theme  ThemeSlug `json:"theme"`
	Prefix string    `json:"prefix"`
}

// DefaultRestPrefix is the host's standard REST URL prefix. Custom prefixes
// must not shadow it.
const DefaultRestPrefix = "wp-json"

// SiteSettings are the site-level options early matching consults: the
// configured front page and the permalink bases for built-in taxonomies.
type SiteSettings struct {
	FrontPageID  ContentID
	CategoryBase string
	TagBase      string
}
