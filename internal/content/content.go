// Package content answers structural questions about content items: slug,
// parent chain, status, type. It is the adapter between rule matching and
// whatever content store the host exposes.
package content

import (
	"github.com/osomworks/themerouter/internal/core/db"
	"github.com/osomworks/themerouter/internal/types"
)

// Resolver looks up content items and taxonomy terms by ID. Lookups that
// find nothing return ok=false, never an error; a deleted page must degrade
// to a non-matching rule, not a failed request.
type Resolver interface {
	// Lookup returns the content item with the given ID.
	Lookup(id types.ContentID) (types.Content, bool)

	// LookupFiltered returns the content item only when it also has the
	// expected type and status. Early matching always filters: a rule for
	// a draft page must not match once the page is published under a
	// different rule type.
	LookupFiltered(id types.ContentID, ct types.ContentType, status types.ContentStatus) (types.Content, bool)

	// Term returns the taxonomy term with the given ID.
	Term(id types.ContentID) (types.Term, bool)
}

// maxPageDepth bounds parent-chain walks against cyclic parent data.
const maxPageDepth = 32

// PagePath builds the full hierarchical path of a page: ancestor slugs and
// the page's own slug joined with "/". Every element of the chain must be a
// published page; a missing or unpublished ancestor returns "" because the
// page is not reachable under that path.
func PagePath(r Resolver, id types.ContentID) string {
	segments := make([]string, 0, 4)

	for depth := 0; id != 0; depth++ {
		if depth >= maxPageDepth {
			return ""
		}
		c, ok := r.LookupFiltered(id, types.TypePage, types.StatusPublish)
		if !ok {
			return ""
		}
		segments = append([]string{c.Slug}, segments...)
		id = c.ParentID
	}

	if len(segments) == 0 {
		return ""
	}
	path := segments[0]
	for _, s := range segments[1:] {
		path += "/" + s
	}
	return path
}

// SQLResolver resolves content from the contents and terms tables.
type SQLResolver struct {
	q *db.Queries
}

// NewSQLResolver creates a Resolver over the given query set.
func NewSQLResolver(q *db.Queries) *SQLResolver {
	return &SQLResolver{q: q}
}

type contentRow struct {
	ID       int64  `db:"id"`
	Slug     string `db:"slug"`
	ParentID int64  `db:"parent_id"`
	Status   string `db:"status"`
	Type     string `db:"type"`
}

func (row contentRow) content() types.Content {
	return types.Content{
		ID:       types.ContentID(row.ID),
		Slug:     row.Slug,
		ParentID: types.ContentID(row.ParentID),
		Status:   types.ContentStatus(row.Status),
		Type:     types.ContentType(row.Type),
	}
}

// Lookup implements Resolver.
func (r *SQLResolver) Lookup(id types.ContentID) (types.Content, bool) {
	var row contentRow
	err := r.q.Get("get-content", &row, int64(id))
	if err != nil {
		return types.Content{}, false
	}
	return row.content(), true
}

// LookupFiltered implements Resolver.
func (r *SQLResolver) LookupFiltered(id types.ContentID, ct types.ContentType, status types.ContentStatus) (types.Content, bool) {
	var row contentRow
	err := r.q.Get("get-content-filtered", &row, int64(id), string(ct), string(status))
	if err != nil {
		return types.Content{}, false
	}
	return row.content(), true
}

type termRow struct {
	ID       int64  `db:"id"`
	Slug     string `db:"slug"`
	Taxonomy string `db:"taxonomy"`
}

// Term implements Resolver.
func (r *SQLResolver) Term(id types.ContentID) (types.Term, bool) {
	var row termRow
	err := r.q.Get("get-term", &row, int64(id))
	if err != nil {
		return types.Term{}, false
	}
	return types.Term{ID: types.ContentID(row.ID), Slug: row.Slug, Taxonomy: row.Taxonomy}, true
}
