package match

import "github.com/osomworks/themerouter/internal/types"

// QueryState exposes the host's resolved-query predicates for late-phase
// matching. Implementations answer for exactly one request.
type QueryState interface {
	// IsPage reports whether the request resolved to the given page.
	IsPage(id types.ContentID) bool
	// IsSingle reports whether the request resolved to the given post or
	// custom item.
	IsSingle(id types.ContentID) bool
	// IsSingular reports whether the request resolved to a single item of
	// the given post type.
	IsSingular(postType types.ContentType) bool
	// IsPostTypeArchive reports whether the request is the archive of the
	// given post type.
	IsPostTypeArchive(postType types.ContentType) bool
	// IsCategory reports whether the request is the given category's
	// archive.
	IsCategory(termID types.ContentID) bool
	// InCategory reports whether the resolved single item carries the
	// given category.
	InCategory(termID types.ContentID) bool
	// IsTag reports whether the request is the given tag's archive.
	IsTag(termID types.ContentID) bool
	// HasTag reports whether the resolved single item carries the given
	// tag.
	HasTag(termID types.ContentID) bool
	// IsTax reports whether the request is the given term's archive in
	// the given taxonomy.
	IsTax(taxonomy string, termID types.ContentID) bool
	// IsSingleItem reports whether the request resolved to any single
	// item at all.
	IsSingleItem() bool
}

// Taxonomy names of the builtin term kinds.
const (
	TaxonomyCategory = "category"
	TaxonomyTag      = "post_tag"
)

// ResolvedQuery is a concrete QueryState assembled from a fully resolved
// request: exactly one of Item, ArchivePostType or TermID describes what
// the request landed on.
type ResolvedQuery struct {
	// Item is the single item the request resolved to, nil for archives.
	Item *types.Content
	// ArchivePostType names the post type whose archive is being served.
	ArchivePostType types.ContentType
	// TermID and Taxonomy identify the term archive being served.
	TermID   types.ContentID
	Taxonomy string
	// Terms maps taxonomy name to the term IDs attached to Item.
	Terms map[string][]types.ContentID
}

var _ QueryState = (*ResolvedQuery)(nil)

func (q *ResolvedQuery) IsPage(id types.ContentID) bool {
	return q.Item != nil && q.Item.Type == types.TypePage && q.Item.ID == id
}

func (q *ResolvedQuery) IsSingle(id types.ContentID) bool {
	return q.Item != nil && q.Item.Type != types.TypePage && q.Item.ID == id
}

func (q *ResolvedQuery) IsSingular(postType types.ContentType) bool {
	return q.Item != nil && q.Item.Type == postType
}

func (q *ResolvedQuery) IsPostTypeArchive(postType types.ContentType) bool {
	return q.ArchivePostType != "" && q.ArchivePostType == postType
}

func (q *ResolvedQuery) IsCategory(termID types.ContentID) bool {
	return q.Taxonomy == TaxonomyCategory && q.TermID == termID
}

func (q *ResolvedQuery) InCategory(termID types.ContentID) bool {
	return q.hasTerm(TaxonomyCategory, termID)
}

func (q *ResolvedQuery) IsTag(termID types.ContentID) bool {
	return q.Taxonomy == TaxonomyTag && q.TermID == termID
}

func (q *ResolvedQuery) HasTag(termID types.ContentID) bool {
	return q.hasTerm(TaxonomyTag, termID)
}

func (q *ResolvedQuery) IsTax(taxonomy string, termID types.ContentID) bool {
	return q.Taxonomy != "" && q.Taxonomy == taxonomy && q.TermID == termID
}

func (q *ResolvedQuery) IsSingleItem() bool {
	return q.Item != nil
}

func (q *ResolvedQuery) hasTerm(taxonomy string, termID types.ContentID) bool {
	if q.Item == nil {
		return false
	}
	for _, id := range q.Terms[taxonomy] {
		if id == termID {
			return true
		}
	}
	return false
}
