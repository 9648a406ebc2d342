package types

/*
 * Rule model for theme routing.
 *
 * A Rule maps one match condition (a Target) to a destination theme. The
 * persisted rule list is ordered; list position is evaluation priority and
 * the first matching rule wins.
 *
 * Targets form a closed sum type. The legacy wire format is a flat JSON
 * object with a composite "type" tag ("page", "draft_page", "url",
 * "{status}_{post_type}", ...) plus loosely-typed extra fields; decoding
 * lifts that into the typed variants below, and unknown tags decode to
 * UnknownTarget, which never matches. That keeps stored rule lists from
 * newer versions readable without ever misrouting a request.
 *
 * Dependencies: encoding/json, strconv, strings only.
 */

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Target is one rule variant: the condition half of a rule.
// Implementations are the closed set of target types in this package.
type Target interface {
	// TypeTag returns the wire rule-type tag for this target,
	// e.g. "page", "draft_page", "url", "pending_cpt_item".
	TypeTag() string

	isTarget()
}

// PageTarget matches a specific page by ID, qualified by status.
type PageTarget struct {
	ID     ContentID
	Status ContentStatus
}

// PostTarget matches a specific blog post by ID, qualified by status.
type PostTarget struct {
	ID     ContentID
	Status ContentStatus
}

// CPTItemTarget matches a specific custom-post-type item by ID, qualified
// by status. PostType may be empty in legacy rules; an empty PostType
// matches any custom type with the same ID and status.
type CPTItemTarget struct {
	ID       ContentID
	PostType ContentType
	Status   ContentStatus
}

// PostTypeTarget matches an entire custom post type: its archive and every
// singular item. The slugs are cached at rule-creation time because the
// post type may not be registered when early matching runs.
type PostTypeTarget struct {
	Name        ContentType
	ArchiveSlug string
	RewriteSlug string
}

// TaxonomyTarget matches a custom-taxonomy term. RewriteSlug is cached at
// rule-creation time for the same early-registration reason.
type TaxonomyTarget struct {
	TermID      ContentID
	Taxonomy    string
	RewriteSlug string
}

// CategoryTarget matches a built-in category term.
type CategoryTarget struct {
	TermID ContentID
}

// TagTarget matches a built-in tag term.
type TagTarget struct {
	TermID ContentID
}

// URLTarget matches an arbitrary URL path or path prefix.
type URLTarget struct {
	Path string
}

// UnknownTarget carries a rule whose type tag this version does not
// understand. Every wire field is preserved verbatim, so a save cycle
// re-emits the rule exactly as a newer version stored it. It never
// matches any request.
type UnknownTarget struct {
	Tag         string
	Value       json.RawMessage
	PostType    string
	Taxonomy    string
	ArchiveSlug string
	RewriteSlug string
}

func (PageTarget) isTarget()     {}
func (PostTarget) isTarget()     {}
func (CPTItemTarget) isTarget()  {}
func (PostTypeTarget) isTarget() {}
func (TaxonomyTarget) isTarget() {}
func (CategoryTarget) isTarget() {}
func (TagTarget) isTarget()      {}
func (URLTarget) isTarget()      {}
func (UnknownTarget) isTarget()  {}

// TypeTag implements Target.
func (t PageTarget) TypeTag() string { return statusTag(t.Status, "page") }

// TypeTag implements Target.
func (t PostTarget) TypeTag() string { return statusTag(t.Status, "post") }

// TypeTag implements Target.
func (t CPTItemTarget) TypeTag() string { return statusTag(t.Status, "cpt_item") }

// TypeTag implements Target.
func (PostTypeTarget) TypeTag() string { return "post_type" }

// TypeTag implements Target.
func (TaxonomyTarget) TypeTag() string { return "taxonomy" }

// TypeTag implements Target.
func (CategoryTarget) TypeTag() string { return "category" }

// TypeTag implements Target.
func (TagTarget) TypeTag() string { return "tag" }

// TypeTag implements Target.
func (URLTarget) TypeTag() string { return "url" }

// TypeTag implements Target.
func (t UnknownTarget) TypeTag() string { return t.Tag }

func statusTag(status ContentStatus, base string) string {
	if status == "" || status == StatusPublish {
		return base
	}
	return string(status) + "_" + base
}

// Rule maps one Target to its destination theme. ID addresses the rule in
// admin CRUD; it plays no part in evaluation, where list order decides.
type Rule struct {
	ID    RuleID
	Theme ThemeSlug
	Match Target
}

// wireRule is the flat persisted form shared with the original plugin's
// option format.
type wireRule struct {
	ID          string          `json:"id,omitempty"`
	Type        string          `json:"type"`
	Value       json.RawMessage `json:"value,omitempty"`
	Theme       string          `json:"theme"`
	PostType    string          `json:"post_type,omitempty"`
	Taxonomy    string          `json:"taxonomy,omitempty"`
	ArchiveSlug string          `json:"archive_slug,omitempty"`
	RewriteSlug string          `json:"rewrite_slug,omitempty"`
}

// MarshalJSON implements json.Marshaler using the flat wire format.
func (r Rule) MarshalJSON() ([]byte, error) {
	w := wireRule{
		ID:    string(r.ID),
		Theme: string(r.Theme),
	}
	if r.Match == nil {
		return nil, ErrInvalidRule
	}
	w.Type = r.Match.TypeTag()

	switch t := r.Match.(type) {
	case PageTarget:
		w.Value = idValue(t.ID)
	case PostTarget:
		w.Value = idValue(t.ID)
	case CPTItemTarget:
		w.Value = idValue(t.ID)
		w.PostType = string(t.PostType)
	case PostTypeTarget:
		w.Value = stringValue(string(t.Name))
		w.ArchiveSlug = t.ArchiveSlug
		w.RewriteSlug = t.RewriteSlug
	case TaxonomyTarget:
		w.Value = idValue(t.TermID)
		w.Taxonomy = t.Taxonomy
		w.RewriteSlug = t.RewriteSlug
	case CategoryTarget:
		w.Value = idValue(t.TermID)
	case TagTarget:
		w.Value = idValue(t.TermID)
	case URLTarget:
		w.Value = stringValue(t.Path)
	case UnknownTarget:
		w.Value = t.Value
		w.PostType = t.PostType
		w.Taxonomy = t.Taxonomy
		w.ArchiveSlug = t.ArchiveSlug
		w.RewriteSlug = t.RewriteSlug
	default:
		return nil, ErrInvalidRule
	}

	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler, lifting the flat wire format
// into the typed Target variants. Unknown type tags become UnknownTarget.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var w wireRule
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	r.ID = RuleID(w.ID)
	r.Theme = ThemeSlug(w.Theme)

	target, err := decodeTarget(w)
	if err != nil {
		return err
	}
	r.Match = target
	return nil
}

func decodeTarget(w wireRule) (Target, error) {
	switch w.Type {
	case "url":
		return URLTarget{Path: valueString(w.Value)}, nil
	case "post_type":
		return PostTypeTarget{
			Name:        ContentType(valueString(w.Value)),
			ArchiveSlug: w.ArchiveSlug,
			RewriteSlug: w.RewriteSlug,
		}, nil
	case "taxonomy":
		id, err := valueID(w.Value)
		if err != nil {
			return nil, err
		}
		return TaxonomyTarget{TermID: id, Taxonomy: w.Taxonomy, RewriteSlug: w.RewriteSlug}, nil
	case "category":
		id, err := valueID(w.Value)
		if err != nil {
			return nil, err
		}
		return CategoryTarget{TermID: id}, nil
	case "tag":
		id, err := valueID(w.Value)
		if err != nil {
			return nil, err
		}
		return TagTarget{TermID: id}, nil
	}

	status, base := splitStatusTag(w.Type)
	switch base {
	case "page":
		id, err := valueID(w.Value)
		if err != nil {
			return nil, err
		}
		return PageTarget{ID: id, Status: status}, nil
	case "post":
		id, err := valueID(w.Value)
		if err != nil {
			return nil, err
		}
		return PostTarget{ID: id, Status: status}, nil
	case "cpt_item":
		id, err := valueID(w.Value)
		if err != nil {
			return nil, err
		}
		return CPTItemTarget{ID: id, PostType: ContentType(w.PostType), Status: status}, nil
	}

	// Dynamic "{status}_{post_type}" form written by older versions for
	// custom types: draft_event, pending_recipe, ...
	if status != StatusPublish && base != "" {
		id, err := valueID(w.Value)
		if err == nil {
			return CPTItemTarget{ID: id, PostType: ContentType(base), Status: status}, nil
		}
	}

	return UnknownTarget{
		Tag:         w.Type,
		Value:       w.Value,
		PostType:    w.PostType,
		Taxonomy:    w.Taxonomy,
		ArchiveSlug: w.ArchiveSlug,
		RewriteSlug: w.RewriteSlug,
	}, nil
}

// splitStatusTag splits a composite rule-type tag into its status prefix
// and base name. Tags without a recognized status prefix are publish-status.
func splitStatusTag(tag string) (ContentStatus, string) {
	for _, s := range []ContentStatus{StatusDraft, StatusPending, StatusPrivate, StatusFuture} {
		prefix := string(s) + "_"
		if rest, ok := strings.CutPrefix(tag, prefix); ok && rest != "" {
			return s, rest
		}
	}
	return StatusPublish, tag
}

// RuleTypeFor returns the canonical rule-type tag tracking content of the
// given type in the given status, or ok=false when no rule type tracks that
// combination (trash, unsupported statuses, and published custom items,
// which are covered by post_type rules rather than per-item rules).
func RuleTypeFor(status ContentStatus, ct ContentType) (string, bool) {
	switch status {
	case StatusDraft, StatusPending, StatusPrivate, StatusFuture:
	case StatusPublish:
		switch ct {
		case TypePage:
			return "page", true
		case TypePost:
			return "post", true
		default:
			return "", false
		}
	default:
		return "", false
	}

	switch ct {
	case TypePage:
		return string(status) + "_page", true
	case TypePost:
		return string(status) + "_post", true
	default:
		return string(status) + "_cpt_item", true
	}
}

// MatchesComposite reports whether t is the status-qualified rule for the
// given content item: same ID, same status, and a type discriminant that
// covers the content's type. Accepts both the canonical cpt_item form and
// the dynamic "{status}_{post_type}" form (decoded to the same variant).
func MatchesComposite(t Target, c Content) bool {
	switch m := t.(type) {
	case PageTarget:
		return c.Type == TypePage && m.ID == c.ID && m.Status == c.Status
	case PostTarget:
		return c.Type == TypePost && m.ID == c.ID && m.Status == c.Status
	case CPTItemTarget:
		if c.Type.Builtin() {
			return false
		}
		if m.PostType != "" && m.PostType != c.Type {
			return false
		}
		return m.ID == c.ID && m.Status == c.Status
	default:
		return false
	}
}

func idValue(id ContentID) json.RawMessage {
	return json.RawMessage(strconv.Quote(strconv.FormatInt(int64(id), 10)))
}

func stringValue(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

// valueString extracts a wire value as a string, accepting either a JSON
// string or a bare number (both occur in stored option data).
func valueString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// valueID extracts a wire value as a content ID, accepting JSON numbers and
// numeric strings.
func valueID(raw json.RawMessage) (ContentID, error) {
	s := valueString(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidRule)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric value %q", ErrInvalidRule, s)
	}
	return ContentID(n), nil
}
