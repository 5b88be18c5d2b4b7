package domain

// Content entities mirror the CMS response shape: every entity is a numeric ID
// plus a nested attributes bag, and relations are themselves wrapped in a
// {data} envelope resolved via populate parameters at fetch time.

// Entry is a single CMS entity: numeric ID plus attributes bag
type Entry[T any] struct {
	ID         int `json:"id"`
	Attributes T   `json:"attributes"`
}

// Relation wraps a to-one reference. Data is nil when the relation is not
// populated or not set.
type Relation[T any] struct {
	Data *Entry[T] `json:"data"`
}

// Pagination is the CMS pagination block
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// Meta carries response metadata
type Meta struct {
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ListEnvelope is the uniform shape of every collection lookup.
// Data is an empty slice for "no results", never absent.
type ListEnvelope[T any] struct {
	Data []Entry[T] `json:"data"`
	Meta Meta       `json:"meta"`
}

// SingleEnvelope is the uniform shape of every single-entity lookup.
// Data is nil for "not found", never absent.
type SingleEnvelope[T any] struct {
	Data *Entry[T] `json:"data"`
	Meta Meta      `json:"meta"`
}

// MediaAttributes is an uploaded file (cover images and the like)
type MediaAttributes struct {
	Name            string `json:"name"`
	URL             string `json:"url"`
	AlternativeText string `json:"alternativeText,omitempty"`
	Width           int    `json:"width,omitempty"`
	Height          int    `json:"height,omitempty"`
}

// CategoryAttributes is a content category
type CategoryAttributes struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// AuthorAttributes is a content author
type AuthorAttributes struct {
	Name   string                    `json:"name"`
	Email  string                    `json:"email,omitempty"`
	Avatar Relation[MediaAttributes] `json:"avatar"`
}

// ArticleAttributes is a published article
type ArticleAttributes struct {
	Title       string                       `json:"title"`
	Description string                       `json:"description"`
	Slug        string                       `json:"slug"`
	Body        string                       `json:"body,omitempty"`
	Cover       Relation[MediaAttributes]    `json:"cover"`
	Category    Relation[CategoryAttributes] `json:"category"`
	Author      Relation[AuthorAttributes]   `json:"author"`
	CreatedAt   string                       `json:"createdAt,omitempty"`
	UpdatedAt   string                       `json:"updatedAt,omitempty"`
	PublishedAt string                       `json:"publishedAt,omitempty"`
}

// ResourceAttributes is a downloadable or linked resource in the hub
type ResourceAttributes struct {
	Title       string                       `json:"title"`
	Description string                       `json:"description"`
	Slug        string                       `json:"slug"`
	Link        string                       `json:"link,omitempty"`
	Cover       Relation[MediaAttributes]    `json:"cover"`
	Category    Relation[CategoryAttributes] `json:"category"`
	CreatedAt   string                       `json:"createdAt,omitempty"`
	UpdatedAt   string                       `json:"updatedAt,omitempty"`
	PublishedAt string                       `json:"publishedAt,omitempty"`
}

type (
	Article  = Entry[ArticleAttributes]
	Resource = Entry[ResourceAttributes]
	Category = Entry[CategoryAttributes]
	Author   = Entry[AuthorAttributes]
)
