package cms

import "github.com/whoskite/kitestudios-sub000/internal/domain"

// Fallback content served whenever the CMS is unreachable or returns nothing.
// Process-constant: returned as-is, never mutated, never merged with live data.

func fallbackMeta(total int) domain.Meta {
	return domain.Meta{Pagination: &domain.Pagination{
		Page:      1,
		PageSize:  total,
		PageCount: 1,
		Total:     total,
	}}
}

var fallbackCategories = []domain.Category{
	{ID: 1, Attributes: domain.CategoryAttributes{
		Name:        "Design",
		Slug:        "design",
		Description: "Visual systems, branding and interface work",
	}},
	{ID: 2, Attributes: domain.CategoryAttributes{
		Name:        "Engineering",
		Slug:        "engineering",
		Description: "Build notes from the studio",
	}},
	{ID: 3, Attributes: domain.CategoryAttributes{
		Name:        "Community",
		Slug:        "community",
		Description: "Events, collaborations and member spotlights",
	}},
}

var fallbackAuthors = []domain.Author{
	{ID: 1, Attributes: domain.AuthorAttributes{
		Name: "KITESTUDIOS Team",
	}},
}

var fallbackArticles = []domain.Article{
	{ID: 1, Attributes: domain.ArticleAttributes{
		Title:       "Welcome to KITESTUDIOS",
		Description: "What the studio is about and where we are headed.",
		Slug:        "welcome-to-kitestudios",
		Body:        "Fresh articles are on the way. Check back soon.",
		Category:    domain.Relation[domain.CategoryAttributes]{Data: &fallbackCategories[2]},
		Author:      domain.Relation[domain.AuthorAttributes]{Data: &fallbackAuthors[0]},
	}},
	{ID: 2, Attributes: domain.ArticleAttributes{
		Title:       "Design System Overview",
		Description: "A tour of the KITESTUDIOS visual language.",
		Slug:        "design-system-overview",
		Body:        "Fresh articles are on the way. Check back soon.",
		Category:    domain.Relation[domain.CategoryAttributes]{Data: &fallbackCategories[0]},
		Author:      domain.Relation[domain.AuthorAttributes]{Data: &fallbackAuthors[0]},
	}},
	{ID: 3, Attributes: domain.ArticleAttributes{
		Title:       "Building in the Open",
		Description: "Why we share our process, tools and mistakes.",
		Slug:        "building-in-the-open",
		Body:        "Fresh articles are on the way. Check back soon.",
		Category:    domain.Relation[domain.CategoryAttributes]{Data: &fallbackCategories[1]},
		Author:      domain.Relation[domain.AuthorAttributes]{Data: &fallbackAuthors[0]},
	}},
}

var fallbackResources = []domain.Resource{
	{ID: 1, Attributes: domain.ResourceAttributes{
		Title:       "Starter Figma Kit",
		Description: "Components and tokens to kick off a project.",
		Slug:        "starter-figma-kit",
		Category:    domain.Relation[domain.CategoryAttributes]{Data: &fallbackCategories[0]},
	}},
	{ID: 2, Attributes: domain.ResourceAttributes{
		Title:       "Deployment Checklist",
		Description: "Everything we verify before a site goes live.",
		Slug:        "deployment-checklist",
		Category:    domain.Relation[domain.CategoryAttributes]{Data: &fallbackCategories[1]},
	}},
}

// FallbackArticles returns the substitute article set
func FallbackArticles() domain.ListEnvelope[domain.ArticleAttributes] {
	return domain.ListEnvelope[domain.ArticleAttributes]{
		Data: fallbackArticles,
		Meta: fallbackMeta(len(fallbackArticles)),
	}
}

// FallbackResources returns the substitute resource set
func FallbackResources() domain.ListEnvelope[domain.ResourceAttributes] {
	return domain.ListEnvelope[domain.ResourceAttributes]{
		Data: fallbackResources,
		Meta: fallbackMeta(len(fallbackResources)),
	}
}

// FallbackCategories returns the substitute category set
func FallbackCategories() domain.ListEnvelope[domain.CategoryAttributes] {
	return domain.ListEnvelope[domain.CategoryAttributes]{
		Data: fallbackCategories,
		Meta: fallbackMeta(len(fallbackCategories)),
	}
}

// FallbackAuthors returns the substitute author set
func FallbackAuthors() domain.ListEnvelope[domain.AuthorAttributes] {
	return domain.ListEnvelope[domain.AuthorAttributes]{
		Data: fallbackAuthors,
		Meta: fallbackMeta(len(fallbackAuthors)),
	}
}
