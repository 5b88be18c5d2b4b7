package cms

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/whoskite/kitestudios-sub000/internal/domain"
	"github.com/whoskite/kitestudios-sub000/pkg/logger"
	"github.com/whoskite/kitestudios-sub000/pkg/telemetry"
)

var (
	articlePopulate  = []string{"cover", "category", "author"}
	resourcePopulate = []string{"cover", "category"}
	defaultSort      = []string{"createdAt:desc"}
)

// ListParams narrows a collection lookup
type ListParams struct {
	Category string
	Page     int
	PageSize int
}

func (p ListParams) query(populate []string) Query {
	q := Query{
		Populate: populate,
		Sort:     defaultSort,
		Page:     p.Page,
		PageSize: p.PageSize,
	}
	if p.Category != "" {
		q.Filters = map[string]string{"category": p.Category}
	}
	return q
}

// Inquiry is the contact-form payload passed through to the CMS
type Inquiry struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// Resolver wraps the CMS client with entity-specific query shapes and the
// fallback guarantee: every lookup returns a renderable envelope, upstream
// failures never surface to the page layer. No retries are performed.
type Resolver struct {
	client *Client
}

// NewResolver creates a resolver over the given CMS client
func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

// isNumericKey reports whether the key should be treated as a numeric ID.
// A slug consisting only of digits is indistinguishable from an ID under this
// rule and is looked up as an ID. Known ambiguity, kept on purpose.
func isNumericKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// GetArticles returns published articles, newest first.
// CMS failure or an empty result substitutes the fallback set.
func (r *Resolver) GetArticles(ctx context.Context, p ListParams) domain.ListEnvelope[domain.ArticleAttributes] {
	ctx, span := telemetry.StartSpan(ctx, "cms.articles.list")
	defer span.End()

	var env domain.ListEnvelope[domain.ArticleAttributes]
	if err := r.client.Get(ctx, "articles", p.query(articlePopulate), &env); err != nil {
		r.logFallback("articles", err)
		return FallbackArticles()
	}
	if len(env.Data) == 0 {
		return FallbackArticles()
	}
	return env
}

// GetArticleByIDOrSlug looks up one article. An all-digit key is fetched as a
// numeric ID, anything else as a slug filter. Both paths return the same
// envelope shape; a miss or upstream failure yields nil Data, never an error.
func (r *Resolver) GetArticleByIDOrSlug(ctx context.Context, key string) domain.SingleEnvelope[domain.ArticleAttributes] {
	ctx, span := telemetry.StartSpan(ctx, "cms.articles.get")
	defer span.End()

	if isNumericKey(key) {
		var env domain.SingleEnvelope[domain.ArticleAttributes]
		if err := r.client.Get(ctx, "articles/"+key, Query{Populate: articlePopulate}, &env); err != nil {
			r.logMiss("articles", key, err)
			return domain.SingleEnvelope[domain.ArticleAttributes]{}
		}
		return env
	}

	var list domain.ListEnvelope[domain.ArticleAttributes]
	q := Query{
		Filters:  map[string]string{"slug": key},
		Populate: articlePopulate,
		PageSize: 1,
	}
	if err := r.client.Get(ctx, "articles", q, &list); err != nil || len(list.Data) == 0 {
		r.logMiss("articles", key, err)
		return domain.SingleEnvelope[domain.ArticleAttributes]{}
	}
	return domain.SingleEnvelope[domain.ArticleAttributes]{Data: &list.Data[0], Meta: list.Meta}
}

// GetResources returns hub resources.
// CMS failure or an empty result substitutes the fallback set.
func (r *Resolver) GetResources(ctx context.Context, p ListParams) domain.ListEnvelope[domain.ResourceAttributes] {
	ctx, span := telemetry.StartSpan(ctx, "cms.resources.list")
	defer span.End()

	var env domain.ListEnvelope[domain.ResourceAttributes]
	if err := r.client.Get(ctx, "resources", p.query(resourcePopulate), &env); err != nil {
		r.logFallback("resources", err)
		return FallbackResources()
	}
	if len(env.Data) == 0 {
		return FallbackResources()
	}
	return env
}

// GetResourceByIDOrSlug looks up one resource with the same key classification
// as articles
func (r *Resolver) GetResourceByIDOrSlug(ctx context.Context, key string) domain.SingleEnvelope[domain.ResourceAttributes] {
	ctx, span := telemetry.StartSpan(ctx, "cms.resources.get")
	defer span.End()

	if isNumericKey(key) {
		var env domain.SingleEnvelope[domain.ResourceAttributes]
		if err := r.client.Get(ctx, "resources/"+key, Query{Populate: resourcePopulate}, &env); err != nil {
			r.logMiss("resources", key, err)
			return domain.SingleEnvelope[domain.ResourceAttributes]{}
		}
		return env
	}

	var list domain.ListEnvelope[domain.ResourceAttributes]
	q := Query{
		Filters:  map[string]string{"slug": key},
		Populate: resourcePopulate,
		PageSize: 1,
	}
	if err := r.client.Get(ctx, "resources", q, &list); err != nil || len(list.Data) == 0 {
		r.logMiss("resources", key, err)
		return domain.SingleEnvelope[domain.ResourceAttributes]{}
	}
	return domain.SingleEnvelope[domain.ResourceAttributes]{Data: &list.Data[0], Meta: list.Meta}
}

// GetCategories returns all categories
func (r *Resolver) GetCategories(ctx context.Context) domain.ListEnvelope[domain.CategoryAttributes] {
	ctx, span := telemetry.StartSpan(ctx, "cms.categories.list")
	defer span.End()

	var env domain.ListEnvelope[domain.CategoryAttributes]
	if err := r.client.Get(ctx, "categories", Query{Sort: []string{"name:asc"}}, &env); err != nil {
		r.logFallback("categories", err)
		return FallbackCategories()
	}
	if len(env.Data) == 0 {
		return FallbackCategories()
	}
	return env
}

// GetAuthors returns all authors
func (r *Resolver) GetAuthors(ctx context.Context) domain.ListEnvelope[domain.AuthorAttributes] {
	ctx, span := telemetry.StartSpan(ctx, "cms.authors.list")
	defer span.End()

	var env domain.ListEnvelope[domain.AuthorAttributes]
	if err := r.client.Get(ctx, "authors", Query{Populate: []string{"avatar"}}, &env); err != nil {
		r.logFallback("authors", err)
		return FallbackAuthors()
	}
	if len(env.Data) == 0 {
		return FallbackAuthors()
	}
	return env
}

// SubmitInquiry passes a contact-form submission through to the CMS.
// Writes cannot be faked, so upstream failure is returned to the caller.
func (r *Resolver) SubmitInquiry(ctx context.Context, inquiry Inquiry) error {
	ctx, span := telemetry.StartSpan(ctx, "cms.inquiries.create")
	defer span.End()

	body := map[string]interface{}{"data": inquiry}
	if err := r.client.Post(ctx, "inquiries", body, nil); err != nil {
		telemetry.SetSpanError(ctx, err)
		return err
	}
	return nil
}

func (r *Resolver) logFallback(resource string, err error) {
	logger.Warn("CMS unavailable, serving fallback content",
		zap.String("resource", resource),
		zap.Error(err),
	)
}

func (r *Resolver) logMiss(resource, key string, err error) {
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		logger.Debug("CMS entity not found",
			zap.String("resource", resource),
			zap.String("key", key),
		)
		return
	}
	logger.Warn("CMS unavailable, returning empty result",
		zap.String("resource", resource),
		zap.String("key", key),
		zap.Error(err),
	)
}
