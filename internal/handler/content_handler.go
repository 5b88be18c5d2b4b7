package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/whoskite/kitestudios-sub000/internal/cms"
	"github.com/whoskite/kitestudios-sub000/internal/domain"
	"github.com/whoskite/kitestudios-sub000/pkg/response"
)

// ContentHandler serves CMS-backed content. Every read returns the uniform
// {data, meta} envelope with HTTP 200: a missing entity is null data and an
// unreachable CMS is substituted content, never a 5xx.
type ContentHandler struct {
	resolver *cms.Resolver
}

// NewContentHandler creates a ContentHandler
func NewContentHandler(resolver *cms.Resolver) *ContentHandler {
	return &ContentHandler{resolver: resolver}
}

func listParams(c *gin.Context) cms.ListParams {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	return cms.ListParams{
		Category: c.Query("category"),
		Page:     page,
		PageSize: pageSize,
	}
}

// ListArticles handles GET /api/articles
func (h *ContentHandler) ListArticles(c *gin.Context) {
	env := h.resolver.GetArticles(c.Request.Context(), listParams(c))
	c.JSON(http.StatusOK, env)
}

// GetArticle handles GET /api/articles/:key where key is a numeric ID or slug
func (h *ContentHandler) GetArticle(c *gin.Context) {
	env := h.resolver.GetArticleByIDOrSlug(c.Request.Context(), c.Param("key"))
	c.JSON(http.StatusOK, env)
}

// ListResources handles GET /api/resources
func (h *ContentHandler) ListResources(c *gin.Context) {
	env := h.resolver.GetResources(c.Request.Context(), listParams(c))
	c.JSON(http.StatusOK, env)
}

// GetResource handles GET /api/resources/:key
func (h *ContentHandler) GetResource(c *gin.Context) {
	env := h.resolver.GetResourceByIDOrSlug(c.Request.Context(), c.Param("key"))
	c.JSON(http.StatusOK, env)
}

// ListCategories handles GET /api/categories
func (h *ContentHandler) ListCategories(c *gin.Context) {
	env := h.resolver.GetCategories(c.Request.Context())
	c.JSON(http.StatusOK, env)
}

// ListAuthors handles GET /api/authors
func (h *ContentHandler) ListAuthors(c *gin.Context) {
	env := h.resolver.GetAuthors(c.Request.Context())
	c.JSON(http.StatusOK, env)
}

// SubmitInquiry handles POST /api/inquiries. A write cannot be faked, so a
// CMS outage surfaces as a 502-style error instead of fallback content.
func (h *ContentHandler) SubmitInquiry(c *gin.Context) {
	var inquiry cms.Inquiry
	if err := c.ShouldBindJSON(&inquiry); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.resolver.SubmitInquiry(c.Request.Context(), inquiry); err != nil {
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			response.BadGateway(c, "Inquiries are temporarily unavailable, please try again later")
			return
		}
		response.InternalError(c, "Failed to submit inquiry")
		return
	}

	response.Created(c, gin.H{"status": "received"})
}
