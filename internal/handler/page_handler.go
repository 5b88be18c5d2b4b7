package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/whoskite/kitestudios-sub000/internal/cms"
	"github.com/whoskite/kitestudios-sub000/internal/middleware"
	"github.com/whoskite/kitestudios-sub000/pkg/config"
)

// Page states a content page can render in. A page never 5xxes on a data
// fetch: missing content renders not_found, substituted content renders ok.
const (
	stateOK       = "ok"
	stateNotFound = "not_found"
)

// PageHandler serves the server-rendered page surfaces the gateway owns.
// Layout and styling live in the frontend; these endpoints return the page
// state and data the frontend renders from.
type PageHandler struct {
	resolver *cms.Resolver
	site     config.SiteConfig
}

// NewPageHandler creates a PageHandler
func NewPageHandler(resolver *cms.Resolver, site config.SiteConfig) *PageHandler {
	return &PageHandler{resolver: resolver, site: site}
}

// Hub handles GET /hub, the authenticated landing page
func (h *PageHandler) Hub(c *gin.Context) {
	sess := middleware.GetSession(c)
	articles := h.resolver.GetArticles(c.Request.Context(), cms.ListParams{PageSize: 6})
	resources := h.resolver.GetResources(c.Request.Context(), cms.ListParams{PageSize: 6})

	c.JSON(http.StatusOK, gin.H{
		"page":      "hub",
		"state":     stateOK,
		"session":   sess,
		"articles":  articles,
		"resources": resources,
	})
}

// HubArticle handles GET /hub/articles/:key. With the CMS down or the key
// unknown this is a 200 not_found page, never a 500.
func (h *PageHandler) HubArticle(c *gin.Context) {
	env := h.resolver.GetArticleByIDOrSlug(c.Request.Context(), c.Param("key"))

	state := stateOK
	if env.Data == nil {
		state = stateNotFound
	}
	c.JSON(http.StatusOK, gin.H{
		"page":    "article",
		"state":   state,
		"article": env,
	})
}

// ResourceDetail handles GET /resource/:key
func (h *PageHandler) ResourceDetail(c *gin.Context) {
	env := h.resolver.GetResourceByIDOrSlug(c.Request.Context(), c.Param("key"))

	state := stateOK
	if env.Data == nil {
		state = stateNotFound
	}
	c.JSON(http.StatusOK, gin.H{
		"page":     "resource",
		"state":    state,
		"resource": env,
	})
}

// Admin handles GET /admin
func (h *PageHandler) Admin(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page":    "admin",
		"state":   stateOK,
		"session": middleware.GetSession(c),
	})
}

// AccessDenied handles GET /access-denied, the auth gate's denial surface.
// The callbackUrl parameter is echoed so the sign-in link can replay it.
// The value is re-escaped in the link: a destination with its own query
// string must survive the round trip intact.
func (h *PageHandler) AccessDenied(c *gin.Context) {
	requested := c.Query(middleware.CallbackParam)
	c.JSON(http.StatusOK, gin.H{
		"page":        "access_denied",
		"callbackUrl": requested,
		"signInUrl":   "/api/auth/login?" + middleware.CallbackParam + "=" + url.QueryEscape(requested),
	})
}

// AuthHelp handles GET /auth-help, the landing page for OAuth provider errors
func (h *PageHandler) AuthHelp(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page":  "auth_help",
		"error": c.Query("error"),
	})
}
