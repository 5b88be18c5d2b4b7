package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/whoskite/kitestudios-sub000/internal/domain"
	"github.com/whoskite/kitestudios-sub000/pkg/config"
	"github.com/whoskite/kitestudios-sub000/pkg/response"
)

const (
	// SessionKey is the gin context key the gate stores the session under
	SessionKey = "session"
	// CallbackParam carries the originally requested URL through the denial redirect
	CallbackParam = "callbackUrl"
)

// RouteTable is the static protected-route classification. It is built once at
// startup and evaluated before any handler runs.
type RouteTable struct {
	exact    map[string]struct{}
	prefixes []string
}

// NewRouteTable builds a table from exact paths and path prefixes
func NewRouteTable(exact []string, prefixes []string) *RouteTable {
	t := &RouteTable{exact: make(map[string]struct{}, len(exact))}
	for _, p := range exact {
		t.exact[p] = struct{}{}
	}
	t.prefixes = append(t.prefixes, prefixes...)
	return t
}

// DefaultProtectedRoutes returns the site's protected surface: the hub and all
// its sub-paths, resource detail pages, the admin area and the chat API.
func DefaultProtectedRoutes() *RouteTable {
	return NewRouteTable(
		[]string{"/hub", "/admin", "/api/chat"},
		[]string{"/hub/", "/admin/", "/resource/"},
	)
}

// Protected reports whether the path requires a session
func (t *RouteTable) Protected(path string) bool {
	if _, ok := t.exact[path]; ok {
		return true
	}
	for _, prefix := range t.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// SessionValidator checks a session token. Implemented by the auth service.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*domain.Session, error)
}

// AuthGate intercepts every request and decides whether it may proceed.
// Public routes pass through untouched. Protected routes need a valid,
// non-expired, non-revoked session; on denial, page requests are redirected to
// the access-denied surface with the original URL preserved for post-login
// replay, and API requests get a 401 JSON error. The gate fetches no data.
func AuthGate(validator SessionValidator, cookieName string, site config.SiteConfig, routes *RouteTable) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if !routes.Protected(path) {
			// Attach the session when present so public pages can
			// personalize, but never require it.
			if token := sessionToken(c, cookieName); token != "" {
				if sess, err := validator.Validate(c.Request.Context(), token); err == nil {
					c.Set(SessionKey, sess)
				}
			}
			c.Next()
			return
		}

		token := sessionToken(c, cookieName)
		if token != "" {
			if sess, err := validator.Validate(c.Request.Context(), token); err == nil {
				c.Set(SessionKey, sess)
				c.Next()
				return
			}
		}

		if strings.HasPrefix(path, "/api/") {
			response.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		requested := path
		if raw := c.Request.URL.RawQuery; raw != "" {
			requested += "?" + raw
		}
		target := site.AccessDeniedPath + "?" + CallbackParam + "=" + url.QueryEscape(requested)
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

// GetSession returns the session the gate attached, nil when absent
func GetSession(c *gin.Context) *domain.Session {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	sess, ok := v.(*domain.Session)
	if !ok {
		return nil
	}
	return sess
}

func sessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	// API callers may send the token as a bearer header instead
	authz := c.GetHeader("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimPrefix(authz, "Bearer ")
	}
	return ""
}
