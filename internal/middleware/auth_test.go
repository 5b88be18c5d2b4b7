package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whoskite/kitestudios-sub000/internal/domain"
	"github.com/whoskite/kitestudios-sub000/pkg/config"
)

const testCookie = "kite_session"

type stubValidator struct {
	sess *domain.Session
	err  error
}

func (s stubValidator) Validate(ctx context.Context, token string) (*domain.Session, error) {
	return s.sess, s.err
}

func validSession() *domain.Session {
	return &domain.Session{UserID: "user-1", Name: "Kite Fan", Role: domain.RoleMember}
}

func newGateRouter(v SessionValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	site := config.SiteConfig{
		BaseURL:          "https://kitestudios.io",
		HubPath:          "/hub",
		AccessDeniedPath: "/access-denied",
	}
	r.Use(AuthGate(v, testCookie, site, DefaultProtectedRoutes()))
	handler := func(c *gin.Context) {
		sess := GetSession(c)
		if sess != nil {
			c.String(http.StatusOK, "user:"+sess.UserID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	}
	r.GET("/", handler)
	r.GET("/hub", handler)
	r.GET("/hub/articles/:key", handler)
	r.GET("/resource/:key", handler)
	r.POST("/api/chat", handler)
	r.GET("/api/articles", handler)
	return r
}

func doGet(r *gin.Engine, path string, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouteTable_Protected(t *testing.T) {
	routes := DefaultProtectedRoutes()

	cases := map[string]bool{
		"/hub":             true,
		"/hub/articles/42": true,
		"/admin":           true,
		"/admin/settings":  true,
		"/resource/7":      true,
		"/api/chat":        true,
		"/":                false,
		"/hubcap":          false,
		"/resources":       false,
		"/api/articles":    false,
		"/api/auth/login":  false,
		"/access-denied":   false,
	}
	for path, want := range cases {
		assert.Equal(t, want, routes.Protected(path), "path %s", path)
	}
}

func TestAuthGate_PublicRoutePassesWithoutSession(t *testing.T) {
	r := newGateRouter(stubValidator{err: domain.ErrUnauthorized})

	w := doGet(r, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestAuthGate_PublicRouteAttachesSessionWhenPresent(t *testing.T) {
	r := newGateRouter(stubValidator{sess: validSession()})

	w := doGet(r, "/", "some-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user:user-1", w.Body.String())
}

func TestAuthGate_ProtectedPageRedirectsAnonymous(t *testing.T) {
	r := newGateRouter(stubValidator{err: domain.ErrUnauthorized})

	w := doGet(r, "/hub", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/access-denied?callbackUrl=%2Fhub", w.Header().Get("Location"))
}

func TestAuthGate_RedirectPreservesQuery(t *testing.T) {
	r := newGateRouter(stubValidator{err: domain.ErrUnauthorized})

	w := doGet(r, "/hub/articles/42?ref=email", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/access-denied?callbackUrl=%2Fhub%2Farticles%2F42%3Fref%3Demail", w.Header().Get("Location"))
}

func TestAuthGate_ProtectedAPIGets401JSON(t *testing.T) {
	r := newGateRouter(stubValidator{err: domain.ErrUnauthorized})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
	assert.Empty(t, w.Header().Get("Location"))
}

func TestAuthGate_ValidSessionProceeds(t *testing.T) {
	r := newGateRouter(stubValidator{sess: validSession()})

	w := doGet(r, "/hub", "valid-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user:user-1", w.Body.String())
}

func TestAuthGate_RevokedSessionIsDenied(t *testing.T) {
	r := newGateRouter(stubValidator{err: domain.ErrSessionRevoked})

	w := doGet(r, "/hub", "revoked-token")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/access-denied?callbackUrl=%2Fhub", w.Header().Get("Location"))
}

func TestAuthGate_BearerHeaderWorksForAPI(t *testing.T) {
	r := newGateRouter(stubValidator{sess: validSession()})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user:user-1", w.Body.String())
}
