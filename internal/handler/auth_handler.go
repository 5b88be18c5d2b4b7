package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/whoskite/kitestudios-sub000/internal/auth"
	"github.com/whoskite/kitestudios-sub000/internal/middleware"
	"github.com/whoskite/kitestudios-sub000/pkg/config"
	"github.com/whoskite/kitestudios-sub000/pkg/logger"
	"github.com/whoskite/kitestudios-sub000/pkg/response"
)

// returnToCookie carries the deep-link target across the provider round trip
const returnToCookie = "kite_return_to"

// AuthHandler owns the sign-in endpoints
type AuthHandler struct {
	service *auth.Service
	site    config.SiteConfig
	session config.SessionConfig
	secure  bool
}

// NewAuthHandler creates an AuthHandler. secure controls the cookie Secure flag.
func NewAuthHandler(service *auth.Service, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		service: service,
		site:    cfg.Site,
		session: cfg.Session,
		secure:  cfg.IsProduction(),
	}
}

// Login handles GET /api/auth/login. It mints a state nonce, remembers the
// requested return URL and sends the browser to the provider.
func (h *AuthHandler) Login(c *gin.Context) {
	state, err := h.service.NewState(c.Request.Context())
	if err != nil {
		logger.Error("failed to mint oauth state", zap.Error(err))
		response.InternalError(c, "Sign-in is temporarily unavailable")
		return
	}

	if requested := c.Query(middleware.CallbackParam); requested != "" {
		c.SetCookie(returnToCookie, requested, 600, "/", "", h.secure, true)
	}

	c.Redirect(http.StatusFound, h.service.LoginURL(state))
}

// Callback handles GET /api/auth/callback/:provider. Provider errors and
// forged or replayed callbacks land on the auth-help page; a good code becomes
// a session cookie and a redirect resolved from the remembered return URL.
func (h *AuthHandler) Callback(c *gin.Context) {
	if provErr := c.Query("error"); provErr != "" {
		logger.Warn("oauth provider returned error", zap.String("error", provErr))
		c.Redirect(http.StatusFound, h.site.AuthHelpPath+"?error="+url.QueryEscape(provErr))
		return
	}

	if !h.service.ConsumeState(c.Request.Context(), c.Query("state")) {
		logger.Warn("oauth callback with bad state")
		c.Redirect(http.StatusFound, h.site.AuthHelpPath+"?error=state_mismatch")
		return
	}

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, h.site.AuthHelpPath+"?error=missing_code")
		return
	}

	token, sess, err := h.service.HandleCallback(c.Request.Context(), code)
	if err != nil {
		logger.Error("oauth callback failed", zap.Error(err))
		c.Redirect(http.StatusFound, h.site.AuthHelpPath+"?error=exchange_failed")
		return
	}

	maxAge := int(h.session.TTL.Seconds())
	c.SetCookie(h.session.CookieName, token, maxAge, "/", "", h.secure, true)

	requested, _ := c.Cookie(returnToCookie)
	c.SetCookie(returnToCookie, "", -1, "/", "", h.secure, true)

	target := auth.ResolveRedirect(requested, h.site.BaseURL, h.site.HubPath)
	logger.Info("sign-in complete",
		zap.String("user_id", sess.UserID),
		zap.String("redirect", target),
	)
	c.Redirect(http.StatusFound, target)
}

// Logout handles POST /api/auth/logout. The token is revoked for its
// remaining lifetime and the cookie cleared.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(h.session.CookieName)
	if token == "" {
		if authz := c.GetHeader("Authorization"); strings.HasPrefix(authz, "Bearer ") {
			token = strings.TrimPrefix(authz, "Bearer ")
		}
	}
	if token != "" {
		if err := h.service.SignOut(c.Request.Context(), token); err != nil {
			logger.Error("failed to revoke session", zap.Error(err))
			response.InternalError(c, "Sign-out failed")
			return
		}
	}

	c.SetCookie(h.session.CookieName, "", -1, "/", "", h.secure, true)
	response.Success(c, gin.H{"status": "signed_out"})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess == nil {
		response.Unauthorized(c, "No active session")
		return
	}
	response.Success(c, sess)
}
