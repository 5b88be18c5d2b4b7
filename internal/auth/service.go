package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/whoskite/kitestudios-sub000/internal/domain"
	"github.com/whoskite/kitestudios-sub000/pkg/config"
	"github.com/whoskite/kitestudios-sub000/pkg/logger"
)

var (
	ErrStateMismatch  = errors.New("oauth state missing or already used")
	ErrExchangeFailed = errors.New("authorization code exchange failed")
)

const (
	stateTTL         = 10 * time.Minute
	oauthCallTimeout = 15 * time.Second
)

// UserInfo is the identity returned by the provider's userinfo endpoint
type UserInfo struct {
	Subject   string `json:"sub"`
	Name      string `json:"name"`
	AvatarURL string `json:"picture"`
}

// Service owns the sign-in flow: OAuth authorization-code exchange, session
// token issue/validate and sign-out revocation. Sessions are stateless signed
// tokens; the store only tracks revoked token IDs and pending state nonces.
type Service struct {
	oauth   config.OAuthConfig
	site    config.SiteConfig
	session config.SessionConfig
	store   Store
	http    *http.Client

	// roleResolver maps a user to a role. The default returns the single
	// fixed role; a real authorization store can be plugged in here.
	roleResolver func(userID string) domain.Role

	now func() time.Time
}

// NewService creates the auth service
func NewService(cfg *config.Config, store Store) *Service {
	return &Service{
		oauth:        cfg.OAuth,
		site:         cfg.Site,
		session:      cfg.Session,
		store:        store,
		http:         &http.Client{Timeout: oauthCallTimeout},
		roleResolver: func(string) domain.Role { return domain.RoleMember },
		now:          time.Now,
	}
}

// CookieName returns the session cookie name
func (s *Service) CookieName() string {
	return s.session.CookieName
}

// RedirectURI returns the provider redirect target registered for this site
func (s *Service) RedirectURI() string {
	return strings.TrimSuffix(s.site.BaseURL, "/") + CallbackPathPrefix + "/" + s.oauth.Provider
}

// NewState mints a single-use state nonce for the authorization request
func (s *Service) NewState(ctx context.Context) (string, error) {
	state := uuid.New().String()
	if err := s.store.Set(ctx, statePrefix+state, stateTTL); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return state, nil
}

// ConsumeState checks and invalidates a state nonce. A nonce is good once.
func (s *Service) ConsumeState(ctx context.Context, state string) bool {
	if state == "" {
		return false
	}
	ok, err := s.store.Has(ctx, statePrefix+state)
	if err != nil || !ok {
		return false
	}
	_ = s.store.Del(ctx, statePrefix+state)
	return true
}

// LoginURL builds the provider authorization URL. Offline access and a consent
// prompt are requested on every login.
func (s *Service) LoginURL(state string) string {
	v := url.Values{}
	v.Set("response_type", "code")
	v.Set("client_id", s.oauth.ClientID)
	v.Set("redirect_uri", s.RedirectURI())
	v.Set("scope", s.oauth.Scopes)
	v.Set("state", state)
	v.Set("access_type", "offline")
	v.Set("prompt", "consent")
	return s.oauth.AuthorizeURL + "?" + v.Encode()
}

// HandleCallback exchanges the authorization code, fetches the user identity
// and issues a signed session token
func (s *Service) HandleCallback(ctx context.Context, code string) (string, *domain.Session, error) {
	accessToken, err := s.exchangeCode(ctx, code)
	if err != nil {
		return "", nil, err
	}

	user, err := s.fetchUserInfo(ctx, accessToken)
	if err != nil {
		return "", nil, err
	}

	return s.Issue(user)
}

func (s *Service) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", s.oauth.ClientID)
	form.Set("client_secret", s.oauth.ClientSecret)
	form.Set("redirect_uri", s.RedirectURI())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.oauth.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		logger.Warn("token endpoint rejected code exchange",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return "", fmt.Errorf("%w: status %d", ErrExchangeFailed, resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrExchangeFailed, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrExchangeFailed)
	}
	return token.AccessToken, nil
}

func (s *Service) fetchUserInfo(ctx context.Context, accessToken string) (UserInfo, error) {
	var user UserInfo

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.oauth.UserInfoURL, nil)
	if err != nil {
		return user, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.http.Do(req)
	if err != nil {
		return user, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return user, fmt.Errorf("%w: userinfo status %d", ErrExchangeFailed, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return user, fmt.Errorf("%w: decode userinfo: %v", ErrExchangeFailed, err)
	}
	if user.Subject == "" {
		return user, fmt.Errorf("%w: userinfo missing subject", ErrExchangeFailed)
	}
	return user, nil
}

// Issue signs a session token for the given identity
func (s *Service) Issue(user UserInfo) (string, *domain.Session, error) {
	now := s.now()
	sess := &domain.Session{
		UserID:    user.Subject,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		Role:      s.roleResolver(user.Subject),
		TokenID:   uuid.New().String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.session.TTL),
	}

	claims := jwt.MapClaims{
		"sub":    sess.UserID,
		"name":   sess.Name,
		"avatar": sess.AvatarURL,
		"role":   string(sess.Role),
		"jti":    sess.TokenID,
		"iat":    sess.IssuedAt.Unix(),
		"exp":    sess.ExpiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.session.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}
	return token, sess, nil
}

// Validate parses a session token and checks expiry and revocation
func (s *Service) Validate(ctx context.Context, tokenString string) (*domain.Session, error) {
	sess, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}

	revoked, err := s.store.Has(ctx, revokedPrefix+sess.TokenID)
	if err != nil {
		// Store failure fails closed on protected routes
		return nil, domain.ErrUnauthorized
	}
	if revoked {
		return nil, domain.ErrSessionRevoked
	}

	return sess, nil
}

// SignOut revokes the token for its remaining lifetime. An invalid or expired
// token is a no-op; a store failure is returned so the caller never reports a
// sign-out that did not stick.
func (s *Service) SignOut(ctx context.Context, tokenString string) error {
	sess, err := s.parse(tokenString)
	if err != nil {
		return nil
	}
	remaining := sess.Remaining(s.now())
	if remaining <= 0 {
		return nil
	}
	return s.store.Set(ctx, revokedPrefix+sess.TokenID, remaining)
}

// parse verifies the token signature and expiry without consulting the
// revocation store
func (s *Service) parse(tokenString string) (*domain.Session, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrUnauthorized
		}
		return []byte(s.session.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrUnauthorized
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	sess, err := sessionFromClaims(claims)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	return sess, nil
}

func sessionFromClaims(claims jwt.MapClaims) (*domain.Session, error) {
	sub, _ := claims["sub"].(string)
	jti, _ := claims["jti"].(string)
	if sub == "" || jti == "" {
		return nil, fmt.Errorf("missing sub or jti")
	}

	name, _ := claims["name"].(string)
	avatar, _ := claims["avatar"].(string)
	role, _ := claims["role"].(string)

	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)

	return &domain.Session{
		UserID:    sub,
		Name:      name,
		AvatarURL: avatar,
		Role:      domain.Role(role),
		TokenID:   jti,
		IssuedAt:  time.Unix(int64(iat), 0),
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
