package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whoskite/kitestudios-sub000/internal/domain"
	"github.com/whoskite/kitestudios-sub000/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Site: config.SiteConfig{
			BaseURL:          "https://kitestudios.io",
			HubPath:          "/hub",
			AccessDeniedPath: "/access-denied",
			AuthHelpPath:     "/auth-help",
		},
		OAuth: config.OAuthConfig{
			Provider:     "google",
			AuthorizeURL: "https://accounts.example/authorize",
			TokenURL:     "https://accounts.example/token",
			UserInfoURL:  "https://accounts.example/userinfo",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Scopes:       "openid email profile",
		},
		Session: config.SessionConfig{
			Secret:     "test-secret-test-secret-test-secret",
			TTL:        time.Hour,
			CookieName: "kite_session",
		},
	}
}

func newTestService() *Service {
	return NewService(testConfig(), NewMemoryStore())
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestService()

	token, sess, err := svc.Issue(UserInfo{Subject: "user-1", Name: "Kite Fan", AvatarURL: "https://img.example/a.png"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, domain.RoleMember, sess.Role)

	got, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "Kite Fan", got.Name)
	assert.Equal(t, "https://img.example/a.png", got.AvatarURL)
	assert.Equal(t, sess.TokenID, got.TokenID)
}

func TestValidate_ExpiredToken(t *testing.T) {
	svc := newTestService()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.Issue(UserInfo{Subject: "user-1"})
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestValidate_GarbageToken(t *testing.T) {
	svc := newTestService()

	_, err := svc.Validate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestValidate_WrongSecret(t *testing.T) {
	svc := newTestService()
	token, _, err := svc.Issue(UserInfo{Subject: "user-1"})
	require.NoError(t, err)

	other := newTestService()
	other.session.Secret = "a-different-secret-a-different-secret"

	_, err = other.Validate(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSignOut_RevokesToken(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	token, _, err := svc.Issue(UserInfo{Subject: "user-1"})
	require.NoError(t, err)

	_, err = svc.Validate(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, token))

	_, err = svc.Validate(ctx, token)
	assert.ErrorIs(t, err, domain.ErrSessionRevoked)
}

func TestSignOut_StoreFailureIsReported(t *testing.T) {
	svc := newTestService()

	token, _, err := svc.Issue(UserInfo{Subject: "user-1"})
	require.NoError(t, err)

	svc.store = failingStore{}
	assert.Error(t, svc.SignOut(context.Background(), token), "a sign-out that could not revoke must not report success")
}

func TestSignOut_ExpiredTokenIsNoop(t *testing.T) {
	svc := newTestService()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.Issue(UserInfo{Subject: "user-1"})
	require.NoError(t, err)

	svc.now = time.Now
	assert.NoError(t, svc.SignOut(context.Background(), token))
}

func TestState_SingleUse(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	state, err := svc.NewState(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, state)

	assert.True(t, svc.ConsumeState(ctx, state))
	assert.False(t, svc.ConsumeState(ctx, state), "state must be single use")
	assert.False(t, svc.ConsumeState(ctx, "never-issued"))
	assert.False(t, svc.ConsumeState(ctx, ""))
}

func TestLoginURL(t *testing.T) {
	svc := newTestService()
	u := svc.LoginURL("state-123")

	assert.Contains(t, u, "https://accounts.example/authorize?")
	assert.Contains(t, u, "client_id=client-id")
	assert.Contains(t, u, "state=state-123")
	assert.Contains(t, u, "prompt=consent")
	assert.Contains(t, u, "access_type=offline")
	assert.Contains(t, u, "redirect_uri=https%3A%2F%2Fkitestudios.io%2Fapi%2Fauth%2Fcallback%2Fgoogle")
}

func TestRoleResolverIsPluggable(t *testing.T) {
	svc := newTestService()
	svc.roleResolver = func(userID string) domain.Role { return domain.Role("admin") }

	_, sess, err := svc.Issue(UserInfo{Subject: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.Role("admin"), sess.Role)
}

func TestValidate_StoreFailureFailsClosed(t *testing.T) {
	svc := newTestService()
	token, _, err := svc.Issue(UserInfo{Subject: "user-1"})
	require.NoError(t, err)

	svc.store = failingStore{}
	_, err = svc.Validate(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

type failingStore struct{}

func (failingStore) Set(context.Context, string, time.Duration) error { return errors.New("down") }
func (failingStore) Has(context.Context, string) (bool, error)        { return false, errors.New("down") }
func (failingStore) Del(context.Context, string) error                { return errors.New("down") }
