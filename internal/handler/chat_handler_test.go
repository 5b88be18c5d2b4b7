package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whoskite/kitestudios-sub000/internal/chat"
	"github.com/whoskite/kitestudios-sub000/internal/domain"
	"github.com/whoskite/kitestudios-sub000/internal/middleware"
	"github.com/whoskite/kitestudios-sub000/pkg/config"
)

func newChatRouter(apiURL, apiKey string, sess *domain.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if sess != nil {
		r.Use(func(c *gin.Context) { c.Set(middleware.SessionKey, sess) })
	}
	h := NewChatHandler(chat.NewService(config.ChatConfig{
		APIURL:    apiURL,
		APIKey:    apiKey,
		Model:     "claude-3-5-sonnet-20241022",
		MaxTokens: 1024,
	}))
	r.POST("/api/chat", h.Chat)
	return r
}

func postChat(r *gin.Engine, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func memberSession() *domain.Session {
	now := time.Now()
	return &domain.Session{UserID: "user-1", Role: domain.RoleMember, IssuedAt: now, ExpiresAt: now.Add(time.Hour)}
}

func TestChat_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[{"type":"text","text":"hello there"}]}`))
	}))
	defer srv.Close()

	r := newChatRouter(srv.URL, "key", memberSession())
	w := postChat(r, `{"message":"hi","history":[{"role":"user","content":"earlier"},{"role":"assistant","content":"reply"}]}`)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Response string `json:"response"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "hello there", body.Data.Response)
}

func TestChat_NoSessionIs401(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called without a session")
	}))
	defer srv.Close()

	r := newChatRouter(srv.URL, "key", nil)
	w := postChat(r, `{"message":"hi"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestChat_MissingMessageIs400(t *testing.T) {
	r := newChatRouter("http://unused.invalid", "key", memberSession())
	w := postChat(r, `{"history":[]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChat_UpstreamErrorIsGeneric500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"upstream secret detail"}}`))
	}))
	defer srv.Close()

	r := newChatRouter(srv.URL, "key", memberSession())
	w := postChat(r, `{"message":"hi"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "PROCESSING_ERROR")
	assert.Contains(t, w.Body.String(), "Sorry, I could not process that message")
	assert.NotContains(t, w.Body.String(), "upstream secret detail")
}

func TestChat_MissingKeyIsConfigError(t *testing.T) {
	r := newChatRouter("http://unused.invalid", "", memberSession())
	w := postChat(r, `{"message":"hi"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "CONFIG_ERROR")
	assert.Contains(t, w.Body.String(), "Chat is not available right now")
}
