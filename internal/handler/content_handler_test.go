package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whoskite/kitestudios-sub000/internal/cms"
	"github.com/whoskite/kitestudios-sub000/pkg/config"
)

func newContentRouter(resolver *cms.Resolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewContentHandler(resolver)
	r.GET("/api/articles", h.ListArticles)
	r.GET("/api/articles/:key", h.GetArticle)
	r.GET("/api/resources", h.ListResources)
	r.GET("/api/resources/:key", h.GetResource)
	r.GET("/api/categories", h.ListCategories)
	r.GET("/api/authors", h.ListAuthors)
	r.POST("/api/inquiries", h.SubmitInquiry)
	return r
}

func TestListArticles_CMSDownStillReturns200WithData(t *testing.T) {
	r := newContentRouter(downResolver())

	code, body := getJSON(t, r, "/api/articles")

	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["data"])
}

func TestGetArticle_UnknownKeyReturnsNullDataNot404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[],"meta":{}}`))
	}))
	defer srv.Close()
	r := newContentRouter(cms.NewResolver(cms.NewClient(config.CMSConfig{BaseURL: srv.URL})))

	code, body := getJSON(t, r, "/api/articles/no-such-slug")

	assert.Equal(t, http.StatusOK, code)
	// data must be present and null, never omitted
	data, ok := body["data"]
	require.True(t, ok)
	assert.Nil(t, data)
}

func TestListResources_ForwardsPaginationParams(t *testing.T) {
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{"data":[{"id":1,"attributes":{"title":"x"}}],"meta":{}}`))
	}))
	defer srv.Close()
	r := newContentRouter(cms.NewResolver(cms.NewClient(config.CMSConfig{BaseURL: srv.URL})))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/resources?page=3&pageSize=12&category=tools", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"3"}, query["pagination[page]"])
	assert.Equal(t, []string{"12"}, query["pagination[pageSize]"])
	assert.Equal(t, []string{"tools"}, query["filters[category][$eq]"])
}

func TestListCategories_CMSDownStillReturns200(t *testing.T) {
	r := newContentRouter(downResolver())

	code, body := getJSON(t, r, "/api/categories")
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["data"])
}

func TestSubmitInquiry_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	r := newContentRouter(cms.NewResolver(cms.NewClient(config.CMSConfig{BaseURL: srv.URL})))

	req := httptest.NewRequest(http.MethodPost, "/api/inquiries",
		strings.NewReader(`{"name":"Kite Fan","email":"fan@example.com","message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "received")
}

func TestSubmitInquiry_InvalidPayloadIs400(t *testing.T) {
	r := newContentRouter(downResolver())

	req := httptest.NewRequest(http.MethodPost, "/api/inquiries", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitInquiry_CMSDownIs502(t *testing.T) {
	r := newContentRouter(downResolver())

	req := httptest.NewRequest(http.MethodPost, "/api/inquiries",
		strings.NewReader(`{"name":"Kite Fan","email":"fan@example.com","message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "BAD_GATEWAY")
}
