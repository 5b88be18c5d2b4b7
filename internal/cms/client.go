package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/whoskite/kitestudios-sub000/internal/domain"
	"github.com/whoskite/kitestudios-sub000/pkg/config"
)

const defaultTimeout = 10 * time.Second

// Query describes a CMS collection lookup. It serializes into the CMS's
// bracketed querystring form with keys in a stable order.
type Query struct {
	// Filters maps field name to an equality value: {"slug": "x"} becomes
	// filters[slug][$eq]=x
	Filters map[string]string
	// Populate lists relations to resolve: populate[0]=cover
	Populate []string
	// Sort lists sort directives: sort[0]=createdAt:desc
	Sort []string
	// Page and PageSize control pagination; zero values are omitted
	Page     int
	PageSize int
}

// Encode serializes the query into a canonical querystring.
// Filter keys are sorted so the same query always produces the same string.
func (q Query) Encode() string {
	v := url.Values{}

	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.Set(fmt.Sprintf("filters[%s][$eq]", k), q.Filters[k])
	}

	for i, p := range q.Populate {
		v.Set(fmt.Sprintf("populate[%d]", i), p)
	}
	for i, s := range q.Sort {
		v.Set(fmt.Sprintf("sort[%d]", i), s)
	}
	if q.Page > 0 {
		v.Set("pagination[page]", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pagination[pageSize]", strconv.Itoa(q.PageSize))
	}

	return v.Encode()
}

// Client is the low-level CMS HTTP adapter. It does not cache and holds no
// state beyond the connection pool.
type Client struct {
	baseURL  string
	apiToken string
	http     *http.Client
}

// NewClient creates a CMS client with an explicit request timeout.
// An empty base URL is a valid configuration: every call fails fast with
// ErrUpstreamUnavailable and the resolvers substitute fallback content.
func NewClient(cfg config.CMSConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		apiToken: cfg.APIToken,
		http:     &http.Client{Timeout: timeout},
	}
}

// Get issues a GET to /api/{path}?{query} and decodes the JSON body into out.
// A 404 maps to ErrNotFound; any other failure maps to ErrUpstreamUnavailable.
func (c *Client) Get(ctx context.Context, path string, query Query, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: no CMS base URL configured", domain.ErrUpstreamUnavailable)
	}

	u := c.baseURL + "/api/" + path
	if qs := query.Encode(); qs != "" {
		u += "?" + qs
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return c.do(req, out)
}

// Post issues a POST to /api/{path} with a JSON body and decodes the response
// into out. Used for passthrough writes such as inquiries.
func (c *Client) Post(ctx context.Context, path string, body interface{}, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: no CMS base URL configured", domain.ErrUpstreamUnavailable)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/"+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", domain.ErrUpstreamUnavailable, err)
	}
	return nil
}
