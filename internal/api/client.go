// Package api is a thin client for the Workairs REST backend. Every method
// maps 1:1 onto an endpoint; no business logic lives here.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"

	"github.com/workairs/wa-cli/internal/config"
)

const (
	defaultTimeout  = 60 * time.Second
	csrfCookieName  = "csrftoken"
	csrfHeaderName  = "X-CSRFToken"
	requestIDHeader = "X-Request-ID"
)

// Client talks to the Workairs API.
type Client struct {
	baseURL    *url.URL
	token      string
	scheme     string
	jar        http.CookieJar
	httpClient *http.Client
	streamHTTP *http.Client
	log        *logrus.Entry

	Leads         *LeadsService
	Campaigns     *CampaignsService
	Prompts       *PromptsService
	Credentials   *CredentialsService
	Auth          *AuthService
	Onboarding    *OnboardingService
	Conversations *ConversationsService
}

// Option customises a Client.
type Option func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient builds a client from the user's configuration.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.APIURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", cfg.APIURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: scheme and host are required", cfg.APIURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	scheme := cfg.AuthScheme
	if scheme == "" {
		scheme = config.DefaultAuthScheme
	}

	c := &Client{
		baseURL:    base,
		token:      cfg.Token,
		scheme:     scheme,
		jar:        jar,
		httpClient: &http.Client{Timeout: defaultTimeout, Jar: jar},
		// Streams stay open for as long as the model keeps talking.
		streamHTTP: &http.Client{Jar: jar},
		log:        logrus.WithField("component", "api"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Leads = &LeadsService{c: c}
	c.Campaigns = &CampaignsService{c: c}
	c.Prompts = &PromptsService{c: c}
	c.Credentials = &CredentialsService{c: c}
	c.Auth = &AuthService{c: c}
	c.Onboarding = &OnboardingService{c: c}
	c.Conversations = &ConversationsService{c: c}
	return c, nil
}

// SetToken replaces the auth token for subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the auth token in use, if any.
func (c *Client) Token() string {
	return c.token
}

// URL resolves an API path (e.g. "/leads/leads/") against the base URL.
func (c *Client) URL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	} else {
		u.RawQuery = ""
	}
	return u.String()
}

// NewRequest builds a request carrying auth, CSRF and request-id headers.
// contentType is set only when body is non-nil.
func (c *Client) NewRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, query), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.scheme+" "+c.token)
	}
	if !isSafeMethod(method) {
		if tok := c.csrfToken(); tok != "" {
			req.Header.Set(csrfHeaderName, tok)
		}
	}
	return req, nil
}

// Stream sends req on the un-timed streaming client and returns the open
// response. Non-2xx responses are consumed and returned as *APIError.
func (c *Client) Stream(req *http.Request) (*http.Response, error) {
	return c.send(c.streamHTTP, req)
}

func (c *Client) send(hc *http.Client, req *http.Request) (*http.Response, error) {
	c.log.WithFields(logrus.Fields{
		"method":     req.Method,
		"url":        req.URL.String(),
		"request_id": req.Header.Get(requestIDHeader),
	}).Debug("sending request")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach %s: %w", c.baseURL.Host, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, newAPIError(resp.StatusCode, body)
	}
	return resp, nil
}

// do performs a JSON round trip. in may be nil, a multipart body built by
// newMultipartBody, or any value to be JSON-encoded. out may be nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	switch v := in.(type) {
	case nil:
	case *multipartBody:
		body, contentType = v.buf, v.contentType
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	req, err := c.NewRequest(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}

	resp, err := c.send(c.httpClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// InitCSRF asks the backend to set the csrftoken cookie. Failure is logged
// and otherwise ignored.
func (c *Client) InitCSRF(ctx context.Context) {
	if err := c.do(ctx, http.MethodGet, "/csrf/", nil, nil, nil); err != nil {
		c.log.WithError(err).Warn("failed to initialize CSRF token")
	}
}

func (c *Client) csrfToken() string {
	for _, ck := range c.jar.Cookies(c.baseURL) {
		if ck.Name == csrfCookieName {
			return ck.Value
		}
	}
	return ""
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// listQuery builds the search/ordering parameters shared by list endpoints.
func listQuery(search, ordering string) url.Values {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if ordering != "" {
		q.Set("ordering", ordering)
	}
	return q
}

func idPath(prefix string, id int64, suffix string) string {
	return fmt.Sprintf("%s%d/%s", prefix, id, suffix)
}
