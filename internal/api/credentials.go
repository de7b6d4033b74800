package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// CredentialsService manages connected mailbox credentials and the OAuth
// connect flow.
type CredentialsService struct {
	c *Client
}

func (s *CredentialsService) List(ctx context.Context) ([]Credential, error) {
	var creds []Credential
	if err := s.c.do(ctx, http.MethodGet, "/credentials/list/", nil, nil, &creds); err != nil {
		return nil, err
	}
	return creds, nil
}

func (s *CredentialsService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, idPath("/credentials/", id, ""), nil, nil, nil)
}

// OAuthURL is the page the user must open to authorise provider.
func (s *CredentialsService) OAuthURL(provider, state string) string {
	q := url.Values{}
	q.Set("provider", provider)
	if state != "" {
		q.Set("state", state)
	}
	return s.c.URL("/oauth/login/", q)
}

// Callback completes the OAuth flow from the fragment of the redirect URL.
// The code is forwarded when present, otherwise the whole fragment.
func (s *CredentialsService) Callback(ctx context.Context, fragment string) (map[string]any, error) {
	raw := strings.TrimPrefix(fragment, "#")

	q := url.Values{}
	if parsed, err := url.ParseQuery(raw); err == nil && parsed.Get("code") != "" {
		q.Set("code", parsed.Get("code"))
	} else if raw != "" {
		q.Set("hash", raw)
	}

	out := map[string]any{}
	if err := s.c.do(ctx, http.MethodGet, "/oauth/callback/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
