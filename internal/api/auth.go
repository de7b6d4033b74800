package api

import (
	"context"
	"net/http"
	"net/url"
)

// LoginRequest identifies the user by email or username.
type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
	Username  string `json:"username,omitempty"`
	Company   string `json:"company,omitempty"`
}

// Session is returned by every call that issues a token.
type Session struct {
	Key  string `json:"key"`
	User User   `json:"user"`
}

// AuthService covers login, registration and account recovery. Calls that
// issue a token also install it on the client.
type AuthService struct {
	c *Client
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	return s.session(ctx, "/auth/login/", req)
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	return s.session(ctx, "/auth/registration/", req)
}

func (s *AuthService) session(ctx context.Context, path string, req any) (*Session, error) {
	s.c.InitCSRF(ctx)

	var sess Session
	if err := s.c.do(ctx, http.MethodPost, path, nil, req, &sess); err != nil {
		return nil, err
	}
	if sess.Key != "" {
		s.c.SetToken(sess.Key)
	}

	// The backend rotates the CSRF cookie on login.
	s.c.InitCSRF(ctx)
	return &sess, nil
}

// Logout ends the server session. The client token is dropped even when
// the call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	defer s.c.SetToken("")
	return s.c.do(ctx, http.MethodPost, "/auth/logout/", nil, nil, nil)
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*Detail, error) {
	return s.detail(ctx, "/auth/password-reset/request/", map[string]string{"email": email})
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (*Detail, error) {
	return s.detail(ctx, "/auth/password-reset/confirm/", map[string]string{
		"token":        token,
		"new_password": newPassword,
	})
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*Detail, error) {
	return s.detail(ctx, "/auth/verify-email/", map[string]string{"token": token})
}

// ResendVerification re-sends the verification mail; email may be empty
// for the logged-in user.
func (s *AuthService) ResendVerification(ctx context.Context, email string) (*Detail, error) {
	body := map[string]string{}
	if email != "" {
		body["email"] = email
	}
	return s.detail(ctx, "/auth/resend-verification/", body)
}

// ExchangeMagicToken trades a magic-link token for a session.
func (s *AuthService) ExchangeMagicToken(ctx context.Context, token, redirectTo string) (*Session, error) {
	q := url.Values{}
	q.Set("token", token)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}

	var sess Session
	if err := s.c.do(ctx, http.MethodGet, "/auth/exchange-magic-token/", q, nil, &sess); err != nil {
		return nil, err
	}
	if sess.Key != "" {
		s.c.SetToken(sess.Key)
	}
	s.c.InitCSRF(ctx)
	return &sess, nil
}

// Me returns the profile of the authenticated user.
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	var u User
	if err := s.c.do(ctx, http.MethodGet, "/profile/me/", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *AuthService) detail(ctx context.Context, path string, body any) (*Detail, error) {
	var d Detail
	if err := s.c.do(ctx, http.MethodPost, path, nil, body, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
