// Package apiclient holds the typed domain services the client uses to talk
// to the tripwise backend. Every service is a thin wrapper over a
// gateway.Client; none of them keeps state.
package apiclient

import (
	"context"
	"errors"
	"time"

	"tripwise/internal/models/request_models"
	"tripwise/internal/models/response_models"
	"tripwise/pkg/gateway"
	"tripwise/pkg/session"
)

var errNoRefresh = errors.New("apiclient: token cannot be refreshed here")

// staticToken authenticates a single call with a token the caller already
// holds. It never refreshes.
type staticToken string

func (t staticToken) AccessToken(context.Context) (string, error) { return string(t), nil }
func (t staticToken) Refresh(context.Context, string) error       { return errNoRefresh }
func (t staticToken) Clear(context.Context)                       {}

// AuthService implements session.Provider against /auth. Its gateway must not
// carry the session itself, or a failed refresh would recurse.
type AuthService struct {
	gw  *gateway.Client
	now func() time.Time
}

var _ session.Provider = (*AuthService)(nil)

func NewAuthService(gw *gateway.Client) *AuthService {
	return &AuthService{gw: gw, now: time.Now}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*session.User, *session.Tokens, error) {
	var resp response_models.AuthResponse
	err := s.gw.Post(ctx, "/auth/login", request_models.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, nil, err
	}
	return toUser(resp.User), s.toTokens(resp), nil
}

func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*session.User, *session.Tokens, error) {
	var resp response_models.AuthResponse
	req := request_models.SignUpRequest{Email: email, Password: password, DisplayName: displayName}
	if err := s.gw.Post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, nil, err
	}
	return toUser(resp.User), s.toTokens(resp), nil
}

// Logout revokes the refresh token server side.
func (s *AuthService) Logout(ctx context.Context, tokens session.Tokens) error {
	gw := s.gw.WithAuth(staticToken(tokens.AccessToken), nil)
	return gw.Post(ctx, "/auth/logout", request_models.LogoutRequest{RefreshToken: tokens.RefreshToken}, nil)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*session.Tokens, error) {
	var resp response_models.AuthResponse
	err := s.gw.Post(ctx, "/auth/refresh", request_models.RefreshTokenRequest{RefreshToken: refreshToken}, &resp)
	if err != nil {
		return nil, err
	}
	return s.toTokens(resp), nil
}

func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*session.User, error) {
	var resp response_models.UserResponse
	if err := s.gw.WithAuth(staticToken(accessToken), nil).Get(ctx, "/auth/me", &resp); err != nil {
		return nil, err
	}
	return toUser(resp), nil
}

func (s *AuthService) toTokens(resp response_models.AuthResponse) *session.Tokens {
	t := &session.Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	switch {
	case resp.ExpiresAt > 0:
		t.ExpiresAt = time.Unix(resp.ExpiresAt, 0)
	case resp.ExpiresIn > 0:
		t.ExpiresAt = s.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return t
}

func toUser(u response_models.UserResponse) *session.User {
	return &session.User{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, CreatedAt: u.CreatedAt}
}
