// Package session is the client's auth state: who is signed in and which
// tokens to send. It is an explicit object with a lifecycle (Init, Subscribe,
// Teardown) that callers inject where they need it.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrNotSignedIn = errors.New("session: not signed in")

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type Tokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Provider issues and refreshes sessions.
type Provider interface {
	Login(ctx context.Context, email, password string) (*User, *Tokens, error)
	Register(ctx context.Context, email, password, displayName string) (*User, *Tokens, error)
	Logout(ctx context.Context, tokens Tokens) error
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
	CurrentUser(ctx context.Context, accessToken string) (*User, error)
}

// TokenStore persists tokens between runs. Load returns nil, nil when empty.
type TokenStore interface {
	Load(ctx context.Context) (*Tokens, error)
	Save(ctx context.Context, tokens Tokens) error
	Clear(ctx context.Context) error
}

type Event string

const (
	EventInitialized Event = "initialized"
	EventSignedIn    Event = "signed_in"
	EventSignedOut   Event = "signed_out"
	EventRefreshed   Event = "token_refreshed"
)

// Listener receives every auth-state change. user is nil after sign-out.
type Listener func(event Event, user *User)

type Context struct {
	provider Provider
	store    TokenStore
	logger   *zap.Logger

	mu        sync.RWMutex
	user      *User
	tokens    *Tokens
	listeners map[int]Listener
	nextID    int
	refreshMu sync.Mutex
}

func New(provider Provider, store TokenStore, logger *zap.Logger) *Context {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Context{
		provider:  provider,
		store:     store,
		logger:    logger,
		listeners: make(map[int]Listener),
	}
}

// Init restores a stored session and asks the provider who it belongs to.
// A session that can be neither verified nor refreshed is dropped.
func (c *Context) Init(ctx context.Context) error {
	tokens, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	if tokens == nil || tokens.AccessToken == "" {
		c.notify(EventInitialized, nil)
		return nil
	}

	c.mu.Lock()
	c.tokens = tokens
	c.mu.Unlock()

	user, err := c.provider.CurrentUser(ctx, tokens.AccessToken)
	if err != nil && tokens.RefreshToken != "" {
		c.logger.Debug("stored access token rejected, refreshing", zap.Error(err))
		if rerr := c.Refresh(ctx, tokens.AccessToken); rerr == nil {
			user, err = c.provider.CurrentUser(ctx, c.accessToken())
		}
	}
	if err != nil {
		c.logger.Info("stored session is no longer valid", zap.Error(err))
		c.Clear(ctx)
		c.notify(EventInitialized, nil)
		return nil
	}

	c.mu.Lock()
	c.user = user
	c.mu.Unlock()
	c.notify(EventInitialized, user)
	return nil
}

// Subscribe registers fn and returns the function that removes it.
func (c *Context) Subscribe(fn Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Teardown drops every subscription.
func (c *Context) Teardown() {
	c.mu.Lock()
	c.listeners = make(map[int]Listener)
	c.mu.Unlock()
}

func (c *Context) Login(ctx context.Context, email, password string) (*User, error) {
	user, tokens, err := c.provider.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return user, c.signIn(ctx, user, tokens)
}

func (c *Context) Register(ctx context.Context, email, password, displayName string) (*User, error) {
	user, tokens, err := c.provider.Register(ctx, email, password, displayName)
	if err != nil {
		return nil, err
	}
	return user, c.signIn(ctx, user, tokens)
}

// Logout revokes the session with the provider and always clears it locally.
func (c *Context) Logout(ctx context.Context) error {
	c.mu.RLock()
	tokens := c.tokens
	c.mu.RUnlock()

	var err error
	if tokens != nil {
		if err = c.provider.Logout(ctx, *tokens); err != nil {
			c.logger.Warn("provider logout failed", zap.Error(err))
		}
	}
	c.Clear(ctx)
	return err
}

func (c *Context) User() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Context) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens != nil && c.tokens.AccessToken != ""
}

// AccessToken returns the current bearer token, or "" when signed out.
func (c *Context) AccessToken(context.Context) (string, error) {
	return c.accessToken(), nil
}

func (c *Context) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken
}

// Refresh exchanges the refresh token for a new pair. rejected is the access
// token the server turned down; when the session has already rotated past it
// the call is a no-op, so concurrent 401s share one refresh. Refresh tokens
// are single use.
func (c *Context) Refresh(ctx context.Context, rejected string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	c.mu.RLock()
	tokens := c.tokens
	c.mu.RUnlock()
	if tokens == nil || tokens.RefreshToken == "" {
		return ErrNotSignedIn
	}
	if rejected != "" && tokens.AccessToken != rejected {
		return nil
	}

	fresh, err := c.provider.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		return err
	}
	if err := c.store.Save(ctx, *fresh); err != nil {
		c.logger.Warn("could not persist refreshed tokens", zap.Error(err))
	}

	c.mu.Lock()
	c.tokens = fresh
	user := c.user
	c.mu.Unlock()

	c.notify(EventRefreshed, user)
	return nil
}

// Clear forgets the session locally.
func (c *Context) Clear(ctx context.Context) {
	c.mu.Lock()
	wasSignedIn := c.tokens != nil
	c.user = nil
	c.tokens = nil
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("could not clear stored tokens", zap.Error(err))
	}
	if wasSignedIn {
		c.notify(EventSignedOut, nil)
	}
}

func (c *Context) signIn(ctx context.Context, user *User, tokens *Tokens) error {
	if tokens == nil {
		return errors.New("session: provider returned no tokens")
	}
	if err := c.store.Save(ctx, *tokens); err != nil {
		return err
	}
	c.mu.Lock()
	c.user = user
	c.tokens = tokens
	c.mu.Unlock()

	c.notify(EventSignedIn, user)
	return nil
}

func (c *Context) notify(event Event, user *User) {
	c.mu.RLock()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.RUnlock()

	for _, l := range listeners {
		l(event, user)
	}
}
