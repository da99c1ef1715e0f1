// Package gateway dispatches every backend call: it attaches the session's
// bearer token, refreshes the session once on a 401 and replays the request,
// and unwraps the {success, data, error} envelope.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Authenticator is the session as the gateway sees it.
type Authenticator interface {
	// AccessToken returns the current bearer token, or "" when signed out.
	AccessToken(ctx context.Context) (string, error)
	// Refresh renews the session after rejected was refused by the server.
	Refresh(ctx context.Context, rejected string) error
	Clear(ctx context.Context)
}

// Envelope is the uniform response body of the backend.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	TraceID string          `json:"trace_id,omitempty"`
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Auth       Authenticator
	// OnUnauthenticated runs after a failed refresh has cleared the session.
	OnUnauthenticated func()
	Logger            *zap.Logger
}

type Client struct {
	http     *http.Client
	baseURL  string
	auth     Authenticator
	onLogout func()
	logger   *zap.Logger
}

func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:     hc,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		auth:     cfg.Auth,
		onLogout: cfg.OnUnauthenticated,
		logger:   logger,
	}
}

// WithAuth returns a copy of the client that authenticates through auth.
func (c *Client) WithAuth(auth Authenticator, onUnauthenticated func()) *Client {
	cp := *c
	cp.auth = auth
	cp.onLogout = onUnauthenticated
	return &cp
}

// payload is a request body that can be replayed.
type payload struct {
	data        []byte
	contentType string
}

func (p *payload) reader() io.Reader {
	if p == nil {
		return nil
	}
	return bytes.NewReader(p.data)
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends body as JSON and decodes the envelope's data into out.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var p *payload
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return c.requestErr("encode request body", err)
		}
		p = &payload{data: data, contentType: "application/json"}
	}
	resp, err := c.execute(ctx, method, path, p)
	if err != nil {
		return err
	}
	return c.decode(method, path, resp, out)
}

// File is one multipart file part.
type File struct {
	Field    string
	Name     string
	Data     []byte
	MimeType string
}

// Upload posts a multipart form and decodes the envelope's data into out.
func (c *Client) Upload(ctx context.Context, path string, fields map[string]string, file File, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return c.requestErr("encode form field", err)
		}
	}
	part, err := w.CreateFormFile(file.Field, file.Name)
	if err != nil {
		return c.requestErr("create form file", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return c.requestErr("write form file", err)
	}
	if err := w.Close(); err != nil {
		return c.requestErr("close multipart body", err)
	}

	resp, err := c.execute(ctx, http.MethodPost, path, &payload{data: buf.Bytes(), contentType: w.FormDataContentType()})
	if err != nil {
		return err
	}
	return c.decode(http.MethodPost, path, resp, out)
}

// Raw fetches a non-envelope body such as a PDF or an image.
func (c *Client) Raw(ctx context.Context, path string) ([]byte, string, error) {
	resp, err := c.execute(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, "", err
	}
	if resp.status >= http.StatusBadRequest {
		return nil, "", c.serverErr(http.MethodGet, path, resp)
	}
	return resp.body, resp.header.Get("Content-Type"), nil
}

// execute performs the request and, on a 401 for a request that carried a
// token, refreshes the session and replays it exactly once.
func (c *Client) execute(ctx context.Context, method, path string, p *payload) (*response, error) {
	resp, sentToken, err := c.roundTrip(ctx, method, path, p)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusUnauthorized || sentToken == "" || c.auth == nil {
		return resp, nil
	}

	if err := c.auth.Refresh(ctx, sentToken); err != nil {
		c.logger.Warn("session refresh failed, signing out",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		c.auth.Clear(ctx)
		if c.onLogout != nil {
			c.onLogout()
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	c.logger.Debug("session refreshed, replaying request", zap.String("method", method), zap.String("path", path))
	resp, _, err = c.roundTrip(ctx, method, path, p)
	return resp, err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, p *payload) (*response, string, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, p.reader())
	if err != nil {
		return nil, "", c.requestErr("build request", err)
	}
	if p != nil {
		req.Header.Set("Content-Type", p.contentType)
	}
	req.Header.Set("Accept", "application/json")

	var sentToken string
	if c.auth != nil {
		token, err := c.auth.AccessToken(ctx)
		if err != nil {
			return nil, "", c.requestErr("read access token", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
			sentToken = token
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("no response from backend",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, sentToken, &NetworkError{Method: method, Path: path, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 32<<20))
	if err != nil {
		c.logger.Warn("response body interrupted",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, sentToken, &NetworkError{Method: method, Path: path, Err: err}
	}
	return &response{status: res.StatusCode, header: res.Header, body: body}, sentToken, nil
}

func (c *Client) decode(method, path string, resp *response, out any) error {
	if resp.status >= http.StatusBadRequest {
		return c.serverErr(method, path, resp)
	}

	var env Envelope
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return c.requestErr("decode response envelope", err)
	}
	if !env.Success {
		return c.serverErr(method, path, resp)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return c.requestErr("decode response data", err)
	}
	return nil
}

func (c *Client) serverErr(method, path string, resp *response) error {
	se := &ServerError{Status: resp.status, Body: resp.body}
	var env Envelope
	if json.Unmarshal(resp.body, &env) == nil {
		se.Message = env.Error
		if se.Message == "" {
			se.Message = env.Message
		}
	}
	c.logger.Warn("backend returned an error",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.status),
		zap.String("error", se.Message),
		zap.String("trace_id", env.TraceID))
	return se
}

func (c *Client) requestErr(op string, err error) error {
	c.logger.Error("request setup failed", zap.String("op", op), zap.Error(err))
	return &RequestError{Op: op, Err: err}
}

// IsUnauthorized reports whether err means the caller must sign in again.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrSessionExpired) || StatusCode(err) == http.StatusUnauthorized
}
