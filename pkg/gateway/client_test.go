package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	token      string
	refreshTo  string
	refreshErr error
	refreshes  int
	rejected   []string
	cleared    int
}

func (a *fakeAuth) AccessToken(context.Context) (string, error) { return a.token, nil }

func (a *fakeAuth) Refresh(_ context.Context, rejected string) error {
	a.refreshes++
	a.rejected = append(a.rejected, rejected)
	if a.refreshErr != nil {
		return a.refreshErr
	}
	a.token = a.refreshTo
	return nil
}

func (a *fakeAuth) Clear(context.Context) {
	a.cleared++
	a.token = ""
}

func writeEnvelope(w http.ResponseWriter, status int, env map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func TestDo_AttachesBearerAndDecodesData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/items", r.URL.Path)
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "data": map[string]string{"name": "tea"}})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL + "/api/", Auth: &fakeAuth{token: "tok-1"}})

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, client.Get(context.Background(), "/items", &out))
	assert.Equal(t, "tea", out.Name)
}

func TestDo_RefreshesOnceAndReplays(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"amount":12}`, string(body))
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeEnvelope(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "token expired"})
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "data": map[string]int{"id": 7}})
	}))
	defer server.Close()

	auth := &fakeAuth{token: "stale", refreshTo: "fresh"}
	client := New(Config{BaseURL: server.URL, Auth: auth})

	var out struct {
		ID int `json:"id"`
	}
	require.NoError(t, client.Post(context.Background(), "/expenses", map[string]int{"amount": 12}, &out))

	assert.Equal(t, 7, out.ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, auth.refreshes)
	assert.Equal(t, []string{"stale"}, auth.rejected)
	assert.Zero(t, auth.cleared)
}

func TestDo_NeverRetriesTwice(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "nope"})
	}))
	defer server.Close()

	auth := &fakeAuth{token: "stale", refreshTo: "still-bad"}
	client := New(Config{BaseURL: server.URL, Auth: auth})

	err := client.Get(context.Background(), "/me", nil)

	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, auth.refreshes)
}

func TestDo_FailedRefreshClearsSessionAndRedirects(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "expired"})
	}))
	defer server.Close()

	redirected := 0
	auth := &fakeAuth{token: "stale", refreshErr: errors.New("refresh token revoked")}
	client := New(Config{BaseURL: server.URL, Auth: auth, OnUnauthenticated: func() { redirected++ }})

	err := client.Get(context.Background(), "/itinerary/list", nil)

	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 1, auth.cleared)
	assert.Equal(t, 1, redirected)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDo_NoTokenMeansNoRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "invalid credentials"})
	}))
	defer server.Close()

	auth := &fakeAuth{}
	client := New(Config{BaseURL: server.URL, Auth: auth})

	err := client.Post(context.Background(), "/auth/login", map[string]string{"email": "a@b.c"}, nil)

	var se *ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "invalid credentials", se.Message)
	assert.Zero(t, auth.refreshes)
}

func TestDo_SuccessFalseIsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"success": false, "error": "quota exceeded"})
	}))
	defer server.Close()

	err := New(Config{BaseURL: server.URL}).Put(context.Background(), "/itinerary/1", map[string]string{}, nil)

	var se *ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusOK, se.Status)
	assert.Equal(t, "quota exceeded", se.Message)
}

func TestDo_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	err := New(Config{BaseURL: url}).Get(context.Background(), "/health", nil)

	var ne *NetworkError
	assert.True(t, errors.As(err, &ne))
}

func TestDo_RequestErrorOnUnencodableBody(t *testing.T) {
	err := New(Config{BaseURL: "http://127.0.0.1:1"}).Post(context.Background(), "/x", map[string]any{"ch": make(chan int)}, nil)

	var re *RequestError
	assert.True(t, errors.As(err, &re))
}

func TestUpload_SendsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "zh", r.FormValue("language"))
		f, hdr, err := r.FormFile("audio")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "clip.webm", hdr.Filename)
		assert.Len(t, data, 4000)
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "data": map[string]string{"text": "lunch 45"}})
	}))
	defer server.Close()

	var out struct {
		Text string `json:"text"`
	}
	err := New(Config{BaseURL: server.URL}).Upload(context.Background(), "/voice/transcribe",
		map[string]string{"language": "zh"},
		File{Field: "audio", Name: "clip.webm", Data: make([]byte, 4000)}, &out)

	require.NoError(t, err)
	assert.Equal(t, "lunch 45", out.Text)
}

func TestRaw_ReturnsBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.3"))
	}))
	defer server.Close()

	data, ct, err := New(Config{BaseURL: server.URL}).Raw(context.Background(), "/itinerary/1/pdf")

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)
	assert.Equal(t, "%PDF-1.3", string(data))
}
