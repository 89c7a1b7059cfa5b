package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evplanner/auth"
)

func TestNewClientWithoutKey(t *testing.T) {
	c, err := NewClient(Config{}, nil)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestAdviseSendsPromptAndReturnsText(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"recommendedRouteId\":"},{"text":"\"r1\"}"}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "secret", URL: srv.URL + "/", Model: "test-model", MaxOutputTokens: 256}, nil)
	require.NoError(t, err)
	text, err := c.Advise(context.Background(), "pick a route")
	require.NoError(t, err)
	assert.Equal(t, `{"recommendedRouteId":"r1"}`, text)

	require.Len(t, got.Contents, 1)
	assert.Equal(t, "pick a route", got.Contents[0].Parts[0].Text)
	assert.Equal(t, 256, got.GenerationConfig.MaxOutputTokens)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMimeType)
	assert.InDelta(t, 0.3, got.GenerationConfig.Temperature, 1e-9)
}

func TestAdviseWithOAuth(t *testing.T) {
	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	}))
	defer tokens.Close()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("x-goog-api-key"))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{
		URL:   srv.URL,
		OAuth: auth.Conf{ClientID: "id", ClientSecret: "s", TokenURL: tokens.URL},
	}, nil)
	require.NoError(t, err)
	text, err := c.Advise(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestAdviseNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "k", URL: srv.URL}, nil)
	require.NoError(t, err)
	_, err = c.Advise(context.Background(), "x")
	assert.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "429")
}

func TestAdviseEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "k", URL: srv.URL}, nil)
	require.NoError(t, err)
	_, err = c.Advise(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestAdviseHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "k", URL: srv.URL}, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Advise(ctx, "x")
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.Enabled())

	cfg.URL = "not a url"
	assert.Error(t, cfg.Validate())
}
