package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(Config{Gateway: srv.URL, TimeoutSeconds: 1, UserAgent: "test-agent"})
	require.NoError(t, err)
	return c
}

func TestNewHTTPClient_InvalidGateway(t *testing.T) {
	_, err := NewHTTPClient(Config{Gateway: "ftp://nope"})
	assert.Error(t, err)

	_, err = NewHTTPClient(Config{Gateway: "::bad"})
	assert.Error(t, err)
}

func TestHTTPClient_Resolve(t *testing.T) {
	c := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/abc/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"version": 7, "files": ["/portal.json"]}`))
	})

	m, err := c.Resolve(context.Background(), "dat://abc/")
	require.NoError(t, err)
	assert.Equal(t, int64(7), m.Version)
	assert.Equal(t, []string{"/portal.json"}, m.Files)
}

func TestHTTPClient_Fetch(t *testing.T) {
	c := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/abc/portals/x.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"name":"x"}`))
	})

	body, err := c.Fetch(context.Background(), "dat://abc", "/portals/x.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"x"}`, string(body))
}

func TestHTTPClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantTimeout bool
		wantMissing bool
	}{
		{"NotFound", http.StatusNotFound, false, true},
		{"GatewayTimeout", http.StatusGatewayTimeout, true, false},
		{"ServerError", http.StatusInternalServerError, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := c.Resolve(context.Background(), "dat://abc")
			require.Error(t, err)
			assert.Equal(t, tt.wantTimeout, IsTimeout(err))
			assert.Equal(t, tt.wantMissing, errors.Is(err, ErrNotFound))
		})
	}
}

func TestHTTPClient_ContextDeadline(t *testing.T) {
	c := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Resolve(ctx, "dat://slow")
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestHTTPClient_InvalidManifest(t *testing.T) {
	c := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := c.Resolve(context.Background(), "dat://abc")
	assert.ErrorContains(t, err, "invalid manifest")
}

func TestIsTimeout(t *testing.T) {
	assert.False(t, IsTimeout(nil))
	assert.False(t, IsTimeout(errors.New("plain")))
	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.True(t, IsTimeout(ErrTimeout))
}

func TestNextBackoffDelay(t *testing.T) {
	cfg := BackoffConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: 500 * time.Millisecond, Multiplier: 2}

	assert.Equal(t, 100*time.Millisecond, NextBackoffDelay(cfg, 1))
	assert.Equal(t, 200*time.Millisecond, NextBackoffDelay(cfg, 2))
	assert.Equal(t, 400*time.Millisecond, NextBackoffDelay(cfg, 3))
	assert.Equal(t, 500*time.Millisecond, NextBackoffDelay(cfg, 4))
	assert.Equal(t, time.Duration(0), NextBackoffDelay(BackoffConfig{}, 3))
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	m.PutFile("dat://abc/", "/portal.json", []byte(`{"name":"abc"}`))

	man, err := m.Resolve(context.Background(), "dat://abc")
	require.NoError(t, err)
	assert.Equal(t, int64(1), man.Version)
	assert.Equal(t, []string{"/portal.json"}, man.Files)
	assert.Equal(t, 1, m.Calls("dat://abc/"))

	_, err = m.Resolve(context.Background(), "dat://unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	m.Put("dat://slow", Peer{Delay: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = m.Resolve(ctx, "dat://slow")
	assert.True(t, IsTimeout(err))

	m.Put("dat://flaky", Peer{MissingFor: 1, Version: 3})
	_, err = m.Resolve(context.Background(), "dat://flaky")
	assert.ErrorIs(t, err, ErrNotFound)
	man, err = m.Resolve(context.Background(), "dat://flaky")
	require.NoError(t, err)
	assert.Equal(t, int64(3), man.Version)
}
