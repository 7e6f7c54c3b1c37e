package registry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rsx/internal/adapters/logger"
	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	settings := domain.DefaultSettings()
	settings.RegistryURL = srv.URL
	settings.RetryAttempts = 3
	settings.RetryBaseDelay = time.Millisecond

	c, err := NewClient(settings, logger.NewWithWriter(io.Discard))
	require.NoError(t, err)
	return c
}

const serdeIndex = `{"name":"serde","vers":"1.0.0","yanked":false}
{"name":"serde","vers":"1.0.1","yanked":true}

{"name":"serde","vers":"1.0.2","yanked":false}
`

func TestClientReleases(t *testing.T) {
	var path atomic.Value
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		_, _ = io.WriteString(w, serdeIndex)
	}))

	releases, err := c.Releases(context.Background(), "serde")
	require.NoError(t, err)
	assert.Equal(t, []ports.Release{
		{Version: "1.0.0"},
		{Version: "1.0.1", Yanked: true},
		{Version: "1.0.2"},
	}, releases)
	assert.Equal(t, "/se/rd/serde", path.Load())
}

func TestClientCachesReleases(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, serdeIndex)
	}))

	_, err := c.Releases(context.Background(), "serde")
	require.NoError(t, err)
	_, err = c.Releases(context.Background(), "serde")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClientNotFoundIsImmediate(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := c.Releases(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), hits.Load(), "a definitive miss must not be retried")
}

func TestClientRetriesTransientFailures(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, serdeIndex)
	}))

	releases, err := c.Releases(context.Background(), "serde")
	require.NoError(t, err)
	assert.Len(t, releases, 3)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClientGivesUpAfterAttempts(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.Releases(context.Background(), "serde")
	require.Error(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestIndexURLSharding(t *testing.T) {
	c := &Client{baseURL: "https://idx"}
	cases := map[string]string{
		"a":     "https://idx/1/a",
		"ab":    "https://idx/2/ab",
		"abc":   "https://idx/3/a/abc",
		"serde": "https://idx/se/rd/serde",
		"Mixed": "https://idx/mi/xe/mixed",
	}
	for name, want := range cases {
		assert.Equal(t, want, c.indexURL(name), name)
	}
}
