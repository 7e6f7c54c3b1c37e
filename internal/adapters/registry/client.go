// Package registry implements the package registry client against the
// crates.io sparse index, and version resolution on top of it.
package registry

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
	"go.trai.ch/zerr"
)

// ErrNotFound is returned when the registry has no package by that name.
var ErrNotFound = zerr.New("package not found in registry")

const releaseCacheSize = 256

var _ ports.Registry = (*Client)(nil)

// Client queries a sparse registry index over HTTP. Responses are one
// JSON object per line, one line per published version.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     ports.Logger

	attempts  int
	baseDelay time.Duration

	cache *lru.Cache[string, []ports.Release]
}

// NewClient creates a registry client for the given sparse index URL.
func NewClient(settings domain.Settings, logger ports.Logger) (*Client, error) {
	cache, err := lru.New[string, []ports.Release](releaseCacheSize)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create release cache")
	}
	return &Client{
		baseURL:    strings.TrimSuffix(settings.RegistryURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		attempts:   settings.RetryAttempts,
		baseDelay:  settings.RetryBaseDelay,
		cache:      cache,
	}, nil
}

type indexLine struct {
	Name    string `json:"name"`
	Version string `json:"vers"`
	Yanked  bool   `json:"yanked"`
}

// Releases returns every published version of name, including yanked
// and pre-release versions; filtering is the resolver's concern.
// Transient failures are retried with bounded exponential backoff; a
// definitive "no such package" is surfaced immediately.
func (c *Client) Releases(ctx context.Context, name string) ([]ports.Release, error) {
	if cached, ok := c.cache.Get(name); ok {
		return cached, nil
	}

	url := c.indexURL(name)

	var last error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.baseDelay * time.Duration(1<<(attempt-1))):
			}
			c.logger.Debug(fmt.Sprintf("retrying registry query for %s (attempt %d)", name, attempt+1))
		}

		releases, err := c.fetch(ctx, url)
		if err == nil {
			c.cache.Add(name, releases)
			return releases, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, zerr.With(err, "package", name)
		}
		last = err
	}

	return nil, zerr.With(zerr.Wrap(last, "registry unreachable"), "package", name)
}

func (c *Client) fetch(ctx context.Context, url string) ([]ports.Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to build registry request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, zerr.Wrap(err, "registry request failed")
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close in defer

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, ErrNotFound
	default:
		return nil, zerr.With(zerr.New("unexpected registry response"), "status", resp.StatusCode)
	}

	var releases []ports.Release
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry indexLine
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, zerr.Wrap(err, "malformed registry index line")
		}
		releases = append(releases, ports.Release{
			Version: entry.Version,
			Yanked:  entry.Yanked,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, zerr.Wrap(err, "failed to read registry response")
	}

	return releases, nil
}

// indexURL maps a package name to its sparse index path. The layout
// shards by name length: 1/a, 2/ab, 3/a/abc, ab/cd/abcdef.
func (c *Client) indexURL(name string) string {
	lower := strings.ToLower(name)
	switch len(lower) {
	case 0:
		return c.baseURL + "/"
	case 1:
		return fmt.Sprintf("%s/1/%s", c.baseURL, lower)
	case 2:
		return fmt.Sprintf("%s/2/%s", c.baseURL, lower)
	case 3:
		return fmt.Sprintf("%s/3/%s/%s", c.baseURL, lower[:1], lower)
	default:
		return fmt.Sprintf("%s/%s/%s/%s", c.baseURL, lower[:2], lower[2:4], lower)
	}
}
