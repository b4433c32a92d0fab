package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cohort-indexer/core/address"

	"github.com/goccy/go-json"
)

// maxDocumentSize bounds a single fetched file.
const maxDocumentSize = 4 << 20

// Manifest describes the current state of a source.
type Manifest struct {
	// Version increases whenever the source publishes a change.
	Version int64 `json:"version"`
	// Files lists the document paths the source holds, each starting with "/".
	Files []string `json:"files"`
}

// Client defines the operations the index needs from the peer network.
type Client interface {
	// Resolve locates a source and returns its manifest.
	Resolve(ctx context.Context, addr string) (Manifest, error)
	// Fetch downloads a single document of a source.
	Fetch(ctx context.Context, addr, path string) ([]byte, error)
}

// HTTPClient resolves sources through an HTTP gateway.
type HTTPClient struct {
	base      *url.URL
	userAgent string
	http      *http.Client
}

// NewHTTPClient creates a gateway client based on the configuration.
func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(cfg.Gateway, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid gateway url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid gateway url %q: scheme must be http or https", cfg.Gateway)
	}

	timeout := cfg.Timeout()
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}

	return &HTTPClient{
		base:      base,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Transport: transport, Timeout: timeout},
	}, nil
}

// Resolve implements Client.
func (c *HTTPClient) Resolve(ctx context.Context, addr string) (Manifest, error) {
	body, err := c.get(ctx, address.Key(addr), "/", "application/json")
	if err != nil {
		return Manifest{}, classify("resolve", addr, err)
	}

	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return Manifest{}, fmt.Errorf("resolve %s: invalid manifest: %w", addr, err)
	}
	return m, nil
}

// Fetch implements Client.
func (c *HTTPClient) Fetch(ctx context.Context, addr, path string) ([]byte, error) {
	body, err := c.get(ctx, address.Key(addr), path, "")
	if err != nil {
		return nil, classify("fetch", addr+path, err)
	}
	return body, nil
}

func (c *HTTPClient) get(ctx context.Context, key, path, accept string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("empty source key")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.base.String() + "/" + url.PathEscape(key) + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusGatewayTimeout || resp.StatusCode == http.StatusRequestTimeout:
		return nil, ErrTimeout
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
}
