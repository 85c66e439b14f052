// Package index implements the package registry client.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/exordium/internal/core/domain"
	"go.trai.ch/exordium/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// DefaultBaseURL is the public Exordium package index.
	DefaultBaseURL = "https://index.exordium.dev"

	// EnvRegistry overrides the registry base URL.
	EnvRegistry = "EXORDIUM_REGISTRY"

	cacheTTL       = 24 * time.Hour
	requestTimeout = 30 * time.Second

	dirPerm  = 0o750
	filePerm = 0o600
)

var _ ports.Resolver = (*Client)(nil)

// Client implements ports.Resolver against a JSON-over-HTTP registry.
// Responses are cached in a flat JSON file so repeated resolves of the
// same manifest stay off the network.
type Client struct {
	baseURL   string
	http      *http.Client
	cachePath string

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewClient creates a new registry client. The base URL comes from
// EXORDIUM_REGISTRY when set, and the response cache lives under the
// user cache directory.
func NewClient() (*Client, error) {
	baseURL := os.Getenv(EnvRegistry)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to determine cache directory")
	}
	return newClientWithPath(baseURL, filepath.Join(cacheDir, "exordium", "index.json"))
}

func newClientWithPath(baseURL, cachePath string) (*Client, error) {
	if err := os.MkdirAll(filepath.Dir(cachePath), dirPerm); err != nil {
		return nil, zerr.Wrap(err, "failed to create cache directory")
	}

	c := &Client{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: requestTimeout},
		cachePath: cachePath,
		cache:     make(map[string]cacheEntry),
	}
	if err := c.loadCache(); err != nil {
		return nil, err
	}
	return c, nil
}

// Resolve picks the highest release of the named package that satisfies the
// minimum version. Returns domain.ErrResolutionFailed naming the package
// when it is unknown or no release satisfies the constraint.
func (c *Client) Resolve(ctx context.Context, name string, min domain.Version) (domain.ResolvedPackage, error) {
	resp, err := c.lookup(ctx, name)
	if err != nil {
		return domain.ResolvedPackage{}, err
	}

	var (
		best        releaseResponse
		bestVersion domain.Version
		found       bool
	)
	for _, rel := range resp.Releases {
		v, err := domain.ParseVersion(rel.Version)
		if err != nil {
			// Releases with unparsable versions are skipped rather than
			// failing the whole resolve.
			continue
		}
		if !v.AtLeast(min) {
			continue
		}
		if !found || v.Compare(bestVersion) > 0 {
			best = rel
			bestVersion = v
			found = true
		}
	}

	if !found {
		err := zerr.With(domain.ErrResolutionFailed, "package", name)
		if !min.IsZero() {
			err = zerr.With(err, "min_version", min.String())
		}
		return domain.ResolvedPackage{}, zerr.With(err, "releases", len(resp.Releases))
	}

	return domain.ResolvedPackage{
		Name:    domain.NewInternedString(name),
		Version: best.Version,
		URL:     best.URL,
		Digest:  best.Digest,
		Size:    best.Size,
	}, nil
}

// lookup fetches the package record, serving fresh cache entries without
// touching the network.
func (c *Client) lookup(ctx context.Context, name string) (packageResponse, error) {
	if cached, ok := c.checkCache(name); ok {
		return cached, nil
	}

	endpoint, err := url.JoinPath(c.baseURL, "v1", "packages", name)
	if err != nil {
		return packageResponse{}, zerr.Wrap(err, "failed to build registry URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return packageResponse{}, zerr.Wrap(err, "failed to build registry request")
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return packageResponse{}, zerr.With(zerr.Wrap(err, "registry request failed"), "package", name)
	}
	defer httpResp.Body.Close() //nolint:errcheck // Best effort close in defer

	switch httpResp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return packageResponse{}, zerr.With(domain.ErrResolutionFailed, "package", name)
	default:
		err := zerr.With(zerr.New("unexpected registry status"), "package", name)
		return packageResponse{}, zerr.With(err, "status", httpResp.StatusCode)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return packageResponse{}, zerr.With(zerr.Wrap(err, "failed to read registry response"), "package", name)
	}

	var resp packageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return packageResponse{}, zerr.With(zerr.Wrap(err, "failed to parse registry response"), "package", name)
	}

	if err := c.updateCache(name, resp); err != nil {
		return packageResponse{}, err
	}
	return resp, nil
}

func (c *Client) loadCache() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	//nolint:gosec // Path is constructed from the user cache directory
	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read index cache")
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &c.cache); err != nil {
		return zerr.Wrap(err, "failed to unmarshal index cache")
	}
	return nil
}

func (c *Client) checkCache(name string) (packageResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache[name]
	if !ok || time.Since(entry.Timestamp) > cacheTTL {
		return packageResponse{}, false
	}
	return entry.Response, true
}

func (c *Client) updateCache(name string, resp packageResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[name] = cacheEntry{Response: resp, Timestamp: time.Now()}

	data, err := json.MarshalIndent(c.cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal index cache")
	}
	if err := os.WriteFile(c.cachePath, data, filePerm); err != nil {
		return zerr.Wrap(err, "failed to write index cache")
	}
	return nil
}
