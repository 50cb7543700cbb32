// Package remote probes published package metadata over HTTP. The presence
// of a matching .mip.json at the public base URL is the signal that a
// rebuild can be skipped.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/neurosift/mipforge/internal/manifest"
)

// Client fetches published manifests from the package base URL.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// PublishedManifest fetches {BaseURL}/{mhlFilename}.mip.json. A 404 returns
// (nil, nil): the package simply is not published yet.
func (c *Client) PublishedManifest(ctx context.Context, mhlFilename string) (*manifest.Manifest, error) {
	if c == nil || c.BaseURL == "" {
		return nil, nil
	}
	url := fmt.Sprintf("%s/%s.mip.json", c.BaseURL, mhlFilename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var m manifest.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return &m, nil
}
