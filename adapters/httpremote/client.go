// Package httpremote implements interfaces.RemoteRegionRegistry by calling
// a peer region's read-only debug HTTP surface (see cmd/registryd), the
// same shape cmd/registryd/debug.go exposes locally.
package httpremote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/feckmell/instanceregistry/domain"
)

const requestTimeout = 5 * time.Second

// Client is a RemoteRegionRegistry backed by one peer region's debug HTTP
// endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client calling baseURL (no trailing slash, e.g.
// http://eu-west-registry:8080). client is used as-is; pass
// &http.Client{Timeout: ...} or http.DefaultClient.
func New(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: client}
}

func (c *Client) get(path string, out any) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("remote region %s returned %d", c.baseURL, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var errNotFound = fmt.Errorf("remote region: entity not found")

// GetApplication fetches a single application by name. It returns nil on a
// 404 or any transport error, matching the "first-hit wins, nil on miss"
// contract GetApplication's fallback loop expects.
func (c *Client) GetApplication(appName string) *domain.Application {
	var app domain.Application
	if err := c.get("/debug/apps/"+appName, &app); err != nil {
		return nil
	}
	return &app
}

// GetApplications fetches the peer's full snapshot. Returns nil on error.
func (c *Client) GetApplications() *domain.Applications {
	var apps domain.Applications
	if err := c.get("/debug/apps", &apps); err != nil {
		return nil
	}
	return &apps
}

// GetApplicationDeltas fetches the peer's current delta. Returns nil on
// error.
func (c *Client) GetApplicationDeltas() *domain.Applications {
	var apps domain.Applications
	if err := c.get("/debug/delta", &apps); err != nil {
		return nil
	}
	return &apps
}
