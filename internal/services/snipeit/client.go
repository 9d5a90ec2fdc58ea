package snipeit

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotConfigured reports that the registry URL or token is missing.
var ErrNotConfigured = errors.New("snipe-it url and token not configured")

// ErrNotFound reports that the registry has no matching hardware entity.
var ErrNotFound = errors.New("snipe-it hardware not found")

// Named is a referenced Snipe-IT entity reduced to its display name.
type Named struct {
	Name string `json:"name"`
}

// Hardware is the subset of a Snipe-IT hardware entity the scanner consumes.
type Hardware struct {
	ID           int64  `json:"id"`
	AssetTag     string `json:"asset_tag"`
	Serial       string `json:"serial"`
	Category     Named  `json:"category"`
	Manufacturer Named  `json:"manufacturer"`
	Model        Named  `json:"model"`
}

// API defines the registry operations used by the lookup resolver.
type API interface {
	FindByTag(ctx context.Context, tag string) (*Hardware, error)
	FindBySerial(ctx context.Context, serial string) (*Hardware, error)
	Search(ctx context.Context, term string) (*Hardware, error)
}

// Client provides bearer-authenticated access to the Snipe-IT hardware API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a Snipe-IT client. The base URL may point at the API root or at
// its /hardware collection; a trailing /hardware segment is stripped.
func New(baseURL, token string, verifySSL bool, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	token = strings.TrimSpace(token)
	if baseURL == "" || token == "" {
		return nil, ErrNotConfigured
	}
	baseURL = strings.TrimSuffix(baseURL, "/hardware")

	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	if !verifySSL {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	client := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FindByTag looks up a hardware entity by its exact asset tag.
func (c *Client) FindByTag(ctx context.Context, tag string) (*Hardware, error) {
	return c.first(ctx, "/hardware/bytag/"+url.PathEscape(tag), nil)
}

// FindBySerial looks up a hardware entity by its exact serial number.
func (c *Client) FindBySerial(ctx context.Context, serial string) (*Hardware, error) {
	return c.first(ctx, "/hardware/byserial/"+url.PathEscape(serial), nil)
}

// Search performs a free-text hardware search limited to a single result.
func (c *Client) Search(ctx context.Context, term string) (*Hardware, error) {
	params := url.Values{}
	params.Set("search", term)
	params.Set("limit", "1")
	return c.first(ctx, "/hardware", params)
}

func (c *Client) first(ctx context.Context, path string, params url.Values) (*Hardware, error) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse snipe-it url: %w", err)
	}
	if params != nil {
		endpoint.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snipe-it returned %d (latency=%v)", resp.StatusCode, latency)
	}

	// Single-entity endpoints answer with the hardware object itself; list
	// endpoints wrap matches in a rows array.
	var payload struct {
		Hardware
		Rows []Hardware `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode snipe-it response: %w", err)
	}

	if payload.ID != 0 {
		hw := payload.Hardware
		return &hw, nil
	}
	if len(payload.Rows) > 0 {
		hw := payload.Rows[0]
		return &hw, nil
	}
	return nil, ErrNotFound
}
