package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/GavinMontross/CPH-CRC-Scanner/internal/api"
)

// apiClient speaks the daemon's JSON API over HTTP.
type apiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) Status() (api.StatusResponse, error) {
	var out api.StatusResponse
	err := c.do(http.MethodGet, "/api/status", nil, &out)
	return out, err
}

func (c *apiClient) Lookup(serial string) (api.LookupResponse, error) {
	var out api.LookupResponse
	err := c.do(http.MethodPost, "/api/lookup", api.LookupRequest{Serial: serial}, &out)
	return out, err
}

func (c *apiClient) Add(payload api.RecordPayload) (api.AddResponse, error) {
	var out api.AddResponse
	err := c.do(http.MethodPost, "/api/add", api.AddRequest{RecordPayload: payload}, &out)
	return out, err
}

func (c *apiClient) Recent(limit int) (api.RecentResponse, error) {
	path := "/api/recent"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out api.RecentResponse
	err := c.do(http.MethodGet, path, nil, &out)
	return out, err
}

func (c *apiClient) Finalize() (api.FinalizeResponse, error) {
	var out api.FinalizeResponse
	err := c.do(http.MethodPost, "/api/finalize", nil, &out)
	return out, err
}

func (c *apiClient) Reset() (api.ResetResponse, error) {
	var out api.ResetResponse
	err := c.do(http.MethodPost, "/api/reset", nil, &out)
	return out, err
}

func (c *apiClient) Exports(limit int) (api.ExportsResponse, error) {
	path := "/api/exports"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out api.ExportsResponse
	err := c.do(http.MethodGet, path, nil, &out)
	return out, err
}

func (c *apiClient) Files() (api.FilesResponse, error) {
	var out api.FilesResponse
	err := c.do(http.MethodGet, "/api/files", nil, &out)
	return out, err
}

// Download streams an archived export to w and returns the byte count.
func (c *apiClient) Download(filename string, w io.Writer) (int64, error) {
	resp, err := c.request(http.MethodGet, "/download/"+url.PathEscape(filename), nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, decodeError(resp)
	}
	return io.Copy(w, resp.Body)
}

func (c *apiClient) do(method, path string, payload, out any) error {
	resp, err := c.request(method, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode daemon response: %w", err)
	}
	return nil
}

func (c *apiClient) request(method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapDialError(err)
	}
	return resp, nil
}

func wrapDialError(err error) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("connect to daemon: connection refused; verify crcscand is running")
	}
	return fmt.Errorf("connect to daemon: %w", err)
}

func decodeError(resp *http.Response) error {
	var payload api.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("daemon returned %d", resp.StatusCode)
}
