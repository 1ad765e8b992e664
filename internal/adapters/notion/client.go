// Package notion implements the record store ports on the Notion REST API.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultVersion is the API version the adapter speaks. Data source queries
// and template instantiation need at least this version.
const DefaultVersion = "2025-09-03"

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	Version string
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client is a minimal Notion API client.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	version string
}

// NewClient creates a client. Empty options fall back to the public API.
func NewClient(opts Options) *Client {
	c := &Client{
		http:    opts.HTTPClient,
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		token:   opts.Token,
		version: opts.Version,
	}
	if c.baseURL == "" {
		c.baseURL = "https://api.notion.com"
	}
	if c.version == "" {
		c.version = DefaultVersion
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.http = &http.Client{Timeout: timeout}
	}
	return c
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion: HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("notion: HTTP %d %s: %s", e.Status, e.Code, e.Message)
}

// do sends a JSON request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("notion %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// queryAll runs a data source query and follows the pagination cursor.
func (c *Client) queryAll(ctx context.Context, dataSourceID string, filter any) ([]Page, error) {
	var pages []Page
	cursor := ""
	for {
		body := queryRequest{Filter: filter, PageSize: 100, StartCursor: cursor}
		var resp pageList
		if err := c.do(ctx, http.MethodPost, "/v1/data_sources/"+dataSourceID+"/query", body, &resp); err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		cursor = resp.NextCursor
	}
}

// getPage retrieves a single page.
func (c *Client) getPage(ctx context.Context, id string) (*Page, error) {
	var p Page
	if err := c.do(ctx, http.MethodGet, "/v1/pages/"+id, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// relationIDs returns every related id of a relation property. Page objects
// carry at most 25 relation entries; longer relations are paged through the
// property item endpoint.
func (c *Client) relationIDs(ctx context.Context, pageID string, prop Property) ([]string, error) {
	ids := make([]string, 0, len(prop.Relation))
	if !prop.HasMore || prop.ID == "" {
		for _, r := range prop.Relation {
			ids = append(ids, r.ID)
		}
		return ids, nil
	}

	cursor := ""
	for {
		path := "/v1/pages/" + pageID + "/properties/" + prop.ID + "?page_size=100"
		if cursor != "" {
			path += "&start_cursor=" + cursor
		}
		var resp propertyItemList
		if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		for _, item := range resp.Results {
			if item.Relation != nil {
				ids = append(ids, item.Relation.ID)
			}
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return ids, nil
		}
		cursor = resp.NextCursor
	}
}
