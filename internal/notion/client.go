package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// NewClient creates a new Notion client.
func NewClient(token string) *Client {
	return &Client{
		Token:   token,
		BaseURL: DefaultAPIEndpoint,
		Version: DefaultVersion,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithHTTPClient returns a new client with a custom HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		Token:      c.Token,
		BaseURL:    c.BaseURL,
		Version:    c.Version,
		HTTPClient: httpClient,
	}
}

// WithBaseURL returns a new client with a custom base URL (for testing).
func (c *Client) WithBaseURL(baseURL string) *Client {
	return &Client{
		Token:      c.Token,
		BaseURL:    baseURL,
		Version:    c.Version,
		HTTPClient: c.HTTPClient,
	}
}

// buildURL constructs a full API URL.
func (c *Client) buildURL(path string, params map[string]string) string {
	u := c.BaseURL + path

	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		u += "?" + values.Encode()
	}

	return u
}

// doRequest performs one authenticated request and decodes the JSON
// response into out. Failed requests are not retried.
func (c *Client) doRequest(ctx context.Context, method, urlStr string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Notion-Version", c.Version)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	_ = resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleNotionError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// handleNotionError maps an error response onto package errors.
func (c *Client) handleNotionError(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = string(body)
	}
	// Notion echoes the status in the body; trust the transport.
	apiErr.Status = status

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: check NOTION_KEY: %w", ErrUnauthorized, apiErr)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, apiErr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrRateLimited, apiErr)
	}
	return apiErr
}

// QueryDatabase returns one page of the pages in a database, starting at cursor.
func (c *Client) QueryDatabase(ctx context.Context, databaseID, cursor string) (*QueryResult, error) {
	reqBody := map[string]interface{}{
		"page_size": MaxPageSize,
	}
	if cursor != "" {
		reqBody["start_cursor"] = cursor
	}

	var result QueryResult
	urlStr := c.buildURL("/databases/"+url.PathEscape(databaseID)+"/query", nil)
	if err := c.doRequest(ctx, http.MethodPost, urlStr, reqBody, &result); err != nil {
		return nil, fmt.Errorf("failed to query database %s: %w", databaseID, err)
	}
	return &result, nil
}

// ListUsers returns one page of the workspace users, starting at cursor.
func (c *Client) ListUsers(ctx context.Context, cursor string) (*UserList, error) {
	params := map[string]string{
		"page_size": strconv.Itoa(MaxPageSize),
	}
	if cursor != "" {
		params["start_cursor"] = cursor
	}

	var result UserList
	if err := c.doRequest(ctx, http.MethodGet, c.buildURL("/users", params), nil, &result); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &result, nil
}

// CreatePage creates a page in a database with the given property values.
func (c *Client) CreatePage(ctx context.Context, databaseID string, properties map[string]interface{}) (*Page, error) {
	reqBody := map[string]interface{}{
		"parent":     map[string]string{"database_id": databaseID},
		"properties": properties,
	}

	var page Page
	if err := c.doRequest(ctx, http.MethodPost, c.buildURL("/pages", nil), reqBody, &page); err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return &page, nil
}

// UpdatePage sets property values on an existing page.
// Notion uses PATCH for page updates.
func (c *Client) UpdatePage(ctx context.Context, pageID string, properties map[string]interface{}) (*Page, error) {
	reqBody := map[string]interface{}{
		"properties": properties,
	}

	var page Page
	urlStr := c.buildURL("/pages/"+url.PathEscape(pageID), nil)
	if err := c.doRequest(ctx, http.MethodPatch, urlStr, reqBody, &page); err != nil {
		return nil, fmt.Errorf("failed to update page %s: %w", pageID, err)
	}
	return &page, nil
}
