package notion

import (
	"errors"
	"fmt"
)

// Notion-specific errors
var (
	ErrUnauthorized = errors.New("unauthorized access to Notion API")
	ErrNotFound     = errors.New("object not found or not shared with the Notion integration")
	ErrRateLimited  = errors.New("rate limited by Notion API")
)

// APIError is a non-2xx response from the Notion API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("Notion API error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("Notion API error %s (status %d): %s", e.Code, e.Status, e.Message)
}
