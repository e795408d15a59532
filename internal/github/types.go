// Package github reads issues from the GitHub REST API.
//
// It wraps go-github and normalizes issues into types.Issue, dropping pull
// requests, which GitHub returns from the same endpoint.
package github

import (
	"net/http"
	"time"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the GitHub REST API base URL.
	DefaultAPIEndpoint = "https://api.github.com/"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxPageSize is the number of issues requested per page.
	MaxPageSize = 100

	// StateAll asks GitHub for open and closed issues.
	StateAll = "all"
)

// Client reads issues of repositories owned by a single user or organization.
type Client struct {
	Token      string       // GitHub personal access token
	Owner      string       // Repository owner (user or org)
	BaseURL    string       // API base URL (default: https://api.github.com/)
	HTTPClient *http.Client // Optional custom HTTP client
}
