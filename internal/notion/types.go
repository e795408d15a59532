// Package notion provides a client for the Notion REST API and the
// workspace view issuesync reads task records, users and projects through.
package notion

import (
	"net/http"
	"time"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the Notion REST API base URL.
	DefaultAPIEndpoint = "https://api.notion.com/v1"

	// DefaultVersion is the Notion-Version header sent with every request.
	DefaultVersion = "2022-06-28"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxPageSize is the largest page_size Notion accepts.
	MaxPageSize = 100

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 50 * 1024 * 1024
)

// Client provides methods to interact with the Notion REST API.
type Client struct {
	Token      string       // Internal integration token
	BaseURL    string       // API base URL (default: https://api.notion.com/v1)
	Version    string       // Notion-Version header value
	HTTPClient *http.Client // Optional custom HTTP client
}

// Page is a Notion page as returned by database queries and page writes.
type Page struct {
	Object     string                   `json:"object"`
	ID         string                   `json:"id"`
	URL        string                   `json:"url,omitempty"`
	Archived   bool                     `json:"archived,omitempty"`
	Properties map[string]PropertyValue `json:"properties"`
}

// PropertyValue holds one page property. Only the member matching Type is set.
type PropertyValue struct {
	ID       string      `json:"id,omitempty"`
	Type     string      `json:"type"`
	Title    []RichText  `json:"title,omitempty"`
	Status   *Option     `json:"status,omitempty"`
	Select   *Option     `json:"select,omitempty"`
	People   []UserRef   `json:"people,omitempty"`
	Relation []Reference `json:"relation,omitempty"`
	URL      *string     `json:"url,omitempty"`
	Number   *float64    `json:"number,omitempty"`
}

// RichText is one segment of a title or rich text property.
type RichText struct {
	Type      string       `json:"type"`
	PlainText string       `json:"plain_text"`
	Text      *TextContent `json:"text,omitempty"`
}

// TextContent is the payload of a text rich text segment.
type TextContent struct {
	Content string `json:"content"`
}

// Option is a select or status option.
type Option struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// UserRef is a user mentioned in a people property.
type UserRef struct {
	Object string `json:"object,omitempty"`
	ID     string `json:"id"`
}

// Reference is one linked page of a relation property.
type Reference struct {
	ID string `json:"id"`
}

// User is a workspace member or bot as returned by the users endpoint.
type User struct {
	Object string `json:"object"`
	ID     string `json:"id"`
	Type   string `json:"type"` // "person" or "bot"
	Name   string `json:"name"`
}

// QueryResult is one page of a database query.
type QueryResult struct {
	Results    []Page  `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// UserList is one page of the users listing.
type UserList struct {
	Results    []User  `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// nextCursor returns the cursor for the following page, or "" when done.
func nextCursor(next *string) string {
	if next == nil {
		return ""
	}
	return *next
}
