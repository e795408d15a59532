package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v62/github"

	"github.com/steveyegge/issuesync/internal/paginate"
	"github.com/steveyegge/issuesync/internal/types"
)

// NewClient creates a new GitHub client.
func NewClient(token, owner string) *Client {
	return &Client{
		Token:   token,
		Owner:   owner,
		BaseURL: DefaultAPIEndpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithHTTPClient returns a new client with a custom HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		Token:      c.Token,
		Owner:      c.Owner,
		BaseURL:    c.BaseURL,
		HTTPClient: httpClient,
	}
}

// WithBaseURL returns a new client with a custom base URL (for testing or GitHub Enterprise).
func (c *Client) WithBaseURL(baseURL string) *Client {
	return &Client{
		Token:      c.Token,
		Owner:      c.Owner,
		BaseURL:    baseURL,
		HTTPClient: c.HTTPClient,
	}
}

// api builds the go-github client for the current settings.
func (c *Client) api() (*gh.Client, error) {
	client := gh.NewClient(c.HTTPClient)
	if c.Token != "" {
		client = client.WithAuthToken(c.Token)
	}

	base := c.BaseURL
	if base == "" {
		base = DefaultAPIEndpoint
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub base URL %q: %w", c.BaseURL, err)
	}
	client.BaseURL = u
	return client, nil
}

// FetchIssues retrieves every issue of repo, open and closed, in the order
// GitHub returns them. Pull requests are dropped.
func (c *Client) FetchIssues(ctx context.Context, repo string) ([]types.Issue, error) {
	api, err := c.api()
	if err != nil {
		return nil, err
	}

	issues, err := paginate.All(ctx, func(ctx context.Context, cursor string) (paginate.Page[types.Issue], error) {
		opts := &gh.IssueListByRepoOptions{
			State:       StateAll,
			ListOptions: gh.ListOptions{PerPage: MaxPageSize},
		}
		if cursor != "" {
			page, err := strconv.Atoi(cursor)
			if err != nil {
				return paginate.Page[types.Issue]{}, fmt.Errorf("invalid page cursor %q: %w", cursor, err)
			}
			opts.Page = page
		}

		raw, resp, err := api.Issues.ListByRepo(ctx, c.Owner, repo, opts)
		if err != nil {
			return paginate.Page[types.Issue]{}, c.handleGitHubError(err, resp, repo)
		}

		page := paginate.Page[types.Issue]{Items: make([]types.Issue, 0, len(raw))}
		for _, issue := range raw {
			if issue.IsPullRequest() {
				continue
			}
			page.Items = append(page.Items, IssueFromGitHub(issue))
		}
		if resp != nil && resp.NextPage != 0 {
			page.NextCursor = strconv.Itoa(resp.NextPage)
		}
		return page, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issues for %s/%s: %w", c.Owner, repo, err)
	}
	return issues, nil
}

// IssueFromGitHub projects a go-github issue into the sync issue shape.
// A state other than open or closed is treated as open.
func IssueFromGitHub(issue *gh.Issue) types.Issue {
	out := types.Issue{
		Number:       issue.GetNumber(),
		Title:        issue.GetTitle(),
		State:        types.IssueState(issue.GetState()),
		CommentCount: issue.GetComments(),
		URL:          issue.GetHTMLURL(),
	}
	if !out.State.IsValid() {
		out.State = types.StateOpen
	}
	for _, a := range issue.Assignees {
		if a == nil || a.GetLogin() == "" {
			continue
		}
		out.Assignees = append(out.Assignees, types.Identity{Login: a.GetLogin()})
	}
	return out
}

// handleGitHubError maps GitHub API failures onto package errors.
func (c *Client) handleGitHubError(err error, resp *gh.Response, repo string) error {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s/%s", ErrRepoNotFound, c.Owner, repo)
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: check GITHUB_KEY", ErrUnauthorized)
		case http.StatusForbidden:
			return fmt.Errorf("%w: access forbidden", ErrUnauthorized)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
	}
	return err
}
