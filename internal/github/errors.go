package github

import "errors"

// GitHub-specific errors
var (
	ErrRepoNotFound = errors.New("repository not found")
	ErrUnauthorized = errors.New("unauthorized access to GitHub API")
	ErrRateLimited  = errors.New("rate limited by GitHub API")
)
