package config

import "errors"

// Validation errors
var (
	ErrMissingNotionToken      = errors.New("notion token is required (NOTION_KEY)")
	ErrMissingTasksDatabase    = errors.New("notion tasks database id is required (NOTION_DATABASE_TASKS_ID)")
	ErrMissingProjectsDatabase = errors.New("notion projects database id is required (NOTION_DATABASE_PROJECTS_ID)")
	ErrMissingGitHubToken      = errors.New("github token is required (GITHUB_KEY)")
	ErrMissingOwner            = errors.New("github repository owner is required (GITHUB_REPO_OWNER)")
	ErrNoRepos                 = errors.New("no repositories configured (GITHUB_REPO_NAMES or repos)")
	ErrMismatchedLists         = errors.New("paired lists have different lengths")
	ErrInvalidBatchSize        = errors.New("batch size must be a positive integer")
	ErrInvalidStatusType       = errors.New("status property type must be \"status\" or \"select\"")
	ErrIncompleteMapping       = errors.New("mapping entry has an empty side")
)
