// Package types defines the core data structures shared by the issuesync
// readers, the reconcile engine and the Notion writer.
package types

import (
	"fmt"
	"slices"
)

// IssueState is the GitHub-side state of an issue.
type IssueState string

// Issue states
const (
	StateOpen   IssueState = "open"
	StateClosed IssueState = "closed"
)

// IsValid checks if the state value is one GitHub reports.
func (s IssueState) IsValid() bool {
	return s == StateOpen || s == StateClosed
}

// Identity is a source-side user reference (a GitHub login).
type Identity struct {
	Login string `json:"login" yaml:"login"`
}

// Issue is a GitHub issue normalized for sync. Pull requests never become Issues.
type Issue struct {
	Number       int        `json:"number" yaml:"number"`
	Title        string     `json:"title" yaml:"title"`
	State        IssueState `json:"state" yaml:"state"`
	CommentCount int        `json:"comment_count" yaml:"comment_count"`
	URL          string     `json:"url" yaml:"url"`
	Assignees    []Identity `json:"assignees,omitempty" yaml:"assignees,omitempty"`
}

// IsAssigned reports whether the issue has at least one assignee.
func (i *Issue) IsAssigned() bool {
	return len(i.Assignees) > 0
}

// User is a Notion workspace member.
type User struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Project is a page of the Notion projects database that issues of a repo attach to.
type Project struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Status is the value written to the Notion status property.
type Status string

// Notion status values
const (
	StatusNotStarted Status = "Not started"
	StatusInProgress Status = "In progress"
	StatusDone       Status = "Done"
)

// RecordFields is the set of property values of one task page.
// It is both what the mapper produces and what the reader observes on
// existing pages, so the two can be compared.
type RecordFields struct {
	Title        string   `json:"title" yaml:"title"`
	Status       Status   `json:"status" yaml:"status"`
	People       []string `json:"people" yaml:"people"` // Notion user IDs
	ProjectID    string   `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	URL          string   `json:"url,omitempty" yaml:"url,omitempty"`
	CommentCount int      `json:"comment_count,omitempty" yaml:"comment_count,omitempty"`
}

// Equal reports whether two field sets would render to the same page.
// People order is not significant.
func (f RecordFields) Equal(other RecordFields) bool {
	if f.Title != other.Title || f.Status != other.Status || f.ProjectID != other.ProjectID ||
		f.URL != other.URL || f.CommentCount != other.CommentCount {
		return false
	}
	if len(f.People) != len(other.People) {
		return false
	}
	a := slices.Clone(f.People)
	b := slices.Clone(other.People)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

// Record is an existing Notion task page that tracks a GitHub issue.
type Record struct {
	PageID      string       `json:"page_id" yaml:"page_id"`
	IssueNumber int          `json:"issue_number" yaml:"issue_number"`
	Repo        string       `json:"repo" yaml:"repo"`
	ProjectID   string       `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	Fields      RecordFields `json:"fields" yaml:"fields"`
}

// Key returns the (repo, number) identity of the record.
func (r *Record) Key() RecordKey {
	return RecordKey{Repo: r.Repo, Number: r.IssueNumber}
}

// RecordKey identifies one GitHub issue across repos.
type RecordKey struct {
	Repo   string
	Number int
}

func (k RecordKey) String() string {
	return fmt.Sprintf("%s#%d", k.Repo, k.Number)
}

// OpKind distinguishes page creations from page updates.
type OpKind string

// Operation kinds
const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
)

// Operation is one pending write against the Notion tasks database.
// PageID is set only for updates.
type Operation struct {
	Kind   OpKind `json:"kind" yaml:"kind"`
	Repo   string `json:"repo" yaml:"repo"`
	PageID string `json:"page_id,omitempty" yaml:"page_id,omitempty"`
	Issue  Issue  `json:"issue" yaml:"issue"`
}

// NewCreate builds a create operation for an issue of repo.
func NewCreate(issue Issue, repo string) Operation {
	return Operation{Kind: OpCreate, Repo: repo, Issue: issue}
}

// NewUpdate builds an update operation targeting an existing page.
func NewUpdate(issue Issue, repo, pageID string) Operation {
	return Operation{Kind: OpUpdate, Repo: repo, PageID: pageID, Issue: issue}
}

// Key returns the (repo, number) identity the operation writes.
func (o *Operation) Key() RecordKey {
	return RecordKey{Repo: o.Repo, Number: o.Issue.Number}
}
