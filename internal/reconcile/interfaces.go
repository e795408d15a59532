package reconcile

import (
	"context"

	"github.com/steveyegge/issuesync/internal/types"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=interfaces.go -destination=mocks/interfaces.gen.go -package=mocks

// IssueSource lists the issues of a source repository.
type IssueSource interface {
	// FetchIssues returns every issue (never pull requests) of repo in upstream order.
	FetchIssues(ctx context.Context, repo string) ([]types.Issue, error)
}

// PageWriter writes task records to the destination.
type PageWriter interface {
	// CreateRecord creates a task record holding fields.
	CreateRecord(ctx context.Context, fields types.RecordFields) error
	// UpdateRecord overwrites the synced fields of an existing task record.
	UpdateRecord(ctx context.Context, pageID string, fields types.RecordFields) error
}

// Destination is the workspace issues are synced into.
type Destination interface {
	PageWriter

	// FetchRecords returns every task record whose title identifies an issue.
	FetchRecords(ctx context.Context) ([]types.Record, error)
	// FetchUsers returns every workspace user.
	FetchUsers(ctx context.Context) ([]types.User, error)
	// FetchProjects returns every named project record.
	FetchProjects(ctx context.Context) ([]types.Project, error)
}
