package notion

import (
	"context"
	"fmt"

	"github.com/steveyegge/issuesync/internal/paginate"
	"github.com/steveyegge/issuesync/internal/types"
)

// Workspace reads and writes the task and project databases of one
// Notion workspace.
type Workspace struct {
	client             *Client
	tasksDatabaseID    string
	projectsDatabaseID string
	props              Properties
}

// WorkspaceConfig identifies the databases and property names to use.
type WorkspaceConfig struct {
	TasksDatabaseID    string
	ProjectsDatabaseID string
	Properties         Properties
}

// NewWorkspace creates a Workspace backed by client.
func NewWorkspace(client *Client, cfg WorkspaceConfig) *Workspace {
	return &Workspace{
		client:             client,
		tasksDatabaseID:    cfg.TasksDatabaseID,
		projectsDatabaseID: cfg.ProjectsDatabaseID,
		props:              cfg.Properties,
	}
}

// queryAll drains a database query.
func (w *Workspace) queryAll(ctx context.Context, databaseID string) ([]Page, error) {
	return paginate.All(ctx, func(ctx context.Context, cursor string) (paginate.Page[Page], error) {
		res, err := w.client.QueryDatabase(ctx, databaseID, cursor)
		if err != nil {
			return paginate.Page[Page]{}, err
		}
		return paginate.Page[Page]{Items: res.Results, NextCursor: nextCursor(res.NextCursor)}, nil
	})
}

// FetchRecords returns every task page whose title identifies a GitHub issue,
// in database order. Pages with any other title are not tracked and are skipped.
func (w *Workspace) FetchRecords(ctx context.Context) ([]types.Record, error) {
	pages, err := w.queryAll(ctx, w.tasksDatabaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task records: %w", err)
	}

	records := make([]types.Record, 0, len(pages))
	for i := range pages {
		if rec, ok := w.recordFromPage(&pages[i]); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// recordFromPage parses a task page into a Record.
func (w *Workspace) recordFromPage(page *Page) (types.Record, bool) {
	fields := w.props.DecodeFields(page)
	repo, number, ok := types.ParseTitle(fields.Title)
	if !ok {
		return types.Record{}, false
	}
	return types.Record{
		PageID:      page.ID,
		IssueNumber: number,
		Repo:        repo,
		ProjectID:   fields.ProjectID,
		Fields:      fields,
	}, true
}

// FetchUsers returns every user of the workspace.
func (w *Workspace) FetchUsers(ctx context.Context) ([]types.User, error) {
	users, err := paginate.All(ctx, func(ctx context.Context, cursor string) (paginate.Page[types.User], error) {
		res, err := w.client.ListUsers(ctx, cursor)
		if err != nil {
			return paginate.Page[types.User]{}, err
		}
		page := paginate.Page[types.User]{NextCursor: nextCursor(res.NextCursor)}
		for _, u := range res.Results {
			page.Items = append(page.Items, types.User{ID: u.ID, Name: u.Name})
		}
		return page, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

// FetchProjects returns the pages of the projects database that have a name.
func (w *Workspace) FetchProjects(ctx context.Context) ([]types.Project, error) {
	pages, err := w.queryAll(ctx, w.projectsDatabaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}

	var projects []types.Project
	for _, page := range pages {
		name := PlainText(page.Properties[w.props.ProjectName].Title)
		if name == "" {
			continue
		}
		projects = append(projects, types.Project{ID: page.ID, Name: name})
	}
	return projects, nil
}

// CreateRecord creates a task page holding fields.
func (w *Workspace) CreateRecord(ctx context.Context, fields types.RecordFields) error {
	_, err := w.client.CreatePage(ctx, w.tasksDatabaseID, w.props.EncodeFields(fields))
	return err
}

// UpdateRecord overwrites the synced properties of an existing task page.
func (w *Workspace) UpdateRecord(ctx context.Context, pageID string, fields types.RecordFields) error {
	_, err := w.client.UpdatePage(ctx, pageID, w.props.EncodeFields(fields))
	return err
}
