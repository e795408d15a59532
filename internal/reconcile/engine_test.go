package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/steveyegge/issuesync/internal/reconcile/mocks"
	"github.com/steveyegge/issuesync/internal/types"
)

// memoryDestination is an in-memory task database keyed by page id.
type memoryDestination struct {
	mu       sync.Mutex
	nextID   int
	order    []string
	pages    map[string]types.RecordFields
	users    []types.User
	projects []types.Project
	creates  int
	updates  []types.RecordFields
}

func newMemoryDestination() *memoryDestination {
	return &memoryDestination{
		pages:    map[string]types.RecordFields{},
		users:    []types.User{{ID: "u1", Name: "Alice W"}},
		projects: []types.Project{{ID: "proj-w", Name: "Widgets"}, {ID: "proj-g", Name: "Gadgets"}},
	}
}

func (d *memoryDestination) FetchRecords(context.Context) ([]types.Record, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []types.Record
	for _, id := range d.order {
		f := d.pages[id]
		repo, number, ok := types.ParseTitle(f.Title)
		if !ok {
			continue
		}
		out = append(out, types.Record{PageID: id, IssueNumber: number, Repo: repo, ProjectID: f.ProjectID, Fields: f})
	}
	return out, nil
}

func (d *memoryDestination) FetchUsers(context.Context) ([]types.User, error) {
	return d.users, nil
}

func (d *memoryDestination) FetchProjects(context.Context) ([]types.Project, error) {
	return d.projects, nil
}

func (d *memoryDestination) CreateRecord(_ context.Context, fields types.RecordFields) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := fmt.Sprintf("page-%d", d.nextID)
	d.order = append(d.order, id)
	d.pages[id] = fields
	d.creates++
	return nil
}

func (d *memoryDestination) UpdateRecord(_ context.Context, pageID string, fields types.RecordFields) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.pages[pageID]; !ok {
		return fmt.Errorf("no page %s", pageID)
	}
	d.pages[pageID] = fields
	d.updates = append(d.updates, fields)
	return nil
}

func (d *memoryDestination) pageByTitle(title string) types.RecordFields {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range d.pages {
		if f.Title == title {
			return f
		}
	}
	return types.RecordFields{}
}

// staticSource serves fixed issue lists per repo.
type staticSource map[string][]types.Issue

func (s staticSource) FetchIssues(_ context.Context, repo string) ([]types.Issue, error) {
	return s[repo], nil
}

func sampleSource() staticSource {
	return staticSource{
		"acme/widgets": {
			{Number: 1, Title: "Crash on start", State: types.StateOpen, Assignees: []types.Identity{{Login: "alice"}}},
			{Number: 2, Title: "Docs", State: types.StateClosed},
			{Number: 3, Title: "Refs #12: in title", State: types.StateOpen},
		},
		"acme/gadgets": {
			{Number: 1, Title: "Other repo, same number", State: types.StateOpen, Assignees: []types.Identity{{Login: "nobody"}}},
		},
	}
}

func sampleConfig() EngineConfig {
	return EngineConfig{
		Repos: []RepoTarget{
			{Repo: "acme/widgets", Project: "Widgets"},
			{Repo: "acme/gadgets", Project: "Gadgets"},
		},
		Mapper:    NewMapper([]IdentityPair{{Login: "alice", Name: "Alice W"}}, MapperOptions{}),
		BatchSize: 2,
	}
}

func TestEngine_Run_CreatesThenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dest := newMemoryDestination()

	engine, err := NewEngine(sampleSource(), dest, sampleConfig())
	require.NoError(t, err)
	result, err := engine.Run(ctx)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, SyncStats{Fetched: 4, Created: 4}, result.Stats)
	require.Len(t, result.Repos, 2)
	assert.Equal(t, "acme/widgets", result.Repos[0].Repo)
	assert.Equal(t, 4, dest.creates)

	stored := map[string]types.RecordFields{}
	for id, f := range dest.pages {
		stored[id] = f
	}
	assert.Equal(t, types.RecordFields{
		Title:     "acme/widgets#1: Crash on start",
		Status:    types.StatusInProgress,
		People:    []string{"u1"},
		ProjectID: "proj-w",
	}, dest.pageByTitle("acme/widgets#1: Crash on start"))
	assert.Equal(t, []string{}, dest.pageByTitle("acme/gadgets#1: Other repo, same number").People)

	// A second run against the new state creates nothing and rewrites
	// identical payloads.
	engine, err = NewEngine(sampleSource(), dest, sampleConfig())
	require.NoError(t, err)
	result, err = engine.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, SyncStats{Fetched: 4, Updated: 4}, result.Stats)
	assert.Equal(t, 4, dest.creates)
	require.Len(t, dest.updates, 4)
	for id, f := range dest.pages {
		assert.True(t, stored[id].Equal(f), "page %s changed", id)
	}
}

func TestEngine_Run_SkipUnchanged(t *testing.T) {
	ctx := context.Background()
	dest := newMemoryDestination()

	engine, err := NewEngine(sampleSource(), dest, sampleConfig())
	require.NoError(t, err)
	_, err = engine.Run(ctx)
	require.NoError(t, err)

	src := sampleSource()
	src["acme/widgets"][1].State = types.StateOpen

	cfg := sampleConfig()
	cfg.SkipUnchanged = true
	engine, err = NewEngine(src, dest, cfg)
	require.NoError(t, err)
	result, err := engine.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, SyncStats{Fetched: 4, Updated: 1, Skipped: 3}, result.Stats)
	require.Len(t, dest.updates, 1)
	assert.Equal(t, types.StatusNotStarted, dest.updates[0].Status)
}

func TestEngine_Run_DryRun(t *testing.T) {
	dest := newMemoryDestination()
	cfg := sampleConfig()
	cfg.DryRun = true

	engine, err := NewEngine(sampleSource(), dest, cfg)
	require.NoError(t, err)
	result, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Zero(t, dest.creates)
	require.Len(t, result.Plans, 2)
	assert.Len(t, result.Plans[0].Creates, 3)
	assert.Equal(t, "proj-w", result.Plans[0].ProjectID)
	assert.Equal(t, "acme/widgets#3: Refs #12: in title", result.Plans[0].Creates[2].Fields.Title)
}

func TestEngine_Run_MissingProjectFailsBeforeWrites(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockIssueSource(ctrl)
	dest := mocks.NewMockDestination(ctrl)

	dest.EXPECT().FetchRecords(gomock.Any()).Return(nil, nil)
	dest.EXPECT().FetchUsers(gomock.Any()).Return(nil, nil)
	dest.EXPECT().FetchProjects(gomock.Any()).Return([]types.Project{{ID: "proj-w", Name: "Widgets"}}, nil)

	engine, err := NewEngine(source, dest, sampleConfig())
	require.NoError(t, err)
	result, err := engine.Run(context.Background())

	require.ErrorIs(t, err, ErrProjectNotFound)
	assert.Contains(t, err.Error(), `"acme/gadgets"`)
	assert.Contains(t, err.Error(), `"Gadgets"`)
	assert.False(t, result.Success)
}

func TestEngine_Run_SourceErrorAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockIssueSource(ctrl)
	dest := mocks.NewMockDestination(ctrl)
	boom := errors.New("upstream down")

	dest.EXPECT().FetchRecords(gomock.Any()).Return(nil, nil)
	dest.EXPECT().FetchUsers(gomock.Any()).Return(nil, nil)
	dest.EXPECT().FetchProjects(gomock.Any()).Return([]types.Project{
		{ID: "proj-w", Name: "Widgets"}, {ID: "proj-g", Name: "Gadgets"},
	}, nil)
	gomock.InOrder(
		source.EXPECT().FetchIssues(gomock.Any(), "acme/widgets").Return([]types.Issue{{Number: 1, Title: "a"}}, nil),
		dest.EXPECT().CreateRecord(gomock.Any(), gomock.Any()).Return(nil),
		source.EXPECT().FetchIssues(gomock.Any(), "acme/gadgets").Return(nil, boom),
	)

	engine, err := NewEngine(source, dest, sampleConfig())
	require.NoError(t, err)
	result, err := engine.Run(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "sync acme/gadgets")
	assert.Equal(t, 1, result.Stats.Created)
	assert.False(t, result.Success)
}

func TestEngine_Run_WriteErrorAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockIssueSource(ctrl)
	dest := mocks.NewMockDestination(ctrl)
	rejected := errors.New("rejected")

	dest.EXPECT().FetchRecords(gomock.Any()).Return([]types.Record{{PageID: "p9", IssueNumber: 9, Repo: "acme/widgets"}}, nil)
	dest.EXPECT().FetchUsers(gomock.Any()).Return(nil, nil)
	dest.EXPECT().FetchProjects(gomock.Any()).Return([]types.Project{{ID: "proj-w", Name: "Widgets"}}, nil)
	source.EXPECT().FetchIssues(gomock.Any(), "acme/widgets").Return([]types.Issue{{Number: 1}, {Number: 9}}, nil)
	dest.EXPECT().CreateRecord(gomock.Any(), gomock.Any()).Return(rejected)

	cfg := sampleConfig()
	cfg.Repos = cfg.Repos[:1]
	engine, err := NewEngine(source, dest, cfg)
	require.NoError(t, err)
	_, err = engine.Run(context.Background())

	require.ErrorIs(t, err, rejected)
	assert.Contains(t, err.Error(), "create records")
}

// rejectingDestination fails the create whose title starts with reject.
type rejectingDestination struct {
	*memoryDestination
	reject string
}

func (d *rejectingDestination) CreateRecord(ctx context.Context, fields types.RecordFields) error {
	if strings.HasPrefix(fields.Title, d.reject) {
		return errors.New("write rejected")
	}
	return d.memoryDestination.CreateRecord(ctx, fields)
}

func TestEngine_Run_PartialWritesAreCounted(t *testing.T) {
	issues := make([]types.Issue, 25)
	for i := range issues {
		issues[i] = types.Issue{Number: i + 1, Title: fmt.Sprintf("issue %d", i+1), State: types.StateOpen}
	}
	source := staticSource{"acme/widgets": issues}
	dest := &rejectingDestination{memoryDestination: newMemoryDestination(), reject: "acme/widgets#15:"}

	cfg := sampleConfig()
	cfg.Repos = cfg.Repos[:1]
	cfg.BatchSize = 10
	engine, err := NewEngine(source, dest, cfg)
	require.NoError(t, err)
	result, err := engine.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch 2")
	assert.Equal(t, 19, dest.creates)
	assert.Equal(t, 19, result.Stats.Created)
	require.Len(t, result.Repos, 1)
	assert.Equal(t, 19, result.Repos[0].Stats.Created)
	assert.False(t, result.Success)
}

func TestValidateProjects_ReportsAll(t *testing.T) {
	snap := NewSnapshot(nil, nil, []types.Project{{ID: "x", Name: "X"}})

	_, err := ValidateProjects(snap, []RepoTarget{
		{Repo: "a", Project: "A"},
		{Repo: "x", Project: "X"},
		{Repo: "b", Project: "B"},
	})
	require.ErrorIs(t, err, ErrProjectNotFound)
	assert.Contains(t, err.Error(), `"A"`)
	assert.Contains(t, err.Error(), `"B"`)

	got, err := ValidateProjects(snap, []RepoTarget{{Repo: "x", Project: "X"}})
	require.NoError(t, err)
	assert.Equal(t, "x", got["x"].ID)
}
