package reconcile

import (
	"context"
	"fmt"
	"slices"

	"github.com/steveyegge/issuesync/internal/types"
)

// Snapshot is the destination state read once at the start of a run.
// It is never mutated after construction and is safe to share between
// goroutines. Writes made during the run are not reflected in it.
type Snapshot struct {
	records  []types.Record
	byKey    map[types.RecordKey]types.Record
	users    []types.User
	projects []types.Project
}

// NewSnapshot indexes records by (repo, issue number). When several records
// share a key the first one wins; later duplicates stay in Records() but are
// never matched.
func NewSnapshot(records []types.Record, users []types.User, projects []types.Project) *Snapshot {
	s := &Snapshot{
		records:  slices.Clone(records),
		byKey:    make(map[types.RecordKey]types.Record, len(records)),
		users:    slices.Clone(users),
		projects: slices.Clone(projects),
	}
	for _, r := range s.records {
		if _, dup := s.byKey[r.Key()]; !dup {
			s.byKey[r.Key()] = r
		}
	}
	return s
}

// LoadSnapshot reads records, users and projects from dest.
func LoadSnapshot(ctx context.Context, dest Destination) (*Snapshot, error) {
	records, err := dest.FetchRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	users, err := dest.FetchUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	projects, err := dest.FetchProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	return NewSnapshot(records, users, projects), nil
}

// Lookup returns the record tracking issue number of repo.
func (s *Snapshot) Lookup(repo string, number int) (types.Record, bool) {
	r, ok := s.byKey[types.RecordKey{Repo: repo, Number: number}]
	return r, ok
}

// Records returns a copy of every tracked record in index order.
func (s *Snapshot) Records() []types.Record {
	return slices.Clone(s.records)
}

// UserByName returns the first user whose name is exactly name.
func (s *Snapshot) UserByName(name string) (types.User, bool) {
	for _, u := range s.users {
		if u.Name == name {
			return u, true
		}
	}
	return types.User{}, false
}

// ProjectByName returns the first project whose name is exactly name.
func (s *Snapshot) ProjectByName(name string) (types.Project, bool) {
	for _, p := range s.projects {
		if p.Name == name {
			return p, true
		}
	}
	return types.Project{}, false
}

// Users returns a copy of the user list.
func (s *Snapshot) Users() []types.User {
	return slices.Clone(s.users)
}

// Projects returns a copy of the project list.
func (s *Snapshot) Projects() []types.Project {
	return slices.Clone(s.projects)
}
