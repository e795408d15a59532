package reconcile

import "github.com/steveyegge/issuesync/internal/types"

// IdentityPair maps a GitHub login to the display name of a workspace user.
type IdentityPair struct {
	Login string
	Name  string
}

// MapperOptions selects the optional fields carried into records.
type MapperOptions struct {
	SyncURL      bool
	SyncComments bool
}

// Mapper converts issues into task record fields.
type Mapper struct {
	names map[string]string // GitHub login -> workspace user name
	opts  MapperOptions
}

// NewMapper builds a mapper from identity pairs. The first pair for a login wins.
func NewMapper(pairs []IdentityPair, opts MapperOptions) *Mapper {
	m := &Mapper{names: make(map[string]string, len(pairs)), opts: opts}
	for _, p := range pairs {
		if _, dup := m.names[p.Login]; !dup {
			m.names[p.Login] = p.Name
		}
	}
	return m
}

// Map computes the record fields for issue of repo attached to project parentID.
func (m *Mapper) Map(snap *Snapshot, issue types.Issue, parentID, repo string) types.RecordFields {
	f := types.RecordFields{
		Title:     types.FormatTitle(repo, issue.Number, issue.Title),
		Status:    DeriveStatus(issue),
		People:    m.People(snap, issue),
		ProjectID: parentID,
	}
	if m.opts.SyncURL {
		f.URL = issue.URL
	}
	if m.opts.SyncComments {
		f.CommentCount = issue.CommentCount
	}
	return f
}

// People resolves the issue assignees to workspace user ids. Assignees whose
// login is unmapped, or whose mapped name matches no user, are dropped.
func (m *Mapper) People(snap *Snapshot, issue types.Issue) []string {
	people := []string{}
	for _, a := range issue.Assignees {
		name, ok := m.names[a.Login]
		if !ok {
			continue
		}
		if u, ok := snap.UserByName(name); ok {
			people = append(people, u.ID)
		}
	}
	return people
}

// DeriveStatus maps issue state and assignment onto the task status.
func DeriveStatus(issue types.Issue) types.Status {
	switch {
	case issue.State == types.StateClosed:
		return types.StatusDone
	case issue.IsAssigned():
		return types.StatusInProgress
	default:
		return types.StatusNotStarted
	}
}
