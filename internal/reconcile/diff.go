package reconcile

import "github.com/steveyegge/issuesync/internal/types"

// Diff is the classification of one repo's issues against a snapshot.
type Diff struct {
	Creates []types.Operation
	Updates []types.Operation
}

// Len returns the total number of operations.
func (d Diff) Len() int {
	return len(d.Creates) + len(d.Updates)
}

// ComputeDiff classifies each issue of repo as an update of the record that
// already tracks it, or as a create. Both lists keep the issue order.
// A matching record without a page id is treated as absent.
func ComputeDiff(issues []types.Issue, snap *Snapshot, repo string) Diff {
	var d Diff
	for _, issue := range issues {
		if rec, ok := snap.Lookup(repo, issue.Number); ok && rec.PageID != "" {
			d.Updates = append(d.Updates, types.NewUpdate(issue, repo, rec.PageID))
			continue
		}
		d.Creates = append(d.Creates, types.NewCreate(issue, repo))
	}
	return d
}
