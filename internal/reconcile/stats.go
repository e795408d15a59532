package reconcile

// SyncStats tracks statistics for the sync of one repository or a whole run.
type SyncStats struct {
	Fetched int `json:"fetched" yaml:"fetched"` // Issues read from GitHub
	Created int `json:"created" yaml:"created"` // Task records created
	Updated int `json:"updated" yaml:"updated"` // Task records updated
	Skipped int `json:"skipped" yaml:"skipped"` // Updates skipped (unchanged)
}

// Add accumulates other into s.
func (s *SyncStats) Add(other SyncStats) {
	s.Fetched += other.Fetched
	s.Created += other.Created
	s.Updated += other.Updated
	s.Skipped += other.Skipped
}

// RepoPlan is the set of writes computed for one repository.
type RepoPlan struct {
	Repo      string  `json:"repo" yaml:"repo"`
	Project   string  `json:"project" yaml:"project"`
	ProjectID string  `json:"project_id" yaml:"project_id"`
	Creates   []Write `json:"creates" yaml:"creates"`
	Updates   []Write `json:"updates" yaml:"updates"`
	Skipped   []Write `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// RepoResult is the outcome of syncing one repository.
type RepoResult struct {
	Repo  string    `json:"repo" yaml:"repo"`
	Stats SyncStats `json:"stats" yaml:"stats"`
}

// SyncResult represents the result of a complete run.
type SyncResult struct {
	Success  bool         `json:"success" yaml:"success"`
	DryRun   bool         `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Stats    SyncStats    `json:"stats" yaml:"stats"`
	Repos    []RepoResult `json:"repos" yaml:"repos"`
	Plans    []RepoPlan   `json:"plans,omitempty" yaml:"plans,omitempty"`
	LastSync string       `json:"last_sync,omitempty" yaml:"last_sync,omitempty"` // RFC3339
	Error    string       `json:"error,omitempty" yaml:"error,omitempty"`
}
