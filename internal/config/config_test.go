package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/steveyegge/issuesync/internal/notion"
)

var allEnv = []string{
	"NOTION_KEY", "NOTION_DATABASE_TASKS_ID", "NOTION_DATABASE_PROJECTS_ID", "NOTION_API_URL",
	"GITHUB_KEY", "GITHUB_TOKEN", "GITHUB_REPO_OWNER", "GITHUB_API_URL",
	"GITHUB_REPO_NAMES", "REPO_PROJECT_NAMES", "GITHUB_USERNAMES", "NOTION_USERNAMES",
	"OPERATION_BATCH_SIZE", "ISSUESYNC_DRY_RUN", "ISSUESYNC_SKIP_UNCHANGED",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
}

// isolate runs the test in an empty directory with no config variables set.
func isolate(t *testing.T) string {
	t.Helper()
	for _, name := range allEnv {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Sync.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, want %d", cfg.Sync.BatchSize, DefaultBatchSize)
	}
	if cfg.Notion.Properties != notion.DefaultProperties() {
		t.Errorf("Properties = %+v, want defaults", cfg.Notion.Properties)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.File != "" {
		t.Errorf("File = %q, want empty", cfg.File)
	}
	if len(cfg.Repos) != 0 || len(cfg.Users) != 0 {
		t.Errorf("expected no mappings, got repos=%v users=%v", cfg.Repos, cfg.Users)
	}
}

func TestLoadEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("NOTION_KEY", "secret_abc")
	t.Setenv("NOTION_DATABASE_TASKS_ID", "tasks")
	t.Setenv("NOTION_DATABASE_PROJECTS_ID", "projects")
	t.Setenv("GITHUB_TOKEN", "ghp_token")
	t.Setenv("GITHUB_REPO_OWNER", "acme")
	t.Setenv("GITHUB_REPO_NAMES", "widgets, gadgets")
	t.Setenv("REPO_PROJECT_NAMES", "Widgets,Gadgets")
	t.Setenv("GITHUB_USERNAMES", "alice")
	t.Setenv("NOTION_USERNAMES", "Alice W")
	t.Setenv("OPERATION_BATCH_SIZE", "5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Notion.Token != "secret_abc" || cfg.GitHub.Token != "ghp_token" {
		t.Errorf("tokens not bound: %+v %+v", cfg.Notion, cfg.GitHub)
	}
	if cfg.Sync.BatchSize != 5 {
		t.Errorf("BatchSize = %d, want 5", cfg.Sync.BatchSize)
	}
	wantRepos := []RepoMapping{{Name: "widgets", Project: "Widgets"}, {Name: "gadgets", Project: "Gadgets"}}
	if len(cfg.Repos) != 2 || cfg.Repos[0] != wantRepos[0] || cfg.Repos[1] != wantRepos[1] {
		t.Errorf("Repos = %+v, want %+v", cfg.Repos, wantRepos)
	}
	if len(cfg.Users) != 1 || cfg.Users[0] != (UserMapping{GitHub: "alice", Notion: "Alice W"}) {
		t.Errorf("Users = %+v", cfg.Users)
	}
}

func TestLoadGitHubKeyPreferred(t *testing.T) {
	isolate(t)
	t.Setenv("GITHUB_KEY", "from_key")
	t.Setenv("GITHUB_TOKEN", "from_token")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GitHub.Token != "from_key" {
		t.Errorf("GitHub.Token = %q, want from_key", cfg.GitHub.Token)
	}
}

func TestLoadMismatchedLists(t *testing.T) {
	tests := []struct {
		name  string
		left  string
		right string
		env   [2]string
	}{
		{"repos", "a,b", "A", [2]string{"GITHUB_REPO_NAMES", "REPO_PROJECT_NAMES"}},
		{"users", "alice,bob", "Alice", [2]string{"GITHUB_USERNAMES", "NOTION_USERNAMES"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.env[0], tt.left)
			t.Setenv(tt.env[1], tt.right)

			_, err := Load("")
			if !errors.Is(err, ErrMismatchedLists) {
				t.Errorf("Load() error = %v, want ErrMismatchedLists", err)
			}
		})
	}
}

func TestLoadWithoutNotionUsernames(t *testing.T) {
	isolate(t)
	t.Setenv("GITHUB_USERNAMES", "alice,bob")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Users) != 0 {
		t.Errorf("Users = %v, want none", cfg.Users)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "sync.yaml")
	content := `
notion:
  token: secret_yaml
  tasks_database_id: tasks
  projects_database_id: projects
  properties:
    status_type: select
    url: GitHub URL
github:
  token: ghp_yaml
  owner: acme
repos:
  - name: widgets
    project: Widgets
users:
  - github: Alice
    notion: Alice W
sync:
  batch_size: 3
  skip_unchanged: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	// YAML mappings win over legacy lists.
	t.Setenv("GITHUB_REPO_NAMES", "ignored")
	t.Setenv("REPO_PROJECT_NAMES", "Ignored")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.File != path {
		t.Errorf("File = %q, want %q", cfg.File, path)
	}
	if len(cfg.Repos) != 1 || cfg.Repos[0].Name != "widgets" {
		t.Errorf("Repos = %+v", cfg.Repos)
	}
	if cfg.Users[0].GitHub != "Alice" {
		t.Errorf("login case must be preserved, got %q", cfg.Users[0].GitHub)
	}
	if cfg.Notion.Properties.StatusType != notion.StatusTypeSelect {
		t.Errorf("StatusType = %q", cfg.Notion.Properties.StatusType)
	}
	if cfg.Notion.Properties.URL != "GitHub URL" {
		t.Errorf("URL property = %q", cfg.Notion.Properties.URL)
	}
	if cfg.Notion.Properties.Title != "Task" {
		t.Errorf("Title property default lost: %q", cfg.Notion.Properties.Title)
	}
	if cfg.Sync.BatchSize != 3 || !cfg.Sync.SkipUnchanged {
		t.Errorf("Sync = %+v", cfg.Sync)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() with missing explicit file should fail")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	env := "NOTION_KEY=from_file\nGITHUB_REPO_OWNER=acme\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GITHUB_REPO_OWNER", "from_env")
	t.Cleanup(func() { os.Unsetenv("NOTION_KEY") })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Notion.Token != "from_file" {
		t.Errorf("Notion.Token = %q, want from_file", cfg.Notion.Token)
	}
	if cfg.GitHub.Owner != "from_env" {
		t.Errorf("GitHub.Owner = %q, existing env must win", cfg.GitHub.Owner)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Notion: NotionConfig{
				Token: "t", TasksDatabaseID: "tasks", ProjectsDatabaseID: "projects",
				Properties: notion.DefaultProperties(),
			},
			GitHub: GitHubConfig{Token: "g", Owner: "acme"},
			Repos:  []RepoMapping{{Name: "widgets", Project: "Widgets"}},
			Sync:   SyncConfig{BatchSize: 10},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"no notion token", func(c *Config) { c.Notion.Token = "" }, ErrMissingNotionToken},
		{"no tasks db", func(c *Config) { c.Notion.TasksDatabaseID = "" }, ErrMissingTasksDatabase},
		{"no projects db", func(c *Config) { c.Notion.ProjectsDatabaseID = "" }, ErrMissingProjectsDatabase},
		{"no github token", func(c *Config) { c.GitHub.Token = "" }, ErrMissingGitHubToken},
		{"no owner", func(c *Config) { c.GitHub.Owner = "" }, ErrMissingOwner},
		{"no repos", func(c *Config) { c.Repos = nil }, ErrNoRepos},
		{"repo without project", func(c *Config) { c.Repos[0].Project = "" }, ErrIncompleteMapping},
		{"user without name", func(c *Config) { c.Users = []UserMapping{{GitHub: "a"}} }, ErrIncompleteMapping},
		{"zero batch", func(c *Config) { c.Sync.BatchSize = 0 }, ErrInvalidBatchSize},
		{"bad status type", func(c *Config) { c.Notion.Properties.StatusType = "multi" }, ErrInvalidStatusType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"a", []string{"a"}},
		{"a, b ,c", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		got := SplitList(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("SplitList(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SplitList(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestMaskToken(t *testing.T) {
	tests := map[string]string{
		"":                 "(not set)",
		"short":            "****",
		"secret_abcdefghi": "secr****",
	}
	for in, want := range tests {
		if got := MaskToken(in); got != want {
			t.Errorf("MaskToken(%q) = %q, want %q", in, got, want)
		}
	}
}
