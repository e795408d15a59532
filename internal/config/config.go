// Package config loads issuesync configuration from an optional YAML file,
// an optional .env file and the environment.
//
// Environment variables keep the names used by earlier deployments:
//
//	NOTION_KEY, NOTION_DATABASE_TASKS_ID, NOTION_DATABASE_PROJECTS_ID
//	GITHUB_KEY (or GITHUB_TOKEN), GITHUB_REPO_OWNER
//	GITHUB_REPO_NAMES + REPO_PROJECT_NAMES   comma-separated, paired by position
//	GITHUB_USERNAMES + NOTION_USERNAMES      comma-separated, paired by position
//	OPERATION_BATCH_SIZE, LOG_LEVEL, LOG_FILE
//
// The YAML file expresses the same pairings as keyed lists (repos, users).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/steveyegge/issuesync/internal/notion"
)

// DefaultBatchSize is the number of concurrent writes per batch.
const DefaultBatchSize = 10

// Config is the resolved configuration of one run.
type Config struct {
	Notion NotionConfig  `mapstructure:"notion" yaml:"notion"`
	GitHub GitHubConfig  `mapstructure:"github" yaml:"github"`
	Repos  []RepoMapping `mapstructure:"repos" yaml:"repos"`
	Users  []UserMapping `mapstructure:"users" yaml:"users"`
	Sync   SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Log    LogConfig     `mapstructure:"log" yaml:"log"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-" yaml:"-"`
}

// NotionConfig holds the Notion connection and schema settings.
type NotionConfig struct {
	Token              string            `mapstructure:"token" yaml:"token"`
	TasksDatabaseID    string            `mapstructure:"tasks_database_id" yaml:"tasks_database_id"`
	ProjectsDatabaseID string            `mapstructure:"projects_database_id" yaml:"projects_database_id"`
	BaseURL            string            `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Properties         notion.Properties `mapstructure:"properties" yaml:"properties"`
}

// GitHubConfig holds the GitHub connection settings.
type GitHubConfig struct {
	Token   string `mapstructure:"token" yaml:"token"`
	Owner   string `mapstructure:"owner" yaml:"owner"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

// RepoMapping pairs a repository with the name of its Notion project.
type RepoMapping struct {
	Name    string `mapstructure:"name" yaml:"name"`
	Project string `mapstructure:"project" yaml:"project"`
}

// UserMapping pairs a GitHub login with a Notion display name.
type UserMapping struct {
	GitHub string `mapstructure:"github" yaml:"github"`
	Notion string `mapstructure:"notion" yaml:"notion"`
}

// SyncConfig controls how writes are applied.
type SyncConfig struct {
	BatchSize     int  `mapstructure:"batch_size" yaml:"batch_size"`
	DryRun        bool `mapstructure:"dry_run" yaml:"dry_run"`
	SkipUnchanged bool `mapstructure:"skip_unchanged" yaml:"skip_unchanged"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file,omitempty"`
}

// envBindings maps config keys to the environment variables that feed them,
// in priority order.
var envBindings = map[string][]string{
	"notion.token":                {"NOTION_KEY"},
	"notion.tasks_database_id":    {"NOTION_DATABASE_TASKS_ID"},
	"notion.projects_database_id": {"NOTION_DATABASE_PROJECTS_ID"},
	"notion.base_url":             {"NOTION_API_URL"},
	"github.token":                {"GITHUB_KEY", "GITHUB_TOKEN"},
	"github.owner":                {"GITHUB_REPO_OWNER"},
	"github.base_url":             {"GITHUB_API_URL"},
	"sync.batch_size":             {"OPERATION_BATCH_SIZE"},
	"sync.dry_run":                {"ISSUESYNC_DRY_RUN"},
	"sync.skip_unchanged":         {"ISSUESYNC_SKIP_UNCHANGED"},
	"log.level":                   {"LOG_LEVEL"},
	"log.format":                  {"LOG_FORMAT"},
	"log.file":                    {"LOG_FILE"},
}

// Legacy positional list variables.
const (
	envRepoNames      = "GITHUB_REPO_NAMES"
	envProjectNames   = "REPO_PROJECT_NAMES"
	envGitHubUsers    = "GITHUB_USERNAMES"
	envNotionUsers    = "NOTION_USERNAMES"
	defaultConfigName = "issuesync"
)

// Load reads configuration. path selects an explicit YAML file; when empty,
// issuesync.yaml is looked up in the working directory and then in
// $HOME/.config/issuesync. A .env file in the working directory is applied
// first; variables already set in the environment win over it.
func Load(path string) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "issuesync"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.applyLegacyLists(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	props := notion.DefaultProperties()
	v.SetDefault("notion.properties.title", props.Title)
	v.SetDefault("notion.properties.status", props.Status)
	v.SetDefault("notion.properties.status_type", props.StatusType)
	v.SetDefault("notion.properties.assignees", props.Assignees)
	v.SetDefault("notion.properties.project", props.Project)
	v.SetDefault("notion.properties.project_name", props.ProjectName)
	v.SetDefault("notion.properties.url", "")
	v.SetDefault("notion.properties.comments", "")
	v.SetDefault("sync.batch_size", DefaultBatchSize)
	v.SetDefault("sync.dry_run", false)
	v.SetDefault("sync.skip_unchanged", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// applyLegacyLists converts the positional env lists into keyed mappings
// when the YAML file did not define them.
func (c *Config) applyLegacyLists() error {
	if len(c.Repos) == 0 {
		repos, err := pairLists(envRepoNames, envProjectNames)
		if err != nil {
			return err
		}
		for _, p := range repos {
			c.Repos = append(c.Repos, RepoMapping{Name: p[0], Project: p[1]})
		}
	}
	// Without NOTION_USERNAMES there are no identity mappings and assignees
	// stay empty.
	if len(c.Users) == 0 && len(SplitList(os.Getenv(envNotionUsers))) > 0 {
		users, err := pairLists(envGitHubUsers, envNotionUsers)
		if err != nil {
			return err
		}
		for _, p := range users {
			c.Users = append(c.Users, UserMapping{GitHub: p[0], Notion: p[1]})
		}
	}
	return nil
}

func pairLists(leftEnv, rightEnv string) ([][2]string, error) {
	left := SplitList(os.Getenv(leftEnv))
	right := SplitList(os.Getenv(rightEnv))
	if len(left) != len(right) {
		return nil, fmt.Errorf("%w: %s has %d entries, %s has %d",
			ErrMismatchedLists, leftEnv, len(left), rightEnv, len(right))
	}
	pairs := make([][2]string, len(left))
	for i := range left {
		pairs[i] = [2]string{left[i], right[i]}
	}
	return pairs, nil
}

// SplitList splits a comma-separated list, trimming whitespace around entries.
// An empty string yields no entries.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// Validate checks that every required setting is present. It reports all
// problems at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Notion.Token == "" {
		errs = append(errs, ErrMissingNotionToken)
	}
	if c.Notion.TasksDatabaseID == "" {
		errs = append(errs, ErrMissingTasksDatabase)
	}
	if c.Notion.ProjectsDatabaseID == "" {
		errs = append(errs, ErrMissingProjectsDatabase)
	}
	if c.GitHub.Token == "" {
		errs = append(errs, ErrMissingGitHubToken)
	}
	if c.GitHub.Owner == "" {
		errs = append(errs, ErrMissingOwner)
	}
	if len(c.Repos) == 0 {
		errs = append(errs, ErrNoRepos)
	}
	for i, r := range c.Repos {
		if r.Name == "" || r.Project == "" {
			errs = append(errs, fmt.Errorf("%w: repos[%d]", ErrIncompleteMapping, i))
		}
	}
	for i, u := range c.Users {
		if u.GitHub == "" || u.Notion == "" {
			errs = append(errs, fmt.Errorf("%w: users[%d]", ErrIncompleteMapping, i))
		}
	}
	if c.Sync.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidBatchSize, c.Sync.BatchSize))
	}
	switch c.Notion.Properties.StatusType {
	case notion.StatusTypeStatus, notion.StatusTypeSelect:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidStatusType, c.Notion.Properties.StatusType))
	}
	return errors.Join(errs...)
}
