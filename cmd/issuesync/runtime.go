package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/steveyegge/issuesync/internal/config"
	"github.com/steveyegge/issuesync/internal/github"
	"github.com/steveyegge/issuesync/internal/logging"
	"github.com/steveyegge/issuesync/internal/notion"
	"github.com/steveyegge/issuesync/internal/reconcile"
	"github.com/steveyegge/issuesync/internal/telemetry"
)

// loadConfig reads and validates configuration, applying command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dryRunFlag {
		cfg.Sync.DryRun = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger; --verbose and --quiet override the
// configured level.
func newLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, func() error, error) {
	level := cfg.Log.Level
	switch {
	case verboseFlag:
		level = "debug"
	case quietFlag:
		level = "warn"
	}
	return logging.New(logging.Options{
		Level:  level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Stderr: stderr,
	})
}

// newDestination builds the Notion workspace described by cfg.
func newDestination(cfg *config.Config) *notion.Workspace {
	client := notion.NewClient(cfg.Notion.Token)
	if cfg.Notion.BaseURL != "" {
		client = client.WithBaseURL(cfg.Notion.BaseURL)
	}
	return notion.NewWorkspace(client, notion.WorkspaceConfig{
		TasksDatabaseID:    cfg.Notion.TasksDatabaseID,
		ProjectsDatabaseID: cfg.Notion.ProjectsDatabaseID,
		Properties:         cfg.Notion.Properties,
	})
}

// newSource builds the GitHub issue reader described by cfg.
func newSource(cfg *config.Config) *github.Client {
	client := github.NewClient(cfg.GitHub.Token, cfg.GitHub.Owner)
	if cfg.GitHub.BaseURL != "" {
		client = client.WithBaseURL(cfg.GitHub.BaseURL)
	}
	return client
}

// repoTargets converts configured repo mappings to engine targets.
func repoTargets(cfg *config.Config) []reconcile.RepoTarget {
	targets := make([]reconcile.RepoTarget, 0, len(cfg.Repos))
	for _, r := range cfg.Repos {
		targets = append(targets, reconcile.RepoTarget{Repo: r.Name, Project: r.Project})
	}
	return targets
}

// newEngine wires the clients, telemetry wrappers and mapper into an engine.
func newEngine(cfg *config.Config, logger *slog.Logger) (*reconcile.Engine, error) {
	pairs := make([]reconcile.IdentityPair, 0, len(cfg.Users))
	for _, u := range cfg.Users {
		pairs = append(pairs, reconcile.IdentityPair{Login: u.GitHub, Name: u.Notion})
	}
	props := cfg.Notion.Properties
	mapper := reconcile.NewMapper(pairs, reconcile.MapperOptions{
		SyncURL:      props.URL != "",
		SyncComments: props.Comments != "",
	})

	return reconcile.NewEngine(
		telemetry.WrapSource(newSource(cfg)),
		telemetry.WrapDestination(newDestination(cfg)),
		reconcile.EngineConfig{
			Repos:         repoTargets(cfg),
			Mapper:        mapper,
			BatchSize:     cfg.Sync.BatchSize,
			DryRun:        cfg.Sync.DryRun,
			SkipUnchanged: cfg.Sync.SkipUnchanged,
			Logger:        logger,
		},
	)
}
