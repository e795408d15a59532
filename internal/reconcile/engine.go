package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/steveyegge/issuesync/internal/types"
)

// RepoTarget pairs a source repository with the name of its project record.
type RepoTarget struct {
	Repo    string
	Project string
}

// EngineConfig configures a sync run.
type EngineConfig struct {
	Repos         []RepoTarget
	Mapper        *Mapper
	BatchSize     int
	DryRun        bool
	SkipUnchanged bool
	Logger        *slog.Logger
}

// Engine drives one sync run from the issue source into the destination.
type Engine struct {
	source IssueSource
	dest   Destination
	cfg    EngineConfig
	writer *BatchWriter
	logger *slog.Logger
}

// NewEngine creates an engine. A zero BatchSize selects DefaultBatchSize.
func NewEngine(source IssueSource, dest Destination, cfg EngineConfig) (*Engine, error) {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Mapper == nil {
		cfg.Mapper = NewMapper(nil, MapperOptions{})
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	writer, err := NewBatchWriter(dest, cfg.BatchSize, logger)
	if err != nil {
		return nil, err
	}
	return &Engine{source: source, dest: dest, cfg: cfg, writer: writer, logger: logger}, nil
}

// Run loads the destination snapshot, validates the repo to project pairing
// and then syncs each configured repo in order. The first error aborts the
// run; writes already applied stay applied.
func (e *Engine) Run(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{DryRun: e.cfg.DryRun}

	snap, err := LoadSnapshot(ctx, e.dest)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	e.logger.Debug("loaded snapshot",
		"records", len(snap.Records()),
		"users", len(snap.Users()),
		"projects", len(snap.Projects()),
	)

	projects, err := ValidateProjects(snap, e.cfg.Repos)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	for _, target := range e.cfg.Repos {
		plan, stats, err := e.syncRepo(ctx, snap, target, projects[target.Repo])
		result.Stats.Add(stats)
		result.Repos = append(result.Repos, RepoResult{Repo: target.Repo, Stats: stats})
		if e.cfg.DryRun {
			result.Plans = append(result.Plans, plan)
		}
		if err != nil {
			err = fmt.Errorf("sync %s: %w", target.Repo, err)
			result.Error = err.Error()
			return result, err
		}
	}

	result.Success = true
	result.LastSync = time.Now().UTC().Format(time.RFC3339)
	return result, nil
}

// ValidateProjects resolves the project of every target. It reports all
// unresolved targets at once, each wrapping ErrProjectNotFound.
func ValidateProjects(snap *Snapshot, targets []RepoTarget) (map[string]types.Project, error) {
	resolved := make(map[string]types.Project, len(targets))
	var errs []error
	for _, t := range targets {
		p, ok := snap.ProjectByName(t.Project)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: repo %q wants project %q", ErrProjectNotFound, t.Repo, t.Project))
			continue
		}
		resolved[t.Repo] = p
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return resolved, nil
}

// Plan computes the writes for one repo without applying them.
func (e *Engine) Plan(snap *Snapshot, target RepoTarget, project types.Project, issues []types.Issue) RepoPlan {
	plan := RepoPlan{Repo: target.Repo, Project: target.Project, ProjectID: project.ID}
	diff := ComputeDiff(issues, snap, target.Repo)

	plan.Creates = make([]Write, 0, len(diff.Creates))
	for _, op := range diff.Creates {
		plan.Creates = append(plan.Creates, Write{
			Operation: op,
			Fields:    e.cfg.Mapper.Map(snap, op.Issue, project.ID, op.Repo),
		})
	}

	plan.Updates = make([]Write, 0, len(diff.Updates))
	for _, op := range diff.Updates {
		w := Write{
			Operation: op,
			Fields:    e.cfg.Mapper.Map(snap, op.Issue, project.ID, op.Repo),
		}
		if e.cfg.SkipUnchanged {
			if rec, ok := snap.Lookup(op.Repo, op.Issue.Number); ok && rec.Fields.Equal(w.Fields) {
				plan.Skipped = append(plan.Skipped, w)
				continue
			}
		}
		plan.Updates = append(plan.Updates, w)
	}
	return plan
}

func (e *Engine) syncRepo(ctx context.Context, snap *Snapshot, target RepoTarget, project types.Project) (RepoPlan, SyncStats, error) {
	ctx, span := tracer().Start(ctx, "reconcile.repo",
		trace.WithAttributes(attribute.String("issuesync.repo", target.Repo)),
	)
	defer span.End()

	var stats SyncStats
	e.logger.Info(fmt.Sprintf("Fetching issues from GitHub repository %s ...", target.Repo))
	issues, err := e.source.FetchIssues(ctx, target.Repo)
	if err != nil {
		span.RecordError(err)
		return RepoPlan{Repo: target.Repo, Project: target.Project}, stats, fmt.Errorf("fetch issues: %w", err)
	}
	stats.Fetched = len(issues)
	syncMetrics().fetched.Add(ctx, int64(len(issues)))

	plan := e.Plan(snap, target, project, issues)
	stats.Skipped = len(plan.Skipped)
	if stats.Skipped > 0 {
		syncMetrics().skipped.Add(ctx, int64(stats.Skipped))
	}

	e.logger.Info(fmt.Sprintf("%d new issues to add", len(plan.Creates)))
	if e.cfg.DryRun {
		e.logPlan(plan.Creates)
		stats.Created = len(plan.Creates)
	} else {
		n, err := e.writer.Write(ctx, plan.Creates)
		stats.Created = n
		if err != nil {
			span.RecordError(err)
			return plan, stats, fmt.Errorf("create records: %w", err)
		}
	}

	e.logger.Info(fmt.Sprintf("%d issues to update", len(plan.Updates)))
	if e.cfg.DryRun {
		e.logPlan(plan.Updates)
		stats.Updated = len(plan.Updates)
	} else {
		n, err := e.writer.Write(ctx, plan.Updates)
		stats.Updated = n
		if err != nil {
			span.RecordError(err)
			return plan, stats, fmt.Errorf("update records: %w", err)
		}
	}

	if stats.Skipped > 0 {
		e.logger.Info(fmt.Sprintf("%d unchanged issues skipped", stats.Skipped))
	}
	return plan, stats, nil
}

func (e *Engine) logPlan(writes []Write) {
	for _, w := range writes {
		e.logger.Info("[dry-run] would "+string(w.Kind),
			"key", w.Key().String(),
			"title", w.Fields.Title,
			"status", string(w.Fields.Status),
		)
	}
}
