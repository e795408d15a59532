package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/steveyegge/issuesync/internal/config"
	"github.com/steveyegge/issuesync/internal/reconcile"
	"github.com/steveyegge/issuesync/internal/telemetry"
	"github.com/steveyegge/issuesync/internal/ui"
)

// runSync implements the root command: one full sync run.
func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	result, err := execute(commandContext(), cmd, cfg)
	if result != nil && !quietFlag {
		printSummary(cmd.OutOrStdout(), result)
	}
	return err
}

// execute runs the engine once with telemetry set up around it.
func execute(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*reconcile.SyncResult, error) {
	logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeLog() }()

	if err := telemetry.Init(ctx, "issuesync", Version); err != nil {
		logger.Warn("telemetry disabled", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		telemetry.Shutdown(shutdownCtx)
	}()

	ctx, span := telemetry.Tracer("").Start(ctx, "issuesync.run")
	span.SetAttributes(
		attribute.Int("issuesync.repo.count", len(cfg.Repos)),
		attribute.Bool("issuesync.dry_run", cfg.Sync.DryRun),
	)
	defer span.End()

	engine, err := newEngine(cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Sync.DryRun {
		logger.Info("Dry run mode - no changes will be made")
	}
	result, err := engine.Run(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

// printSummary writes a per-repo summary of result. Dry runs also list
// every planned write with the status it would set.
func printSummary(w io.Writer, result *reconcile.SyncResult) {
	plans := make(map[string]reconcile.RepoPlan, len(result.Plans))
	for _, p := range result.Plans {
		plans[p.Repo] = p
	}

	_, _ = fmt.Fprintln(w)
	for i, r := range result.Repos {
		tone := ui.Pass
		if result.Error != "" && i == len(result.Repos)-1 {
			tone = ui.Fail
		}
		_, _ = fmt.Fprintln(w, ui.Line(tone, fmt.Sprintf("%s: %d fetched, %d created, %d updated, %d unchanged",
			ui.Paint(ui.Accent, r.Repo), r.Stats.Fetched, r.Stats.Created, r.Stats.Updated, r.Stats.Skipped)))
		if p, ok := plans[r.Repo]; ok {
			printWrites(w, p)
		}
	}
	_, _ = fmt.Fprintln(w, ui.RenderRule())
	switch {
	case result.Error != "":
		_, _ = fmt.Fprintln(w, ui.Line(ui.Fail, "Sync failed: "+result.Error))
	case result.DryRun:
		_, _ = fmt.Fprintln(w, ui.Line(ui.Warn, fmt.Sprintf("Dry run: %d would be created, %d would be updated",
			result.Stats.Created, result.Stats.Updated)))
	default:
		_, _ = fmt.Fprintln(w, ui.Line(ui.Pass, fmt.Sprintf("Sync complete: %d created, %d updated",
			result.Stats.Created, result.Stats.Updated)))
	}
}

func printWrites(w io.Writer, p reconcile.RepoPlan) {
	for _, list := range [][]reconcile.Write{p.Creates, p.Updates} {
		for _, wr := range list {
			_, _ = fmt.Fprintf(w, "    %s %-6s %s  %s\n", ui.Mark(ui.Accent), wr.Kind,
				wr.Key(), ui.RenderTaskStatus(wr.Fields.Status))
		}
	}
	for _, wr := range p.Skipped {
		_, _ = fmt.Fprintf(w, "    %s %-6s %s\n", ui.Mark(ui.Muted), "skip", ui.Paint(ui.Muted, wr.Key().String()))
	}
}
