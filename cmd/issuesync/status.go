package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/issuesync/internal/config"
	"github.com/steveyegge/issuesync/internal/reconcile"
	"github.com/steveyegge/issuesync/internal/ui"
)

var statusCheckRemote bool

// statusCmd displays the resolved configuration.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync configuration",
	Long: `Display the resolved configuration with tokens masked.

With --check, also reads the Notion workspace and reports repositories whose
project cannot be found.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusCheckRemote, "check", false, "Verify project names against the Notion workspace")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printConfig(out, cfg)

	_, _ = fmt.Fprintln(out)
	if err := cfg.Validate(); err != nil {
		_, _ = fmt.Fprintln(out, ui.RenderCheck(false, "Not configured"))
		for _, line := range strings.Split(err.Error(), "\n") {
			_, _ = fmt.Fprintf(out, "  %s\n", ui.Paint(ui.Muted, line))
		}
		return nil
	}
	_, _ = fmt.Fprintln(out, ui.RenderCheck(true, "Configured"))

	if !statusCheckRemote {
		return nil
	}
	snap, err := reconcile.LoadSnapshot(commandContext(), newDestination(cfg))
	if err != nil {
		return fmt.Errorf("read notion workspace: %w", err)
	}
	_, _ = fmt.Fprintln(out, ui.RenderCheck(true, fmt.Sprintf("Notion reachable: %d tasks, %d users, %d projects",
		len(snap.Records()), len(snap.Users()), len(snap.Projects()))))
	if _, err := reconcile.ValidateProjects(snap, repoTargets(cfg)); err != nil {
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			for _, e := range joined.Unwrap() {
				_, _ = fmt.Fprintln(out, ui.RenderCheck(false, e.Error()))
			}
		} else {
			_, _ = fmt.Fprintln(out, ui.RenderCheck(false, err.Error()))
		}
		return err
	}
	_, _ = fmt.Fprintln(out, ui.RenderCheck(true, "Every repository has a project"))
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	file := cfg.File
	if file == "" {
		file = "(none, environment only)"
	}
	props := cfg.Notion.Properties

	_, _ = fmt.Fprintln(out, ui.RenderCategory("Notion"))
	_, _ = fmt.Fprintln(out, ui.RenderField("Token", config.MaskToken(cfg.Notion.Token)))
	_, _ = fmt.Fprintln(out, ui.RenderField("Tasks database", cfg.Notion.TasksDatabaseID))
	_, _ = fmt.Fprintln(out, ui.RenderField("Projects database", cfg.Notion.ProjectsDatabaseID))
	_, _ = fmt.Fprintln(out, ui.RenderField("Properties", fmt.Sprintf("title=%s status=%s(%s) assignees=%s project=%s",
		props.Title, props.Status, props.StatusType, props.Assignees, props.Project)))
	_, _ = fmt.Fprintln(out)

	_, _ = fmt.Fprintln(out, ui.RenderCategory("GitHub"))
	_, _ = fmt.Fprintln(out, ui.RenderField("Token", config.MaskToken(cfg.GitHub.Token)))
	_, _ = fmt.Fprintln(out, ui.RenderField("Owner", cfg.GitHub.Owner))
	_, _ = fmt.Fprintln(out)

	_, _ = fmt.Fprintln(out, ui.RenderCategory("Repositories"))
	for _, r := range cfg.Repos {
		_, _ = fmt.Fprintln(out, ui.RenderField(r.Name, "→ "+r.Project))
	}
	_, _ = fmt.Fprintln(out)

	_, _ = fmt.Fprintln(out, ui.RenderCategory("Users"))
	for _, u := range cfg.Users {
		_, _ = fmt.Fprintln(out, ui.RenderField(u.GitHub, "→ "+u.Notion))
	}
	_, _ = fmt.Fprintln(out)

	_, _ = fmt.Fprintln(out, ui.RenderCategory("Sync"))
	_, _ = fmt.Fprintln(out, ui.RenderField("Config file", file))
	_, _ = fmt.Fprintln(out, ui.RenderField("Batch size", strconv.Itoa(cfg.Sync.BatchSize)))
	_, _ = fmt.Fprintln(out, ui.RenderField("Skip unchanged", strconv.FormatBool(cfg.Sync.SkipUnchanged)))
}
