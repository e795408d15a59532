package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	verboseFlag bool
	quietFlag   bool
	dryRunFlag  bool

	rootCtx    context.Context
	rootCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "issuesync",
	Short: "issuesync - sync GitHub issues into a Notion task database",
	Long: `One-way sync of GitHub issues into a Notion task database.

Each issue becomes a task titled "<repo>#<number>: <title>" linked to the
project configured for its repository. Existing tasks are found by title and
updated in place, so repeated runs converge instead of duplicating.

Configuration is read from issuesync.yaml, a .env file and the environment:
  NOTION_KEY, NOTION_DATABASE_TASKS_ID, NOTION_DATABASE_PROJECTS_ID
  GITHUB_KEY, GITHUB_REPO_OWNER, GITHUB_REPO_NAMES, REPO_PROJECT_NAMES
  GITHUB_USERNAMES, NOTION_USERNAMES, OPERATION_BATCH_SIZE`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupSignalContext()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rootCancel != nil {
			rootCancel()
		}
	},
	RunE: runSync,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./issuesync.yaml or ~/.config/issuesync/issuesync.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (warnings and errors only)")
	rootCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Show what would be synced without making changes")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// setupSignalContext cancels the root context on SIGINT or SIGTERM.
func setupSignalContext() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// commandContext returns the signal-aware root context, or Background when
// the command runs without the root pre-run (tests).
func commandContext() context.Context {
	if rootCtx != nil {
		return rootCtx
	}
	return context.Background()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
