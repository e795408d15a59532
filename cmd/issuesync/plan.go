package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/issuesync/internal/reconcile"
)

var planFormat string

// planCmd computes the writes a sync would make and prints them.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the writes a sync would make",
	Long: `Read GitHub and Notion, compute every create and update a sync would
perform, and print the plan without writing anything.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planFormat, "format", "o", "yaml", "Output format (yaml|json)")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	if planFormat != "yaml" && planFormat != "json" {
		return fmt.Errorf("unknown format %q (want yaml or json)", planFormat)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Sync.DryRun = true

	result, err := execute(commandContext(), cmd, cfg)
	if err != nil {
		return err
	}
	return writePlans(cmd.OutOrStdout(), planFormat, result.Plans)
}

// writePlans encodes plans in the requested format.
func writePlans(w io.Writer, format string, plans []reconcile.RepoPlan) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plans)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plans); err != nil {
			return err
		}
		return enc.Close()
	}
}
