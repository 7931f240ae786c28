package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/recordsync"
)

var (
	syncProjectID int64
	syncJSON      bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh the mirror from upstream",
	Long: `Fetch projects, their tasks, milestones and billing milestones, and
the bay schedules from upstream and replace the mirrored copies.

A failing project does not stop the others; the command exits non-zero
when any step failed.

Examples:
  masterscheduler sync
  masterscheduler sync --project 42
  masterscheduler sync --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Syncer == nil {
			return errors.New("sync requires database connection")
		}

		ctx := cmd.Context()
		var (
			report *recordsync.Report
			err    error
		)
		if syncProjectID > 0 {
			report, err = app.Syncer.SyncProject(ctx, syncProjectID)
		} else {
			report, err = app.Syncer.SyncAll(ctx)
		}
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		return PrintReport(cmd.OutOrStdout(), report, syncJSON)
	},
}

// PrintReport writes a sync report and returns an error when any step failed.
func PrintReport(w io.Writer, report *recordsync.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		duration := report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond)
		fmt.Fprintf(w, "Synced %d project(s) and %d schedule(s) in %s.\n", report.Synced, report.Schedules, duration)
		if report.Failed() {
			fmt.Fprintf(w, "\nFailures (%d):\n", len(report.Failures))
			for _, f := range report.Failures {
				if f.Scope == recordsync.ScopeProject {
					fmt.Fprintf(w, "  ✗ project %d: %s\n", f.ProjectID, f.Message)
				} else {
					fmt.Fprintf(w, "  ✗ %s: %s\n", f.Scope, f.Message)
				}
			}
		}
	}

	if report.Failed() {
		return fmt.Errorf("sync finished with %d failure(s)", len(report.Failures))
	}
	return nil
}

func init() {
	syncCmd.Flags().Int64Var(&syncProjectID, "project", 0, "sync a single project by ID")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(syncCmd)
}
