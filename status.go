package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tracked items and their sync state",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	eng, err := newLocalEngine()
	if err != nil {
		return err
	}

	statuses := eng.Status()

	if flagJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(statuses)
	}

	if len(statuses) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tracked items.")

		return nil
	}

	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		rows = append(rows, []string{
			string(st.State), st.DriveRelativePath, st.LastSyncedTime, st.ID,
		})
	}

	printTable(cmd.OutOrStdout(), []string{"STATE", "PATH", "LAST SYNCED", "ID"}, rows)

	if pid, running := monitorRunning(monitorPIDPath()); running {
		fmt.Fprintf(cmd.OutOrStdout(), "\nMonitor running (pid %d)\n", pid)
	}

	return nil
}

// monitorPIDPath puts the monitor PID file next to the status file, in the
// data directory.
func monitorPIDPath() string {
	return filepath.Join(filepath.Dir(cfg.StateFile), "monitor.pid")
}
