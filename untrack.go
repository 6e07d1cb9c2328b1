package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUntrackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "untrack <item-id>",
		Short: "Stop tracking an item and delete its local copy",
		Long: `Remove an item from synchronization. The local file or directory tree
is deleted, along with the records of every descendant when the item is a
tracked folder root. Untracking an unknown ID is a no-op.`,
		Args: cobra.ExactArgs(1),
		RunE: runUntrack,
	}
}

func runUntrack(cmd *cobra.Command, args []string) error {
	eng, err := newLocalEngine()
	if err != nil {
		return err
	}

	if err := eng.Untrack(cmd.Context(), args[0]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Untracked %s\n", args[0])

	return nil
}
