package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mholub/drivesync/internal/sync"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <item-id>",
		Short: "Resolve a sync conflict",
		Long: `Resolve a conflicted item by keeping one side:

  --keep local    upload the local file, overwriting the remote edit
  --keep remote   download the remote file, overwriting the local edit

Either direction runs unconditionally; the losing side's content is gone.`,
		Args: cobra.ExactArgs(1),
		RunE: runResolve,
	}

	cmd.Flags().String("keep", "", "side to keep: local or remote")

	if err := cmd.MarkFlagRequired("keep"); err != nil {
		panic(err)
	}

	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	keep, err := cmd.Flags().GetString("keep")
	if err != nil {
		return err
	}

	var choice sync.Resolution

	switch keep {
	case "local":
		choice = sync.KeepLocal
	case "remote":
		choice = sync.KeepRemote
	default:
		return fmt.Errorf("--keep must be \"local\" or \"remote\", got %q", keep)
	}

	eng, err := newEngine(cmd, nil)
	if err != nil {
		return err
	}

	if err := eng.Resolve(cmd.Context(), args[0], choice); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Resolved %s, kept %s\n", args[0], keep)

	return nil
}
