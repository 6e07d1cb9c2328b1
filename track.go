package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/mholub/drivesync/internal/sync"
)

func newTrackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track <item-id>",
		Short: "Track a remote file or folder",
		Long: `Bring a remote item under synchronization. Files are downloaded and
recorded; folders are walked recursively, with every descendant downloaded
and recorded. Item failures during a folder walk are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: runTrack,
	}

	cmd.Flags().String("name", "", "local name override (defaults to the remote name)")

	return cmd
}

// progressPrinter reports folder-tracking progress to stderr as it happens.
type progressPrinter struct{}

func (progressPrinter) Progress(ev sync.ProgressEvent) {
	if ev.Err != nil {
		statusf("failed   %s: %v\n", ev.RelPath, ev.Err)

		return
	}

	statusf("tracked  %s\n", ev.RelPath)
}

func runTrack(cmd *cobra.Command, args []string) error {
	id := args[0]

	client, err := newDriveClient(cmd)
	if err != nil {
		return err
	}

	eng, err := newEngineWith(client, progressPrinter{})
	if err != nil {
		return err
	}

	meta, err := client.GetMetadata(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("looking up %s: %w", id, err)
	}

	name := meta.Name
	if override, _ := cmd.Flags().GetString("name"); override != "" {
		name = override
	}

	if meta.IsFolder {
		if err := eng.TrackFolder(cmd.Context(), id, name); err != nil {
			return err
		}
	} else {
		rel := norm.NFC.String(name)
		if err := eng.TrackFile(cmd.Context(), id, name, rel, id); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Tracking %s\n", name)

	return nil
}
