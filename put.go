package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"
)

func newPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <local-file> [folder-id]",
		Short: "Upload a file",
		Long: `Upload a local file as a new remote item, into the given folder (the
drive root by default). With --track, the uploaded item is immediately
brought under synchronization.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runPut,
	}

	cmd.Flags().Bool("track", false, "start tracking the uploaded file")

	return cmd
}

func runPut(cmd *cobra.Command, args []string) error {
	localPath := args[0]

	parentID := rootFolderID
	if len(args) == 2 {
		parentID = args[1]
	}

	client, err := newDriveClient(cmd)
	if err != nil {
		return err
	}

	item, err := client.UploadNew(cmd.Context(), localPath, parentID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (id %s)\n", item.Name, item.ID)

	track, _ := cmd.Flags().GetBool("track")
	if !track {
		return nil
	}

	eng, err := newEngineWith(client, nil)
	if err != nil {
		return err
	}

	rel := norm.NFC.String(item.Name)
	if err := eng.TrackFile(cmd.Context(), item.ID, item.Name, rel, item.ID); err != nil {
		return fmt.Errorf("uploaded but not tracked: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Tracking %s\n", item.Name)

	return nil
}
