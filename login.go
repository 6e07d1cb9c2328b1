package main

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mholub/drivesync/internal/drive"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize access to your drive",
		Long: `Run the browser-based OAuth authorization flow and save the resulting
token. Subsequent commands refresh the session silently; login is only
needed once, or after revoking access.`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
}

func runLogin(cmd *cobra.Command, _ []string) error {
	auth, err := authConfig()
	if err != nil {
		return err
	}

	statusf("Opening your browser to authorize access...\n")

	if _, err := drive.LoginWithBrowser(cmd.Context(), auth, cfg.TokenFile, openBrowser, logger); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Logged in. Token saved to", cfg.TokenFile)

	return nil
}

// openBrowser launches the platform browser for url. The auth flow prints
// the URL as well, so a failure here only costs the user a copy-paste.
func openBrowser(url string) error {
	var c *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", url)
	default:
		c = exec.Command("xdg-open", url)
	}

	return c.Start()
}
