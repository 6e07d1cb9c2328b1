package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mholub/drivesync/internal/config"
	"github.com/mholub/drivesync/internal/drive"
	"github.com/mholub/drivesync/internal/sync"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagSyncDir    string
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// cfg and logger hold the effective configuration and logger built by
// PersistentPreRunE; available to every subcommand after the pre-run phase.
var (
	cfg    *config.Config
	logger *slog.Logger
)

// httpClientTimeout bounds a single request end to end. Generous because
// content downloads and uploads stream through a single request.
const httpClientTimeout = 10 * time.Minute

// defaultHTTPClient returns the HTTP client shared by all drive calls.
func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: httpClientTimeout}
}

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "drivesync",
		Short:   "Selective Google Drive sync client",
		Long:    "Track individual files or whole folders from Google Drive and keep local and remote copies reconciled, with explicit conflict resolution.",
		Version: version,
		// Silence cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initApp()
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flagSyncDir, "sync-dir", "", "sync directory override")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLsCmd())
	cmd.AddCommand(newTrackCmd())
	cmd.AddCommand(newUntrackCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newMonitorCmd())
	cmd.AddCommand(newPutCmd())

	return cmd
}

// initApp resolves the effective configuration through the override chain
// (defaults -> file -> environment -> CLI flags) and builds the logger.
func initApp() error {
	cfgPath := config.DefaultConfigPath()
	if env := os.Getenv(config.EnvConfig); env != "" {
		cfgPath = env
	}

	if flagConfigPath != "" {
		cfgPath = flagConfigPath
	}

	loaded, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := config.ApplyEnvOverrides(loaded); err != nil {
		return err
	}

	if flagSyncDir != "" {
		loaded.SyncDir = config.ExpandHome(flagSyncDir)
	}

	if err := config.Validate(loaded); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	cfg = loaded
	logger = buildLogger()

	return nil
}

// buildLogger creates an slog.Logger configured by the resolved config and
// CLI flags. Config-file log level provides the baseline; --verbose and
// --quiet override it because CLI flags always win. Interactive terminals
// get the colorized tint handler, pipes get plain text.
func buildLogger() *slog.Logger {
	level := slog.LevelInfo

	if cfg != nil {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// authConfig assembles the OAuth client settings from config. The client ID
// has no default; missing credentials are a setup error.
func authConfig() (drive.AuthConfig, error) {
	if cfg.ClientID == "" {
		return drive.AuthConfig{}, errors.New("no client_id configured, add your OAuth client credentials to the config file")
	}

	return drive.AuthConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}, nil
}

// newDriveClient builds a drive client from the saved session. A missing
// session is fatal to the command: there is no degraded offline mode for
// operations that reach the remote.
func newDriveClient(cmd *cobra.Command) (*drive.Client, error) {
	auth, err := authConfig()
	if err != nil {
		return nil, err
	}

	ts, err := drive.TokenSourceFromPath(cmd.Context(), auth, cfg.TokenFile, logger)
	if errors.Is(err, drive.ErrNotLoggedIn) {
		return nil, errors.New("not logged in, run \"drivesync login\" first")
	}

	if err != nil {
		return nil, err
	}

	opts := drive.Options{PageSize: cfg.PageSize}

	return drive.NewClient(opts, defaultHTTPClient(), ts, logger), nil
}

// newEngine builds the sync engine on top of a live drive client.
// notify may be nil.
func newEngine(cmd *cobra.Command, notify sync.Notifier) (*sync.Engine, error) {
	client, err := newDriveClient(cmd)
	if err != nil {
		return nil, err
	}

	return newEngineWith(client, notify)
}

// newLocalEngine builds an engine without a remote session, for operations
// that only touch local state (status, untrack).
func newLocalEngine() (*sync.Engine, error) {
	return newEngineWith(nil, nil)
}

func newEngineWith(client sync.RemoteClient, notify sync.Notifier) (*sync.Engine, error) {
	store := sync.NewStore(cfg.StateFile, logger)

	return sync.NewEngine(store, client, cfg.SyncDir, notify, logger)
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
