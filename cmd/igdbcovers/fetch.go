package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MattThePandah/RA-Tracker/pkg/auth"
	"github.com/MattThePandah/RA-Tracker/pkg/checkpoint"
	"github.com/MattThePandah/RA-Tracker/pkg/config"
	"github.com/MattThePandah/RA-Tracker/pkg/errors"
	"github.com/MattThePandah/RA-Tracker/pkg/fetcher"
	"github.com/MattThePandah/RA-Tracker/pkg/igdb"
	"github.com/MattThePandah/RA-Tracker/pkg/logger"
	"github.com/MattThePandah/RA-Tracker/pkg/metrics"
	"github.com/MattThePandah/RA-Tracker/pkg/models"
	"github.com/MattThePandah/RA-Tracker/pkg/ratelimit"
	"github.com/MattThePandah/RA-Tracker/pkg/storage"
	"github.com/MattThePandah/RA-Tracker/pkg/ui"
)

var (
	// Fetch command flags
	platformArgs []string
	noResume     bool
	cacheDir     string
	progressFile string
	accountName  string
	metricsAddr  string
	notify       bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download cover art for the selected platforms",
	Long: `Page through the IGDB catalog for each platform and cache every cover.

Progress is saved after every page. Running the command again continues
where the previous run stopped and skips platforms that are already done.
Press Ctrl+C to stop; covers for the current page finish first.

Credentials are taken from, in order:
  - the account named with --account
  - IGDBCOVERS_CLIENT_ID / TWITCH_CLIENT_ID and matching secrets, or the config file
  - the stored default account ('igdbcovers auth login')`,
	Example: `  # Fetch every platform, resuming from the last run
  igdbcovers fetch

  # Only PS2 and PSP, starting over
  igdbcovers fetch --platforms ps2,psp --no-resume

  # Custom cache directory and a Prometheus endpoint
  igdbcovers fetch --cache-dir ./covers --metrics-addr :9100`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	for _, cmd := range []*cobra.Command{fetchCmd, rootCmd} {
		cmd.Flags().StringSliceVarP(&platformArgs, "platforms", "p", nil, "platforms to fetch, comma separated or repeated (default: all)")
		cmd.Flags().BoolVar(&noResume, "no-resume", false, "start every platform from offset 0, ignoring saved progress")
		cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "directory covers are stored in")
		cmd.Flags().StringVar(&progressFile, "progress-file", "", "checkpoint file")
		cmd.Flags().StringVarP(&accountName, "account", "a", "", "use a specific stored account")
		cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
		cmd.Flags().BoolVar(&notify, "notify", false, "send a desktop notification when the run ends")
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("igdbcovers starting")

	platforms, err := models.ResolvePlatforms(platformArgs)
	if err != nil {
		return err
	}

	creds, err := resolveCredentials(cfg, accountName)
	if err != nil {
		ui.PrintError("No IGDB credentials found", "")
		fmt.Println("\nTo store credentials securely, run:")
		fmt.Println("  igdbcovers auth login")
		fmt.Println("\nOr set environment variables:")
		fmt.Println("  export TWITCH_CLIENT_ID=your_client_id")
		fmt.Println("  export TWITCH_CLIENT_SECRET=your_client_secret")
		return err
	}

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		srv, err := m.Serve(cfg.Metrics.Addr, log)
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer srv.Shutdown()
	}

	tokens, err := auth.NewTokenSource(creds, auth.TokenOptions{
		TokenURL: cfg.IGDB.TokenURL,
		Timeout:  cfg.IGDB.TokenTimeout,
		Metrics:  m,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Authenticate before touching any platform
	if _, err := tokens.Token(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		log.WithError(err).Error("Authentication failed")
		return err
	}

	f, err := buildFetcher(cfg, tokens, m, log)
	if err != nil {
		return err
	}

	ui.PrintInfo("Platforms", platformList(platforms))
	ui.PrintInfo("Cache directory", cfg.Cache.Directory)

	summary, err := f.Run(ctx, platforms)
	if notify {
		ui.NewNotifier().NotifyRunFinished(summary)
	}
	if err != nil {
		return fmt.Errorf("fetch aborted: %w", err)
	}
	return nil
}

// loadConfig merges the config file, environment and command line, then
// sets up the global logger
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := map[string]interface{}{
		"cache-dir":     cacheDir,
		"progress-file": progressFile,
		"log-level":     logLevel,
		"metrics-addr":  metricsAddr,
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}

	// Console logs share the terminal with the progress line
	if !verbose && logLevel == "" && cfg.Logging.File == "" {
		cfg.Logging.Level = "warn"
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// resolveCredentials picks the client credentials for this run
func resolveCredentials(cfg *config.Config, account string) (*auth.Credentials, error) {
	if account == "" && cfg.HasCredentials() {
		return &auth.Credentials{
			Name:         "config",
			ClientID:     cfg.IGDB.ClientID,
			ClientSecret: cfg.IGDB.ClientSecret,
		}, nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeCredentials, err, "credential store unavailable")
	}

	if account != "" {
		creds, err := manager.Retrieve(account)
		if err != nil {
			return nil, errors.Wrap(errors.ErrorTypeCredentials, err, "account %q", account)
		}
		return creds, nil
	}

	creds, err := manager.RetrieveDefault()
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeCredentials, err, "client ID and client secret are required")
	}
	return creds, nil
}

// buildFetcher wires the catalog client, cache and checkpoint together
func buildFetcher(cfg *config.Config, tokens *auth.TokenSource, m *metrics.Metrics, log logger.Logger) (*fetcher.Fetcher, error) {
	client := igdb.NewClient(tokens, ratelimit.NewInterval(cfg.RateLimit.MinInterval), igdb.Options{
		BaseURL:         cfg.IGDB.BaseURL,
		ClientID:        tokens.ClientID(),
		RequestTimeout:  cfg.IGDB.RequestTimeout,
		DownloadTimeout: cfg.Cache.DownloadTimeout,
		Cooldown:        cfg.RateLimit.Cooldown,
		MaxRetries:      cfg.RateLimit.MaxRetries,
		Metrics:         m,
		Logger:          log,
	})

	cache, err := storage.NewManager(cfg.Cache.Directory, client, cfg.Cache.KnownPathsSize, log)
	if err != nil {
		return nil, err
	}

	progress := checkpoint.NewManager(cfg.Progress.File, log)

	return fetcher.New(client, cache, progress, fetcher.Options{
		PageSize: cfg.IGDB.BatchSize,
		Resume:   !noResume,
		Metrics:  m,
		Logger:   log,
		Reporter: ui.NewProgressDisplay(cfg.IGDB.BatchSize, verbose),
	}), nil
}

func platformList(platforms []models.Platform) string {
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}
