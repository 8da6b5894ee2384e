package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MattThePandah/RA-Tracker/pkg/config"
	"github.com/MattThePandah/RA-Tracker/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage igdbcovers configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (IGDBCOVERS_*, TWITCH_CLIENT_ID, TWITCH_CLIENT_SECRET)
  - .env file
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'igdbcovers.yaml'
unless a different path is specified with the --config flag.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging every source.

The client secret is masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the effective configuration.

This command checks:
  - YAML syntax
  - Value ranges
  - Cache, checkpoint and log locations can be created`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

const exampleConfig = `# igdbcovers configuration file
#
# Environment variables override this file. Credentials are usually better
# kept in the system keychain ('igdbcovers auth login') or in
# TWITCH_CLIENT_ID / TWITCH_CLIENT_SECRET.

igdb:
  # Twitch application credentials
  client_id: ""
  client_secret: ""

  base_url: "https://api.igdb.com/v4"
  token_url: "https://id.twitch.tv/oauth2/token"
  request_timeout: 30s
  token_timeout: 10s

  # Games requested per page, at most 500
  batch_size: 500

rate_limit:
  # Minimum gap between catalog requests
  min_interval: 300ms

  # Wait after a 429 before retrying
  cooldown: 60s

  # Retries after a 429; 0 disables retrying
  max_retries: 1

cache:
  directory: "./cache/covers"
  download_timeout: 30s

  # Cached file names remembered in memory
  known_paths_size: 4096

progress:
  file: "igdb_progress.json"

logging:
  # debug, info, warn, error
  level: "info"

  # Optional log file; leave empty to log to the console
  file: ""

metrics:
  # Serve Prometheus metrics during a run, e.g. ":9100"
  addr: ""
`

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "igdbcovers.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		return fmt.Errorf("%s already exists", configPath)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Run 'igdbcovers auth login' or add your Twitch credentials to the file")
	fmt.Println("2. Run 'igdbcovers config validate' to check the configuration")
	fmt.Println("3. Start downloading with 'igdbcovers fetch'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(maskConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (IGDBCOVERS_*, TWITCH_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (searched in default locations)")
	}
	fmt.Println("4. Default values")
	return nil
}

// maskConfig returns a copy that is safe to print
func maskConfig(cfg *config.Config) config.Config {
	display := *cfg
	if s := display.IGDB.ClientSecret; s != "" {
		if len(s) > 8 {
			display.IGDB.ClientSecret = s[:4] + "..." + s[len(s)-4:]
		} else {
			display.IGDB.ClientSecret = "***"
		}
	}
	return display
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		return err
	}

	warnings, problems := checkConfig(cfg)

	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		return fmt.Errorf("configuration has %d error(s)", len(problems))
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Cache directory: %s\n", cfg.Cache.Directory)
	fmt.Printf("  Progress file: %s\n", cfg.Progress.File)
	fmt.Printf("  Batch size: %d\n", cfg.IGDB.BatchSize)
	fmt.Printf("  Request interval: %s\n", cfg.RateLimit.MinInterval)
	fmt.Printf("  Rate-limit cooldown: %s (max retries %d)\n", cfg.RateLimit.Cooldown, cfg.RateLimit.MaxRetries)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}

// checkConfig runs the checks Validate leaves to the environment
func checkConfig(cfg *config.Config) (warnings, problems []string) {
	if !cfg.HasCredentials() {
		warnings = append(warnings, "client credentials not set in config or environment; a stored account will be needed")
	}

	if err := os.MkdirAll(cfg.Cache.Directory, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("Cannot create cache directory: %v", err))
	}

	if dir := filepath.Dir(cfg.Progress.File); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create progress directory: %v", err))
		}
	}

	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	return warnings, problems
}
