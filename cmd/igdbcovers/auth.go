package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/MattThePandah/RA-Tracker/pkg/auth"
	"github.com/MattThePandah/RA-Tracker/pkg/config"
	"github.com/MattThePandah/RA-Tracker/pkg/logger"
	"github.com/MattThePandah/RA-Tracker/pkg/ui"
)

var skipVerify bool

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage IGDB credentials",
	Long: `Manage stored Twitch application credentials used to access IGDB.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read only)

Never share your client secret or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store IGDB credentials securely",
	Long: `Store a Twitch Client ID and Client Secret in the system keychain or
an encrypted file.

The credentials are checked against the Twitch token endpoint before they
are saved. Accounts are stored under a name; the first one is usually
called "default".`,
	Example: `  # Interactive login as the default account
  igdbcovers auth login

  # Store a second application
  igdbcovers auth login backup`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [name]",
	Short: "Remove stored credentials",
	Example: `  # Remove the default account
  igdbcovers auth logout

  # Remove a named account
  igdbcovers auth logout backup`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored accounts with the client secret masked.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)

	loginCmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "store the credentials without requesting a token first")
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := auth.DefaultName
	if len(args) > 0 {
		name = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	auth.ShowCredentialGuide()
	fmt.Println()

	if existing, _ := manager.Retrieve(name); existing != nil && existing.Name != auth.EnvName {
		fmt.Printf("Account '%s' already exists. Update credentials? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	fmt.Print("Client ID: ")
	clientID, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read client ID: %w", err)
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return fmt.Errorf("client ID is required")
	}

	fmt.Print("Client Secret (hidden): ")
	clientSecret, err := readPassword(reader)
	if err != nil {
		return fmt.Errorf("failed to read client secret: %w", err)
	}
	if clientSecret == "" {
		return fmt.Errorf("client secret is required")
	}

	creds := &auth.Credentials{
		Name:         name,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}

	if !skipVerify {
		fmt.Println("\nRequesting a token to check the credentials...")
		if err := verifyCredentials(cmd.Context(), creds); err != nil {
			ui.PrintError("Twitch rejected the credentials", err.Error())
			return err
		}
	}

	if err := manager.Store(creds); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Account saved: %s", name))

	fmt.Println("\nSecurity Information:")
	fmt.Println("   Your client secret is stored in the system keychain when available,")
	fmt.Println("   otherwise in an encrypted file under your config directory.")

	fmt.Println("\nQuick Start:")
	fmt.Println("   $ igdbcovers fetch")
	if name != auth.DefaultName {
		fmt.Printf("   $ igdbcovers fetch --account %s\n", name)
	}
	return nil
}

// verifyCredentials performs one client-credentials exchange
func verifyCredentials(ctx context.Context, creds *auth.Credentials) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	tokens, err := auth.NewTokenSource(creds, auth.TokenOptions{
		TokenURL: cfg.IGDB.TokenURL,
		Timeout:  cfg.IGDB.TokenTimeout,
		Logger:   logger.NewNopLogger(),
	})
	if err != nil {
		return err
	}
	_, err = tokens.Token(ctx)
	return err
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if len(args) > 0 {
		if err := manager.Delete(args[0]); err != nil {
			return err
		}
		ui.PrintSuccess("Account removed: " + args[0])
		return nil
	}

	accounts, err := manager.List()
	if err != nil || len(accounts) == 0 {
		ui.PrintWarning("No stored accounts found")
		return nil
	}

	name := auth.DefaultName
	if len(accounts) == 1 {
		name = accounts[0].Name
	}
	if name == auth.EnvName {
		ui.PrintWarning("Credentials come from the environment", "unset TWITCH_CLIENT_ID and TWITCH_CLIENT_SECRET instead")
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("Remove account '%s'? (y/N): ", name)
	input, _ := reader.ReadString('\n')
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
		return nil
	}

	if err := manager.Delete(name); err != nil {
		return err
	}
	ui.PrintSuccess("Account removed: " + name)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'igdbcovers auth login' to add an account")
		return nil
	}

	ui.PrintHighlight("Stored Accounts")
	fmt.Println()

	for i, creds := range accounts {
		sanitized := auth.SanitizeCredentials(creds)
		fmt.Printf("%d. Name: %s\n", i+1, sanitized.Name)
		fmt.Printf("   Client ID: %s\n", sanitized.ClientID)
		fmt.Printf("   Client Secret: %s\n", sanitized.ClientSecret)
		if !sanitized.LastModified.IsZero() {
			fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
	}
	return nil
}

// readPassword reads a secret from stdin without echoing when stdin is a
// terminal, and falls back to a plain line read otherwise
func readPassword(reader *bufio.Reader) (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
