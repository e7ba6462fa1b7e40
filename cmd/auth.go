package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"codeset/internal/cli"
)

// authCmd represents the auth command group
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication for codeset",
	Long: `Manage authentication for codeset CLI commands.

The auth command group provides subcommands to sign in with GitHub,
sign out, and check the current session.

Examples:
  codeset auth login    # Sign in with GitHub
  codeset auth status   # Show authentication status
  codeset auth logout   # Clear the stored session`,
}

// authLogoutCmd represents the auth logout command
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session tokens",
	Long: `Clear the stored session tokens.

No backend call is made; the refresh token is simply discarded and you
will need to sign in again for authenticated commands.`,
	RunE: runAuthLogout,
}

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long: `Show the current authentication status.

The stored token is verified against the backend before the session is
reported as active, so a server-side revocation shows up here.`,
	RunE: runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if err := a.session.Logout(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	fmt.Println("Signed out.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if err := a.session.Init(cmd.Context()); err != nil {
		return fmt.Errorf("failed to verify session: %w", err)
	}

	user := a.session.User()
	if user == nil {
		fmt.Println(text.FgYellow.Sprint("Not signed in."))
		fmt.Println("\nTo sign in, run:\n  codeset auth login")
		return nil
	}

	fmt.Println(text.FgGreen.Sprint("Signed in."))
	fmt.Printf("  Name:      %s\n", user.Name)
	fmt.Printf("  Email:     %s\n", user.Email)
	fmt.Printf("  User ID:   %s\n", user.UserID)
	fmt.Printf("  API keys:  %d\n", len(user.APIKeys))
	if user.LastLoginAt != "" {
		fmt.Printf("  Last login: %s\n", cli.FormatTimestamp(user.LastLoginAt))
	}
	return nil
}
