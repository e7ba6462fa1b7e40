package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"codeset/internal/cli"
)

// authLoginCmd represents the auth login command
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with GitHub",
	Long: `Sign in to Codeset with GitHub OAuth.

This command starts a temporary local callback server, opens the GitHub
authorization page in your browser, and exchanges the returned code for
a session. Tokens are stored under ~/.config/codeset/tokens.`,
	RunE: runAuthLogin,
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if err := a.session.Login(cmd.Context()); err != nil {
		return &cli.AuthFailedError{Reason: err}
	}

	user := a.session.User()
	if user == nil {
		return &cli.AuthFailedError{Reason: fmt.Errorf("session established but user could not be loaded")}
	}

	fmt.Println(text.FgGreen.Sprintf("Signed in as %s (%s).", user.Name, user.Email))
	return nil
}
