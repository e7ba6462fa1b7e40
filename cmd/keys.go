package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"codeset/internal/cli"
)

var (
	keysCreateName string
	keysRevokeYes  bool
)

// keysCmd represents the keys command group
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage Codeset API keys",
	Long: `Manage the API keys used by SDKs and CI to talk to Codeset.

Examples:
  codeset keys list                  # List keys (masked)
  codeset keys create --name ci      # Create a key; the secret is shown once
  codeset keys revoke <key-id>       # Revoke a key`,
}

// keysListCmd represents the keys list command
var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your API keys",
	Long: `List your API keys.

Key secrets are always masked in this view. The full secret is only
ever shown once, in the output of 'codeset keys create'.`,
	RunE: runKeysList,
}

// keysCreateCmd represents the keys create command
var keysCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new API key",
	Long: `Create a new API key.

The raw secret is printed exactly once. It cannot be retrieved again;
if you lose it, revoke the key and create a new one.`,
	RunE: runKeysCreate,
}

// keysRevokeCmd represents the keys revoke command
var keysRevokeCmd = &cobra.Command{
	Use:   "revoke <key-id>",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysRevoke,
}

func init() {
	keysCreateCmd.Flags().StringVar(&keysCreateName, "name", "", "display name for the new key")
	keysRevokeCmd.Flags().BoolVar(&keysRevokeYes, "yes", false, "skip the confirmation prompt")

	keysCmd.AddCommand(keysListCmd)
	keysCmd.AddCommand(keysCreateCmd)
	keysCmd.AddCommand(keysRevokeCmd)
	rootCmd.AddCommand(keysCmd)
}

func runKeysList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	user, err := a.requireUser(cmd.Context())
	if err != nil {
		return err
	}

	if len(user.APIKeys) == 0 {
		fmt.Println("No API keys. Create one with 'codeset keys create'.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Key", "Status", "Created", "Last used"})
	for _, key := range user.APIKeys {
		t.AppendRow(table.Row{
			key.KeyID,
			key.Name,
			cli.MaskAPIKey(key.Key),
			cli.FormatKeyStatus(key.IsActive),
			cli.FormatTimestamp(key.CreatedAt),
			cli.FormatTimestamp(key.LastUsedAt),
		})
	}
	t.Render()
	return nil
}

func runKeysCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}

	name := keysCreateName
	if name == "" {
		name, err = cli.Ask("Key name", "default")
		if err != nil {
			return err
		}
	}

	// The creation response is the only place the raw secret ever
	// appears; it is printed here and never re-fetched.
	key, err := a.client.CreateAPIKey(ctx, name)
	if err != nil {
		return err
	}

	if err := a.session.RefreshUser(ctx); err != nil {
		return err
	}

	fmt.Printf("Created key %s (%s)\n\n", key.KeyID, key.Name)
	fmt.Println(text.FgYellow.Sprint("Save this secret now, it will not be shown again:"))
	fmt.Printf("\n  %s\n", key.Key)
	return nil
}

func runKeysRevoke(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	keyID := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}

	if !keysRevokeYes {
		ok, err := cli.Confirm(fmt.Sprintf("Revoke key %s? SDKs using it will stop working", keyID))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := a.client.RevokeAPIKey(ctx, keyID); err != nil {
		return err
	}
	if err := a.session.RefreshUser(ctx); err != nil {
		return err
	}

	fmt.Printf("Revoked key %s\n", keyID)
	return nil
}
