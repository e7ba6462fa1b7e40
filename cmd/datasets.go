package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"codeset/internal/cli"
)

// datasetsCmd represents the datasets command group
var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Browse the evaluation dataset catalog",
}

// datasetsListCmd represents the datasets list command
var datasetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available datasets",
	RunE:  runDatasetsList,
}

func init() {
	datasetsCmd.AddCommand(datasetsListCmd)
	rootCmd.AddCommand(datasetsCmd)
}

func runDatasetsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}

	datasets, err := a.client.Datasets(ctx)
	if err != nil {
		return err
	}
	if len(datasets) == 0 {
		fmt.Println("No datasets available.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Samples", "Created", "Description"})
	for _, ds := range datasets {
		t.AppendRow(table.Row{ds.Name, ds.SampleCount, cli.FormatTimestamp(ds.CreatedAt), ds.Description})
	}
	t.Render()
	return nil
}
