package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"codeset/internal/api"
	"codeset/internal/cli"
)

var (
	samplesDataset  string
	samplesSearch   string
	samplesPage     int
	samplesPageSize int
)

// samplesCmd represents the samples command group
var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Browse samples inside a dataset",
	Long: `Browse the samples of an evaluation dataset.

Examples:
  codeset samples list --dataset swe-bench-verified
  codeset samples list --dataset swe-bench-verified --search django --page 2
  codeset samples show django__django-11099 --dataset swe-bench-verified`,
}

// samplesListCmd represents the samples list command
var samplesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List samples in a dataset",
	Long: `List samples in a dataset, one page at a time.

Without --dataset the first dataset of the catalog is used. --search
filters by sample id substring on the backend.`,
	RunE: runSamplesList,
}

// samplesShowCmd represents the samples show command
var samplesShowCmd = &cobra.Command{
	Use:   "show <sample-id>",
	Short: "Show the full details of one sample",
	Args:  cobra.ExactArgs(1),
	RunE:  runSamplesShow,
}

func init() {
	for _, c := range []*cobra.Command{samplesListCmd, samplesShowCmd} {
		c.Flags().StringVar(&samplesDataset, "dataset", "", "dataset name (defaults to the first dataset)")
	}
	samplesListCmd.Flags().StringVar(&samplesSearch, "search", "", "filter by sample id substring")
	samplesListCmd.Flags().IntVar(&samplesPage, "page", 1, "page to show")
	samplesListCmd.Flags().IntVar(&samplesPageSize, "page-size", 10, "samples per page")

	samplesCmd.AddCommand(samplesListCmd)
	samplesCmd.AddCommand(samplesShowCmd)
	rootCmd.AddCommand(samplesCmd)
}

// resolveDataset returns the --dataset flag or falls back to the first
// dataset in the catalog, mirroring the dashboard's default selection.
func resolveDataset(ctx context.Context, a *app) (string, error) {
	if samplesDataset != "" {
		return samplesDataset, nil
	}
	datasets, err := a.client.Datasets(ctx)
	if err != nil {
		return "", err
	}
	if len(datasets) == 0 {
		return "", fmt.Errorf("no datasets available")
	}
	return datasets[0].Name, nil
}

func runSamplesList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}

	dataset, err := resolveDataset(ctx, a)
	if err != nil {
		return err
	}

	page, err := a.client.Samples(ctx, dataset, samplesSearch, samplesPage, samplesPageSize)
	if err != nil {
		return err
	}

	if page.TotalCount == 0 {
		if samplesSearch != "" {
			fmt.Printf("No samples in %s match %q.\n", dataset, samplesSearch)
		} else {
			fmt.Printf("Dataset %s has no samples.\n", dataset)
		}
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Sample ID", "Language", "Version", "Repo"})
	for _, s := range page.Samples {
		t.AppendRow(table.Row{s.SampleID, s.Language, s.Version, s.Repo})
	}
	t.Render()

	fmt.Println(cli.PageFooter(page.Page, page.PageSize, page.TotalCount))
	if page.HasMore {
		fmt.Printf("Next page: codeset samples list --dataset %s --page %d\n", dataset, page.Page+1)
	}
	return nil
}

func runSamplesShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sampleID := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}

	dataset, err := resolveDataset(ctx, a)
	if err != nil {
		return err
	}

	// There is no point lookup endpoint; search by id and pick the
	// exact match. The search is a substring match, so an id that is a
	// prefix of other ids needs a page big enough to contain them all.
	page, err := a.client.Samples(ctx, dataset, sampleID, 1, 50)
	if err != nil {
		return err
	}
	var sample *api.Sample
	for i := range page.Samples {
		if page.Samples[i].SampleID == sampleID {
			sample = &page.Samples[i]
			break
		}
	}
	if sample == nil {
		return fmt.Errorf("sample %q not found in dataset %s", sampleID, dataset)
	}

	fmt.Println(text.Bold.Sprint(sample.SampleID))
	fmt.Printf("  Dataset:     %s\n", sample.Dataset)
	fmt.Printf("  Language:    %s\n", sample.Language)
	if sample.Version != "" {
		fmt.Printf("  Version:     %s\n", sample.Version)
	}
	if sample.Repo != "" {
		fmt.Printf("  Repo:        %s\n", sample.Repo)
	}
	if sample.BaseCommit != "" {
		fmt.Printf("  Base commit: %s\n", sample.BaseCommit)
	}
	if sample.Verifier != "" {
		fmt.Printf("  Verifier:    %s\n", sample.Verifier)
	}

	if sample.ProblemStatement != "" {
		fmt.Printf("\n%s\n%s\n", text.Bold.Sprint("Problem statement"), sample.ProblemStatement)
	}
	if sample.HintsText != "" {
		fmt.Printf("\n%s\n%s\n", text.Bold.Sprint("Hints"), sample.HintsText)
	}
	printTestList("Fail-to-pass tests", sample.FailToPass)
	printTestList("Pass-to-pass tests", sample.PassToPass)
	printTestList("Fail-to-fail tests", sample.FailToFail)

	if sample.Patch != "" {
		fmt.Printf("\n%s\n%s\n", text.Bold.Sprint("Gold patch"), sample.Patch)
	}
	if sample.TestPatch != "" {
		fmt.Printf("\n%s\n%s\n", text.Bold.Sprint("Test patch"), sample.TestPatch)
	}
	return nil
}

func printTestList(title string, tests []string) {
	if len(tests) == 0 {
		return
	}
	fmt.Printf("\n%s (%d)\n", text.Bold.Sprint(title), len(tests))
	fmt.Printf("  %s\n", strings.Join(tests, "\n  "))
}
