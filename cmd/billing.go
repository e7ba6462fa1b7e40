package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"codeset/internal/api"
	"codeset/internal/cli"
	"codeset/internal/oauth"
)

// lowBalanceThresholdCents triggers the top-up hint on the balance view.
const lowBalanceThresholdCents = 500

var (
	usagePage     int
	usageLimit    int
	depositAmount string
	depositWait   bool
	depositNoOpen bool
)

// billingCmd represents the billing command group
var billingCmd = &cobra.Command{
	Use:   "billing",
	Short: "Inspect balance, pricing and usage; top up credits",
	Long: `Inspect your Codeset balance, sandbox pricing and usage history,
and deposit credits via Stripe checkout.

Examples:
  codeset billing balance
  codeset billing pricing
  codeset billing usage --page 2
  codeset billing deposit --amount 20 --wait`,
}

// billingBalanceCmd represents the billing balance command
var billingBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show your current balance",
	RunE:  runBillingBalance,
}

// billingPricingCmd represents the billing pricing command
var billingPricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Show sandbox pricing",
	RunE:  runBillingPricing,
}

// billingUsageCmd represents the billing usage command
var billingUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show the transaction ledger and session statistics",
	RunE:  runBillingUsage,
}

// billingDepositCmd represents the billing deposit command
var billingDepositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Deposit credits via Stripe checkout",
	Long: `Create a Stripe checkout session and open it in your browser.

With --wait, the command polls your balance after checkout and reports
as soon as the deposit lands (or gives up after 30 seconds; webhooks
can occasionally take longer, in which case the balance view will catch
up on its own).`,
	RunE: runBillingDeposit,
}

func init() {
	billingUsageCmd.Flags().IntVar(&usagePage, "page", 1, "ledger page to show")
	billingUsageCmd.Flags().IntVar(&usageLimit, "limit", 20, "transactions per page")
	billingDepositCmd.Flags().StringVar(&depositAmount, "amount", "", "amount in dollars, e.g. 20 or 12.50")
	billingDepositCmd.Flags().BoolVar(&depositWait, "wait", false, "wait for the deposit to land")
	billingDepositCmd.Flags().BoolVar(&depositNoOpen, "no-browser", false, "print the checkout URL instead of opening a browser")

	billingCmd.AddCommand(billingBalanceCmd)
	billingCmd.AddCommand(billingPricingCmd)
	billingCmd.AddCommand(billingUsageCmd)
	billingCmd.AddCommand(billingDepositCmd)
	rootCmd.AddCommand(billingCmd)
}

func runBillingBalance(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}

	// Balance and pricing are independent; fetch them concurrently.
	var credits *api.UserCredits
	var pricing *api.PricingInfo
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		credits, err = a.client.Balance(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		pricing, err = a.client.Pricing(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("Balance:          %s\n", cli.FormatCents(credits.Balance))
	fmt.Printf("Total deposited:  %s\n", cli.FormatCents(credits.TotalDeposited))
	fmt.Printf("Total spent:      %s\n", cli.FormatCents(credits.TotalSpent))
	fmt.Printf("Sandbox pricing:  %s/minute\n", cli.FormatCents(pricing.CostPerMinuteCents))

	if credits.Balance < lowBalanceThresholdCents {
		fmt.Println()
		fmt.Println(text.FgYellow.Sprint("Your balance is low. Top up with 'codeset billing deposit'."))
	}
	return nil
}

func runBillingPricing(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	pricing, err := a.client.Pricing(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Sandbox time is billed per minute: %s/minute ($%.2f)\n",
		cli.FormatCents(pricing.CostPerMinuteCents), pricing.CostPerMinuteDollars)
	return nil
}

func runBillingUsage(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}

	history, err := a.client.UsageHistory(ctx, usagePage, usageLimit)
	if err != nil {
		return err
	}

	fmt.Printf("Balance: %s (deposited %s, used %s)\n\n",
		cli.FormatCents(history.CurrentBalanceCents),
		cli.FormatCents(history.TotalDepositsCents),
		cli.FormatCents(history.TotalUsageCents))

	if len(history.Transactions) == 0 {
		fmt.Println("No transactions on this page.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"When", "Type", "Amount", "Description"})
	for _, tx := range history.Transactions {
		t.AppendRow(table.Row{
			cli.FormatTimestamp(tx.CreatedAt),
			tx.Type,
			cli.FormatTransactionAmount(tx.Type, tx.AmountCents),
			tx.Description,
		})
	}
	t.Render()

	s := history.Summary
	fmt.Printf("\n%d sessions · avg cost %s · avg duration %.1f min\n",
		s.TotalSessions, cli.FormatCents(s.AverageSessionCostCents), s.AverageSessionDurationMinutes)
	return nil
}

func runBillingDeposit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}

	amount := depositAmount
	if amount == "" {
		amount, err = cli.Ask("Amount in dollars", "20")
		if err != nil {
			return err
		}
	}
	amountCents, err := cli.ParseDollars(amount)
	if err != nil {
		return err
	}

	var baseline int64
	if depositWait {
		credits, err := a.client.Balance(ctx)
		if err != nil {
			return err
		}
		baseline = credits.Balance
	}

	deposit, err := a.client.CreateDeposit(ctx, amountCents)
	if err != nil {
		return err
	}

	if depositNoOpen {
		fmt.Printf("Complete the checkout at:\n\n  %s\n", deposit.CheckoutURL)
	} else {
		fmt.Println("Opening Stripe checkout in your browser...")
		if err := oauth.OpenBrowser(deposit.CheckoutURL); err != nil {
			fmt.Printf("Could not open a browser. Complete the checkout at:\n\n  %s\n", deposit.CheckoutURL)
		}
	}

	if !depositWait {
		return nil
	}

	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	sp.Suffix = " Waiting for the deposit to land..."
	sp.Start()

	watcher := &cli.BalanceWatcher{
		Fetch: func(ctx context.Context) (int64, error) {
			credits, err := a.client.Balance(ctx)
			if err != nil {
				return 0, err
			}
			return credits.Balance, nil
		},
		Notify: func(newBalance int64) {
			sp.Stop()
			fmt.Println(text.FgGreen.Sprintf("Deposit received. New balance: %s", cli.FormatCents(newBalance)))
		},
	}

	increased, err := watcher.Wait(ctx, baseline)
	sp.Stop()
	if err != nil {
		return err
	}
	if !increased {
		fmt.Println("The deposit has not landed yet. Check 'codeset billing balance' in a moment.")
	}
	return nil
}
