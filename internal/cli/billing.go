package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newBillingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Subscription commands",
	}

	cmd.AddCommand(newBillingPlansCmd())
	cmd.AddCommand(newBillingCheckoutCmd())
	cmd.AddCommand(newBillingPortalCmd())

	return cmd
}

func newBillingPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List subscription plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(); err != nil {
				return err
			}

			plans, err := apiClient.Billing().Plans(context.Background())
			if err != nil {
				return err
			}

			if format := getOutputFormat(); format != "table" {
				return printOutput(cmd.OutOrStdout(), plans)
			}

			table := NewTable(cmd.OutOrStdout(), "ID", "NAME", "INTERVAL", "CURRENT")
			for _, p := range plans {
				current := ""
				if p.IsCurrent {
					current = "*"
				}
				interval := p.Interval
				if interval == "" {
					interval = "-"
				}
				table.AddRow(p.ID, p.Name, interval, current)
			}
			table.Render()
			return nil
		},
	}
}

func newBillingCheckoutCmd() *cobra.Command {
	var interval string

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Start a pro subscription checkout",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(); err != nil {
				return err
			}

			url, err := apiClient.Billing().Checkout(context.Background(), interval)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to complete checkout:\n%s\n", url)
			return nil
		},
	}

	cmd.Flags().StringVar(&interval, "interval", "monthly", "billing interval: monthly or annual")

	return cmd
}

func newBillingPortalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "portal",
		Short: "Open the billing portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(); err != nil {
				return err
			}

			url, err := apiClient.Billing().Portal(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
}
