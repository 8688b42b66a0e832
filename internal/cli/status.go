package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			summary := map[string]interface{}{}
			if _, err := apiClient.Health(ctx); err != nil {
				summary["api"] = fmt.Sprintf("error: %v", err)
			} else {
				summary["api"] = "ok"
			}
			if h, err := apiClient.Voice().Health(ctx); h != nil {
				summary["voice"] = h.Status
			} else {
				summary["voice"] = fmt.Sprintf("error: %v", err)
			}
			if apiClient.GetToken() != "" {
				if u, err := apiClient.Me(ctx); err == nil {
					summary["user"] = u.Email
					summary["plan"] = u.Plan
				} else {
					summary["user"] = fmt.Sprintf("error: %v", err)
				}
			}

			if format := getOutputFormat(); format != "table" {
				return printOutput(cmd.OutOrStdout(), summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "SiteVoice Status")
			fmt.Fprintln(out, strings.Repeat("=", 40))
			fmt.Fprintf(out, "  API:    %s\n", formatStatus(fmt.Sprint(summary["api"])))
			fmt.Fprintf(out, "  Voice:  %s\n", formatStatus(fmt.Sprint(summary["voice"])))
			if user, ok := summary["user"]; ok {
				fmt.Fprintf(out, "  User:   %v\n", user)
			}
			if plan, ok := summary["plan"]; ok {
				fmt.Fprintf(out, "  Plan:   %s\n", formatStatus(fmt.Sprint(plan)))
			}
			return nil
		},
	}
}
