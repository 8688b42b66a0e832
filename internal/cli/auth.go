package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthWhoamiCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a Clerk session token",
		Long: `Store a Clerk session token for authenticated commands. Copy the token
from the __session cookie of a signed-in browser session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = promptSecret("Session token: ")
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return fmt.Errorf("a session token is required")
			}

			viper.Set("auth.token", token)
			if err := writeConfig(); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Session token saved")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Clerk session token")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.Set("auth.token", "")
			if err := writeConfig(); err != nil {
				return fmt.Errorf("failed to clear credentials: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newAuthWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(); err != nil {
				return err
			}

			u, err := apiClient.Me(context.Background())
			if err != nil {
				return err
			}

			if format := getOutputFormat(); format != "table" {
				return printOutput(cmd.OutOrStdout(), u)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:       %s\n", u.ID)
			fmt.Fprintf(out, "Email:    %s\n", u.Email)
			if u.BusinessName != nil {
				fmt.Fprintf(out, "Business: %s\n", *u.BusinessName)
			}
			if u.Trade != nil {
				fmt.Fprintf(out, "Trade:    %s\n", *u.Trade)
			}
			fmt.Fprintf(out, "Plan:     %s\n", u.Plan)
			return nil
		},
	}
}

func promptSecret(prompt string) string {
	fmt.Print(prompt)
	if !term.IsTerminal(int(syscall.Stdin)) {
		reader := bufio.NewReader(os.Stdin)
		input, _ := reader.ReadString('\n')
		return strings.TrimSpace(input)
	}
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return ""
	}
	return string(secret)
}
