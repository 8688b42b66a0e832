package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pratik-mahalle/sitevoice/pkg/client"
)

// audioExtensions are uploaded as recordings; anything else is read as a transcript
var audioExtensions = map[string]bool{
	".flac": true, ".m4a": true, ".mp3": true, ".mp4": true, ".mpeg": true,
	".mpga": true, ".oga": true, ".ogg": true, ".wav": true, ".webm": true,
}

func newVoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Voice extraction commands",
	}

	cmd.AddCommand(newVoiceHealthCmd())
	cmd.AddCommand(newVoiceExtractCmd())

	return cmd
}

func newVoiceHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the voice backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := apiClient.Voice().Health(context.Background())
			if h == nil {
				return err
			}

			if format := getOutputFormat(); format != "table" {
				if printErr := printOutput(cmd.OutOrStdout(), h); printErr != nil {
					return printErr
				}
				return err
			}

			table := NewTable(cmd.OutOrStdout(), "BACKEND", "STATUS", "LATENCY", "ERROR")
			table.AddRow(h.Backend, formatStatus(h.Status), fmt.Sprintf("%dms", h.LatencyMS), truncate(h.Error, 60))
			table.Render()
			return err
		},
	}
}

func newVoiceExtractCmd() *cobra.Command {
	var file, trade, locale string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract project data from a transcript or recording",
		Example: `  sitevoice voice extract --file walkthrough.txt --trade plumbing
  sitevoice voice extract --file walkthrough.m4a --locale en-US`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(); err != nil {
				return err
			}
			if trade == "" {
				trade = viper.GetString("voice.trade")
			}

			out, err := extractFile(context.Background(), file, trade, locale)
			if err != nil {
				return err
			}

			if format := getOutputFormat(); format != "table" {
				return printOutput(cmd.OutOrStdout(), out)
			}
			renderExtraction(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "transcript text file or audio recording")
	cmd.Flags().StringVar(&trade, "trade", "", "trade hint (plumbing, electrical, ...)")
	cmd.Flags().StringVar(&locale, "locale", "", "spoken language, e.g. en-US")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func extractFile(ctx context.Context, path, trade, locale string) (*client.Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if audioExtensions[strings.ToLower(filepath.Ext(path))] {
		return apiClient.Voice().ExtractAudio(ctx, filepath.Base(path), f, trade, locale)
	}

	text, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return apiClient.Voice().Extract(ctx, client.ExtractRequest{
		Transcript: string(text),
		Trade:      trade,
		Locale:     locale,
	})
}

func renderExtraction(w io.Writer, out *client.Extraction) {
	p := out.Project
	fmt.Fprintf(w, "Title:    %s\n", p.Title)
	if p.ClientName != "" {
		fmt.Fprintf(w, "Client:   %s\n", p.ClientName)
	}
	if p.SiteAddress != "" {
		fmt.Fprintf(w, "Site:     %s\n", p.SiteAddress)
	}
	fmt.Fprintf(w, "Trade:    %s\n", p.Trade)
	fmt.Fprintf(w, "Urgency:  %s\n", p.Urgency)
	if p.EstimatedHours != nil {
		fmt.Fprintf(w, "Estimate: %s\n", formatQuantity(p.EstimatedHours, "h"))
	}
	if p.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", p.Summary)
	}

	if len(p.ScopeItems) > 0 {
		fmt.Fprintln(w)
		table := NewTable(w, "SCOPE", "QTY")
		for _, item := range p.ScopeItems {
			table.AddRow(truncate(item.Description, 70), formatQuantity(item.Quantity, item.Unit))
		}
		table.Render()
	}

	if len(p.Materials) > 0 {
		fmt.Fprintln(w)
		table := NewTable(w, "MATERIAL", "QTY")
		for _, m := range p.Materials {
			table.AddRow(truncate(m.Name, 70), formatQuantity(m.Quantity, m.Unit))
		}
		table.Render()
	}

	if len(p.FollowUps) > 0 {
		fmt.Fprintln(w, "\nFollow-ups:")
		for _, q := range p.FollowUps {
			fmt.Fprintf(w, "  - %s\n", q)
		}
	}
}
