package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pratik-mahalle/sitevoice/internal/devproxy"
	"github.com/pratik-mahalle/sitevoice/pkg/client"
)

var (
	cfgFile      string
	outputFormat string
	serverURL    string
	apiClient    *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "sitevoice",
	Short: "SiteVoice CLI - turn job-site walkthroughs into project records",
	Long: `SiteVoice CLI talks to a SiteVoice backend: extract project data from
transcripts or recordings, check the voice backend, manage billing, and run
the local development proxy.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipsClient(cmd) {
			return nil
		}
		initClient()
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.sitevoice/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (overrides config)")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("server_url", rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newVoiceCmd())
	rootCmd.AddCommand(newBillingCmd())
	rootCmd.AddCommand(newProxyCmd())
}

// skipsClient reports whether cmd runs without talking to the API
func skipsClient(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "config", "proxy":
			return true
		}
	}
	return cmd.Name() == "login" || cmd.Name() == "logout"
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return
		}
		_ = os.MkdirAll(dir, 0700)
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SITEVOICE")
	viper.AutomaticEnv()

	viper.SetDefault("server_url", "http://localhost:3001")
	viper.SetDefault("output", "table")
	viper.SetDefault("proxy.target", devproxy.DefaultTarget)
	viper.SetDefault("proxy.listen", "localhost:8080")

	_ = viper.ReadInConfig()
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".sitevoice"), nil
}

func initClient() {
	url := viper.GetString("server_url")
	if serverURL != "" {
		url = serverURL
	}

	apiClient = client.NewClient(client.Config{
		BaseURL: url,
		Token:   viper.GetString("auth.token"),
	})
}

// requireToken fails when no session token is configured
func requireToken() error {
	if apiClient.GetToken() == "" {
		return fmt.Errorf("not authenticated. Run 'sitevoice auth login' first")
	}
	return nil
}

func getOutputFormat() string {
	if outputFormat != "" && outputFormat != "table" {
		return outputFormat
	}
	return viper.GetString("output")
}
