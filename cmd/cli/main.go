package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	authToken string
	apiURL    = "http://localhost:8787"
	output    = "text" // "text" or "json"
)

var rootCmd = &cobra.Command{
	Use:   "connectos",
	Short: "ConnectOS CLI - inspect your feed and manage follows",
	Long: `ConnectOS CLI provides command-line access to your ConnectOS account.
Inspect your feed, follow users and stories, and check notifications.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if authToken == "" {
			authToken = os.Getenv("CONNECTOS_TOKEN")
		}
		if authToken == "" && cmd.Name() != "help" && cmd.Parent() != nil {
			fmt.Fprintf(os.Stderr, "Error: CONNECTOS_TOKEN environment variable not set\n")
			fmt.Fprintf(os.Stderr, "Please set your auth token: export CONNECTOS_TOKEN=<your-token>\n")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "Authentication token (defaults to CONNECTOS_TOKEN env var)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", apiURL, "API server URL")
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")

	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(notificationsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
