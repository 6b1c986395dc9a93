// Package cli provides the docchat command-line client.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"docchat-relay/internal/client"
	"docchat-relay/internal/config"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	serverURL string
	token     string
	logLevel  string
	verbose   bool

	apiClient *client.Client
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Upload documents and chat with them through a docchat relay",
	Long: `docchat is a command-line client for the docchat relay.

It uploads documents to the ingestion workflow, asks questions against the
indexed knowledge base and lists what has been indexed so far.

The relay address comes from --server or DOCCHAT_SERVER_URL.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := config.ParseLevel(logLevel)
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		if token == "" {
			token = os.Getenv("DOCCHAT_TOKEN")
		}
		apiClient = client.New(serverURL, token)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "relay base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "bearer token (default $DOCCHAT_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "shorthand for --log-level debug")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(eventsCmd)
}
