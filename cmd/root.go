package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/iksnae/thread-harvest/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logLevel   string
	storePath  string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"

	// cfg is the effective configuration, loaded before any subcommand runs
	cfg = internal.DefaultConfig()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "thread-harvest",
	Short: "Harvest chat threads into clean transcripts",
	Long: `A CLI tool that reads an open thread panel in a chat web client,
scrolls it until every reply has loaded, and turns the messages into a
clean, deduplicated transcript.

Features:
  • Drives a local or remote Chrome through the DevTools protocol
  • Recovers links, tables, code, lists and emphasis as markdown
  • Drops system chatter and reattaches split message fragments
  • Archives harvested threads in a local SQLite database
  • Exports as JSONL, Markdown, YAML, JSON or a plain LLM transcript
  • Summarizes threads with an OpenAI model

Quick Start:
  thread-harvest harvest <thread-url>    # Harvest a thread
  thread-harvest parse saved-page.html    # Parse a saved page offline
  thread-harvest list                     # List archived threads
  thread-harvest show <thread-id>         # View a transcript`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)
		if logLevel != "" {
			level, err := internal.ParseLogLevel(logLevel)
			if err != nil {
				return err
			}
			internal.SetLogLevel(level)
		}

		loaded, err := internal.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if storePath != "" {
			loaded.Store.Path = storePath
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// openStore opens the configured thread archive
func openStore() (*internal.Store, error) {
	return internal.OpenStore(cfg.Store.Path)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/thread-harvest/config.yaml or config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: error, warn, info, debug")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Thread archive database file")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
