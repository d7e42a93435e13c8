package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/thread-harvest/internal"
	"github.com/iksnae/thread-harvest/internal/summarize"
	"github.com/spf13/cobra"
)

var (
	summaryModel string
	summaryOut   string
)

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize <thread-id>",
	Short: "Summarize an archived thread with an OpenAI model",
	Long: `Send the transcript of an archived thread to an OpenAI model and print a
structured Markdown summary: key points, decisions and action items.

The API key is read from the environment variable named by summary.api_key_env
(OPENAI_API_KEY by default).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		archive, err := openStore()
		if err != nil {
			return err
		}
		defer archive.Close()

		thread, err := archive.LoadThread(args[0])
		if err != nil {
			return err
		}

		model := cfg.Summary.Model
		if summaryModel != "" {
			model = summaryModel
		}
		apiKey := cfg.Summary.APIKey()
		if apiKey == "" {
			return fmt.Errorf("%s is not set", cfg.Summary.APIKeyEnv)
		}
		summarizer, err := summarize.NewOpenAISummarizer(apiKey, model)
		if err != nil {
			return err
		}

		var summary *summarize.Summary
		err = internal.ShowProgress(ctx, fmt.Sprintf("Summarizing %d message(s) with %s...", len(thread.Messages), model), func() error {
			var sumErr error
			summary, sumErr = summarizer.Summarize(ctx, thread)
			return sumErr
		})
		if err != nil {
			return err
		}

		text := summary.Markdown()
		if summaryOut == "" {
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		}
		if dir := filepath.Dir(summaryOut); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := os.WriteFile(summaryOut, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
		internal.PrintSuccess(fmt.Sprintf("Summary written to %s", summaryOut))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringVar(&summaryModel, "model", "", "Model to use (overrides summary.model)")
	summarizeCmd.Flags().StringVarP(&summaryOut, "out", "o", "", "Write the summary to this file")
}
