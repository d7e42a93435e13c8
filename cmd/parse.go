package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/iksnae/thread-harvest/internal"
	"github.com/spf13/cobra"
)

var (
	parseURL      string
	parseFormat   string
	parseOut      string
	parseStore    bool
	parseSnapshot string
	parseWatch    bool
)

const watchPollInterval = 500 * time.Millisecond

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse [saved-page.html]",
	Short: "Extract a thread from a saved page",
	Long: `Run the thread extractor once over a saved copy of the chat client's page
(or a cached snapshot from 'harvest --keep-snapshot'), without a browser and
without scrolling.

With --watch the file is re-parsed every time it changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		switch {
		case parseSnapshot != "":
			cache := internal.NewSnapshotCache(cfg.Store.SnapshotDir)
			page, err := cache.LoadSnapshot(parseSnapshot)
			if err != nil {
				return err
			}
			return parsePage(ctx, cmd.OutOrStdout(), page)
		case len(args) == 1:
			if parseWatch {
				return watchFile(ctx, cmd.OutOrStdout(), args[0])
			}
			page, err := loadPageFile(args[0])
			if err != nil {
				return err
			}
			return parsePage(ctx, cmd.OutOrStdout(), page)
		default:
			return fmt.Errorf("a saved page file or --snapshot is required")
		}
	},
}

func loadPageFile(path string) (*internal.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &internal.SnapshotError{Source: path, Op: "decode", Err: err}
	}
	defer f.Close()
	return internal.NewPageFromHTML(f, parseURL)
}

func parsePage(ctx context.Context, w io.Writer, page *internal.Page) error {
	messages, err := internal.Scan(ctx, internal.StaticSource{Page: page}, internal.WithVerbose(verbose))
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		internal.PrintWarning("No thread messages found in page")
		return nil
	}

	pageURL := page.URL
	if pageURL == "" {
		pageURL = parseURL
	}
	thread := internal.NewThread(pageURL, page.Title, internal.HarvestResult{
		Messages: messages,
		RawCount: len(messages),
		Outcome:  internal.OutcomeSettled,
	})
	return finishThread(w, thread, nil, parseOut, parseFormat, parseStore, false)
}

// watchFile re-parses path whenever its modification time changes
func watchFile(ctx context.Context, w io.Writer, path string) error {
	triggers := make(chan struct{}, 1)
	go func() {
		defer close(triggers)
		var lastMod time.Time
		ticker := time.NewTicker(watchPollInterval)
		defer ticker.Stop()
		for {
			if info, err := os.Stat(path); err == nil && !info.ModTime().Equal(lastMod) {
				lastMod = info.ModTime()
				select {
				case triggers <- struct{}{}:
				default:
				}
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	internal.PrintInfo(fmt.Sprintf("Watching %s (Ctrl-C to stop)", path))
	err := internal.WatchRescans(ctx, triggers, watchPollInterval, func(ctx context.Context) {
		page, err := loadPageFile(path)
		if err != nil {
			internal.PrintError(err.Error())
			return
		}
		if err := parsePage(ctx, w, page); err != nil {
			internal.PrintError(err.Error())
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVar(&parseURL, "url", "", "Page URL, used to resolve relative links")
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "txt", "Output format (jsonl, md, yaml, json, txt)")
	parseCmd.Flags().StringVarP(&parseOut, "out", "o", "", "Write to this file or directory instead of stdout")
	parseCmd.Flags().BoolVar(&parseStore, "archive", false, "Archive the parsed thread")
	parseCmd.Flags().StringVar(&parseSnapshot, "snapshot", "", "Parse a cached snapshot by thread ID")
	parseCmd.Flags().BoolVar(&parseWatch, "watch", false, "Re-parse the file whenever it changes")
}
