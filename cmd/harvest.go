package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/iksnae/thread-harvest/internal"
	"github.com/spf13/cobra"
)

var (
	remoteURL        string
	headless         bool
	timeoutSeconds   int
	paginationDelay  int
	stepPX           int
	minProgressPX    int
	maxAttempts      int
	settleRounds     int
	harvestOut       string
	harvestFormat    string
	noStore          bool
	keepSnapshot     bool
	harvestChromeBin string
)

// harvestCmd represents the harvest command
var harvestCmd = &cobra.Command{
	Use:   "harvest <thread-url>",
	Short: "Harvest an open thread from the chat client",
	Long: `Open the thread in Chrome, scroll its panel until no new replies load,
and archive the cleaned transcript.

Use --remote to attach to a Chrome started with --remote-debugging-port, so
the harvest runs in a new tab of a signed-in browser profile.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageURL := args[0]

		harvestCfg, err := harvestConfigFromFlags(cmd)
		if err != nil {
			return err
		}
		browserCfg := browserConfigFromFlags(cmd)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if timeout := browserCfg.Timeout(); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		var session *internal.BrowserSession
		err = internal.ShowProgress(ctx, "Connecting to browser", func() error {
			var startErr error
			session, startErr = internal.NewBrowserSession(browserCfg, pageURL)
			return startErr
		})
		if err != nil {
			return fmt.Errorf("failed to open browser session: %w", err)
		}
		defer session.Close()

		source := &recordingSource{PageSource: session}
		printer := internal.NewRoundPrinter(os.Stderr)
		collector := internal.NewCollector(source, session, harvestCfg,
			internal.WithVerbose(verbose),
			internal.WithRoundHook(printer.Report),
		)

		start := time.Now()
		result := collector.Collect(ctx)
		printer.Finish(result)
		internal.LogInfo("Harvest took %v", time.Since(start).Round(time.Millisecond))

		last := source.Last()
		title := ""
		if last != nil {
			title = last.Title
		}
		thread := internal.NewThread(pageURL, title, result)

		if len(thread.Messages) == 0 {
			internal.PrintWarning("No thread messages found; is a thread panel open?")
			return nil
		}

		return finishThread(cmd.OutOrStdout(), thread, last, harvestOut, harvestFormat, !noStore, keepSnapshot)
	},
}

// finishThread archives, caches and exports a harvested thread as requested
func finishThread(w io.Writer, thread *internal.Thread, page *internal.Page, out, format string, store, snapshot bool) error {
	if store {
		archive, err := openStore()
		if err != nil {
			return err
		}
		defer archive.Close()
		if err := archive.SaveThread(thread); err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Saved thread %s (%d messages) to %s", thread.ID, len(thread.Messages), archive.Path()))
	}

	if snapshot && page != nil {
		cache := internal.NewSnapshotCache(cfg.Store.SnapshotDir)
		if err := cache.SaveSnapshot(thread.ID, page, len(thread.Messages)); err != nil {
			internal.LogWarn("Failed to cache page snapshot: %v", err)
		} else {
			internal.LogInfo("Cached page snapshot %s", cache.GetSnapshotPath(thread.ID))
		}
	}

	if out != "" {
		path, err := writeThreadFile(thread, format, out)
		if err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Exported thread to %s", path))
	} else if !store {
		return writeThread(w, thread, format)
	}
	return nil
}

// recordingSource remembers the most recent snapshot for titles and caching
type recordingSource struct {
	internal.PageSource
	mu   sync.Mutex
	last *internal.Page
}

func (r *recordingSource) Snapshot(ctx context.Context) (*internal.Page, error) {
	page, err := r.PageSource.Snapshot(ctx)
	if err == nil {
		r.mu.Lock()
		r.last = page
		r.mu.Unlock()
	}
	return page, err
}

func (r *recordingSource) Last() *internal.Page {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// harvestConfigFromFlags applies explicitly set pagination flags on top of
// the loaded configuration
func harvestConfigFromFlags(cmd *cobra.Command) (internal.HarvestConfig, error) {
	var override internal.HarvestConfig
	flags := cmd.Flags()
	if flags.Changed("delay") {
		override.PaginationDelayMS = paginationDelay
	}
	if flags.Changed("step") {
		override.StepPX = stepPX
	}
	if flags.Changed("min-progress") {
		override.MinProgressPX = minProgressPX
	}
	if flags.Changed("max-attempts") {
		override.MaxAttempts = maxAttempts
	}
	if flags.Changed("settle-rounds") {
		override.NoProgressThreshold = settleRounds
	}

	merged := cfg.Harvest.Merge(override)
	for name, value := range map[string]int{
		"delay":         override.PaginationDelayMS,
		"step":          override.StepPX,
		"min-progress":  override.MinProgressPX,
		"max-attempts":  override.MaxAttempts,
		"settle-rounds": override.NoProgressThreshold,
	} {
		if flags.Changed(name) && value <= 0 {
			return merged, &internal.ConfigError{Field: "--" + name, Err: fmt.Errorf("must be positive, got %d", value)}
		}
	}
	return merged, merged.Validate()
}

func browserConfigFromFlags(cmd *cobra.Command) internal.BrowserConfig {
	browserCfg := cfg.Browser
	flags := cmd.Flags()
	if flags.Changed("remote") {
		browserCfg.RemoteURL = remoteURL
	}
	if flags.Changed("headless") {
		browserCfg.Headless = headless
	}
	if flags.Changed("timeout") {
		browserCfg.TimeoutSeconds = timeoutSeconds
	}
	if flags.Changed("chrome") {
		browserCfg.ChromePath = harvestChromeBin
	}
	return browserCfg
}

func init() {
	rootCmd.AddCommand(harvestCmd)
	defaults := internal.DefaultHarvestConfig()
	harvestCmd.Flags().StringVar(&remoteURL, "remote", "", "DevTools endpoint of a running Chrome (e.g. ws://127.0.0.1:9222)")
	harvestCmd.Flags().BoolVar(&headless, "headless", true, "Run a launched Chrome headless")
	harvestCmd.Flags().StringVar(&harvestChromeBin, "chrome", "", "Chrome executable to launch")
	harvestCmd.Flags().IntVar(&timeoutSeconds, "timeout", 180, "Overall harvest timeout in seconds (0 for none)")
	harvestCmd.Flags().IntVar(&paginationDelay, "delay", defaults.PaginationDelayMS, "Wait after each scroll step (ms)")
	harvestCmd.Flags().IntVar(&stepPX, "step", defaults.StepPX, "Scroll step (px)")
	harvestCmd.Flags().IntVar(&minProgressPX, "min-progress", defaults.MinProgressPX, "Minimum scroll advance per step (px)")
	harvestCmd.Flags().IntVar(&maxAttempts, "max-attempts", defaults.MaxAttempts, "Maximum scroll steps")
	harvestCmd.Flags().IntVar(&settleRounds, "settle-rounds", defaults.NoProgressThreshold, "Stop after this many rounds without new messages")
	harvestCmd.Flags().StringVarP(&harvestOut, "out", "o", "", "Also export to this file or directory")
	harvestCmd.Flags().StringVarP(&harvestFormat, "format", "f", "md", "Export format (jsonl, md, yaml, json, txt)")
	harvestCmd.Flags().BoolVar(&noStore, "no-store", false, "Do not archive the thread; print it instead unless --out is set")
	harvestCmd.Flags().BoolVar(&keepSnapshot, "keep-snapshot", false, "Cache the final page snapshot for offline re-parsing")
}
