package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/thread-harvest/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that thread-harvest can run on this machine",
	Long: `Check the health of thread-harvest by verifying:
  • Configuration validity
  • Archive database access
  • Snapshot cache directory
  • Browser availability (local Chrome or remote endpoint)
  • Summarization API key

Browser and API key problems are reported as warnings, since parse and
export work without them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(sectionStyle.Render("🔍 Thread Harvest Health Check"))
		fmt.Println()

		failed := false

		// Step 1: Configuration
		fmt.Println(infoStyle.Render("Step 1: Validating configuration..."))
		if err := cfg.Validate(); err != nil {
			fmt.Println(errorStyle.Render("❌ Invalid configuration:"), err)
			failed = true
		} else {
			fmt.Println(successStyle.Render("✅ Configuration valid"))
			if healthcheckVerbose {
				fmt.Printf("   Step: %dpx, delay: %s, max attempts: %d, settle rounds: %d\n",
					cfg.Harvest.StepPX, cfg.Harvest.PaginationDelay(), cfg.Harvest.MaxAttempts, cfg.Harvest.NoProgressThreshold)
			}
		}
		fmt.Println()

		// Step 2: Archive
		fmt.Println(infoStyle.Render("Step 2: Opening archive..."))
		archive, err := openStore()
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Failed to open archive:"), err)
			failed = true
		} else {
			summaries, listErr := archive.ListThreads()
			_ = archive.Close()
			if listErr != nil {
				fmt.Println(errorStyle.Render("❌ Failed to read archive:"), listErr)
				failed = true
			} else {
				fmt.Println(successStyle.Render(fmt.Sprintf("✅ Archive readable (%d thread(s))", len(summaries))))
			}
			if healthcheckVerbose {
				fmt.Printf("   Database: %s\n", cfg.Store.Path)
			}
		}
		fmt.Println()

		// Step 3: Snapshot cache
		fmt.Println(infoStyle.Render("Step 3: Checking snapshot cache..."))
		cache := internal.NewSnapshotCache(cfg.Store.SnapshotDir)
		if index, err := cache.LoadIndex(); err != nil {
			fmt.Println(warningStyle.Render("⚠️  Snapshot index unreadable:"), err)
		} else if _, statErr := os.Stat(cache.GetCacheDir()); os.IsNotExist(statErr) {
			fmt.Println(warningStyle.Render("⚠️  Snapshot directory not created yet"))
		} else {
			fmt.Println(successStyle.Render(fmt.Sprintf("✅ Snapshot cache ready (%d snapshot(s))", len(index.Snapshots))))
		}
		if healthcheckVerbose {
			fmt.Printf("   Directory: %s\n", cache.GetCacheDir())
		}
		fmt.Println()

		// Step 4: Browser
		fmt.Println(infoStyle.Render("Step 4: Locating a browser..."))
		switch {
		case cfg.Browser.RemoteURL != "":
			fmt.Println(successStyle.Render("✅ Remote browser configured"))
			if healthcheckVerbose {
				fmt.Printf("   Endpoint: %s\n", cfg.Browser.RemoteURL)
			}
		default:
			path := cfg.Browser.ChromePath
			if path == "" {
				path, _ = internal.DetectChrome()
			}
			if path == "" {
				fmt.Println(warningStyle.Render("⚠️  No Chrome or Chromium found"))
				if healthcheckVerbose {
					fmt.Println("   Install Chrome, set browser.chrome_path, or pass --remote to harvest")
				}
			} else {
				fmt.Println(successStyle.Render("✅ Chrome found"))
				if healthcheckVerbose {
					fmt.Printf("   Path: %s\n", path)
				}
			}
		}
		fmt.Println()

		// Step 5: Summaries
		fmt.Println(infoStyle.Render("Step 5: Checking summarization key..."))
		if cfg.Summary.APIKey() == "" {
			fmt.Println(warningStyle.Render(fmt.Sprintf("⚠️  %s is not set, summarize is unavailable", cfg.Summary.APIKeyEnv)))
		} else {
			fmt.Println(successStyle.Render("✅ API key present"))
			if healthcheckVerbose {
				fmt.Printf("   Model: %s\n", cfg.Summary.Model)
			}
		}
		fmt.Println()

		// Summary
		fmt.Println(sectionStyle.Render("📊 Summary"))
		fmt.Println()
		if failed {
			fmt.Println(errorStyle.Render("❌ Health check failed"))
			return fmt.Errorf("health check failed")
		}
		fmt.Println(successStyle.Render("✅ Health check passed!"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckVerbose, "details", false, "Show detailed diagnostic information")
}
