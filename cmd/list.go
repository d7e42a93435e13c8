package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/thread-harvest/internal"
	"github.com/spf13/cobra"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	partialStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived threads",
	Long:  `List every thread in the local archive, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := openStore()
		if err != nil {
			return err
		}
		defer archive.Close()

		summaries, err := archive.ListThreads()
		if err != nil {
			return err
		}
		displayThreads(summaries, time.Now())
		return nil
	},
}

func displayThreads(summaries []internal.ThreadSummary, now time.Time) {
	if len(summaries) == 0 {
		fmt.Println(headerStyle.Render("No threads archived yet"))
		return
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("Found %d thread(s)", len(summaries))))
	fmt.Println()

	w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Harvested")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 90))

	for _, sum := range summaries {
		title := sum.Title
		if title == "" {
			title = "Untitled"
		}
		title = truncate(title, 50)
		if sum.Outcome != "" && sum.Outcome != internal.OutcomeSettled {
			title += " " + partialStyle.Render("(partial)")
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
			idStyle.Render(sum.ID),
			title,
			countStyle.Render(strconv.Itoa(sum.MessageCount)),
			dateStyle.Render(formatHarvestTime(sum.HarvestedAt, now)),
		)
	}

	_ = w.Flush()
	fmt.Println()
	fmt.Println(idStyle.Render("Tip: use the ID with `thread-harvest show <id>`"))
}

func formatHarvestTime(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	t = t.Local()
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func init() {
	rootCmd.AddCommand(listCmd)
}
