package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/thread-harvest/internal"
	"github.com/spf13/cobra"
)

var (
	limit int
	raw   bool
)

var (
	// Styles for show command
	threadHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	threadMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			MarginBottom(1)

	authorStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true).Padding(0, 1),
		lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true).Padding(0, 1),
		lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true).Padding(0, 1),
		lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true).Padding(0, 1),
	}

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <thread-id>",
	Short: "Show an archived thread",
	Long:  `Display the transcript of an archived thread.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := openStore()
		if err != nil {
			return err
		}
		defer archive.Close()

		thread, err := archive.LoadThread(args[0])
		if err != nil {
			return err
		}

		if raw || !internal.IsTerminal() {
			return writeThread(cmd.OutOrStdout(), limitThread(thread, limit), "txt")
		}
		fmt.Print(renderThread(thread, limit))
		return nil
	},
}

func limitThread(thread *internal.Thread, n int) *internal.Thread {
	if n <= 0 || n >= len(thread.Messages) {
		return thread
	}
	limited := *thread
	limited.Messages = thread.Messages[:n]
	return &limited
}

func renderThread(thread *internal.Thread, n int) string {
	var sb strings.Builder

	title := thread.Title
	if title == "" {
		title = "Thread " + thread.ID
	}
	sb.WriteString(threadHeaderStyle.Render(title))
	sb.WriteString("\n")

	meta := fmt.Sprintf("%s · %d message(s) · %s", thread.ID, len(thread.Messages), strings.Join(thread.Participants(), ", "))
	if thread.Outcome != "" && thread.Outcome != internal.OutcomeSettled {
		meta += " · " + string(thread.Outcome)
	}
	sb.WriteString(threadMetaStyle.Render(meta))
	sb.WriteString("\n")

	styleFor := make(map[string]lipgloss.Style)
	shown := limitThread(thread, n)
	for _, msg := range shown.Messages {
		style, ok := styleFor[msg.Author]
		if !ok {
			style = authorStyles[len(styleFor)%len(authorStyles)]
			styleFor[msg.Author] = style
		}
		header := style.Render(msg.Author)
		if msg.Timestamp != "" {
			header += " " + timestampStyle.Render(msg.Timestamp)
		}
		sb.WriteString(header)
		sb.WriteString("\n")
		sb.WriteString(messageContentStyle.Render(msg.Text))
		sb.WriteString("\n")
	}

	if hidden := len(thread.Messages) - len(shown.Messages); hidden > 0 {
		sb.WriteString(timestampStyle.Render(fmt.Sprintf("… %d more message(s), use --limit 0 to show all", hidden)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the first N messages (0 for all)")
	showCmd.Flags().BoolVar(&raw, "raw", false, "Print the plain transcript without styling")
}
