package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/thread-harvest/internal"
)

// MarkdownExporter exports threads in Markdown format. Message text is
// already markdown and is written unescaped.
type MarkdownExporter struct{}

// Export exports a thread to Markdown format
func (e *MarkdownExporter) Export(thread *internal.Thread, w io.Writer) error {
	title := thread.Title
	if title == "" {
		title = "Thread " + thread.ID
	}
	_, _ = fmt.Fprintf(w, "# %s\n\n", title)

	if thread.URL != "" {
		_, _ = fmt.Fprintf(w, "**Source:** %s  \n", thread.URL)
	}
	if !thread.HarvestedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Harvested:** %s  \n", thread.HarvestedAt.Format("2006-01-02 15:04 MST"))
	}
	if participants := thread.Participants(); len(participants) > 0 {
		_, _ = fmt.Fprintf(w, "**Participants:** %s  \n", strings.Join(participants, ", "))
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(thread.Messages))

	if thread.Outcome != "" && thread.Outcome != internal.OutcomeSettled {
		_, _ = fmt.Fprintf(w, "> Harvest ended with %s; the transcript may be incomplete.\n\n", thread.Outcome)
	}

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range thread.Messages {
		timestamp := ""
		if msg.Timestamp != "" {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp)
		}
		_, _ = fmt.Fprintf(w, "**%s**%s\n\n%s\n\n", msg.Author, timestamp, msg.Text)

		// Add horizontal rule after each message (except the last one)
		if i < len(thread.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
