package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/thread-harvest/internal"
)

// TranscriptExporter writes the plain transcript handed to language models:
// one "[timestamp] author: text" block per message, separated by blank lines
type TranscriptExporter struct{}

// Export exports a thread as a plain transcript
func (e *TranscriptExporter) Export(thread *internal.Thread, w io.Writer) error {
	for i, msg := range thread.Messages {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, FormatTranscriptLine(msg)+"\n"); err != nil {
			return fmt.Errorf("failed to write message %d: %w", i, err)
		}
	}
	return nil
}

// FormatTranscriptLine renders one message. Continuation lines of a
// multi-line text are kept as they are.
func FormatTranscriptLine(msg internal.Message) string {
	var sb strings.Builder
	if msg.Timestamp != "" {
		sb.WriteString("[" + msg.Timestamp + "] ")
	}
	sb.WriteString(msg.Author)
	sb.WriteString(": ")
	sb.WriteString(msg.Text)
	return sb.String()
}

// Transcript returns the whole thread as transcript text
func Transcript(thread *internal.Thread) string {
	var sb strings.Builder
	_ = (&TranscriptExporter{}).Export(thread, &sb)
	return sb.String()
}

// Extension returns the file extension for this format
func (e *TranscriptExporter) Extension() string {
	return "txt"
}
