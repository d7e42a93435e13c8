package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/thread-harvest/internal"
)

// JSONLExporter exports threads in JSONL format (one message per line)
type JSONLExporter struct{}

type jsonlRecord struct {
	Thread    string `json:"thread"`
	Index     int    `json:"index"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Export exports a thread to JSONL format
func (e *JSONLExporter) Export(thread *internal.Thread, w io.Writer) error {
	enc := json.NewEncoder(w)

	for i, msg := range thread.Messages {
		rec := jsonlRecord{
			Thread:    thread.ID,
			Index:     i,
			Author:    msg.Author,
			Text:      msg.Text,
			Timestamp: msg.Timestamp,
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
