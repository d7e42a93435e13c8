package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/thread-harvest/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(thread *internal.Thread, w io.Writer) error
	Extension() string
}

// Formats lists the supported format names
var Formats = []string{"jsonl", "md", "yaml", "json", "txt"}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "txt", "text", "transcript":
		return &TranscriptExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(Formats, ", "))
	}
}
