package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/thread-harvest/internal"
	"github.com/iksnae/thread-harvest/testutil"
	"gopkg.in/yaml.v3"
)

func TestJSONExporter_Export(t *testing.T) {
	thread := internal.CreateTestThread("abc123")

	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(thread, &buf); err != nil {
		t.Fatalf("JSONExporter.Export() error = %v", err)
	}

	var got internal.Thread
	testutil.JSONUnmarshal(t, buf.Bytes(), &got)
	if got.ID != "abc123" {
		t.Errorf("ID = %q, want abc123", got.ID)
	}
	if len(got.Messages) != 2 || got.Messages[1].Author != "Bob" {
		t.Errorf("Messages = %+v, want Alice and Bob", got.Messages)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("JSONExporter.Export() output is not indented")
	}
}

func TestJSONLExporter_Export(t *testing.T) {
	thread := internal.CreateTestThreadWithMessages("t1", []internal.Message{
		{Author: "Alice", Text: "line one\nline two", Timestamp: "09:00"},
		{Author: "Bob", Text: "ok"},
	})

	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(thread, &buf); err != nil {
		t.Fatalf("JSONLExporter.Export() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("JSONLExporter.Export() wrote %d lines, want 2", len(lines))
	}

	var first map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0 is not JSON: %v", err)
	}
	if first["author"] != "Alice" || first["text"] != "line one\nline two" || first["thread"] != "t1" {
		t.Errorf("line 0 = %v", first)
	}

	var second map[string]interface{}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("line 1 is not JSON: %v", err)
	}
	if _, ok := second["timestamp"]; ok {
		t.Error("empty timestamp should be omitted")
	}
	if second["index"] != float64(1) {
		t.Errorf("index = %v, want 1", second["index"])
	}
}

func TestJSONLExporter_EmptyThread(t *testing.T) {
	var buf bytes.Buffer
	thread := internal.CreateTestThreadWithMessages("empty", nil)
	if err := (&JSONLExporter{}).Export(thread, &buf); err != nil {
		t.Fatalf("JSONLExporter.Export() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("JSONLExporter.Export() = %q, want empty", buf.String())
	}
}

func TestYAMLExporter_Export(t *testing.T) {
	thread := internal.CreateTestThread("yaml1")

	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(thread, &buf); err != nil {
		t.Fatalf("YAMLExporter.Export() error = %v", err)
	}

	var got internal.Thread
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if got.ID != "yaml1" || len(got.Messages) != 2 {
		t.Errorf("YAMLExporter.Export() round trip = %+v", got)
	}
	if got.Outcome != internal.OutcomeSettled {
		t.Errorf("Outcome = %q, want settled", got.Outcome)
	}
}

func TestMarkdownExporter_Export(t *testing.T) {
	thread := internal.CreateTestThread("md1")

	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(thread, &buf); err != nil {
		t.Fatalf("MarkdownExporter.Export() error = %v", err)
	}
	out := buf.String()

	wants := []string{
		"# Test Thread",
		"**Participants:** Alice, Bob",
		"**Messages:** 2",
		"**Alice** (2024-05-01 09:00)",
		"[the runbook](https://docs.example.test/runbook)",
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("MarkdownExporter.Export() missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "may be incomplete") {
		t.Error("settled thread should not carry the incomplete notice")
	}
}

func TestMarkdownExporter_IncompleteNotice(t *testing.T) {
	thread := internal.CreateTestThread("md2")
	thread.Outcome = internal.OutcomeAttemptsExhausted
	thread.Title = ""

	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(thread, &buf); err != nil {
		t.Fatalf("MarkdownExporter.Export() error = %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "# Thread md2") {
		t.Errorf("untitled thread heading = %q", strings.SplitN(out, "\n", 2)[0])
	}
	if !strings.Contains(out, "attempts-exhausted") {
		t.Error("incomplete notice missing outcome")
	}
}

func TestTranscriptExporter_Export(t *testing.T) {
	thread := internal.CreateTestThreadWithMessages("txt1", []internal.Message{
		{Author: "Alice", Text: "Hello world.", Timestamp: "09:00"},
		{Author: "Bob", Text: "Hi"},
	})

	var buf bytes.Buffer
	if err := (&TranscriptExporter{}).Export(thread, &buf); err != nil {
		t.Fatalf("TranscriptExporter.Export() error = %v", err)
	}
	want := "[09:00] Alice: Hello world.\n\nBob: Hi\n"
	if got := buf.String(); got != want {
		t.Errorf("TranscriptExporter.Export() = %q, want %q", got, want)
	}
	if got := Transcript(thread); got != want {
		t.Errorf("Transcript() = %q, want %q", got, want)
	}
}
