// Package summarize turns harvested thread transcripts into short structured
// summaries using a language model.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/iksnae/thread-harvest/internal"
	"github.com/iksnae/thread-harvest/internal/export"
)

// Summary is the structured result returned by a Summarizer
type Summary struct {
	Title       string       `json:"title" jsonschema:"required"`
	Summary     string       `json:"summary" jsonschema:"required"`
	KeyPoints   []string     `json:"key_points" jsonschema:"required"`
	Decisions   []string     `json:"decisions" jsonschema:"required"`
	ActionItems []ActionItem `json:"action_items" jsonschema:"required"`
}

// ActionItem is a follow-up task mentioned in the thread
type ActionItem struct {
	Owner string `json:"owner" jsonschema:"required"`
	Task  string `json:"task" jsonschema:"required"`
}

// Summarizer summarizes one thread
type Summarizer interface {
	Summarize(ctx context.Context, thread *internal.Thread) (*Summary, error)
}

const instructions = `You summarize chat threads for someone who did not read them.
The user message is a transcript, one message per block, formatted as
"[timestamp] author: text". Message text may contain markdown.

Return:
- title: a short subject line for the thread
- summary: 2-4 sentences covering the question and where the discussion landed
- key_points: the facts or arguments that matter, one per item
- decisions: what was agreed, empty if nothing was
- action_items: follow-ups with their owner ("" when nobody took it)

Use only what is in the transcript. Keep names as written.`

// BuildInput renders the model input for a thread
func BuildInput(thread *internal.Thread) string {
	var sb strings.Builder
	if thread.Title != "" {
		fmt.Fprintf(&sb, "Thread: %s\n", thread.Title)
	}
	if participants := thread.Participants(); len(participants) > 0 {
		fmt.Fprintf(&sb, "Participants: %s\n", strings.Join(participants, ", "))
	}
	if thread.Outcome != "" && thread.Outcome != internal.OutcomeSettled {
		sb.WriteString("Note: the transcript may be missing later messages.\n")
	}
	sb.WriteString("\n")
	sb.WriteString(export.Transcript(thread))
	return sb.String()
}

// Markdown renders a summary for terminal or file output
func (s *Summary) Markdown() string {
	var sb strings.Builder
	if s.Title != "" {
		fmt.Fprintf(&sb, "## %s\n\n", s.Title)
	}
	sb.WriteString(strings.TrimSpace(s.Summary))
	sb.WriteString("\n")

	writeList := func(heading string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n### %s\n\n", heading)
		for _, item := range items {
			fmt.Fprintf(&sb, "- %s\n", item)
		}
	}
	writeList("Key points", s.KeyPoints)
	writeList("Decisions", s.Decisions)

	if len(s.ActionItems) > 0 {
		items := make([]string, len(s.ActionItems))
		for i, a := range s.ActionItems {
			if a.Owner != "" {
				items[i] = fmt.Sprintf("**%s**: %s", a.Owner, a.Task)
			} else {
				items[i] = a.Task
			}
		}
		writeList("Action items", items)
	}
	return sb.String()
}
