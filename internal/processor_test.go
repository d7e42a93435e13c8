package internal

import (
	"reflect"
	"testing"
)

func TestProcessMessages(t *testing.T) {
	tests := []struct {
		name string
		raw  []Message
		want []Message
	}{
		{
			name: "continuation joins with a space",
			raw: []Message{
				{Author: "Alice", Text: "Hello"},
				{Author: UnknownAuthor, Text: "world."},
			},
			want: []Message{{Author: "Alice", Text: "Hello world."}},
		},
		{
			name: "orphan system message is dropped",
			raw:  []Message{{Author: UnknownAuthor, Text: "5 replies"}},
			want: []Message{},
		},
		{
			name: "leading orphan fragment is dropped",
			raw: []Message{
				{Author: UnknownAuthor, Text: "stray text before anyone spoke"},
				{Author: "Bob", Text: "First real message"},
			},
			want: []Message{{Author: "Bob", Text: "First real message"}},
		},
		{
			name: "system chatter between messages is dropped",
			raw: []Message{
				{Author: "Alice", Text: "Question?"},
				{Author: UnknownAuthor, Text: "Carol joined #general"},
				{Author: UnknownAuthor, Text: "Reply"},
				{Author: "Bob", Text: "Answer."},
			},
			want: []Message{
				{Author: "Alice", Text: "Question?"},
				{Author: "Bob", Text: "Answer."},
			},
		},
		{
			name: "fragments attach to the nearest authored message",
			raw: []Message{
				{Author: "Alice", Text: "one"},
				{Author: "Bob", Text: "two"},
				{Author: UnknownAuthor, Text: "three"},
				{Author: UnknownAuthor, Text: "four"},
			},
			want: []Message{
				{Author: "Alice", Text: "one"},
				{Author: "Bob", Text: "two three four"},
			},
		},
		{
			name: "authored messages that look like system text are kept",
			raw:  []Message{{Author: "Dana", Text: "5 replies"}},
			want: []Message{{Author: "Dana", Text: "5 replies"}},
		},
		{
			name: "empty input",
			raw:  nil,
			want: []Message{},
		},
	}

	p := NewMessageStreamProcessor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.ProcessMessages(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ProcessMessages() = %+v, want %+v", got, tt.want)
			}
			for _, m := range got {
				if !m.HasAuthor() {
					t.Errorf("processed output contains unattributed message %+v", m)
				}
			}
		})
	}
}

func TestProcessMessages_DoesNotModifyInput(t *testing.T) {
	raw := []Message{
		{Author: "Alice", Text: "Hello"},
		{Author: UnknownAuthor, Text: "world."},
	}
	NewMessageStreamProcessor().ProcessMessages(raw)
	if raw[0].Text != "Hello" || len(raw) != 2 {
		t.Errorf("input was modified: %+v", raw)
	}
}

func TestProcessMessages_Idempotent(t *testing.T) {
	raw := []Message{
		{Author: UnknownAuthor, Text: "orphan"},
		{Author: "Alice", Text: "Hello", Timestamp: "09:00"},
		{Author: UnknownAuthor, Text: "world.", Timestamp: "09:01"},
		{Author: UnknownAuthor, Text: "3 replies"},
		{Author: "Bob", Text: "Hi"},
	}
	p := NewMessageStreamProcessor()
	once := p.ProcessMessages(raw)
	twice := p.ProcessMessages(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("processing is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestIsSystemMessage(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"5 replies", true},
		{"1 reply", true},
		{"View 3 more replies", true},
		{"Last reply today at 10:02", true},
		{"Carol has joined the channel", true},
		{"Dave left #ops", true},
		{"Erin was added to #ops by Frank", true},
		{"set the channel topic: deploys", true},
		{"renamed the channel from ops to infra", true},
		{"pinned a message to this channel", true},
		{"uploaded a file", true},
		{"This message was deleted.", true},
		{"Show more", true},
		{"New messages", true},
		{"Also sent to #general", true},
		{"...", true},
		{"12:04", true},
		{"👍", true},
		{"", true},
		{"reply", true},
		{"Copy link", true},
		{"ok", false},
		{"world.", false},
		{"the deploy finished without errors", false},
		{"we joined forces on this one", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := IsSystemMessage(Message{Author: UnknownAuthor, Text: tt.text}); got != tt.want {
				t.Errorf("IsSystemMessage(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}

	if IsSystemMessage(Message{Author: "Alice", Text: "5 replies"}) {
		t.Error("authored messages must never be system messages")
	}
}

func TestMergeContinuation(t *testing.T) {
	tests := []struct {
		name     string
		target   Message
		fragment Message
		want     Message
	}{
		{
			name:     "after sentence punctuation",
			target:   Message{Author: "A", Text: "Done."},
			fragment: Message{Text: "Next step"},
			want:     Message{Author: "A", Text: "Done. Next step"},
		},
		{
			name:     "after a line break",
			target:   Message{Author: "A", Text: "List:\n"},
			fragment: Message{Text: "- item"},
			want:     Message{Author: "A", Text: "List:\n- item"},
		},
		{
			name:     "after a dash",
			target:   Message{Author: "A", Text: "long-"},
			fragment: Message{Text: "running"},
			want:     Message{Author: "A", Text: "long-running"},
		},
		{
			name:     "empty fragment",
			target:   Message{Author: "A", Text: "kept"},
			fragment: Message{Text: "   "},
			want:     Message{Author: "A", Text: "kept"},
		},
		{
			name:     "later timestamp wins",
			target:   Message{Author: "A", Text: "a", Timestamp: "09:00"},
			fragment: Message{Text: "b", Timestamp: "09:05"},
			want:     Message{Author: "A", Text: "a b", Timestamp: "09:05"},
		},
		{
			name:     "earlier timestamp ignored",
			target:   Message{Author: "A", Text: "a", Timestamp: "09:05"},
			fragment: Message{Text: "b", Timestamp: "09:00"},
			want:     Message{Author: "A", Text: "a b", Timestamp: "09:05"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeContinuation(tt.target, tt.fragment); got != tt.want {
				t.Errorf("MergeContinuation() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMergeContinuation_FoldMatchesRun(t *testing.T) {
	tests := []struct {
		name      string
		target    Message
		fragments []Message
	}{
		{
			name:   "dash endings",
			target: Message{Author: "A", Text: "the deploy is long-"},
			fragments: []Message{
				{Text: "running and the check –"},
				{Text: "failed twice"},
			},
		},
		{
			name:   "line break endings",
			target: Message{Author: "A", Text: "Steps:\n"},
			fragments: []Message{
				{Text: "build the image\n"},
				{Text: "  push it\n"},
				{Text: "roll out"},
			},
		},
		{
			name:   "sentence punctuation",
			target: Message{Author: "A", Text: "Done."},
			fragments: []Message{
				{Text: "Next step is review!"},
				{Text: "Then merge?"},
				{Text: "ok then"},
			},
		},
		{
			name:   "blank fragment inside the run",
			target: Message{Author: "A", Text: "first part", Timestamp: "09:00"},
			fragments: []Message{
				{Text: "second part", Timestamp: "09:02"},
				{Text: "   "},
				{Text: "third part", Timestamp: "09:01"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stepwise := tt.target
			for _, f := range tt.fragments {
				stepwise = MergeContinuation(stepwise, f)
			}

			run := tt.fragments[0]
			for _, f := range tt.fragments[1:] {
				run = MergeContinuation(run, f)
			}
			whole := MergeContinuation(tt.target, run)

			if stepwise != whole {
				t.Errorf("stepwise merge = %+v, merge of joined run = %+v", stepwise, whole)
			}

			raw := append([]Message{tt.target}, tt.fragments...)
			got := NewMessageStreamProcessor().ProcessMessages(raw)
			if len(got) != 1 || got[0] != stepwise {
				t.Errorf("ProcessMessages() = %+v, want [%+v]", got, stepwise)
			}
		})
	}
}
