package internal

import (
	"regexp"
	"strings"
	"unicode"
)

// Automated and system message shapes. Only unattributed messages are
// matched against these.
var systemMessagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\d+\s+repl(y|ies)\b`),
	regexp.MustCompile(`(?i)^view \d+ more repl(y|ies)`),
	regexp.MustCompile(`(?i)^last reply\b`),
	regexp.MustCompile(`(?i)\b(has )?joined (#\S+|the channel)`),
	regexp.MustCompile(`(?i)\b(has )?left (#\S+|the channel)`),
	regexp.MustCompile(`(?i)^(\S+ )?(was )?added to (#\S+|the channel)( by .*)?$`),
	regexp.MustCompile(`(?i)\b(set|changed|updated|cleared) the channel (topic|description|purpose|name)\b`),
	regexp.MustCompile(`(?i)\brenamed the channel\b`),
	regexp.MustCompile(`(?i)\bpinned (a|this) message\b`),
	regexp.MustCompile(`(?i)\bunpinned (a|this) message\b`),
	regexp.MustCompile(`(?i)\b(uploaded|shared) (a|this|an?) (file|image|snippet|post)\b`),
	regexp.MustCompile(`(?i)^this message was deleted\.?$`),
	regexp.MustCompile(`(?i)^message deleted\.?$`),
	regexp.MustCompile(`(?i)^\(?(view|show|see) (more|less|all)\)?\b`),
	regexp.MustCompile(`(?i)^new messages?$`),
	regexp.MustCompile(`(?i)^also sent to #?\S+$`),
	regexp.MustCompile(`^[\p{P}\p{S}]+$`),
}

var symbolOnlyPattern = regexp.MustCompile(`^[\d\p{P}\p{S}\s]+$`)

var uiButtonWords = map[string]bool{
	"reply": true, "replies": true, "thread": true, "edited": true,
	"(edited)": true, "more": true, "less": true, "share": true, "save": true,
	"react": true, "follow": true, "following": true, "unfollow": true,
	"copy link": true, "mark unread": true, "more actions": true,
	"add reaction": true, "reply in thread": true, "forward": true,
	"remind me": true, "edit": true, "delete": true,
}

const shortFragmentRunes = 3

// MessageStreamProcessor drops automated messages and folds unattributed
// continuation fragments into the message they belong to
type MessageStreamProcessor struct{}

// NewMessageStreamProcessor creates a new MessageStreamProcessor
func NewMessageStreamProcessor() *MessageStreamProcessor {
	return &MessageStreamProcessor{}
}

// ProcessMessages filters system messages, then merges every remaining
// unattributed message into the nearest preceding authored one. Fragments
// with nothing to attach to are dropped. raw is not modified.
func (p *MessageStreamProcessor) ProcessMessages(raw []Message) []Message {
	accepted := make([]Message, 0, len(raw))
	for _, msg := range raw {
		if IsSystemMessage(msg) {
			LogDebug("Dropping system message %q", msg.Text)
			continue
		}
		if msg.HasAuthor() {
			accepted = append(accepted, msg)
			continue
		}
		if len(accepted) == 0 {
			LogDebug("Dropping orphan fragment %q", msg.Text)
			continue
		}
		last := len(accepted) - 1
		accepted[last] = MergeContinuation(accepted[last], msg)
	}
	return accepted
}

// IsSystemMessage reports whether an unattributed message is automated
// chatter. Authored messages are never system messages.
func IsSystemMessage(m Message) bool {
	if m.HasAuthor() {
		return false
	}
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return true
	}
	if uiButtonWords[strings.ToLower(text)] {
		return true
	}
	if len([]rune(text)) <= shortFragmentRunes && !containsLetter(text) {
		return true
	}
	if symbolOnlyPattern.MatchString(text) {
		return true
	}
	for _, pattern := range systemMessagePatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// MergeContinuation appends a continuation fragment to target. Text after
// sentence punctuation or plain words is joined with a space; text after a
// line break or dash is joined directly. A later fragment timestamp (lexical
// order) replaces the target's.
func MergeContinuation(target, fragment Message) Message {
	target.Text = joinContinuation(target.Text, fragment.Text)
	if fragment.Timestamp > target.Timestamp {
		target.Timestamp = fragment.Timestamp
	}
	return target
}

// joinContinuation only trims the leading space of tail, so joining a run of
// fragments one at a time gives the same text as joining the pre-joined run.
func joinContinuation(head, tail string) string {
	tail = strings.TrimLeftFunc(tail, unicode.IsSpace)
	switch {
	case tail == "":
		return head
	case strings.TrimSpace(head) == "":
		return tail
	}
	last, _ := lastRune(head)
	switch last {
	case '\n', '-', '–', '—':
		return head + tail
	default:
		// Sentence punctuation and bare words both take one space.
		return head + " " + tail
	}
}

func lastRune(s string) (rune, bool) {
	r := []rune(s)
	if len(r) == 0 {
		return 0, false
	}
	return r[len(r)-1], true
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
