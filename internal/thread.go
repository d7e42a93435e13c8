package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// UnknownAuthor is the author recorded when no attribution could be recovered
// from a message element.
const UnknownAuthor = "unknown"

// Message represents one harvested thread message
type Message struct {
	Author    string `json:"author" yaml:"author"`
	Text      string `json:"text" yaml:"text"`
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// HasAuthor reports whether the message carries a real attribution
func (m Message) HasAuthor() bool {
	return m.Author != "" && m.Author != UnknownAuthor
}

// Thread is a harvested, cleaned thread transcript
type Thread struct {
	ID          string    `json:"id" yaml:"id"`
	URL         string    `json:"url,omitempty" yaml:"url,omitempty"`
	Title       string    `json:"title,omitempty" yaml:"title,omitempty"`
	HarvestedAt time.Time `json:"harvested_at" yaml:"harvested_at"`
	Outcome     Outcome   `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	Messages    []Message `json:"messages" yaml:"messages"`
}

// NewThread builds a Thread from a harvest result. The ID is stable for the
// same page URL and parent message so re-harvesting replaces the archived copy.
func NewThread(url, title string, result HarvestResult) *Thread {
	return &Thread{
		ID:          threadID(url, result.Messages),
		URL:         url,
		Title:       title,
		HarvestedAt: time.Now().UTC(),
		Outcome:     result.Outcome,
		Messages:    result.Messages,
	}
}

func threadID(url string, messages []Message) string {
	h := sha256.New()
	h.Write([]byte(url))
	if len(messages) > 0 {
		h.Write([]byte{0})
		h.Write([]byte(ContentFingerprint(messages[0])))
	}
	return hex.EncodeToString(h.Sum(nil))[:12]
}

// Participants returns the distinct authors in first-seen order
func (t *Thread) Participants() []string {
	seen := make(map[string]bool)
	var authors []string
	for _, msg := range t.Messages {
		if !seen[msg.Author] {
			seen[msg.Author] = true
			authors = append(authors, msg.Author)
		}
	}
	return authors
}
