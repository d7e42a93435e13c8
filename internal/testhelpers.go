package internal

import (
	"time"
)

// CreateTestThread creates a test thread with sample data
func CreateTestThread(id string) *Thread {
	return &Thread{
		ID:          id,
		URL:         "https://chat.example.test/client/T1/C1/thread/C1-1700000000.000100",
		Title:       "Test Thread",
		HarvestedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Outcome:     OutcomeSettled,
		Messages: []Message{
			{
				Author:    "Alice",
				Text:      "Has anyone seen the deploy fail on staging?",
				Timestamp: "2024-05-01 09:00",
			},
			{
				Author:    "Bob",
				Text:      "Yes, see [the runbook](https://docs.example.test/runbook).",
				Timestamp: "2024-05-01 09:05",
			},
		},
	}
}

// CreateTestThreadWithMessages creates a test thread with custom messages
func CreateTestThreadWithMessages(id string, messages []Message) *Thread {
	t := CreateTestThread(id)
	t.Messages = messages
	return t
}
