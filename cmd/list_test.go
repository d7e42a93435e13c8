package cmd

import (
	"testing"
	"time"

	"github.com/iksnae/thread-harvest/internal"
)

func TestListCommand(t *testing.T) {
	tests := []struct {
		name    string
		threads []*internal.Thread
	}{
		{
			name: "empty archive",
		},
		{
			name:    "archived threads",
			threads: []*internal.Thread{internal.CreateTestThread("t1"), internal.CreateTestThread("t2")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(setupArchive(t, tt.threads...), "list")
			if _, err := runRoot(t, args...); err != nil {
				t.Errorf("list error = %v", err)
			}
		})
	}
}

func TestDisplayThreads(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		summaries []internal.ThreadSummary
	}{
		{
			name:      "no threads",
			summaries: nil,
		},
		{
			name: "mixed outcomes",
			summaries: []internal.ThreadSummary{
				{ID: "a1", Title: "Deploy failure", HarvestedAt: now, Outcome: internal.OutcomeSettled, MessageCount: 4},
				{ID: "b2", Title: "", HarvestedAt: now.Add(-48 * time.Hour), Outcome: internal.OutcomeAttemptsExhausted, MessageCount: 120},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Should not panic
			displayThreads(tt.summaries, now)
		})
	}
}

func TestFormatHarvestTime(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.Local)
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "—"},
		{"same day", now.Add(-2 * time.Hour), "Today 10:00"},
		{"this week", now.Add(-3 * 24 * time.Hour), "Tue 12:00"},
		{"this year", now.Add(-30 * 24 * time.Hour), "Apr 10 12:00"},
		{"older", time.Date(2021, 1, 2, 8, 0, 0, 0, time.Local), "2021-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatHarvestTime(tt.t, now); got != tt.want {
				t.Errorf("formatHarvestTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a much longer title", 10, "a much ..."},
		{"ünïcödé title", 8, "ünïcö..."},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := truncate(tt.in, tt.max); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
