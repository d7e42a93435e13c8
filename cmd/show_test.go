package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/iksnae/thread-harvest/internal"
)

func TestShowCommand(t *testing.T) {
	t.Cleanup(func() {
		limit = 0
		raw = false
	})
	base := setupArchive(t, internal.CreateTestThread("t1"))

	tests := []struct {
		name     string
		args     []string
		wantErr  bool
		contains []string
		absent   []string
	}{
		{
			name:    "without thread ID",
			args:    []string{"show"},
			wantErr: true,
		},
		{
			name:    "unknown thread",
			args:    []string{"show", "missing"},
			wantErr: true,
		},
		{
			name:     "full transcript",
			args:     []string{"show", "t1", "--limit", "0", "--raw"},
			contains: []string{"[2024-05-01 09:00] Alice: Has anyone seen", "Bob: Yes, see [the runbook]"},
		},
		{
			name:     "limited transcript",
			args:     []string{"show", "t1", "--limit", "1", "--raw"},
			contains: []string{"Alice:"},
			absent:   []string{"Bob:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runRoot(t, append(base, tt.args...)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("show error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, unwanted := range tt.absent {
				if strings.Contains(out, unwanted) {
					t.Errorf("output should not contain %q:\n%s", unwanted, out)
				}
			}
		})
	}
}

func TestShowCommand_NotFoundError(t *testing.T) {
	args := append(setupArchive(t), "show", "missing")
	_, err := runRoot(t, args...)
	if !errors.Is(err, internal.ErrThreadNotFound) {
		t.Errorf("error = %v, want ErrThreadNotFound", err)
	}
}

func TestLimitThread(t *testing.T) {
	thread := internal.CreateTestThread("t1")
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"zero shows all", 0, 2},
		{"negative shows all", -1, 2},
		{"limit", 1, 1},
		{"limit above length", 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := limitThread(thread, tt.n)
			if len(got.Messages) != tt.want {
				t.Errorf("len(Messages) = %d, want %d", len(got.Messages), tt.want)
			}
			if len(thread.Messages) != 2 {
				t.Error("limitThread modified the original thread")
			}
		})
	}
}

func TestRenderThread(t *testing.T) {
	thread := internal.CreateTestThread("t1")
	thread.Outcome = internal.OutcomeAttemptsExhausted

	out := renderThread(thread, 1)
	for _, want := range []string{"Test Thread", "Alice", "Has anyone seen the deploy fail on staging?", "attempts-exhausted", "1 more message(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderThread() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "runbook") {
		t.Error("renderThread() should honour the limit")
	}
}
