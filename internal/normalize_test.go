package internal

import "testing"

func TestNormalizeTranscript(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses spaces", "a   b\t\tc", "a b c"},
		{"trims edges", "  \n hello \n\n", "hello"},
		{"collapses blank lines", "a\n\n\n\nb", "a\n\nb"},
		{"windows newlines", "a\r\nb", "a\nb"},
		{"tightens link spacing", "see [ Docs ] ( https://x.test )", "see [Docs](https://x.test)"},
		{"keeps list indentation", "- a\n    - b", "- a\n    - b"},
		{"trims indentation of prose", "a\n    b", "a\nb"},
		{"keeps list item continuation", "- first\n  second\nafter", "- first\n  second\nafter"},
		{"continuation ends at blank line", "- first\n\n  prose", "- first\n\nprose"},
		{"leaves code alone", "x\n```\n  a   b\n\n\n\nc\n```", "x\n```\n  a   b\n\n\n\nc\n```"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTranscript(tt.in); got != tt.want {
				t.Errorf("NormalizeTranscript(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
