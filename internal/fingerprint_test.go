package internal

import (
	"strings"
	"testing"
)

func TestContentFingerprint(t *testing.T) {
	a := Message{Author: "Alice", Text: "Hello", Timestamp: "09:00"}
	if ContentFingerprint(a) != ContentFingerprint(a) {
		t.Error("ContentFingerprint() is not deterministic")
	}

	variants := []Message{
		{Author: "Bob", Text: "Hello", Timestamp: "09:00"},
		{Author: "Alice", Text: "Hello!", Timestamp: "09:00"},
		{Author: "Alice", Text: "Hello", Timestamp: "09:01"},
		// Field boundaries are part of the hash
		{Author: "AliceHello", Text: "", Timestamp: "09:00"},
	}
	for _, v := range variants {
		if ContentFingerprint(v) == ContentFingerprint(a) {
			t.Errorf("ContentFingerprint(%+v) collides with %+v", v, a)
		}
	}
}

func TestElementFingerprint(t *testing.T) {
	page := mustPage(t, `<html><body>
<div id="keyed" data-item-key="1700000000.0001">a</div>
<div class="ts" data-ts="1700000000.0002">b</div>
<div class="plain">c</div>
</body></html>`)
	msg := Message{Author: "Alice", Text: "Hello"}

	tests := []struct {
		name string
		sel  string
		want string
	}{
		{"item key wins", "#keyed", "key:data-item-key=1700000000.0001"},
		{"timestamp attribute", ".ts", "key:data-ts=1700000000.0002"},
		{"content fallback", ".plain", "content:" + ContentFingerprint(msg)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ElementFingerprint(page.Doc.Find(tt.sel), msg); got != tt.want {
				t.Errorf("ElementFingerprint() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := ElementFingerprint(nil, msg); !strings.HasPrefix(got, "content:") {
		t.Errorf("ElementFingerprint(nil) = %q, want content fingerprint", got)
	}
}
