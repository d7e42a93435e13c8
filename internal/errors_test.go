package internal

import (
	"errors"
	"strings"
	"testing"
)

func TestTypedErrors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "snapshot",
			err:      &SnapshotError{Source: "https://app.test/thread", Op: "capture", Err: cause},
			contains: []string{"snapshot error", "capture", "https://app.test/thread"},
		},
		{
			name:     "pagination",
			err:      &PaginationError{Step: 600, Err: cause},
			contains: []string{"pagination error", "600px"},
		},
		{
			name:     "config with field",
			err:      &ConfigError{Path: "config.yaml", Field: "harvest.max_attempts", Err: cause},
			contains: []string{"config error", "harvest.max_attempts", "config.yaml"},
		},
		{
			name:     "config without field",
			err:      &ConfigError{Path: "config.toml", Err: cause},
			contains: []string{"config error config.toml"},
		},
		{
			name:     "store",
			err:      &StoreError{Path: "/tmp/threads.db", Op: "open", Err: cause},
			contains: []string{"store error", "open", "/tmp/threads.db"},
		},
		{
			name:     "export",
			err:      &ExportError{Format: "md", Path: "out.md", Err: cause},
			contains: []string{"export error", "[md]", "out.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, should contain %q", msg, want)
				}
			}
			if !errors.Is(tt.err, cause) {
				t.Errorf("errors.Is(%T, cause) = false, want true", tt.err)
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	inner := &StoreError{Path: "db", Op: "save", Err: errors.New("disk full")}
	wrapped := &ExportError{Format: "json", Path: "out.json", Err: inner}

	var storeErr *StoreError
	if !errors.As(wrapped, &storeErr) {
		t.Fatal("errors.As() should find the nested StoreError")
	}
	if storeErr.Op != "save" {
		t.Errorf("StoreError.Op = %q, want save", storeErr.Op)
	}
}
