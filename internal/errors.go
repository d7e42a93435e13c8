package internal

import "fmt"

// SnapshotError represents errors capturing or parsing a page tree
type SnapshotError struct {
	Source string // page URL or file path
	Op     string // "capture", "decode", "parse"
	Err    error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot error: %s %s: %v", e.Op, e.Source, e.Err)
}

func (e *SnapshotError) Unwrap() error {
	return e.Err
}

// PaginationError represents a failed scroll step
type PaginationError struct {
	Step int
	Err  error
}

func (e *PaginationError) Error() string {
	return fmt.Sprintf("pagination error [step %dpx]: %v", e.Step, e.Err)
}

func (e *PaginationError) Unwrap() error {
	return e.Err
}

// ConfigError represents an invalid or unreadable configuration
type ConfigError struct {
	Path  string
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error [%s] %s: %v", e.Field, e.Path, e.Err)
	}
	return fmt.Sprintf("config error %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// StoreError represents errors accessing the thread archive
type StoreError struct {
	Path string
	Op   string // "open", "save", "load", "list", "delete"
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
