package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ShowProgress runs fn while a spinner with message is shown on stderr.
// Outside a terminal the message is logged and fn runs directly.
func ShowProgress(ctx context.Context, message string, fn func() error) error {
	if !isTerminal(os.Stderr) {
		LogInfo("%s", message)
		return fn()
	}
	return showProgressSimple(ctx, os.Stderr, message, fn)
}

func showProgressSimple(ctx context.Context, w io.Writer, message string, fn func() error) error {
	done := make(chan error, 1)
	stop := make(chan struct{})
	spinnerDone := make(chan struct{})

	go func() {
		defer close(spinnerDone)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", progressStyle.Render(spinnerChars[i%len(spinnerChars)]), message)
			}
		}
	}()

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		close(stop)
		<-spinnerDone
		if err != nil {
			fmt.Fprintf(w, "\r%s %s\n", errorStyle.Render("✗"), message)
			return err
		}
		fmt.Fprintf(w, "\r%s %s\n", successStyle.Render("✓"), message)
		return nil
	case <-ctx.Done():
		close(stop)
		<-spinnerDone
		return ctx.Err()
	}
}

// RoundPrinter renders collector round reports as a single updating status
// line
type RoundPrinter struct {
	mu    sync.Mutex
	w     io.Writer
	tty   bool
	frame int
}

// NewRoundPrinter creates a RoundPrinter writing to w
func NewRoundPrinter(w io.Writer) *RoundPrinter {
	return &RoundPrinter{w: w, tty: isTerminal(w)}
}

// Report prints one round. It is suitable for WithRoundHook.
func (rp *RoundPrinter) Report(r RoundReport) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	line := fmt.Sprintf("round %d: %d message(s)", r.Attempt, r.Total)
	if r.NewMessages > 0 {
		line += fmt.Sprintf(" (+%d)", r.NewMessages)
	} else if r.NoNewRounds > 0 {
		line += dimStyle.Render(fmt.Sprintf(" [%d quiet]", r.NoNewRounds))
	}
	if r.Err != nil {
		line += " " + warningStyle.Render("retrying")
	}

	if !rp.tty {
		LogDebug("Harvest %s", line)
		return
	}
	fmt.Fprintf(rp.w, "\r\033[K%s %s", progressStyle.Render(spinnerChars[rp.frame%len(spinnerChars)]), line)
	rp.frame++
}

// Finish ends the status line
func (rp *RoundPrinter) Finish(result HarvestResult) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if rp.tty {
		fmt.Fprint(rp.w, "\r\033[K")
	}
	switch result.Outcome {
	case OutcomeSettled:
		PrintSuccess(fmt.Sprintf("Harvested %d message(s) in %d round(s)", len(result.Messages), result.Attempts))
	default:
		PrintWarning(fmt.Sprintf("Harvest %s after %d round(s); %d message(s) may be partial", result.Outcome, result.Attempts, len(result.Messages)))
	}
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// IsTerminal reports whether stdout is a terminal
func IsTerminal() bool {
	return isTerminal(os.Stdout)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	if isTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", successStyle.Render("✓"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintError prints an error message
func PrintError(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("✗"), message)
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", message)
	}
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	if isTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", progressStyle.Render("ℹ"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", warningStyle.Render("⚠"), message)
	} else {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", message)
	}
}
