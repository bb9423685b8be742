// Package logx builds the process logger and colours short status words
// for terminal output.
package logx

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

// DebugEnv switches debug logging on when set to "true"
const DebugEnv = "DESCRIBE_DEBUG"

// DebugEnabled reports whether debug logging was requested via the environment
func DebugEnabled() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(DebugEnv)), "true")
}

// New returns a text logger on w. verbose or DESCRIBE_DEBUG lowers the level
// to Debug; otherwise only warnings and errors are written.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose || DebugEnabled() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ColorEnabled reports whether f is a terminal and NO_COLOR is unset
func ColorEnabled(f *os.File) bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

const (
	reset  = "\x1b[0m"
	red    = "\x1b[31m"
	green  = "\x1b[32m"
	yellow = "\x1b[33m"
)

// ColorizeOutcome wraps an outcome word in ANSI colour when color is true.
// "ok" is green, rate limits and connection failures are yellow, anything else red.
func ColorizeOutcome(outcome string, color bool) string {
	if !color {
		return outcome
	}
	switch outcome {
	case "ok":
		return green + outcome + reset
	case "RateLimitExceeded", "ConnectionFailure":
		return yellow + outcome + reset
	default:
		return red + outcome + reset
	}
}

// FormatCallLine prints a single line summary of one describe call.
//
// Example:
// [DESCRIBE] 2026/01/26 - 17:44:22 | ok | 1.2s | openai gpt-4o | items=2 mode=image
func FormatCallLine(ts time.Time, outcome string, latency time.Duration, provider, model string, items int, image bool, color bool) string {
	mode := "text"
	if image {
		mode = "image"
	}
	return fmt.Sprintf("[DESCRIBE] %s | %s | %s | %s %s | items=%d mode=%s",
		ts.Format("2006/01/02 - 15:04:05"),
		ColorizeOutcome(outcome, color),
		latency.Round(time.Millisecond).String(),
		strings.TrimSpace(provider),
		strings.TrimSpace(model),
		items,
		mode,
	)
}
