// package shared defines helpers used across the conversion pipeline
package shared

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// NewFileLogger creates a logger writing to the given file path, creating
// parent directories as needed. Used by the TUI so log lines don't clobber
// the rendered view.
func NewFileLogger(path string) (*log.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return NewLogger(f), nil
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// EpochFromISO converts an ISO-8601 timestamp string to Unix seconds.
//
// An empty or unparseable value normalizes to epoch zero. Absent timestamps
// are an expected condition in raw snapshots, not an error.
func EpochFromISO(value string) int64 {
	if value == "" {
		return 0
	}

	// Spotify emits RFC 3339 with a trailing Z; tolerate a bare offset too.
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Unix()
		}
	}

	return 0
}

// NowISO returns the current UTC time as an ISO-8601 string, the format used
// in bronze snapshots and the mapping ledger.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// FormatDuration renders a millisecond duration as m:ss for report output.
func FormatDuration(durationMS int) string {
	seconds := durationMS / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// IsTopicChannel reports whether a channel name follows the auto-generated
// "Topic" convention used by official audio uploads.
func IsTopicChannel(channelName string) bool {
	return channelName != "" && strings.Contains(strings.ToLower(channelName), "topic")
}
