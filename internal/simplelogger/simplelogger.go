// Package simplelogger builds the process logger.
package simplelogger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// EnvLogFile names the file log records are appended to. EnvLogLevel sets the minimum level (debug, info, warn, error); the default is info.
const (
	EnvLogFile  = "SPLITDIFF_LOG_FILE"
	EnvLogLevel = "SPLITDIFF_LOG_LEVEL"
)

// New returns a logger that appends text records to the file named by SPLITDIFF_LOG_FILE.
//
// If SPLITDIFF_LOG_FILE is unset/empty or the path can't be opened as a file, records are discarded. Logging never fails the caller.
func New() *slog.Logger {
	path := os.Getenv(EnvLogFile)
	if path == "" {
		return slog.New(slog.DiscardHandler)
	}

	level := slog.LevelInfo
	if s := strings.TrimSpace(os.Getenv(EnvLogLevel)); s != "" {
		_ = level.UnmarshalText([]byte(s))
	}

	return slog.New(slog.NewTextHandler(&appendFile{path: path}, &slog.HandlerOptions{Level: level}))
}

var mu sync.Mutex

// appendFile opens path for every write, so the file may be rotated or removed while the process runs.
type appendFile struct {
	path string
}

func (a *appendFile) Write(p []byte) (int, error) {
	// Serialize open/write/close to reduce interleaving within a single process.
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return len(p), nil
	}
	defer f.Close()

	_, _ = f.Write(p)
	return len(p), nil
}
