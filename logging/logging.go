package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// DefaultFile selects the XDG data location for LOG_FILE.
	DefaultFile = "default"

	maxFileSizeMB = 10
	maxBackups    = 5
)

// ParseLevel maps a level name to a slog level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "CRITICAL":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ResolveFile expands the DefaultFile marker into a path under the XDG data directory.
func ResolveFile(file string) (string, error) {
	if file != DefaultFile {
		return file, nil
	}
	path, err := xdg.DataFile(filepath.Join("jmap-mcp", "logs", "jmap-mcp.log"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve default log file: %w", err)
	}
	return path, nil
}

// Setup builds a JSON logger writing to stderr and, when file is set, to a rotated log file.
// The returned closer releases the file and is never nil.
func Setup(level, file string, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	lv := new(slog.LevelVar)
	lv.Set(ParseLevel(level))

	var out io.Writer = stderr
	var closer io.Closer = nopCloser{}

	if file != "" {
		path, err := ResolveFile(file)
		if err != nil {
			return nil, closer, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, closer, fmt.Errorf("failed to create log directory: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxFileSizeMB,
			MaxBackups: maxBackups,
		}
		out = io.MultiWriter(stderr, rotator)
		closer = rotator
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lv}))
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
