// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the optional log file.
const (
	fileMaxSizeMB  = 50
	fileMaxBackups = 3
	fileMaxAgeDays = 14
)

// ParseLevel maps a level name to a zerolog level. Unknown names yield info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "OFF", "DISABLED":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Setup configures the global level and returns a logger writing to stderr
// (console or json format) and, when file is set, to a rotating JSON file.
// The returned closer releases the file and is never nil.
func Setup(level, format, file string) (zerolog.Logger, io.Closer) {
	return setup(os.Stderr, level, format, file)
}

func setup(stderr io.Writer, level, format, file string) (zerolog.Logger, io.Closer) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	var out io.Writer = stderr
	if strings.ToLower(format) != "json" {
		out = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}
	}
	var closer io.Closer = nopCloser{}
	if file != "" {
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    fileMaxSizeMB,
			MaxBackups: fileMaxBackups,
			MaxAge:     fileMaxAgeDays,
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(out, lj)
		closer = lj
	}
	return zerolog.New(out).With().Timestamp().Logger(), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
