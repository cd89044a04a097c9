package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger used by the HTTP layer.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l.With().Str("component", "http").Logger() }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// defaultLogLevel applies when a request carries no override.
var defaultLogLevel = parseLevel(os.Getenv("GENSTUDIO_REQUEST_LOG"))

// SetRequestLogLevel sets the default per-request log level (off|error|info|debug).
func SetRequestLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logGenerateStart records the beginning of a generation request.
func logGenerateStart(r *http.Request, lvl LogLevel, model, kind string) {
	if lvl < LevelInfo {
		return
	}
	z := zlog.Info().Str("event", "generate_start").Str("path", r.URL.Path).Str("model", model).Str("kind", kind)
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	z.Msg("generate start")
}

// logGenerateEnd records the outcome of a generation request. Failures are
// logged from LevelError up, successes from LevelInfo up.
func logGenerateEnd(r *http.Request, lvl LogLevel, status int, start time.Time, err error) {
	if lvl == LevelOff || (err == nil && lvl < LevelInfo) {
		return
	}
	z := zlog.Info()
	if err != nil {
		z = zlog.Error().Err(err)
	}
	z = z.Str("event", "generate_end").Int("status", status).Dur("dur", time.Since(start))
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	z.Msg("generate end")
}
