package logger

import (
	"github.com/rs/zerolog"
	"io"
	"os"
	"strings"
)

const (
	LogLevelEnv   = "HPOA_LOGLEVEL"
	LogConsoleEnv = "HPOA_LOG_CONSOLE"
)

var levels = map[string]zerolog.Level{
	"DEBUG": zerolog.DebugLevel,
	"INFO":  zerolog.InfoLevel,
	"WARN":  zerolog.WarnLevel,
	"ERROR": zerolog.ErrorLevel,
	"FATAL": zerolog.FatalLevel,
	"PANIC": zerolog.PanicLevel,
}

func SetupLogging() {
	zerolog.LevelFieldName = "level_name"
	zerolog.TimestampFieldName = "timestamp"
}

// NewLogger returns a component logger writing JSON lines to stderr, or human
// readable lines when HPOA_LOG_CONSOLE=true.
func NewLogger(component string) zerolog.Logger {
	var out io.Writer = os.Stderr
	if console, _ := os.LookupEnv(LogConsoleEnv); strings.EqualFold(console, "true") {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return zerolog.New(out).
		With().
		Str("component", component).
		Timestamp().
		Logger().
		Level(levelFromEnv())
}

func levelFromEnv() zerolog.Level {
	name, ok := os.LookupEnv(LogLevelEnv)
	if !ok {
		return zerolog.InfoLevel
	}
	level, ok := levels[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return zerolog.InfoLevel
	}
	return level
}
