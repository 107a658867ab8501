package logger

import (
	"fmt"
	"github.com/rs/zerolog"
	"runtime/debug"
)

// HandlePanic must be deferred. It logs a recovered panic with its stack trace
// and terminates the process through the fatal level.
func HandlePanic(hpoaLogger zerolog.Logger) {
	r := recover()
	if r == nil {
		return
	}
	hpoaLogger.Fatal().
		Caller().
		Str("error", fmt.Sprint(r)).
		Str("stack_trace", string(debug.Stack())).
		Msg("Program panicked and exited")
}
