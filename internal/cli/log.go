package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger: leveled, with short wall-clock
// timestamps such as "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// timed starts a stopwatch for msg. The returned func logs msg at info
// level with the given key-value pairs and the elapsed time appended.
func timed(l *log.Logger, msg string) func(keyvals ...any) {
	start := time.Now()
	return func(keyvals ...any) {
		keyvals = append(keyvals, "took", time.Since(start).Round(time.Millisecond))
		l.Info(msg, keyvals...)
	}
}
