// Package enrichers collects the built-in core.EnricherFunc implementations:
// thread id, process id/name, machine name, environment variable read,
// a static key/value pair, and caller function name. Each mutates
// entry.CustomContext in place.
package enrichers

import (
	"runtime"
	"strconv"

	"github.com/corelogio/corelog/core"
)

// ThreadID surfaces the logger-computed entry.ThreadID (already captured by
// the front end on every call) as a "thread_id" context key, for formatters
// that render CustomContext but don't emit ThreadID natively.
func ThreadID() core.EnricherFunc {
	return func(entry *core.LogEntry) {
		if entry.ThreadID != "" {
			entry.CustomContext["thread_id"] = entry.ThreadID
		}
	}
}

// Caller adds the file:line and function name of a stack frame under
// "caller" / "function". skip is passed to runtime.Caller from inside the
// enricher closure: 0 is the closure itself, 1 is core's runEnricher, 2 is
// core.Enrich, and higher values walk into whatever called core.Enrich.
// Under a Logger those are its internal frames, and their number differs
// between entry points (Info, Log, LogException, LogContext).
func Caller(skip int) core.EnricherFunc {
	return func(entry *core.LogEntry) {
		pc, file, line, ok := runtime.Caller(skip)
		if !ok {
			return
		}
		entry.CustomContext["caller"] = file + ":" + strconv.Itoa(line)
		if fn := runtime.FuncForPC(pc); fn != nil {
			entry.CustomContext["function"] = fn.Name()
		}
	}
}
