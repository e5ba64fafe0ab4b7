package enrichers

import "github.com/corelogio/corelog/core"

// Static adds a fixed key/value pair to every entry. Useful for constants
// known at startup (build version, region) that don't warrant a process
// call on every log line.
func Static(key, value string) core.EnricherFunc {
	return func(entry *core.LogEntry) {
		entry.CustomContext[key] = value
	}
}
