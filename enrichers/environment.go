package enrichers

import (
	"os"

	"github.com/corelogio/corelog/core"
)

// Environment adds the process's environment identifier under
// "environment", reading APP_ENV with a fallback to ENVIRONMENT (spec.md
// §6). The value is read once at registration time; processes that need a
// live re-read should not cache this enricher across a config reload.
func Environment() core.EnricherFunc {
	value := os.Getenv("APP_ENV")
	if value == "" {
		value = os.Getenv("ENVIRONMENT")
	}
	return func(entry *core.LogEntry) {
		if value != "" {
			entry.CustomContext["environment"] = value
		}
	}
}

// EnvironmentVar adds the named environment variable's value under key,
// re-read on every call so changes to the variable (rare, but real in
// long-running processes that reload env via a supervisor) are observed.
func EnvironmentVar(envName, key string) core.EnricherFunc {
	return func(entry *core.LogEntry) {
		if v := os.Getenv(envName); v != "" {
			entry.CustomContext[key] = v
		}
	}
}

// EnvironmentVarCached is EnvironmentVar but reads the variable once at
// registration time, matching the teacher library's cached-enricher option
// for environment values that are fixed for the process lifetime
// (deployment id, region, service name).
func EnvironmentVarCached(envName, key string) core.EnricherFunc {
	value := os.Getenv(envName)
	return func(entry *core.LogEntry) {
		if value != "" {
			entry.CustomContext[key] = value
		}
	}
}
