package core

// Formatter renders a LogEntry to its wire/text representation. Formatters
// are stateless with respect to a single entry; any per-sink override (an
// output template, a locale) is applied by the caller before Format runs.
type Formatter interface {
	Format(entry *LogEntry) string
}

// Sink is the polymorphic write endpoint every configured destination
// implements: a console, a rolling file, a network transport, or a
// decorator (async/batched) wrapping another Sink. Write must not retain
// entry beyond the call without cloning it first.
type Sink interface {
	Write(entry *LogEntry)
}

// Flusher is implemented by sinks that buffer: async and batched decorators,
// and any transport sink that batches network writes. Flush blocks until
// everything buffered at the time of the call has been delivered.
type Flusher interface {
	Flush()
}

// Closer is implemented by sinks holding a resource (open file, network
// connection) that must be released on shutdown.
type Closer interface {
	Close() error
}

// SinkState holds the per-sink configuration assembled by the fluent
// registration API: level gate, predicate, DSL rules, tag routing, and the
// formatting override applied before entries reach the underlying Sink.
type SinkState struct {
	Name string

	Sink Sink

	MinLevel Level

	Predicate Predicate
	Rules     []FilterRule

	OnlyTags   []string
	ExceptTags []string

	Formatter Formatter

	// Locale, when set, replaces the entry's Locale field on the copy
	// delivered to this sink only. The message is not re-rendered, so
	// locale-aware format specs in it keep the logger's locale.
	Locale string
}

// Accepts runs the sink's own gating stage (level, predicate, rules, tag
// routing) in the precedence order documented for the filter pipeline. It
// does not evaluate the global stage — callers run that first.
func (s *SinkState) Accepts(entry *LogEntry) bool {
	if entry.Level < s.MinLevel {
		return false
	}
	if !passesTags(entry.Tags, s.OnlyTags, s.ExceptTags) {
		return false
	}
	if s.Predicate != nil && !SafeEvaluate(s.Predicate, entry) {
		return false
	}
	if !EvaluateRules(s.Rules, entry) {
		return false
	}
	return true
}

func passesTags(entryTags, only, except []string) bool {
	if len(only) > 0 && !anyTagMatches(entryTags, only) {
		return false
	}
	if len(except) > 0 && anyTagMatches(entryTags, except) {
		return false
	}
	return true
}

func anyTagMatches(entryTags, want []string) bool {
	for _, t := range entryTags {
		for _, w := range want {
			if t == w {
				return true
			}
		}
	}
	return false
}

// SafeEvaluate recovers from a panicking predicate and treats it as
// fail-open: the stage is skipped and the entry proceeds as if the
// predicate had returned true.
func SafeEvaluate(p Predicate, entry *LogEntry) (result bool) {
	defer func() {
		if recover() != nil {
			result = true
		}
	}()
	return p(entry)
}
