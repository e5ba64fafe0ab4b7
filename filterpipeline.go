package corelog

import "github.com/corelogio/corelog/core"

// globalFilter holds the logger-wide predicate and DSL rules, evaluated
// once per entry before any sink-specific filtering runs. A panicking
// predicate fails open (see core.SafeEvaluate).
type globalFilter struct {
	predicate core.Predicate
	rules     []core.FilterRule
}

func (f *globalFilter) accepts(entry *core.LogEntry) bool {
	if f.predicate != nil && !core.SafeEvaluate(f.predicate, entry) {
		return false
	}
	return core.EvaluateRules(f.rules, entry)
}

// dispatch runs the full pipeline for entry: the global stage once, then
// each sink's own gating stage, formatting, and write.
func dispatch(entry *core.LogEntry, global *globalFilter, sinks []*core.SinkState) {
	if entry.Level < 0 {
		return
	}
	if !global.accepts(entry) {
		return
	}
	for _, s := range sinks {
		if !s.Accepts(entry) {
			continue
		}
		writeToSink(s, entry)
	}
}

func writeToSink(s *core.SinkState, entry *core.LogEntry) {
	if s.Sink == nil {
		return
	}
	if s.Locale != "" && entry.Locale != s.Locale {
		clone := entry.Clone()
		clone.Locale = s.Locale
		s.Sink.Write(clone)
		return
	}
	s.Sink.Write(entry)
}
