// Package zerolog bridges corelog entries into a caller-supplied
// zerolog.Logger, for processes that already standardized on zerolog for
// some destinations but want the message-template pipeline elsewhere.
package zerolog

import (
	"github.com/rs/zerolog"

	"github.com/corelogio/corelog/core"
)

// Sink forwards every entry it receives to an underlying zerolog.Logger.
// It implements core.Sink and can be registered like any other sink.
type Sink struct {
	logger zerolog.Logger
}

var _ core.Sink = (*Sink)(nil)

// NewSink wraps logger. Callers own logger's destination (console, file,
// network writer); this sink only shapes the event.
func NewSink(logger zerolog.Logger) *Sink {
	return &Sink{logger: logger}
}

// Write implements core.Sink.
func (s *Sink) Write(entry *core.LogEntry) {
	evt := s.logger.WithLevel(levelToZerolog(entry.Level))
	evt = evt.Time("timestamp", entry.Timestamp).
		Str("messageTemplate", entry.TemplateStr)

	for _, p := range entry.Properties {
		evt = evt.Str(p.Name, p.Value)
	}
	for k, v := range entry.CustomContext {
		evt = evt.Str(k, v)
	}
	if len(entry.Tags) > 0 {
		evt = evt.Strs("tags", entry.Tags)
	}
	if entry.Exception != nil {
		evt = evt.Str("exceptionType", entry.Exception.Type).
			Str("exceptionMessage", entry.Exception.Message)
	}

	evt.Msg(entry.Message)
}

func levelToZerolog(l core.Level) zerolog.Level {
	switch l {
	case core.Trace:
		return zerolog.TraceLevel
	case core.Debug:
		return zerolog.DebugLevel
	case core.Info:
		return zerolog.InfoLevel
	case core.Warn:
		return zerolog.WarnLevel
	case core.Error:
		return zerolog.ErrorLevel
	case core.Fatal:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
