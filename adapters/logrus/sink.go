// Package logrus bridges corelog entries into a caller-supplied
// logrus.Logger, mirroring adapters/zerolog for processes standardized on
// logrus elsewhere.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/corelogio/corelog/core"
)

// Sink forwards every entry it receives to an underlying logrus.Logger. It
// implements core.Sink.
type Sink struct {
	logger *logrus.Logger
}

var _ core.Sink = (*Sink)(nil)

// NewSink wraps logger.
func NewSink(logger *logrus.Logger) *Sink {
	return &Sink{logger: logger}
}

// Write implements core.Sink.
func (s *Sink) Write(entry *core.LogEntry) {
	fields := logrus.Fields{
		"messageTemplate": entry.TemplateStr,
	}
	for _, p := range entry.Properties {
		fields[p.Name] = p.Value
	}
	for k, v := range entry.CustomContext {
		fields[k] = v
	}
	if len(entry.Tags) > 0 {
		fields["tags"] = entry.Tags
	}
	if entry.Exception != nil {
		fields["exceptionType"] = entry.Exception.Type
		fields["exceptionMessage"] = entry.Exception.Message
	}

	s.logger.WithTime(entry.Timestamp).WithFields(fields).Log(levelToLogrus(entry.Level), entry.Message)
}

func levelToLogrus(l core.Level) logrus.Level {
	switch l {
	case core.Trace:
		return logrus.TraceLevel
	case core.Debug:
		return logrus.DebugLevel
	case core.Info:
		return logrus.InfoLevel
	case core.Warn:
		return logrus.WarnLevel
	case core.Error:
		return logrus.ErrorLevel
	case core.Fatal:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}
