package sinks

import (
	"github.com/corelogio/corelog/core"
	"github.com/corelogio/corelog/selflog"
)

// TextSink is the composition every line-oriented destination (console,
// file, rolling file) is built from: a Formatter renders the entry, a
// Transport delivers the resulting line. Concrete constructors (NewConsole,
// NewFile, NewRollingFile) wire a specific Transport and a default or
// caller-supplied Formatter together.
type TextSink struct {
	name      string
	formatter core.Formatter
	transport Transport
}

// NewTextSink builds a sink named name that renders entries with formatter
// and writes the result through transport. name is used only in selflog
// diagnostics.
func NewTextSink(name string, formatter core.Formatter, transport Transport) *TextSink {
	return &TextSink{name: name, formatter: formatter, transport: transport}
}

// Write implements core.Sink. A panic inside the formatter or transport is
// recovered and reported to selflog rather than propagated — one bad entry
// or a transient transport failure must not take down the consumer
// goroutine driving every other sink.
func (s *TextSink) Write(entry *core.LogEntry) {
	defer func() {
		if r := recover(); r != nil {
			selflog.Printf("[sink:%s] panic writing entry: %v", s.name, r)
		}
	}()
	line := s.formatter.Format(entry)
	if err := s.transport.WriteLine(line); err != nil {
		selflog.Printf("[sink:%s] write failed: %v", s.name, err)
	}
}

// Flush implements core.Flusher when the underlying transport buffers.
func (s *TextSink) Flush() {
	if f, ok := s.transport.(TransportFlusher); ok {
		if err := f.Flush(); err != nil {
			selflog.Printf("[sink:%s] flush failed: %v", s.name, err)
		}
	}
}

// Close implements core.Closer when the underlying transport holds a
// resource.
func (s *TextSink) Close() error {
	if c, ok := s.transport.(TransportCloser); ok {
		return c.Close()
	}
	return nil
}

// Transport exposes the underlying Transport, used by rolling-file
// construction helpers that need to reach transport-specific knobs after
// the TextSink has been assembled.
func (s *TextSink) Transport() Transport {
	return s.transport
}
