// Package selflog provides internal diagnostic logging for corelog.
//
// When enabled, selflog captures internal errors and warnings that would
// otherwise be silently discarded: a rolling file sink's retention sweep
// failing to delete an old file, an async sink's inner write panicking, a
// compressed-rotation attempt that errored. This is useful for debugging
// configuration issues or understanding why logs aren't appearing as
// expected.
//
// # Usage
//
// Enable selflog to write to stderr:
//
//	selflog.Enable(os.Stderr)
//	defer selflog.Disable()
//
// Enable with a custom handler:
//
//	selflog.EnableFunc(func(msg string) {
//	    syslog.Warning(msg)
//	})
//
// For thread-safe file logging:
//
//	f, _ := os.Create("corelog-debug.log")
//	selflog.Enable(selflog.Sync(f))
//
// # Repeat suppression
//
// A sink that fails repeatedly (a disk that stays full, a directory watch
// that keeps firing) would otherwise flood whatever selflog is wired to.
// Consecutive identical messages are coalesced: only the first is written
// immediately, and a run of repeats is flushed as a single "(repeated N
// times)" line once the message changes or Flush is called. This mirrors
// the rate limiter's "best effort, not exact" posture (see the root
// package's ratelimiter.go) applied to diagnostics instead of log volume.
//
// # Recent buffer
//
// The last few formatted lines are retained in memory regardless of
// whether a writer or func is installed, so a diagnostics endpoint (see
// sinks.HealthServer) can surface "what has selflog seen lately" without
// requiring the operator to have wired a sink ahead of time.
//
// # Format
//
// Messages are formatted as:
//
//	2025-01-29T15:30:45Z message details
//
// # Environment Variable
//
// Set CORELOG_SELFLOG to automatically enable on startup:
//   - "stderr" - log to standard error
//   - "stdout" - log to standard output
//   - "/path/to/file" - log to specified file
package selflog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// sink bundles the two ways a destination can be installed so a single
// atomic pointer swap activates or deactivates selflog, rather than two
// independent pointers that could observe a writer-cleared/func-not-yet-set
// gap between separate stores.
type sink struct {
	writer io.Writer
	fn     func(string)
}

var active atomic.Pointer[sink]

const recentCapacity = 50

var (
	recentMu sync.Mutex
	recent   []string
	lastLine string
	repeatN  int
)

// Enable activates self-logging to the provided writer.
// The writer should be thread-safe or wrapped with Sync().
func Enable(w io.Writer) {
	if w == nil {
		return
	}
	active.Store(&sink{writer: w})
}

// EnableFunc activates self-logging using a callback function.
// The function will be called with formatted log messages.
func EnableFunc(fn func(string)) {
	if fn == nil {
		return
	}
	active.Store(&sink{fn: fn})
}

// Disable deactivates self-logging. Any pending repeat-suppressed message
// is flushed first so it isn't silently lost.
func Disable() {
	flushRepeat()
	active.Store(nil)
}

// Printf logs an internal diagnostic message.
// This is called by corelog internals and can be called by custom sinks.
// The format string should include the component in square brackets,
// e.g., "[console] write failed: %v"
func Printf(format string, args ...interface{}) {
	s := active.Load()
	msg := fmt.Sprintf(format, args...)

	recentMu.Lock()
	if msg == lastLine {
		repeatN++
		recentMu.Unlock()
		return
	}
	pending, _ := flushRepeatLocked()
	lastLine = msg
	repeatN = 0
	line := stampedLine(msg)
	recent = appendBounded(recent, line)
	recentMu.Unlock()

	if pending != "" {
		emit(s, pending)
	}
	emit(s, line)
}

// Flush emits any repeat-suppressed message immediately instead of waiting
// for the next distinct Printf call or a Disable. Callers that need every
// byte flushed before shutdown (the primary queue and async/batched sinks
// on Close) should call this after their last Printf.
func Flush() {
	flushRepeat()
}

// flushRepeat acquires recentMu itself; callers that already hold it must
// use flushRepeatLocked instead.
func flushRepeat() {
	recentMu.Lock()
	s := active.Load()
	pending, _ := flushRepeatLocked()
	recentMu.Unlock()
	if pending != "" {
		emit(s, pending)
	}
}

// flushRepeatLocked must be called with recentMu held; it clears the
// pending-repeat state and returns the coalesced line to emit, if any.
func flushRepeatLocked() (line string, count int) {
	if repeatN == 0 || lastLine == "" {
		return "", 0
	}
	line = stampedLine(fmt.Sprintf("%s (repeated %d times)", lastLine, repeatN))
	count = repeatN
	recent = appendBounded(recent, line)
	repeatN = 0
	return line, count
}

func appendBounded(lines []string, line string) []string {
	lines = append(lines, line)
	if len(lines) > recentCapacity {
		lines = lines[len(lines)-recentCapacity:]
	}
	return lines
}

func stampedLine(msg string) string {
	return time.Now().UTC().Format(time.RFC3339) + " " + msg
}

func emit(s *sink, line string) {
	if s == nil {
		return
	}
	if s.writer != nil {
		fmt.Fprintln(s.writer, line)
	} else if s.fn != nil {
		s.fn(line)
	}
}

// IsEnabled returns true if selflog is currently enabled.
// Use this to avoid formatting costs when disabled:
//
//	if selflog.IsEnabled() {
//	    selflog.Printf("[sink] processed %d events", count)
//	}
func IsEnabled() bool {
	return active.Load() != nil
}

// Recent returns up to the last 50 formatted lines selflog has produced,
// whether or not a writer or func is currently installed. Intended for a
// diagnostics surface (sinks.HealthServer) that wants a snapshot of recent
// internal trouble without requiring the operator to have enabled output
// ahead of time.
func Recent() []string {
	recentMu.Lock()
	defer recentMu.Unlock()
	out := make([]string, len(recent))
	copy(out, recent)
	return out
}

// syncWriter wraps an io.Writer to make it thread-safe
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Sync wraps a writer to make it thread-safe.
// Use this when enabling file output or other non-synchronized writers.
func Sync(w io.Writer) io.Writer {
	return &syncWriter{w: w}
}

// init checks for the CORELOG_SELFLOG environment variable.
func init() {
	if dest := os.Getenv("CORELOG_SELFLOG"); dest != "" {
		switch dest {
		case "stderr":
			Enable(os.Stderr)
		case "stdout":
			Enable(os.Stdout)
		default:
			if f, err := os.OpenFile(dest, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
				Enable(Sync(f))
			}
		}
	}
}
