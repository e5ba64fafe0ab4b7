// Package corelog is a structured, multi-sink application logger: named
// placeholder message templates, a filter pipeline (predicates, DSL rules,
// tag routing), and pluggable sinks with console, rolling-file, and network
// transports.
package corelog

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/corelogio/corelog/core"
	"github.com/corelogio/corelog/internal/metrics"
	"github.com/corelogio/corelog/internal/parser"
	"github.com/corelogio/corelog/sinks"
)

const (
	defaultRateLimitMax    = 1000
	defaultRateLimitWindow = time.Second
	defaultTemplateCache   = 128
)

// Logger is the front end: it gates, rate-limits, renders, and enqueues log
// calls on the caller's goroutine, while a single background worker drains
// the queue and dispatches each entry to every registered sink.
//
// Logger must outlive any goroutine still calling its logging methods;
// Close stops the consumer and must be the last call.
type Logger struct {
	minLevel atomic.Int32
	running  atomic.Bool

	rateLimiter *rateLimiter

	queue *ingestionQueue

	sinkMu         sync.Mutex
	sinks          []*core.SinkState
	loggingStarted atomic.Bool

	enricherMu sync.Mutex
	enrichers  []core.EnricherFunc

	global globalFilter

	contextMu sync.Mutex
	context   map[string]string

	captureSource atomic.Bool

	cacheMu sync.Mutex
	cache   *parser.Cache

	localeMu sync.Mutex
	locale   string
}

// Option configures a Logger at construction time.
type Option func(*Logger)

// WithDefaultConsoleSink adds a human-readable console sink, matching the
// constructor default of most embeddings.
func WithDefaultConsoleSink() Option {
	return func(l *Logger) {
		l.sinks = append(l.sinks, &core.SinkState{
			Name:     "console",
			Sink:     sinks.NewConsole(),
			MinLevel: core.Trace,
		})
	}
}

// New builds a Logger gated at minLevel and starts its background consumer.
func New(minLevel core.Level, opts ...Option) *Logger {
	l := &Logger{
		rateLimiter: newRateLimiter(defaultRateLimitMax, defaultRateLimitWindow),
		queue:       newIngestionQueue(),
		context:     make(map[string]string),
		cache:       parser.NewCache(defaultTemplateCache),
	}
	l.minLevel.Store(int32(minLevel))
	l.running.Store(true)

	for _, opt := range opts {
		opt(l)
	}

	go l.queue.run(l.writeToSinks)

	return l
}

// SetMinLevel changes the global level gate.
func (l *Logger) SetMinLevel(level core.Level) {
	l.minLevel.Store(int32(level))
}

// MinLevel returns the current global level gate.
func (l *Logger) MinLevel() core.Level {
	return core.Level(l.minLevel.Load())
}

// SetCaptureSourceLocation toggles file/line/function capture on each entry.
func (l *Logger) SetCaptureSourceLocation(capture bool) {
	l.captureSource.Store(capture)
}

// SetRateLimit reconfigures the limiter's window and per-window cap.
func (l *Logger) SetRateLimit(maxPerWindow int, window time.Duration) {
	l.rateLimiter = newRateLimiter(maxPerWindow, window)
}

// SetTemplateCacheSize resizes the template plan cache. Zero disables
// caching; existing cached plans are discarded.
func (l *Logger) SetTemplateCacheSize(n int) {
	l.cacheMu.Lock()
	l.cache = parser.NewCache(n)
	l.cacheMu.Unlock()
}

// SetLocale sets the default locale used for locale-aware format specs.
func (l *Logger) SetLocale(locale string) {
	l.localeMu.Lock()
	l.locale = locale
	l.localeMu.Unlock()
}

func (l *Logger) currentLocale() string {
	l.localeMu.Lock()
	defer l.localeMu.Unlock()
	return l.locale
}

// SetFilter installs the global predicate, replacing any previous one.
func (l *Logger) SetFilter(p core.Predicate) {
	l.global.predicate = p
}

// ClearFilter removes the global predicate.
func (l *Logger) ClearFilter() {
	l.global.predicate = nil
}

// AddFilterRule parses and appends a DSL rule to the global rule set
// (AND-combined with any existing rules).
func (l *Logger) AddFilterRule(rule string) error {
	r, err := core.ParseFilterRule(rule)
	if err != nil {
		return err
	}
	l.global.rules = append(l.global.rules, r)
	return nil
}

// SetFilterExpr parses a compact filter expression into one or more global
// DSL rules and installs them as the whole global rule set: every existing
// global rule is replaced, including rules added with AddFilterRule.
func (l *Logger) SetFilterExpr(expr string) error {
	rules, err := core.ParseCompactFilter(expr)
	if err != nil {
		return err
	}
	l.global.rules = rules
	return nil
}

// ClearFilterRules removes all global DSL rules.
func (l *Logger) ClearFilterRules() {
	l.global.rules = nil
}

// Enrich registers an enricher, run in registration order on every entry
// before it reaches the filter pipeline. Later enrichers overwrite keys set
// by earlier ones; user-supplied context set via SetContext always wins.
func (l *Logger) Enrich(fn core.EnricherFunc) {
	l.enricherMu.Lock()
	l.enrichers = append(l.enrichers, fn)
	l.enricherMu.Unlock()
}

// SetContext sets a key in the logger-wide context snapshot applied to
// every subsequent entry, taking precedence over enrichers.
func (l *Logger) SetContext(key, value string) {
	l.contextMu.Lock()
	l.context[key] = value
	l.contextMu.Unlock()
}

// ClearContext removes a single context key.
func (l *Logger) ClearContext(key string) {
	l.contextMu.Lock()
	delete(l.context, key)
	l.contextMu.Unlock()
}

// ClearAllContext removes every context key.
func (l *Logger) ClearAllContext() {
	l.contextMu.Lock()
	l.context = make(map[string]string)
	l.contextMu.Unlock()
}

// WithContext sets key for the lifetime of the returned scope, restoring
// the previous state (absent or overwritten) when the scope ends. Typical
// use: `defer logger.WithContext("requestID", id)()`.
func (l *Logger) WithContext(key, value string) func() {
	l.contextMu.Lock()
	prev, had := l.context[key]
	l.context[key] = value
	l.contextMu.Unlock()

	return func() {
		l.contextMu.Lock()
		if had {
			l.context[key] = prev
		} else {
			delete(l.context, key)
		}
		l.contextMu.Unlock()
	}
}

// AddSink registers a sink. Sinks become immutable once the first entry has
// been logged; calling AddSink afterward panics, matching the usage-error
// contract of the underlying engine.
func (l *Logger) AddSink(state *core.SinkState) {
	if l.loggingStarted.Load() {
		panic("corelog: cannot add sinks after logging has started")
	}
	l.sinkMu.Lock()
	l.sinks = append(l.sinks, state)
	l.sinkMu.Unlock()
}

// Flush blocks until every entry enqueued before the call has been written
// to every sink, and no sink write is in progress.
func (l *Logger) Flush() {
	l.queue.flush()
}

// Close flushes, stops the background consumer, and closes every sink that
// implements core.Closer. Close must be the last call against the Logger.
func (l *Logger) Close() error {
	l.Flush()
	l.running.Store(false)
	l.queue.stop()

	l.sinkMu.Lock()
	defer l.sinkMu.Unlock()

	var firstErr error
	for _, s := range l.sinks {
		if c, ok := s.Sink.(core.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (l *Logger) writeToSinks(entry *core.LogEntry) {
	l.sinkMu.Lock()
	sinkSnapshot := l.sinks
	l.sinkMu.Unlock()
	dispatch(entry, &l.global, sinkSnapshot)
}

// Log renders template against args at level and enqueues the resulting
// entry (and any validation-warning entries it produces).
func (l *Logger) Log(level core.Level, template string, args ...any) {
	l.logInternal(level, "", 0, "", template, args)
}

// LogWithSource is Log plus explicit source-location capture, used by
// generated call sites that already know file/line/function.
func (l *Logger) LogWithSource(level core.Level, file string, line int, function, template string, args ...any) {
	l.logInternal(level, file, line, function, template, args)
}

func (l *Logger) Trace(template string, args ...any) { l.Log(core.Trace, template, args...) }
func (l *Logger) Debug(template string, args ...any) { l.Log(core.Debug, template, args...) }
func (l *Logger) Info(template string, args ...any)  { l.Log(core.Info, template, args...) }
func (l *Logger) Warn(template string, args ...any)  { l.Log(core.Warn, template, args...) }
func (l *Logger) Error(template string, args ...any) { l.Log(core.Error, template, args...) }
func (l *Logger) Fatal(template string, args ...any) { l.Log(core.Fatal, template, args...) }

// LogException is Log plus an attached error, rendered into the entry's
// ExceptionInfo (see core.ExceptionInfo and the CLEF `@x` field). Chain
// walks the error's unwrap chain outermost-first.
func (l *Logger) LogException(level core.Level, err error, template string, args ...any) {
	l.logInternalWithException(level, err, "", 0, "", template, args)
}

// LogContext is Log plus trace/span enrichment pulled from ctx's active
// OpenTelemetry span, if any. It does not attach a full log bridge —
// see adapters/otel in the teacher project for that — it only snapshots
// the two IDs into CustomContext under "trace_id" / "span_id".
func (l *Logger) LogContext(ctx context.Context, level core.Level, template string, args ...any) {
	if level < l.MinLevel() || !l.running.Load() {
		return
	}
	sc := trace.SpanContextFromContext(ctx)
	var extra map[string]string
	if sc.IsValid() {
		extra = map[string]string{
			"trace_id": sc.TraceID().String(),
			"span_id":  sc.SpanID().String(),
		}
	}
	l.logInternalFull(level, "", 0, "", template, args, nil, extra)
}

func (l *Logger) logInternal(level core.Level, file string, line int, function, template string, args []any) {
	l.logInternalFull(level, file, line, function, template, args, nil, nil)
}

func (l *Logger) logInternalWithException(level core.Level, err error, file string, line int, function, template string, args []any) {
	l.logInternalFull(level, file, line, function, template, args, chainException(err), nil)
}

// argumentsFromProperties builds the legacy Arguments key/value view from
// the rendered placeholder properties, mirroring the original engine's
// mapArgumentsToPlaceholders: Properties is the source of truth, Arguments
// is a redundant flat projection retained for custom formatters that predate
// structured properties.
func argumentsFromProperties(props []core.PlaceholderProperty) []core.KeyValue {
	if len(props) == 0 {
		return nil
	}
	args := make([]core.KeyValue, len(props))
	for i, p := range props {
		args[i] = core.KeyValue{Name: p.Name, Value: p.Value}
	}
	return args
}

func (l *Logger) logInternalFull(level core.Level, file string, line int, function, template string, args []any, exc *core.ExceptionInfo, extraContext map[string]string) {
	if !l.running.Load() {
		return
	}
	if level < l.MinLevel() {
		return
	}
	if !l.rateLimiter.allow() {
		metrics.RateLimited.Inc()
		return
	}

	l.loggingStarted.Store(true)

	values := stringifyArgs(args)

	l.cacheMu.Lock()
	cache := l.cache
	l.cacheMu.Unlock()
	plan := cache.Parse(template)

	warnings := parser.ValidateArity(plan, len(values))

	locale := l.currentLocale()
	message, props := parser.Render(plan, values, locale)
	tags, body := extractTags(message)

	now := time.Now()
	capture := l.captureSource.Load()
	threadID := currentGoroutineID()

	entry := &core.LogEntry{
		Level:        level,
		Message:      body,
		Timestamp:    now,
		TemplateStr:  template,
		TemplateHash: templateHash(template),
		Properties:   props,
		Arguments:    argumentsFromProperties(props),
		Tags:         tags,
		Locale:       locale,
		ThreadID:     threadID,
		Exception:    exc,
	}
	if capture {
		entry.File, entry.Line, entry.Function = file, line, function
	}
	l.buildContext(entry, extraContext)

	l.queue.push(entry)

	// Validation warnings bypass the rate limiter (spec: "Validation
	// warnings are additional WARN-level entries ... that bypass the
	// limiter").
	for _, w := range warnings {
		warnEntry := &core.LogEntry{
			Level:       core.Warn,
			Message:     w,
			Timestamp:   now,
			TemplateStr:  w,
			TemplateHash: templateHash(w),
			ThreadID:     threadID,
		}
		if capture {
			warnEntry.File, warnEntry.Line, warnEntry.Function = file, line, function
		}
		l.buildContext(warnEntry, nil)
		l.queue.push(warnEntry)
	}
}

// currentGoroutineID extracts the calling goroutine's id from a small
// stack-trace buffer, avoiding the runtime.Stack allocation that a full
// trace would require (see spec.md §9: avoid per-call allocation for the
// common thread-id case).
func currentGoroutineID() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	const prefix = "goroutine "
	if len(b) <= len(prefix) || string(b[:len(prefix)]) != prefix {
		return ""
	}
	b = b[len(prefix):]
	for i, c := range b {
		if c == ' ' {
			return string(b[:i])
		}
	}
	return ""
}

// chainException builds an ExceptionInfo from err, walking errors.Unwrap
// outermost-first into Chain.
func chainException(err error) *core.ExceptionInfo {
	if err == nil {
		return nil
	}
	info := &core.ExceptionInfo{
		Type:    exceptionTypeName(err),
		Message: err.Error(),
	}
	var chain []string
	for cur := err; cur != nil; {
		chain = append(chain, cur.Error())
		u, ok := cur.(interface{ Unwrap() error })
		if !ok {
			break
		}
		cur = u.Unwrap()
	}
	if len(chain) > 1 {
		info.Chain = joinLines(chain)
	}
	return info
}

func joinLines(lines []string) string {
	out := lines[0]
	for _, l := range lines[1:] {
		out += "\n" + l
	}
	return out
}

func exceptionTypeName(err error) string {
	return fmt.Sprintf("%T", err)
}

// buildContext snapshots enrichers (registration order), then call-site
// extra context (e.g. LogContext's trace/span ids), then the user-supplied
// context, which always wins on key collision.
func (l *Logger) buildContext(entry *core.LogEntry, extra map[string]string) {
	entry.CustomContext = make(map[string]string)

	l.enricherMu.Lock()
	enrichers := l.enrichers
	l.enricherMu.Unlock()
	core.Enrich(enrichers, entry)

	for k, v := range extra {
		entry.CustomContext[k] = v
	}

	l.contextMu.Lock()
	for k, v := range l.context {
		entry.CustomContext[k] = v
	}
	l.contextMu.Unlock()
}
