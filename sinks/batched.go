package sinks

import (
	"sync"
	"time"

	"github.com/corelogio/corelog/core"
	"github.com/corelogio/corelog/internal/metrics"
	"github.com/corelogio/corelog/selflog"
)

// BatchedOptions configures BatchedSink.
type BatchedOptions struct {
	BatchSize       int
	FlushIntervalMs int
	MaxQueueSize    int
	MaxRetries      int
	RetryDelayMs    int
	// Name labels the batch_retries_total and entries_dropped_total metrics;
	// defaults to "batched".
	Name string
}

func (o *BatchedOptions) applyDefaults() {
	if o.BatchSize <= 0 {
		o.BatchSize = 1
	}
	if o.FlushIntervalMs <= 0 {
		o.FlushIntervalMs = 5000
	}
	if o.MaxQueueSize <= 0 {
		o.MaxQueueSize = 10000
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 3
	}
	if o.RetryDelayMs <= 0 {
		o.RetryDelayMs = 100
	}
	if o.Name == "" {
		o.Name = "batched"
	}
}

// WriteBatchFunc delivers one accumulated batch. A non-nil error triggers
// a retry per BatchedOptions.MaxRetries.
type WriteBatchFunc func(batch []*core.LogEntry) error

// BatchedSink buffers entries and hands them to a WriteBatchFunc on three
// triggers: the buffer reaches BatchSize, the periodic timer fires, or
// Flush is called. Concrete network sinks (Kafka, a CLEF HTTP endpoint)
// build on this rather than reimplementing batching and retry.
type BatchedSink struct {
	opts    BatchedOptions
	write   WriteBatchFunc
	onFlush func(n int)
	onError func(err error, attempt int)

	mu      sync.Mutex
	buf     []*core.LogEntry
	deliver sync.Mutex

	stopCh   chan struct{}
	stopOnce sync.Once
	stopped  bool
}

// NewBatchedSink constructs a batched sink. write is called with the queue
// lock released, serialized against other writeBatch invocations by an
// internal mutex, per spec.md §4.4.3.
func NewBatchedSink(opts BatchedOptions, write WriteBatchFunc) *BatchedSink {
	opts.applyDefaults()
	b := &BatchedSink{
		opts:   opts,
		write:  write,
		stopCh: make(chan struct{}),
	}
	go b.flushLoop()
	return b
}

// OnFlush registers a callback invoked after every successful batch
// delivery with the number of entries delivered. Must be safe to call
// from the internal timer goroutine and from producer goroutines.
func (b *BatchedSink) OnFlush(fn func(n int)) { b.onFlush = fn }

// OnBatchError registers a callback invoked after each failed delivery
// attempt.
func (b *BatchedSink) OnBatchError(fn func(err error, attempt int)) { b.onError = fn }

// Write implements core.Sink. A size-triggered flush is delivered
// synchronously on the calling (producer) goroutine — the spec's
// documented latency tradeoff for batched sinks.
func (b *BatchedSink) Write(entry *core.LogEntry) {
	b.mu.Lock()
	if len(b.buf) >= b.opts.MaxQueueSize {
		b.mu.Unlock()
		metrics.EntriesDropped.WithLabelValues(b.opts.Name).Inc()
		return
	}
	b.buf = append(b.buf, entry.Clone())
	trigger := len(b.buf) >= b.opts.BatchSize
	var batch []*core.LogEntry
	if trigger {
		batch = b.buf
		b.buf = nil
	}
	b.mu.Unlock()

	if trigger {
		b.deliverWithRetry(batch)
	}
}

func (b *BatchedSink) flushLoop() {
	t := time.NewTicker(time.Duration(b.opts.FlushIntervalMs) * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			b.Flush()
		case <-b.stopCh:
			return
		}
	}
}

// Flush implements core.Flusher.
func (b *BatchedSink) Flush() {
	b.mu.Lock()
	batch := b.buf
	b.buf = nil
	b.mu.Unlock()
	if len(batch) > 0 {
		b.deliverWithRetry(batch)
	}
}

// deliverWithRetry attempts delivery up to MaxRetries+1 times, sleeping
// RetryDelayMs between attempts on a channel shutdown can close early to
// interrupt promptly.
func (b *BatchedSink) deliverWithRetry(batch []*core.LogEntry) {
	b.deliver.Lock()
	defer b.deliver.Unlock()

	var err error
	for attempt := 0; attempt <= b.opts.MaxRetries; attempt++ {
		err = b.callWrite(batch)
		if err == nil {
			b.safeOnFlush(len(batch))
			return
		}
		b.safeOnError(err, attempt)
		metrics.BatchRetries.WithLabelValues(b.opts.Name).Inc()
		if attempt < b.opts.MaxRetries {
			select {
			case <-time.After(time.Duration(b.opts.RetryDelayMs) * time.Millisecond):
			case <-b.stopCh:
				return
			}
		}
	}
}

func (b *BatchedSink) callWrite(batch []*core.LogEntry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			selflog.Printf("[batched] writeBatch panic: %v", r)
		}
	}()
	return b.write(batch)
}

func (b *BatchedSink) safeOnFlush(n int) {
	if b.onFlush == nil {
		return
	}
	defer func() { recover() }()
	b.onFlush(n)
}

func (b *BatchedSink) safeOnError(err error, attempt int) {
	if b.onError == nil {
		return
	}
	defer func() { recover() }()
	b.onError(err, attempt)
}

// Close implements core.Closer: the stopAndFlush primitive the subclass
// contract requires calling before its own teardown completes. Any entries
// still buffered after the final flush attempt are discarded.
func (b *BatchedSink) Close() error {
	b.stopOnce.Do(func() {
		b.stopped = true
		close(b.stopCh)
	})
	b.Flush()
	return nil
}
