package sinks

import (
	"sync"
	"time"

	"github.com/corelogio/corelog/core"
	"github.com/corelogio/corelog/internal/metrics"
	"github.com/corelogio/corelog/selflog"
)

// OverflowPolicy selects what AsyncSink does when its bounded queue is
// full at enqueue time.
type OverflowPolicy int

const (
	// OverflowDropNewest discards the entry being enqueued. Default.
	OverflowDropNewest OverflowPolicy = iota
	// OverflowBlock parks the producer until space frees or the sink
	// shuts down.
	OverflowBlock
	// OverflowDropOldest evicts the queue head to make room.
	OverflowDropOldest
)

// AsyncOptions configures AsyncSink.
type AsyncOptions struct {
	QueueSize       int
	OverflowPolicy  OverflowPolicy
	FlushIntervalMs int
	// Name labels the entries_dropped_total metric; defaults to "async".
	Name string
}

func (o *AsyncOptions) applyDefaults() {
	if o.QueueSize <= 0 {
		o.QueueSize = 8192
	}
	if o.Name == "" {
		o.Name = "async"
	}
}

// AsyncSink wraps an inner core.Sink with a bounded FIFO and a single
// dedicated consumer goroutine, so a slow or blocking inner sink never
// stalls the front-end logging call. Mirrors the mutex+condvar drain loop
// the primary ingestion queue uses (queue.go) rather than a channel, so
// the Block overflow policy can park a producer precisely until space
// frees or shutdown — a buffered channel send can't distinguish those.
type AsyncSink struct {
	inner core.Sink
	opts  AsyncOptions

	mu      sync.Mutex
	notify  *sync.Cond
	drained *sync.Cond

	items   []*core.LogEntry
	running bool

	dropped uint64

	wg sync.WaitGroup
}

// NewAsyncSink starts the consumer goroutine and returns the wrapper.
func NewAsyncSink(inner core.Sink, opts AsyncOptions) *AsyncSink {
	opts.applyDefaults()
	a := &AsyncSink{inner: inner, opts: opts, running: true}
	a.notify = sync.NewCond(&a.mu)
	a.drained = sync.NewCond(&a.mu)

	a.wg.Add(1)
	go a.run()

	if opts.FlushIntervalMs > 0 {
		go a.periodicFlush(time.Duration(opts.FlushIntervalMs) * time.Millisecond)
	}

	return a
}

// Write implements core.Sink. entry is deep-cloned before enqueue since
// the caller may mutate or recycle the original once Write returns.
func (a *AsyncSink) Write(entry *core.LogEntry) {
	clone := entry.Clone()

	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	for len(a.items) >= a.opts.QueueSize {
		switch a.opts.OverflowPolicy {
		case OverflowBlock:
			a.notify.Wait()
			if !a.running {
				a.mu.Unlock()
				return
			}
			continue
		case OverflowDropOldest:
			a.items = a.items[1:]
			a.dropped++
			metrics.EntriesDropped.WithLabelValues(a.opts.Name).Inc()
		case OverflowDropNewest:
			a.dropped++
			metrics.EntriesDropped.WithLabelValues(a.opts.Name).Inc()
			a.mu.Unlock()
			return
		}
		break
	}
	a.items = append(a.items, clone)
	a.mu.Unlock()
	a.notify.Signal()
}

func (a *AsyncSink) run() {
	defer a.wg.Done()
	a.mu.Lock()
	for {
		for len(a.items) == 0 && a.running {
			a.notify.Wait()
		}
		if len(a.items) == 0 && !a.running {
			a.mu.Unlock()
			return
		}
		batch := a.items
		a.items = nil
		a.notify.Broadcast()
		a.mu.Unlock()

		for _, e := range batch {
			a.writeInner(e)
		}

		a.mu.Lock()
		a.drained.Broadcast()
	}
}

func (a *AsyncSink) writeInner(entry *core.LogEntry) {
	defer func() {
		if r := recover(); r != nil {
			selflog.Printf("[async] inner sink panic: %v", r)
		}
	}()
	a.inner.Write(entry)
}

func (a *AsyncSink) periodicFlush(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for range t.C {
		a.mu.Lock()
		if !a.running {
			a.mu.Unlock()
			return
		}
		a.mu.Unlock()
		a.notify.Signal()
	}
}

// Flush implements core.Flusher: wakes the consumer and waits until the
// queue drains, plus a small settling delay for the in-flight write to
// land in the inner sink.
func (a *AsyncSink) Flush() {
	a.notify.Signal()
	a.mu.Lock()
	for len(a.items) > 0 {
		a.drained.Wait()
	}
	a.mu.Unlock()
	time.Sleep(5 * time.Millisecond)
	if f, ok := a.inner.(core.Flusher); ok {
		f.Flush()
	}
}

// Close implements core.Closer: stops accepting new entries, wakes the
// consumer, joins it, then closes the inner sink.
func (a *AsyncSink) Close() error {
	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
	a.notify.Broadcast()
	a.wg.Wait()

	if c, ok := a.inner.(core.Closer); ok {
		return c.Close()
	}
	return nil
}

// Dropped returns the number of entries discarded by overflow since
// construction.
func (a *AsyncSink) Dropped() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}
