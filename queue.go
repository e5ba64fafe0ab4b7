package corelog

import (
	"sync"

	"github.com/corelogio/corelog/core"
	"github.com/corelogio/corelog/internal/metrics"
)

// ingestionQueue is the single producer-many / single-consumer-one queue
// between caller goroutines and the background consumer. Flush semantics
// require knowing not just "queue empty" but "no sink write in progress",
// so the consumer's dequeue-and-write step is split around an unlocked
// region, mirroring a condvar-based drain loop.
type ingestionQueue struct {
	mu      sync.Mutex
	notify  *sync.Cond
	drained *sync.Cond

	items   []*core.LogEntry
	running bool
	writing bool
}

func newIngestionQueue() *ingestionQueue {
	q := &ingestionQueue{running: true}
	q.notify = sync.NewCond(&q.mu)
	q.drained = sync.NewCond(&q.mu)
	return q
}

// push enqueues entry and wakes the consumer.
func (q *ingestionQueue) push(entry *core.LogEntry) {
	q.mu.Lock()
	q.items = append(q.items, entry)
	depth := len(q.items)
	q.mu.Unlock()
	metrics.QueueDepth.Set(float64(depth))
	q.notify.Signal()
}

// stop signals shutdown; the consumer drains remaining items before exiting.
func (q *ingestionQueue) stop() {
	q.mu.Lock()
	q.running = false
	q.mu.Unlock()
	q.notify.Signal()
}

// flush blocks until the queue is empty and no sink write is in progress.
func (q *ingestionQueue) flush() {
	q.mu.Lock()
	for len(q.items) > 0 || q.writing {
		q.drained.Wait()
	}
	q.mu.Unlock()
}

// run is the consumer loop; call it in its own goroutine. write is invoked
// once per entry with the queue lock released.
func (q *ingestionQueue) run(write func(*core.LogEntry)) {
	q.mu.Lock()
	for {
		for len(q.items) == 0 && q.running {
			q.notify.Wait()
		}
		if len(q.items) == 0 && !q.running {
			q.mu.Unlock()
			return
		}

		entry := q.items[0]
		q.items = q.items[1:]
		q.writing = true
		depth := len(q.items)
		q.mu.Unlock()
		metrics.QueueDepth.Set(float64(depth))

		write(entry)

		q.mu.Lock()
		q.writing = false
		q.drained.Broadcast()
	}
}
