package dispatch

import (
	"context"
	"hash/fnv"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Event is an externally generated stimulus addressed to one entity:
// simulated server push, timer-driven expiry, replayed user action.
type Event interface {
	EntityKey() uuid.UUID
}

// Handler applies one event. Errors are logged, not retried; the event
// source owns redelivery policy.
type Handler func(ctx context.Context, ev Event) error

// Dispatcher delivers events to the handler in arrival order per entity.
// Events are hashed by entity key onto a fixed set of worker goroutines,
// one queue each: two events for the same entity always land on the same
// queue and are applied in FIFO order, while different entities spread
// across workers and proceed in parallel.
type Dispatcher struct {
	queues  []chan Event
	handler Handler
	logger  *log.Logger
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func New(workers, buffer int, handler Handler, logger *log.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	if logger == nil {
		logger = log.Default()
	}

	queues := make([]chan Event, workers)
	for i := range queues {
		queues[i] = make(chan Event, buffer)
	}
	return &Dispatcher{queues: queues, handler: handler, logger: logger}
}

// Run starts the workers. Each worker drains its queue until the queue is
// closed; ctx cancels in-flight handler calls.
func (d *Dispatcher) Run(ctx context.Context) {
	for i := range d.queues {
		d.wg.Add(1)
		go func(q chan Event) {
			defer d.wg.Done()
			for ev := range q {
				if err := d.handler(ctx, ev); err != nil {
					d.logger.Printf("Dispatch | event rejected | entity_id=%s error=%v", ev.EntityKey(), err)
				}
			}
		}(d.queues[i])
	}
}

// Submit enqueues ev for its entity's worker, blocking when the queue is
// full. It reports false after Close.
func (d *Dispatcher) Submit(ev Event) bool {
	if d == nil || ev == nil {
		return false
	}
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return false
	}
	q := d.queues[queueIndex(ev.EntityKey(), len(d.queues))]
	// Enqueue under the read lock so Close never races a send on a closed
	// channel; concurrent submits to different queues do not serialize.
	q <- ev
	d.mu.RUnlock()
	return true
}

// Close stops intake and waits for queued events to drain.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func queueIndex(id uuid.UUID, n int) int {
	h := fnv.New32a()
	_, _ = h.Write(id[:])
	return int(h.Sum32() % uint32(n))
}
