// Package eventbus provides in-process publish/subscribe for election events.
package eventbus

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/Traqueur-dev/Sovereign/types"
)

const (
	// DefaultWorkers is the default size of the async dispatch pool.
	DefaultWorkers = 2

	// DefaultQueueSize is the default capacity of the async task queue.
	DefaultQueueSize = 256
)

// Bus delivers election events to registered listeners.
//
// Listeners subscribe per event kind with a delivery mode: synchronous
// listeners run inline on the publishing goroutine, asynchronous listeners
// are dispatched to a bounded worker pool. Publish iterates a concurrent
// snapshot of the subscriber map, so subscribing and unsubscribing during
// publish is safe.
//
// Ordering: events delivered to the same async listener are submitted in
// publish order, but the pool does not guarantee execution order under
// concurrency. Callers must not depend on cross-event ordering for async
// subscribers.
//
// Listener errors and panics are logged and never affect other listeners or
// the publisher.
type Bus struct {
	subscribers *xsync.Map[uint64, *subscriber]
	nextID      atomic.Uint64
	logger      types.Logger

	tasks    chan task
	taskMu   sync.RWMutex // held for read while enqueueing, for write while closing tasks
	wg       sync.WaitGroup
	shutdown atomic.Bool
}

type subscriber struct {
	kind     types.EventKind
	listener types.Listener
	async    bool
}

type task struct {
	sub   *subscriber
	event types.Event
}

// Subscription is a handle to a registered listener.
type Subscription struct {
	bus *Bus
	id  uint64
}

// Unsubscribe removes the listener from the bus. Safe to call multiple times.
func (s *Subscription) Unsubscribe() {
	s.bus.subscribers.Delete(s.id)
}

// New creates a new event bus with an async dispatch pool.
//
// Parameters:
//   - workers: Number of async dispatch goroutines (DefaultWorkers if <= 0)
//   - queueSize: Capacity of the async task queue (DefaultQueueSize if <= 0)
//   - logger: Logger for listener errors
//
// Returns:
//   - *Bus: A running bus ready for Subscribe/Publish
func New(workers, queueSize int, logger types.Logger) *Bus {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	b := &Bus{
		subscribers: xsync.NewMap[uint64, *subscriber](),
		logger:      logger,
		tasks:       make(chan task, queueSize),
	}

	b.wg.Add(workers)
	for range workers {
		go b.worker()
	}

	return b
}

// Subscribe registers a listener for the given event kind.
//
// Parameters:
//   - kind: Event kind to receive
//   - listener: Callback invoked for matching events
//   - async: true to dispatch on the worker pool, false to run inline on the
//     publishing goroutine
//
// Returns:
//   - *Subscription: Handle for unsubscribing
func (b *Bus) Subscribe(kind types.EventKind, listener types.Listener, async bool) *Subscription {
	id := b.nextID.Add(1)
	b.subscribers.Store(id, &subscriber{kind: kind, listener: listener, async: async})

	return &Subscription{bus: b, id: id}
}

// Publish delivers an event to all listeners subscribed to its kind.
//
// After Shutdown, events are silently dropped.
func (b *Bus) Publish(event types.Event) {
	if b.shutdown.Load() {
		return
	}

	b.subscribers.Range(func(_ uint64, sub *subscriber) bool {
		if sub.kind != event.Kind() {
			return true
		}

		if sub.async {
			b.enqueue(sub, event)
		} else {
			b.notify(sub, event)
		}

		return true
	})
}

// Shutdown stops the bus: all subscriptions are removed, the worker pool is
// drained, and subsequent publishes are silently dropped.
//
// Idempotent; only the first call has any effect.
func (b *Bus) Shutdown() {
	if !b.shutdown.CompareAndSwap(false, true) {
		return
	}

	b.subscribers.Clear()

	b.taskMu.Lock()
	close(b.tasks)
	b.taskMu.Unlock()

	b.wg.Wait()
}

// enqueue submits an async task, re-checking shutdown under the task lock so
// a publish racing Shutdown cannot send on the closed channel.
func (b *Bus) enqueue(sub *subscriber, event types.Event) {
	b.taskMu.RLock()
	defer b.taskMu.RUnlock()

	if b.shutdown.Load() {
		return
	}

	select {
	case b.tasks <- task{sub: sub, event: event}:
	default:
		// Queue full; dropping is preferable to blocking the election
		// goroutine.
		b.logger.Warn("event queue full, dropping async event",
			"kind", event.Kind().String(),
			"instance_id", event.InstanceID(),
		)
	}
}

// worker drains the async task queue until Shutdown closes it.
func (b *Bus) worker() {
	defer b.wg.Done()

	for t := range b.tasks {
		b.notify(t.sub, t.event)
	}
}

// notify invokes a listener, containing errors and panics.
func (b *Bus) notify(sub *subscriber, event types.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event listener panicked",
				"kind", event.Kind().String(),
				"panic", fmt.Sprintf("%v", r),
			)
		}
	}()

	if err := sub.listener(event); err != nil {
		b.logger.Error("event listener error",
			"kind", event.Kind().String(),
			"instance_id", event.InstanceID(),
			"error", err,
		)
	}
}
