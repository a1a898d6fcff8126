package mailbox

import (
	"sync/atomic"

	"github.com/fenwick-labs/gensrv/internal/queue"
)

// Dispatcher runs a task on one of its own worker goroutines, shared
// across every mailbox attached to it. DispatchedMailbox never assumes
// task runs synchronously or on any particular goroutine; it only
// assumes the Dispatcher eventually runs it exactly once.
type Dispatcher interface {
	Dispatch(task func()) error
}

// DispatchedMailbox has no dedicated worker. It guarantees at-most-one
// concurrent handler per mailbox by allowing only one in-flight
// dispatch at a time: Submit enqueues and calls schedule(), schedule()
// CAS's idle->running and hands process() to the dispatcher, and
// process() drains the queue until empty, then flips back to idle and
// rechecks the queue, reclaiming the slot with a CAS if an item was
// enqueued in between, so no item is left stranded.
type DispatchedMailbox struct {
	handler    Handler
	dispatcher Dispatcher
	queue      *queue.Queue[queuedItem]
	running    atomic.Bool
	scheduled  atomic.Bool
	active     atomic.Uint64
}

// NewDispatchedMailbox builds a mailbox that schedules its work onto
// dispatcher instead of owning a goroutine. capacity <= 0 means
// unbounded.
func NewDispatchedMailbox(capacity int, handler Handler, dispatcher Dispatcher) *DispatchedMailbox {
	m := &DispatchedMailbox{
		handler:    handler,
		dispatcher: dispatcher,
		queue:      queue.New[queuedItem](capacity),
	}
	m.running.Store(true)
	return m
}

func (m *DispatchedMailbox) Submit(item WorkItem) (any, error) {
	if !m.running.Load() {
		return nil, ErrStopped
	}

	if item.ReplyRequired {
		if active := m.active.Load(); active != 0 && active == goroutineID() {
			return nil, ErrReentrantCall
		}

		qi := queuedItem{item: item, done: make(chan result, 1)}
		if !m.queue.Enqueue(qi) {
			return nil, ErrStopped
		}
		m.schedule()
		res, ok := <-qi.done
		if !ok {
			return nil, ErrStopped
		}
		return res.value, res.err
	}

	if !m.queue.TryEnqueue(queuedItem{item: item}) {
		if m.queue.Closed() {
			return nil, ErrStopped
		}
		return nil, ErrQueueFull
	}
	m.schedule()
	return nil, nil
}

// schedule hands process to the dispatcher if no dispatch is currently
// in flight for this mailbox. A no-op if one already is; that in-flight
// run will pick up the newly enqueued item before it decides the queue
// is empty.
//
// If the dispatcher rejects the task (e.g. its pool was closed), the
// calling goroutine becomes the worker instead of leaving whatever was
// just enqueued stranded with nobody left to run it: it already won
// the CAS above, so it is the one process() the mailbox is relying on.
func (m *DispatchedMailbox) schedule() {
	if !m.scheduled.CompareAndSwap(false, true) {
		return
	}
	if err := m.dispatcher.Dispatch(m.process); err != nil {
		m.process()
	}
}

// process drains the queue on whatever dispatcher goroutine is running
// it. Going back to idle and rechecking for a missed item must happen
// as a single CAS, not a check-then-flip: if a Submit's schedule() call
// lands in between, the CAS below simply loses to it, this goroutine
// returns, and the Submit's freshly dispatched process() becomes the
// sole runner. That keeps "at most one running" true even though two
// goroutines briefly race for the slot.
func (m *DispatchedMailbox) process() {
	for {
		qi, ok := m.queue.TryPop()
		if ok {
			m.active.Store(goroutineID())
			value, err := m.handler(qi.item)
			m.active.Store(0)

			if qi.done != nil {
				qi.done <- result{value: value, err: err}
				close(qi.done)
			}
			continue
		}

		m.scheduled.Store(false)
		if m.queue.Len() == 0 || !m.scheduled.CompareAndSwap(false, true) {
			return
		}
	}
}

func (m *DispatchedMailbox) Running() bool {
	return m.running.Load()
}

func (m *DispatchedMailbox) Stop() {
	if !m.running.CompareAndSwap(true, false) {
		return
	}
	discarded := m.queue.Close()
	for _, qi := range discarded {
		if qi.done != nil {
			qi.done <- result{err: ErrStopped}
			close(qi.done)
		}
	}
}
