package mailbox

import (
	"sync/atomic"

	"github.com/fenwick-labs/gensrv/internal/queue"
)

// queuedItem pairs a WorkItem with the completion channel its submitter
// is (maybe) blocked on.
type queuedItem struct {
	item WorkItem
	done chan result
}

type result struct {
	value any
	err   error
}

// ThreadedMailbox runs every handler on one dedicated worker goroutine:
// it blocks on the queue, pops one item, runs it, and loops, with no
// link/monitor/exit-signal machinery attached to that loop.
type ThreadedMailbox struct {
	handler Handler
	queue   *queue.Queue[queuedItem]
	running atomic.Bool
	active  atomic.Uint64 // goroutine id currently running handler, 0 if idle
}

// NewThreadedMailbox starts the worker goroutine and returns the
// mailbox. capacity <= 0 means unbounded.
func NewThreadedMailbox(capacity int, handler Handler) *ThreadedMailbox {
	m := &ThreadedMailbox{
		handler: handler,
		queue:   queue.New[queuedItem](capacity),
	}
	m.running.Store(true)
	go m.run()
	return m
}

func (m *ThreadedMailbox) run() {
	for {
		qi, ok := m.queue.BlockingPop()
		if !ok {
			return
		}
		m.active.Store(goroutineID())
		value, err := m.handler(qi.item)
		m.active.Store(0)

		if qi.done != nil {
			qi.done <- result{value: value, err: err}
			close(qi.done)
		}
	}
}

func (m *ThreadedMailbox) Submit(item WorkItem) (any, error) {
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
	return nil, nil
}

func (m *ThreadedMailbox) Running() bool {
	return m.running.Load()
}

func (m *ThreadedMailbox) Stop() {
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
