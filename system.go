package gensrv

import (
	"errors"
	"runtime"

	"github.com/panjf2000/ants/v2"

	"github.com/fenwick-labs/gensrv/internal/mailbox"
)

// System is the shared worker pool a dispatched Server runs its
// handlers on. A System is created and owned by the host application,
// not by any one Server: many servers can share one System to bound
// the total number of goroutines their handlers use concurrently.
type System struct {
	pool *ants.Pool
}

// SystemOption configures a System at construction time.
type SystemOption func(*systemOpts)

type systemOpts struct {
	poolSize int
}

// WithPoolSize bounds the number of goroutines the System's dispatcher
// will run concurrently across every Server attached to it. The
// default, 0, means runtime.GOMAXPROCS(0)*2.
func WithPoolSize(n int) SystemOption {
	return func(o *systemOpts) { o.poolSize = n }
}

// NewSystem builds a System backed by a worker pool.
func NewSystem(opts ...SystemOption) (*System, error) {
	o := systemOpts{}
	for _, opt := range opts {
		opt(&o)
	}

	size := o.poolSize
	if size <= 0 {
		size = runtime.GOMAXPROCS(0) * 2
	}

	pool, err := ants.NewPool(size, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}
	return &System{pool: pool}, nil
}

// poolDispatcher adapts *ants.Pool to the mailbox.Dispatcher interface.
type poolDispatcher struct {
	pool *ants.Pool
}

var errPoolClosed = errors.New("gensrv: system is closed")

func (d *poolDispatcher) Dispatch(task func()) error {
	if d.pool.IsClosed() {
		return errPoolClosed
	}
	return d.pool.Submit(task)
}

// dispatcher returns the mailbox.Dispatcher every Server attached to
// this System schedules its handler dispatches onto.
func (s *System) dispatcher() mailbox.Dispatcher {
	return &poolDispatcher{pool: s.pool}
}

// Running reports the number of goroutines the System currently has
// executing handler dispatches.
func (s *System) Running() int {
	return s.pool.Running()
}

// Close releases the System's worker pool. It does not stop the
// servers still attached to it: their dispatches to the closed pool
// fail, and their mailboxes then run handlers inline on the submitting
// goroutine instead.
func (s *System) Close() {
	s.pool.Release()
}
