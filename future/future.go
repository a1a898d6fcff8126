// Package future implements a one-shot value cell that is written once,
// from anywhere, and read any number of times, by anyone, before or
// after that write happens.
//
// It backs AsyncCall: the call returns a *Future immediately, and the
// reply completes it later from whatever goroutine ends up delivering
// that reply. Completion is observed through callback
// registration rather than a blocking Await, since callers are
// expected to keep running and be notified rather than park a
// goroutine.
package future

import "sync"

// Future is completed exactly once with a value of type T. Registering
// a callback before completion queues it; registering after completion
// runs it immediately, on the calling goroutine.
type Future[T any] struct {
	mu        sync.Mutex
	done      bool
	value     T
	callbacks []func(T)
}

// New constructs a Future and runs computation with a completion
// function bound to it. computation is called synchronously, on the
// caller's goroutine, before New returns; if it wants to complete the
// future asynchronously it should hand the given func off to another
// goroutine rather than call it inline.
func New[T any](computation func(complete func(T))) *Future[T] {
	f := &Future[T]{}
	computation(f.complete)
	return f
}

// complete fulfills the future with v. Only the first call has any
// effect; later calls are silently ignored, since a Future represents
// a single occurrence.
func (f *Future[T]) complete(v T) {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return
	}
	f.done = true
	f.value = v
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(v)
	}
}

// OnComplete registers cb to run with the future's value. If the
// future is already complete, cb runs immediately on the calling
// goroutine before OnComplete returns. Otherwise it runs later, on
// whatever goroutine calls complete.
func (f *Future[T]) OnComplete(cb func(T)) {
	f.mu.Lock()
	if f.done {
		v := f.value
		f.mu.Unlock()
		cb(v)
		return
	}
	f.callbacks = append(f.callbacks, cb)
	f.mu.Unlock()
}

// Done reports whether the future has been completed.
func (f *Future[T]) Done() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}
